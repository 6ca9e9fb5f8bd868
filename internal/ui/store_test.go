package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartFlag(t *testing.T) {
	store := NewStore()
	var seen []bool
	store.Subscribe(func(s State) { seen = append(seen, s.IsCartOpen) })

	assert.False(t, store.IsCartOpen())
	store.ToggleCart()
	assert.True(t, store.IsCartOpen())
	store.OpenCart()
	assert.True(t, store.IsCartOpen())
	store.ToggleCart()
	assert.False(t, store.IsCartOpen())
	store.CloseCart()

	assert.Equal(t, []bool{true, true, false, false}, seen)
}

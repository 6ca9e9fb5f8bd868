package observe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHubPublishAndCancel(t *testing.T) {
	var hub Hub[int]
	var first, second []int

	cancelFirst := hub.Subscribe(func(v int) { first = append(first, v) })
	hub.Subscribe(func(v int) { second = append(second, v) })

	hub.Publish(1)
	cancelFirst()
	cancelFirst()
	hub.Publish(2)

	assert.Equal(t, []int{1}, first)
	assert.Equal(t, []int{1, 2}, second)
}

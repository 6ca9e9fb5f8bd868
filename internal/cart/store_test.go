package cart

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront/internal/models"
)

var (
	soup   = models.MenuItem{ID: 5, Name: "Soup", Category: "Starter", Price: 3}
	burger = models.MenuItem{ID: 4, Name: "Classic Burger", Category: "Main Course", Price: 15.99}
)

func TestAddItemIncrementsExistingLine(t *testing.T) {
	store := NewStore()
	store.AddItem(soup)
	store.AddItem(burger)
	store.AddItem(soup)

	lines := store.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, models.CartLine{ItemID: 5, Name: "Soup", UnitPrice: 3, Quantity: 2}, lines[0])
	assert.Equal(t, int64(4), lines[1].ItemID)
	assert.Equal(t, 3, store.TotalItems())
	assert.InDelta(t, 21.99, store.TotalPrice(), 1e-9)
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		id        int64
		qty       int
		wantLines int
		wantItems int
	}{
		{name: "sets quantity", id: soup.ID, qty: 4, wantLines: 2, wantItems: 5},
		{name: "zero removes", id: soup.ID, qty: 0, wantLines: 1, wantItems: 1},
		{name: "negative removes", id: soup.ID, qty: -2, wantLines: 1, wantItems: 1},
		{name: "absent id is a no-op", id: 99, qty: 3, wantLines: 2, wantItems: 2},
		{name: "absent id with zero is a no-op", id: 99, qty: 0, wantLines: 2, wantItems: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			store.AddItem(soup)
			store.AddItem(burger)

			store.UpdateQuantity(tt.id, tt.qty)

			assert.Len(t, store.Lines(), tt.wantLines)
			assert.Equal(t, tt.wantItems, store.TotalItems())
		})
	}
}

func TestRemoveAndClear(t *testing.T) {
	store := NewStore()
	store.AddItem(soup)
	store.AddItem(burger)

	store.RemoveItem(99)
	assert.Len(t, store.Lines(), 2)

	store.RemoveItem(soup.ID)
	require.Len(t, store.Lines(), 1)
	assert.Equal(t, burger.ID, store.Lines()[0].ItemID)

	store.ClearCart()
	assert.Empty(t, store.Lines())
	assert.Zero(t, store.TotalItems())
	assert.Zero(t, store.TotalPrice())
}

func TestTotalsFollowLines(t *testing.T) {
	items := []models.MenuItem{
		soup,
		burger,
		{ID: 7, Name: "French Fries", Price: 4.99},
		{ID: 6, Name: "Tiramisu", Price: 8.99},
	}
	rng := rand.New(rand.NewSource(1))
	store := NewStore()

	for i := 0; i < 500; i++ {
		item := items[rng.Intn(len(items))]
		switch rng.Intn(3) {
		case 0:
			store.AddItem(item)
		case 1:
			store.RemoveItem(item.ID)
		case 2:
			store.UpdateQuantity(item.ID, rng.Intn(5)-1)
		}

		state := store.State()
		wantItems, wantPrice := 0, 0.0
		seen := map[int64]bool{}
		for _, line := range state.Lines {
			assert.False(t, seen[line.ItemID], "duplicate line for %d", line.ItemID)
			seen[line.ItemID] = true
			assert.GreaterOrEqual(t, line.Quantity, 1)
			wantItems += line.Quantity
			wantPrice += line.UnitPrice * float64(line.Quantity)
		}
		require.Equal(t, wantItems, state.TotalItems())
		require.InDelta(t, wantPrice, state.TotalPrice(), 1e-9)
	}

	store.ClearCart()
	assert.Zero(t, store.TotalItems())
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	store := NewStore()
	var totals []int
	cancel := store.Subscribe(func(s State) { totals = append(totals, s.TotalItems()) })

	store.AddItem(soup)
	store.AddItem(soup)
	cancel()
	store.ClearCart()

	assert.Equal(t, []int{1, 2}, totals)
}

func TestSnapshotIsACopy(t *testing.T) {
	store := NewStore()
	store.AddItem(soup)

	lines := store.Lines()
	lines[0].Quantity = 100

	assert.Equal(t, 1, store.TotalItems())
}

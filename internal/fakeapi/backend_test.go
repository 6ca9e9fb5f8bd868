package fakeapi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/models/dto"
)

func TestLoadMenuDefaultSeed(t *testing.T) {
	menu, err := LoadMenu("")
	require.NoError(t, err)
	require.NotEmpty(t, menu)

	assert.Equal(t, "Starter", menu[0].Item)
	assert.Equal(t, "Crispy Calamari", menu[0].Children[0].Item)
	assert.InDelta(t, 12.99, menu[0].Children[0].Price, 1e-9)
}

func TestLoadMenuFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- item: Starter
  children:
    - id: 5
      item: Soup
      price: 3
    - id: 6
      item: Old Bread
      price: 1
      isDeleted: true
`), 0o600))

	menu, err := LoadMenu(path)
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Len(t, menu[0].Children, 2)
	assert.True(t, menu[0].Children[1].IsDeleted)

	_, err = LoadMenu(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseMenuRejectsInvalidSeeds(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not yaml list", raw: `item: Starter`},
		{name: "unnamed category", raw: "- id: 1\n  children: []\n"},
		{name: "duplicate item id", raw: "- item: A\n  children:\n    - id: 1\n      item: X\n- item: B\n  children:\n    - id: 1\n      item: Y\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMenu([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestAccounts(t *testing.T) {
	b := New(nil)

	created, err := b.CreateAccount(models.User{Name: "A", Email: "A@b.com"}, "hash")
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	_, err = b.CreateAccount(models.User{Name: "A2", Email: " a@B.com "}, "hash")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	account, err := b.AccountByEmail("a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", account.PasswordHash)

	_, err = b.User(99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderLines(t *testing.T) {
	menu, err := ParseMenu([]byte(`
- item: Starter
  children:
    - {id: 5, item: Soup, price: 3}
    - {id: 6, item: Old Bread, price: 1, isDeleted: true}
- item: Retired
  isDeleted: true
  children:
    - {id: 9, item: Ghost, price: 9}
`))
	require.NoError(t, err)
	b := New(menu)
	user, err := b.CreateAccount(models.User{Name: "A", Email: "a@b.com", Address: "1 Road"}, "hash")
	require.NoError(t, err)
	other, err := b.CreateAccount(models.User{Name: "B", Email: "b@b.com"}, "hash")
	require.NoError(t, err)

	id, err := b.CreateOrder(user.ID, 6)
	require.NoError(t, err)

	require.NoError(t, b.AddOrderLine(user.ID, dto.OrderLinePayload{OrderID: id, MenuID: 5, Quantity: 2, PriceAtOrderTime: 3}))
	assert.ErrorIs(t, b.AddOrderLine(user.ID, dto.OrderLinePayload{OrderID: id, MenuID: 6, Quantity: 1}), ErrUnavailable)
	assert.ErrorIs(t, b.AddOrderLine(user.ID, dto.OrderLinePayload{OrderID: id, MenuID: 9, Quantity: 1}), ErrUnavailable)
	assert.ErrorIs(t, b.AddOrderLine(user.ID, dto.OrderLinePayload{OrderID: id, MenuID: 5, Quantity: 0}), ErrInvalidLine)
	assert.ErrorIs(t, b.AddOrderLine(other.ID, dto.OrderLinePayload{OrderID: id, MenuID: 5, Quantity: 1}), ErrNotFound)

	orders := b.Orders(user.ID)
	require.Len(t, orders, 1)
	assert.Equal(t, id, orders[0].OrderID)
	assert.Equal(t, "1 Road", orders[0].Address)
	assert.Equal(t, []dto.OrderItemRecord{{Item: "Soup", Quantity: 2, PriceAtOrderTime: 3}}, orders[0].OrderItems)
	assert.Empty(t, b.Orders(other.ID))
}

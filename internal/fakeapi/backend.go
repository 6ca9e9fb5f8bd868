// Package fakeapi is the in-memory state behind the local test backend:
// accounts, the catalog and placed orders. It mirrors the REST surface the
// storefront consumes closely enough for integration tests and local runs.
package fakeapi

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/models/dto"
)

var (
	// ErrAlreadyExists indicates an account with the same email exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable indicates a menu item that is deleted or unknown.
	ErrUnavailable = errors.New("menu item unavailable")
	// ErrInvalidLine indicates a line with a non-positive quantity.
	ErrInvalidLine = errors.New("quantity must be at least 1")
)

// Account is a registered user with its password hash.
type Account struct {
	User         models.User
	PasswordHash string
}

type orderRow struct {
	id        int64
	userID    int64
	createdAt time.Time
	total     float64
	customer  models.Customer
	lines     []dto.OrderItemRecord
}

// Backend holds all test backend state. It is safe for concurrent use.
type Backend struct {
	mu       sync.RWMutex
	now      func() time.Time
	menu     []dto.MenuCategoryRecord
	items    map[int64]dto.MenuItemRecord
	accounts map[string]Account
	byID     map[int64]string
	orders   map[int64]*orderRow
	nextUser int64
	nextOrd  int64
}

// New creates a backend serving menu.
func New(menu []dto.MenuCategoryRecord) *Backend {
	b := &Backend{
		now:      time.Now,
		menu:     menu,
		items:    make(map[int64]dto.MenuItemRecord),
		accounts: make(map[string]Account),
		byID:     make(map[int64]string),
		orders:   make(map[int64]*orderRow),
	}
	for _, category := range menu {
		for _, item := range category.Children {
			if category.IsDeleted {
				item.IsDeleted = true
			}
			b.items[item.ID] = item
		}
	}
	return b
}

// CreateAccount registers a user. Emails are unique, case-insensitively.
func (b *Backend) CreateAccount(user models.User, passwordHash string) (models.User, error) {
	key := emailKey(user.Email)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.accounts[key]; ok {
		return models.User{}, ErrAlreadyExists
	}
	b.nextUser++
	user.ID = b.nextUser
	b.accounts[key] = Account{User: user, PasswordHash: passwordHash}
	b.byID[user.ID] = key
	return user, nil
}

// AccountByEmail looks up an account for login.
func (b *Backend) AccountByEmail(email string) (Account, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	account, ok := b.accounts[emailKey(email)]
	if !ok {
		return Account{}, ErrNotFound
	}
	return account, nil
}

// User returns the profile for id.
func (b *Backend) User(id int64) (models.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	key, ok := b.byID[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return b.accounts[key].User, nil
}

// Menu returns the catalog, deleted entries included.
func (b *Backend) Menu() []dto.MenuCategoryRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]dto.MenuCategoryRecord, len(b.menu))
	copy(out, b.menu)
	return out
}

// CreateOrder opens an order header for userID and returns its id.
func (b *Backend) CreateOrder(userID int64, total float64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key, ok := b.byID[userID]
	if !ok {
		return 0, ErrNotFound
	}
	user := b.accounts[key].User
	b.nextOrd++
	b.orders[b.nextOrd] = &orderRow{
		id:        b.nextOrd,
		userID:    userID,
		createdAt: b.now().UTC(),
		total:     total,
		customer: models.Customer{
			Name:        user.Name,
			PhoneNumber: user.PhoneNumber,
			Address:     user.Address,
		},
	}
	return b.nextOrd, nil
}

// AddOrderLine records one purchased line on an order owned by userID.
func (b *Backend) AddOrderLine(userID int64, line dto.OrderLinePayload) error {
	if line.Quantity < 1 {
		return ErrInvalidLine
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	order, ok := b.orders[line.OrderID]
	if !ok || order.userID != userID {
		return ErrNotFound
	}
	item, ok := b.items[line.MenuID]
	if !ok || item.IsDeleted {
		return ErrUnavailable
	}
	order.lines = append(order.lines, dto.OrderItemRecord{
		Item:             item.Item,
		Quantity:         line.Quantity,
		PriceAtOrderTime: line.PriceAtOrderTime,
	})
	return nil
}

// Orders returns userID's orders, oldest first.
func (b *Backend) Orders(userID int64) []dto.OrderRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]dto.OrderRecord, 0)
	for id := int64(1); id <= b.nextOrd; id++ {
		order, ok := b.orders[id]
		if !ok || order.userID != userID {
			continue
		}
		out = append(out, dto.OrderRecord{
			OrderID:      order.id,
			CreatedAt:    order.createdAt.Format(time.RFC3339),
			TotalAmount:  order.total,
			OrderItems:   append([]dto.OrderItemRecord{}, order.lines...),
			CustomerName: order.customer.Name,
			PhoneNumber:  order.customer.PhoneNumber,
			Address:      order.customer.Address,
		})
	}
	return out
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

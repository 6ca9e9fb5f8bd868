// Package cart holds the shopping cart. All operations are local and
// synchronous; totals are always derived from the lines.
package cart

import (
	"sync"

	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/observe"
)

// State is a snapshot of the cart lines in insertion order.
type State struct {
	Lines []models.CartLine
}

// TotalItems is the sum of line quantities.
func (s State) TotalItems() int {
	total := 0
	for _, line := range s.Lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice is the sum of unit price times quantity.
func (s State) TotalPrice() float64 {
	total := 0.0
	for _, line := range s.Lines {
		total += line.Subtotal()
	}
	return total
}

// Store is the cart store. It is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	lines []models.CartLine
	hub   observe.Hub[State]
}

// NewStore returns an empty cart.
func NewStore() *Store {
	return &Store{}
}

// AddItem increments the line for item, or appends a new line with quantity 1.
func (s *Store) AddItem(item models.MenuItem) {
	s.mutate(func() {
		if i := s.indexLocked(item.ID); i >= 0 {
			s.lines[i].Quantity++
			return
		}
		s.lines = append(s.lines, models.CartLine{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  1,
		})
	})
}

// RemoveItem deletes the line for id. Unknown ids are ignored.
func (s *Store) RemoveItem(id int64) {
	s.mutate(func() { s.removeLocked(id) })
}

// UpdateQuantity sets the quantity for id; qty <= 0 removes the line.
// Unknown ids are ignored.
func (s *Store) UpdateQuantity(id int64, qty int) {
	s.mutate(func() {
		i := s.indexLocked(id)
		if i < 0 {
			return
		}
		if qty <= 0 {
			s.removeLocked(id)
			return
		}
		s.lines[i].Quantity = qty
	})
}

// ClearCart empties the cart.
func (s *Store) ClearCart() {
	s.mutate(func() { s.lines = nil })
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []models.CartLine {
	return s.State().Lines
}

// TotalItems is the sum of line quantities.
func (s *Store) TotalItems() int {
	return s.State().TotalItems()
}

// TotalPrice is the sum of unit price times quantity.
func (s *Store) TotalPrice() float64 {
	return s.State().TotalPrice()
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every cart change.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	return s.hub.Subscribe(fn)
}

func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.hub.Publish(snap)
}

func (s *Store) indexLocked(id int64) int {
	for i, line := range s.lines {
		if line.ItemID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(id int64) {
	if i := s.indexLocked(id); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
}

func (s *Store) snapshotLocked() State {
	lines := make([]models.CartLine, len(s.lines))
	copy(lines, s.lines)
	return State{Lines: lines}
}

// Package ui holds view flags shared across screens.
package ui

import (
	"sync"

	"github.com/hongminglow/storefront/internal/observe"
)

// State is a snapshot of the UI flags.
type State struct {
	IsCartOpen bool
}

// Store is the UI flags store.
type Store struct {
	mu    sync.Mutex
	state State
	hub   observe.Hub[State]
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) IsCartOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsCartOpen
}

func (s *Store) ToggleCart() { s.set(func(open bool) bool { return !open }) }

func (s *Store) OpenCart() { s.set(func(bool) bool { return true }) }

func (s *Store) CloseCart() { s.set(func(bool) bool { return false }) }

// Subscribe registers fn for every flag change.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	return s.hub.Subscribe(fn)
}

func (s *Store) set(next func(open bool) bool) {
	s.mu.Lock()
	s.state.IsCartOpen = next(s.state.IsCartOpen)
	snap := s.state
	s.mu.Unlock()
	s.hub.Publish(snap)
}

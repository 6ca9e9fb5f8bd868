// Package observe fans state snapshots out to subscribers.
package observe

import "sync"

// Hub delivers every published value to the current subscribers, in
// subscription order, on the publishing goroutine.
type Hub[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns the function that removes it.
func (h *Hub[T]) Subscribe(fn func(T)) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscriber[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

// Publish calls every subscriber with v. Subscribers must not call back into
// the hub's owner while holding that owner's locks.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	subs := make([]subscriber[T], len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

func (h *Hub[T]) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			return
		}
	}
}

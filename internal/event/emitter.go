// Package event provides a small generic publish/subscribe primitive
// backing the live streaming observables.
package event

import "sync"

// Emitter delivers events of type E to subscribers. Delivery is
// synchronous and in subscription order.
type Emitter[E any] struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(E)
	order  []int
}

// NewEmitter returns an Emitter with no subscribers.
func NewEmitter[E any]() *Emitter[E] {
	return &Emitter[E]{subs: make(map[int]func(E))}
}

// Subscribe registers fn and returns a function that removes it.
// Unsubscribing twice is a no-op.
func (e *Emitter[E]) Subscribe(fn func(E)) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	e.order = append(e.order, id)
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			for i, v := range e.order {
				if v == id {
					e.order = append(e.order[:i], e.order[i+1:]...)
					break
				}
			}
			e.mu.Unlock()
		})
	}
}

// Emit delivers event to every current subscriber. The subscriber set is
// snapshotted first, so handlers may subscribe or unsubscribe during
// delivery without deadlocking.
func (e *Emitter[E]) Emit(event E) {
	e.mu.RLock()
	handlers := make([]func(E), 0, len(e.subs))
	for _, id := range e.order {
		if fn, ok := e.subs[id]; ok {
			handlers = append(handlers, fn)
		}
	}
	e.mu.RUnlock()

	for _, fn := range handlers {
		fn(event)
	}
}

// Len returns the number of active subscribers.
func (e *Emitter[E]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs)
}

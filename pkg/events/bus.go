package events

import "sync"

// Bus is a typed in-process event emitter. Handlers are registered with
// Subscribe and released through the returned func; Publish invokes every
// live handler synchronously in registration order.
type Bus[T any] struct {
	mu       sync.RWMutex
	nextID   int
	order    []int
	handlers map[int]func(T)
}

// NewBus builds an empty bus.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{handlers: map[int]func(T){}}
}

// Subscribe registers a handler and returns its release func. Releasing is
// idempotent and safe after the bus has published.
func (b *Bus[T]) Subscribe(handler func(T)) (unsubscribe func()) {
	if handler == nil {
		return func() {}
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			for i, existing := range b.order {
				if existing == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
			b.mu.Unlock()
		})
	}
}

// Publish delivers the event to every registered handler.
func (b *Bus[T]) Publish(event T) {
	b.mu.RLock()
	handlers := make([]func(T), 0, len(b.handlers))
	for _, id := range b.order {
		if h, ok := b.handlers[id]; ok {
			handlers = append(handlers, h)
		}
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// Len reports the number of live subscriptions.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

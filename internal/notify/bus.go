package notify

import "sync"

// Bus is the in-process half of the notifier: a plain publish/subscribe
// channel between views running in the same process.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[Kind]map[int]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Kind]map[int]Handler)}
}

// Subscribe registers h for signals of the given kind and returns a cancel
// function. The caller must cancel on view teardown so handlers are never
// invoked on views that no longer exist.
func (b *Bus) Subscribe(kind Kind, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[kind] == nil {
		b.subs[kind] = make(map[int]Handler)
	}
	id := b.next
	b.next++
	b.subs[kind][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[kind], id)
	}
}

// Emit delivers sig to every subscriber of its kind. Handlers run on the
// emitting goroutine, outside the bus lock.
func (b *Bus) Emit(sig Signal) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[sig.Kind]))
	for _, h := range b.subs[sig.Kind] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(sig)
	}
}

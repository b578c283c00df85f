package event

import "sync"

// Signal is a single-topic observer registry. Components that need to
// react to a process-wide event (the transport layer noticing an
// unauthorized response, say) subscribe once at construction; the
// publisher stays unaware of who is listening.
//
// Handlers run synchronously on the emitting goroutine, in
// registration order.
type Signal struct {
	mu       sync.Mutex
	handlers []func()
}

func NewSignal() *Signal {
	return &Signal{}
}

// Subscribe registers a handler for the lifetime of the signal.
func (s *Signal) Subscribe(handler func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Emit invokes every registered handler. Handlers are copied out under
// the lock so a handler may subscribe or emit without deadlocking.
func (s *Signal) Emit() {
	s.mu.Lock()
	handlers := make([]func(), len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.Unlock()

	for _, handler := range handlers {
		handler()
	}
}

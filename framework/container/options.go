package container

import (
	"sync"

	"go.uber.org/zap"
)

// ResolveEvent describes one resolution served by a container.
// Cached is true when the value came from the serving container's cache.
// A failure is reported once, under the name where it started, not again for
// each resolution that was waiting on it.
type ResolveEvent struct {
	Name      string
	Qualifier Qualifier
	Cached    bool
	Err       error
}

// Option configures a root container. Settings are shared with every scope
// created from it.
type Option func(*settings)

// WithLogger sets the logger used for registration and snapshot events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver adds a callback fired after each resolution in the tree.
func WithObserver(fn func(ResolveEvent)) Option {
	return func(s *settings) {
		if fn != nil {
			s.observers = append(s.observers, fn)
		}
	}
}

type settings struct {
	logger *zap.Logger

	mu        sync.RWMutex
	observers []func(ResolveEvent)
}

func newSettings(opts []Option) *settings {
	s := &settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *settings) notify(ev ResolveEvent) {
	s.mu.RLock()
	observers := s.observers
	s.mu.RUnlock()
	for _, fn := range observers {
		fn(ev)
	}
}

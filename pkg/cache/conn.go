package cache

import "sync"

// Conn manages a lazily-created, process-lifetime singleton handle such as
// the graph store connection. The factory runs at most once per lifetime of
// a successful handle; a failed factory call is retried on the next Get so
// a transient outage at startup does not poison the process.
type Conn[T any] struct {
	mu      sync.Mutex
	factory func() (T, error)
	value   T
	ready   bool
}

// NewConn creates a manager around the given factory.
func NewConn[T any](factory func() (T, error)) *Conn[T] {
	return &Conn[T]{factory: factory}
}

// Get returns the singleton handle, creating it on first use. Safe for
// concurrent callers.
func (c *Conn[T]) Get() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready {
		return c.value, nil
	}

	value, err := c.factory()
	if err != nil {
		var zero T
		return zero, err
	}

	c.value = value
	c.ready = true
	return c.value, nil
}

// Close tears down the handle via the supplied closer, if one was ever
// created, and resets the manager.
func (c *Conn[T]) Close(closer func(T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready {
		return nil
	}
	c.ready = false
	return closer(c.value)
}

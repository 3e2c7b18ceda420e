package queries

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrHandlerMissing    = errors.New("queries: no handler registered for key")
	ErrHandlerDuplicated = errors.New("queries: handler already registered for key")
)

// Query is a read-only request routed by key.
type Query interface {
	Key() string
}

// Handler answers one query type.
type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, q Q) (R, error)
}

// Bus answers queries through their registered handlers.
type Bus interface {
	Ask(ctx context.Context, q Query) (any, error)
}

// InMemoryBus routes queries by key inside the process.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string]func(ctx context.Context, q Query) (any, error)
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{handlers: make(map[string]func(ctx context.Context, q Query) (any, error))}
}

// RegisterHandler binds a typed handler to a query key.
func RegisterHandler[Q Query, R any](bus *InMemoryBus, key string, handler Handler[Q, R]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if _, exists := bus.handlers[key]; exists {
		panic(fmt.Errorf("%w: %s", ErrHandlerDuplicated, key))
	}
	bus.handlers[key] = func(ctx context.Context, q Query) (any, error) {
		typed, ok := q.(Q)
		if !ok {
			return nil, fmt.Errorf("queries: handler for %s received %T", key, q)
		}
		return handler.Handle(ctx, typed)
	}
}

func (b *InMemoryBus) Ask(ctx context.Context, q Query) (any, error) {
	b.mu.RLock()
	fn, ok := b.handlers[q.Key()]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerMissing, q.Key())
	}
	return fn(ctx, q)
}

// Ask sends a query through any bus and asserts the result type.
func Ask[Q Query, R any](ctx context.Context, bus Bus, q Q) (R, error) {
	var zero R
	res, err := bus.Ask(ctx, q)
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	typed, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("queries: unexpected result %T for %s", res, q.Key())
	}
	return typed, nil
}

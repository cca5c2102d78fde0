package commands

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

type registration struct {
	fn     BusFunc
	result string
}

// InMemoryBus routes commands to handlers registered at startup. It is not
// safe to register while dispatching.
type InMemoryBus struct {
	routes map[string]registration
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{routes: map[string]registration{}}
}

func (b *InMemoryBus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	if cmd == nil {
		return nil, ErrInvalidCommand
	}
	route, ok := b.routes[cmd.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, cmd.Key())
	}
	return route.fn(ctx, cmd)
}

// Keys lists registered command keys in sorted order.
func (b *InMemoryBus) Keys() []string {
	return slices.Sorted(maps.Keys(b.routes))
}

// Describe maps each key to the Go type its handler returns.
func (b *InMemoryBus) Describe() map[string]string {
	out := make(map[string]string, len(b.routes))
	for key, route := range b.routes {
		out[key] = route.result
	}
	return out
}

// RegisterHandler binds key to a typed handler. Empty or duplicate keys panic:
// both are wiring mistakes caught at startup.
func RegisterHandler[C Command, R any](bus *InMemoryBus, key string, handler Handler[C, R]) {
	switch {
	case bus == nil:
		panic("commands: nil bus")
	case key == "":
		panic("commands: empty key registration")
	}
	if _, exists := bus.routes[key]; exists {
		panic(fmt.Sprintf("commands: duplicate registration for %s", key))
	}
	var result R
	bus.routes[key] = registration{
		result: fmt.Sprintf("%T", result),
		fn: func(ctx context.Context, raw Command) (any, error) {
			cmd, ok := raw.(C)
			if !ok {
				return nil, fmt.Errorf("%w: %s got %T", ErrInvalidCommand, key, raw)
			}
			return handler.Handle(ctx, cmd)
		},
	}
}

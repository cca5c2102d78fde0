package commands

import (
	"context"
	"errors"
	"testing"
)

type renamePropertyCommand struct{ Name string }

func (renamePropertyCommand) Key() string { return "test.rename_property" }

type renameAck struct{ Name string }

type renameHandler struct{}

func (renameHandler) Handle(ctx context.Context, cmd renamePropertyCommand) (*renameAck, error) {
	return &renameAck{Name: cmd.Name}, nil
}

func TestInMemoryBusDispatchesTyped(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[renamePropertyCommand, *renameAck](bus, "test.rename_property", renameHandler{})

	ack, err := Dispatch[renamePropertyCommand, *renameAck](context.Background(), bus, renamePropertyCommand{Name: "Villa Kelapa"})
	if err != nil || ack.Name != "Villa Kelapa" {
		t.Fatalf("unexpected result %+v (%v)", ack, err)
	}
	if _, err := Dispatch[renamePropertyCommand, string](context.Background(), bus, renamePropertyCommand{}); !errors.Is(err, ErrResultType) {
		t.Fatalf("expected ErrResultType, got %v", err)
	}
	if got := bus.Describe()["test.rename_property"]; got != "*commands.renameAck" {
		t.Fatalf("unexpected description %q", got)
	}
}

type unknownCommand struct{}

func (unknownCommand) Key() string { return "test.unknown" }

func TestInMemoryBusUnknownKey(t *testing.T) {
	if _, err := NewInMemoryBus().Dispatch(context.Background(), unknownCommand{}); !errors.Is(err, ErrHandlerNotFound) {
		t.Fatalf("expected ErrHandlerNotFound, got %v", err)
	}
	if _, err := Dispatch[unknownCommand, any](context.Background(), nil, unknownCommand{}); !errors.Is(err, ErrNilBus) {
		t.Fatalf("expected ErrNilBus, got %v", err)
	}
}

func TestRegisterHandlerPanicsOnDuplicate(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[renamePropertyCommand, *renameAck](bus, "test.rename_property", renameHandler{})
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate key")
		}
	}()
	RegisterHandler[renamePropertyCommand, *renameAck](bus, "test.rename_property", renameHandler{})
}

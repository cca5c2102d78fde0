package middleware

import (
	"context"
	"errors"
	"testing"

	"staydesk/internal/app/commands"
	"staydesk/internal/app/outbox"
	"staydesk/internal/app/uow"
)

type ack struct {
	Version int64 `json:"version"`
}

type applyEvent struct {
	id string
}

func (c applyEvent) Key() string            { return "test.apply" }
func (c applyEvent) IdempotencyKey() string { return c.id }
func (c applyEvent) ResultPrototype() any   { return &ack{} }

type mapStore map[string]IdempotencyRecord

func (s mapStore) Get(ctx context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s[key]
	return rec, ok, nil
}

func (s mapStore) Save(ctx context.Context, rec IdempotencyRecord) error {
	s[rec.Key] = rec
	return nil
}

type countingBus struct {
	calls int
	err   error
}

func (b *countingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return &ack{Version: int64(b.calls)}, nil
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	base := &countingBus{}
	store := mapStore{}
	bus := ChainCommands(base, Idempotency(store, nil))

	first, err := bus.Dispatch(context.Background(), applyEvent{id: "evt-1"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	second, err := bus.Dispatch(context.Background(), applyEvent{id: "evt-1"})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("handler must run once, ran %d times", base.calls)
	}
	if first.(*ack).Version != 1 || second.(*ack).Version != 1 {
		t.Fatalf("replay must return the stored result, got %+v", second)
	}

	if _, err := bus.Dispatch(context.Background(), applyEvent{}); err != nil || base.calls != 2 {
		t.Fatalf("commands without an event id must always run")
	}
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	base := &countingBus{err: errors.New("boom")}
	store := mapStore{}
	bus := ChainCommands(base, Idempotency(store, nil))

	if _, err := bus.Dispatch(context.Background(), applyEvent{id: "evt-1"}); err == nil {
		t.Fatalf("expected failure")
	}
	if len(store) != 0 {
		t.Fatalf("failed outcome must not be stored")
	}
	base.err = nil
	if _, err := bus.Dispatch(context.Background(), applyEvent{id: "evt-1"}); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("retry must reach the handler")
	}
}

type fakeUnit struct {
	uow.UnitOfWork
	committed, rolledBack bool
}

func (u *fakeUnit) Commit(ctx context.Context) error   { u.committed = true; return nil }
func (u *fakeUnit) Rollback(ctx context.Context) error { u.rolledBack = true; return nil }

type fakeFactory struct {
	units []*fakeUnit
}

func (f *fakeFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	u := &fakeUnit{}
	f.units = append(f.units, u)
	return u, nil
}

func TestTransactionCommitsOrRollsBack(t *testing.T) {
	factory := &fakeFactory{}
	ok := ChainCommands(&countingBus{}, Transaction(factory, nil))
	if _, err := ok.Dispatch(context.Background(), applyEvent{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	failing := ChainCommands(&countingBus{err: errors.New("boom")}, Transaction(factory, nil))
	if _, err := failing.Dispatch(context.Background(), applyEvent{}); err == nil {
		t.Fatalf("expected failure")
	}
	if len(factory.units) != 2 {
		t.Fatalf("expected two units, got %d", len(factory.units))
	}
	if !factory.units[0].committed || factory.units[0].rolledBack {
		t.Fatalf("successful command must commit")
	}
	if factory.units[1].committed || !factory.units[1].rolledBack {
		t.Fatalf("failed command must roll back")
	}

	existing := &fakeUnit{}
	ctx := uow.ContextWithUnitOfWork(context.Background(), existing)
	if _, err := ok.Dispatch(ctx, applyEvent{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(factory.units) != 2 || existing.committed {
		t.Fatalf("a unit already in context must be reused without commit")
	}
}

type flakyOutbox struct {
	flushes int
}

func (o *flakyOutbox) Add(ctx context.Context, rec outbox.EventRecord) error { return nil }
func (o *flakyOutbox) Flush(ctx context.Context) error {
	o.flushes++
	return errors.New("store offline")
}

func TestOutboxFlushKeepsCommandResult(t *testing.T) {
	box := &flakyOutbox{}
	bus := ChainCommands(&countingBus{}, OutboxFlush(box, nil))
	res, err := bus.Dispatch(context.Background(), applyEvent{})
	if err != nil || res == nil {
		t.Fatalf("flush failure must not fail the command: %v", err)
	}
	if box.flushes != 1 {
		t.Fatalf("expected one flush, got %d", box.flushes)
	}

	if _, err := ChainCommands(&countingBus{err: errors.New("boom")}, OutboxFlush(box, nil)).Dispatch(context.Background(), applyEvent{}); err == nil || box.flushes != 1 {
		t.Fatalf("failed command must not flush")
	}
}

func TestValidationStopsInvalidCommands(t *testing.T) {
	base := &countingBus{}
	reject := ValidatorFunc(func(ctx context.Context, message any) error { return errors.New("invalid") })
	if _, err := ChainCommands(base, Validation(reject)).Dispatch(context.Background(), applyEvent{}); err == nil {
		t.Fatalf("expected validation error")
	}
	if base.calls != 0 {
		t.Fatalf("handler must not run")
	}
}

type otherEvent struct{ id string }

func (c otherEvent) Key() string            { return "test.other" }
func (c otherEvent) IdempotencyKey() string { return c.id }
func (c otherEvent) ResultPrototype() any   { return &ack{} }

func TestIdempotencyRejectsKeyReuseAcrossCommands(t *testing.T) {
	store := mapStore{}
	bus := ChainCommands(&countingBus{}, Idempotency(store, nil))
	if _, err := bus.Dispatch(context.Background(), applyEvent{id: "evt-9"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := bus.Dispatch(context.Background(), otherEvent{id: "evt-9"}); !errors.Is(err, ErrIdempotencyConflict) {
		t.Fatalf("expected ErrIdempotencyConflict, got %v", err)
	}
}

func TestCommandPipelineOrdersStages(t *testing.T) {
	factory := &fakeFactory{}
	box := &flakyOutbox{}
	base := &countingBus{}
	reject := ValidatorFunc(func(ctx context.Context, message any) error {
		if message.(applyEvent).id == "bad" {
			return errors.New("invalid")
		}
		return nil
	})
	bus := CommandPipeline{Validator: reject, Idempotency: mapStore{}, Factory: factory, Outbox: box}.Build(base)

	if _, err := bus.Dispatch(context.Background(), applyEvent{id: "bad"}); err == nil {
		t.Fatalf("expected validation error")
	}
	if len(factory.units) != 0 || box.flushes != 0 {
		t.Fatalf("rejected command must not open a unit or flush")
	}
	for range 2 {
		if _, err := bus.Dispatch(context.Background(), applyEvent{id: "evt-1"}); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
	}
	if base.calls != 1 || len(factory.units) != 1 || !factory.units[0].committed {
		t.Fatalf("replayed command must skip the transaction, calls=%d units=%d", base.calls, len(factory.units))
	}
	if box.flushes != 1 {
		t.Fatalf("expected one flush, got %d", box.flushes)
	}
}

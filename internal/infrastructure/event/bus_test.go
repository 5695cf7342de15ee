package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/vendora/backend/internal/domain/shared"
)

type busTestEvent struct {
	shared.BaseDomainEvent
}

func newBusTestEvent(eventType string) *busTestEvent {
	return &busTestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "ReturnRequest", uuid.New()),
	}
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	var received []shared.DomainEvent
	bus.Subscribe("returns.request_approved", func(_ context.Context, e shared.DomainEvent) error {
		received = append(received, e)
		return nil
	})

	event := newBusTestEvent("returns.request_approved")
	err := bus.Publish(context.Background(), event)

	assert.NoError(t, err)
	assert.Len(t, received, 1)
	assert.Equal(t, event.EventID(), received[0].EventID())
}

func TestInMemoryEventBus_Publish_NoMatchingHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	bus.Subscribe("returns.request_rejected", func(_ context.Context, _ shared.DomainEvent) error {
		t.Fatal("handler should not be called")
		return nil
	})

	err := bus.Publish(context.Background(), newBusTestEvent("returns.request_approved"))
	assert.NoError(t, err)
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	count := 0
	bus.Subscribe("*", func(_ context.Context, _ shared.DomainEvent) error {
		count++
		return nil
	})

	_ = bus.Publish(context.Background(), newBusTestEvent("returns.request_approved"))
	_ = bus.Publish(context.Background(), newBusTestEvent("returns.refund_issued"))

	assert.Equal(t, 2, count)
}

func TestInMemoryEventBus_Publish_HandlerErrorDoesNotBlockOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	bus.Subscribe("returns.request_approved", func(_ context.Context, _ shared.DomainEvent) error {
		return errors.New("handler failed")
	})

	called := false
	bus.Subscribe("returns.request_approved", func(_ context.Context, _ shared.DomainEvent) error {
		called = true
		return nil
	})

	err := bus.Publish(context.Background(), newBusTestEvent("returns.request_approved"))

	assert.NoError(t, err)
	assert.True(t, called)
}

func TestInMemoryEventBus_Publish_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	bus.Subscribe("returns.request_approved", func(_ context.Context, _ shared.DomainEvent) error {
		panic("boom")
	})

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newBusTestEvent("returns.request_approved"))
	})
}

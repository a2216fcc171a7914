package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/tillpos/internal/config"
	"github.com/Additional-Code/tillpos/internal/messaging"
)

func message(t *testing.T, eventType string) messaging.Message {
	t.Helper()
	evt, err := messaging.NewEvent(eventType, time.Now(), map[string]int{"order_id": 1})
	require.NoError(t, err)
	raw, err := json.Marshal(evt)
	require.NoError(t, err)
	return messaging.Message{Topic: "sales.events", Value: raw}
}

func newEngine(client messaging.Client, regs ...HandlerRegistration) *Engine {
	var cfg config.Config
	cfg.Messaging.Enabled = true
	cfg.Messaging.Workers.Enabled = true
	cfg.Messaging.Workers.Concurrency = 1
	return NewEngine(Params{Client: client, Logger: zap.NewNop(), Config: cfg, Registrations: regs})
}

func TestDispatch_RoutesByEventType(t *testing.T) {
	var seen []string
	record := func(_ context.Context, evt messaging.Event) error {
		seen = append(seen, evt.Type)
		return nil
	}
	e := newEngine(messaging.Noop("sales.events"),
		HandlerRegistration{EventType: "order.settled", Handler: record},
		HandlerRegistration{EventType: "order.deleted", Handler: record},
		HandlerRegistration{EventType: "", Handler: record},
	)

	require.NoError(t, e.Dispatch(context.Background(), message(t, "order.settled")))
	require.NoError(t, e.Dispatch(context.Background(), message(t, "order.deleted")))
	require.NoError(t, e.Dispatch(context.Background(), message(t, "member.joined")))

	assert.Equal(t, []string{"order.settled", "order.deleted"}, seen)
}

func TestDispatch_DropsUndecodableAndSurfacesHandlerErrors(t *testing.T) {
	boom := errors.New("boom")
	e := newEngine(messaging.Noop("sales.events"),
		HandlerRegistration{EventType: "order.settled", Handler: func(context.Context, messaging.Event) error { return boom }},
	)

	assert.NoError(t, e.Dispatch(context.Background(), messaging.Message{Value: []byte("not json")}))
	assert.NoError(t, e.Dispatch(context.Background(), messaging.Message{Value: []byte(`{"id":"1"}`)}))
	assert.ErrorIs(t, e.Dispatch(context.Background(), message(t, "order.settled")), boom)
}

type chanClient struct {
	messages chan messaging.Message
}

func (c *chanClient) Publish(context.Context, []byte, []byte) error { return nil }

func (c *chanClient) Consume(ctx context.Context, handler messaging.Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-c.messages:
			_ = handler(ctx, msg)
		}
	}
}

func (c *chanClient) Topic() string { return "sales.events" }

func TestEngine_ConsumesUntilStopped(t *testing.T) {
	client := &chanClient{messages: make(chan messaging.Message, 1)}

	handled := make(chan struct{})
	e := newEngine(client, HandlerRegistration{EventType: "order.settled", Handler: func(context.Context, messaging.Event) error {
		close(handled)
		return nil
	}})

	lc := fxtest.NewLifecycle(t)
	lc.Append(hook(e))
	lc.RequireStart()

	client.messages <- message(t, "order.settled")
	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not handled")
	}

	lc.RequireStop()
}

func TestEngine_DisabledDoesNotStart(t *testing.T) {
	e := newEngine(messaging.Noop("sales.events"))
	e.cfg.Messaging.Workers.Enabled = false

	require.NoError(t, e.start(context.Background()))
	assert.Nil(t, e.cancel)
	require.NoError(t, e.stop(context.Background()))
}

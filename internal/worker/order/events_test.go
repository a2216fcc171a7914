package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Additional-Code/tillpos/internal/entity"
	"github.com/Additional-Code/tillpos/internal/messaging"
	ordersvc "github.com/Additional-Code/tillpos/internal/service/order"
)

func TestOrderSettledHandler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	reg := NewOrderSettledHandler(zap.New(core))
	assert.Equal(t, ordersvc.EventOrderSettled, reg.EventType)

	at := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	evt, err := messaging.NewEvent(ordersvc.EventOrderSettled, at, ordersvc.OrderSettledEvent{
		OrderID:       3,
		InvoiceNo:     "INV-100003",
		GrandTotal:    decimal.RequireFromString("990"),
		Discount:      decimal.RequireFromString("110"),
		PaymentMethod: entity.PaymentCash,
		Staff:         "Kamal",
		ItemCount:     3,
		SettledAt:     at,
	})
	require.NoError(t, err)

	require.NoError(t, reg.Handler(context.Background(), evt))

	entries := logs.FilterMessage("order settled").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "INV-100003", fields["invoice_no"])
	assert.Equal(t, "990.00", fields["grand_total"])
	assert.Equal(t, "Cash", fields["payment_method"])
}

func TestOrderDeletedHandler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	reg := NewOrderDeletedHandler(zap.New(core))

	evt, err := messaging.NewEvent(ordersvc.EventOrderDeleted, time.Now(), ordersvc.OrderDeletedEvent{OrderID: 8})
	require.NoError(t, err)
	require.NoError(t, reg.Handler(context.Background(), evt))

	entries := logs.FilterMessage("order deleted").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, int64(8), entries[0].ContextMap()["order_id"])
}

func TestHandlersRejectBadPayload(t *testing.T) {
	evt := messaging.Event{ID: "x", Type: ordersvc.EventOrderSettled, Payload: []byte(`"not an object"`)}

	err := NewOrderSettledHandler(zap.NewNop()).Handler(context.Background(), evt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order.settled")
}

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-ledger/internal/application/order"
)

func TestStockChangedMessages_LlaveYPayload(t *testing.T) {
	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	msgs, err := stockChangedMessages("inventory.stock-changed", []order.StockChangedEvent{{
		EventID:         "ev-1",
		ProductID:       42,
		ProductName:     "Widget",
		OrderNumber:     "ORD-2026-10-001",
		Action:          "apply",
		TransactionType: "inbound",
		QuantityChange:  15,
		NewQuantity:     15,
		UnitPrice:       decimal.RequireFromString("9.50"),
		OccurredAt:      at,
	}})
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	m := msgs[0]
	assert.Equal(t, "inventory.stock-changed", m.Topic)
	assert.Equal(t, "42", string(m.Key), "la llave es el id del producto")
	assert.Equal(t, at, m.Time)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(m.Value, &decoded))
	assert.Equal(t, "Widget", decoded["product_name"])
	assert.Equal(t, "9.5", decoded["unit_price"])
	assert.EqualValues(t, 15, decoded["quantity_change"])
}

func TestLowStockMessages_Headers(t *testing.T) {
	msgs, err := lowStockMessages("inventory.low-stock", []order.LowStockEvent{{EventID: "ev-2", ProductID: 7, Quantity: 1, MinStockLevel: 5}})
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	headers := map[string]string{}
	for _, h := range msgs[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "inventory.low_stock", headers["event_type"])
	assert.Equal(t, "ev-2", headers["event_id"])
}

func TestPublisher_SinEventosNoEscribe(t *testing.T) {
	// sin brokers reales: una lista vacía nunca debe tocar la red
	p := NewStockEventPublisher([]string{"127.0.0.1:1"}, "a", "b")
	t.Cleanup(func() { _ = p.Close() })

	assert.NoError(t, p.PublishStockChanged(context.Background(), nil))
	assert.NoError(t, p.PublishLowStock(context.Background(), nil))
}

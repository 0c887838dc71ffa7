package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/wms-ledger/internal/application/order"
)

// StockEventPublisher publica eventos de stock en Kafka. La llave del mensaje es el id del
// producto, así los eventos de un mismo producto conservan el orden dentro de su partición.
type StockEventPublisher struct {
	writer        *kafka.Writer
	stockTopic    string
	lowStockTopic string
}

var _ order.StockEventPublisher = (*StockEventPublisher)(nil)

// NewStockEventPublisher crea el writer. El tópico va en cada mensaje, no en el writer.
func NewStockEventPublisher(brokers []string, stockTopic, lowStockTopic string) *StockEventPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		BatchSize:              100,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &StockEventPublisher{writer: w, stockTopic: stockTopic, lowStockTopic: lowStockTopic}
}

func (p *StockEventPublisher) PublishStockChanged(ctx context.Context, events []order.StockChangedEvent) error {
	msgs, err := stockChangedMessages(p.stockTopic, events)
	if err != nil {
		return err
	}
	return p.write(ctx, msgs)
}

func (p *StockEventPublisher) PublishLowStock(ctx context.Context, events []order.LowStockEvent) error {
	msgs, err := lowStockMessages(p.lowStockTopic, events)
	if err != nil {
		return err
	}
	return p.write(ctx, msgs)
}

// Close vacía los lotes pendientes.
func (p *StockEventPublisher) Close() error {
	return p.writer.Close()
}

func (p *StockEventPublisher) write(ctx context.Context, msgs []kafka.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func stockChangedMessages(topic string, events []order.StockChangedEvent) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("marshal stock event: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Topic: topic,
			Key:   []byte(strconv.FormatInt(ev.ProductID, 10)),
			Value: payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte("inventory.stock_changed")},
				{Key: "event_id", Value: []byte(ev.EventID)},
			},
			Time: ev.OccurredAt,
		})
	}
	return msgs, nil
}

func lowStockMessages(topic string, events []order.LowStockEvent) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("marshal low stock event: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Topic: topic,
			Key:   []byte(strconv.FormatInt(ev.ProductID, 10)),
			Value: payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte("inventory.low_stock")},
				{Key: "event_id", Value: []byte(ev.EventID)},
			},
			Time: ev.OccurredAt,
		})
	}
	return msgs, nil
}

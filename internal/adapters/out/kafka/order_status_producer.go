// Package kafka publishes delivery status changes to the order subsystem.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/IBM/sarama"
)

// OrderChangedEvent is the order-changed message.
type OrderChangedEvent struct {
	OrderID    string    `json:"order_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// OrderStatusProducer implements ports.OrderStatusPublisher on a sarama SyncProducer.
// Messages are keyed by order id so one order's updates stay in partition order.
type OrderStatusProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewOrderStatusProducer(brokers []string, topic string) (*OrderStatusProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewOrderStatusProducerFrom(producer, topic), nil
}

// NewOrderStatusProducerFrom wraps an existing producer.
func NewOrderStatusProducerFrom(producer sarama.SyncProducer, topic string) *OrderStatusProducer {
	return &OrderStatusProducer{producer: producer, topic: topic}
}

func (p *OrderStatusProducer) PublishOrderStatus(
	ctx context.Context,
	orderID kernel.UUID,
	status order.Status,
	at time.Time,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(OrderChangedEvent{
		OrderID:    orderID.String(),
		Status:     status.String(),
		OccurredAt: at.UTC(),
	})
	if err != nil {
		return err
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(orderID.String()),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: at.UTC(),
	})
	if err != nil {
		return fmt.Errorf("publish order status %s for %s: %w", status, orderID, err)
	}
	return nil
}

func (p *OrderStatusProducer) Close() error {
	return p.producer.Close()
}

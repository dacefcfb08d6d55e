// Package kafka consumes order-paid events and turns them into dispatch requests.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/IBM/sarama"
)

// LocationPayload is a point in decimal degrees.
type LocationPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OrderPaidEvent is the order-paid message. Only order_id is mandatory; the snapshot
// fields refresh the local order projection when present.
type OrderPaidEvent struct {
	OrderID  string           `json:"order_id"`
	Pickup   *LocationPayload `json:"pickup,omitempty"`
	Dropoff  *LocationPayload `json:"dropoff,omitempty"`
	Total    *int64           `json:"total,omitempty"`
	Currency string           `json:"currency,omitempty"`
}

// PaidOrderRecorder is the use case invoked for every event.
type PaidOrderRecorder interface {
	Handle(ctx context.Context, command commands.RecordPaidOrderCommand) (commands.DispatchResult, error)
}

// OrderPaidConsumer wraps a sarama consumer group on the order-paid topic.
type OrderPaidConsumer struct {
	group    sarama.ConsumerGroup
	topic    string
	recorder PaidOrderRecorder
	timeout  time.Duration
	logger   *slog.Logger
}

// NewOrderPaidConsumer joins groupID on topic. timeout bounds the handling of one message.
func NewOrderPaidConsumer(
	brokers []string,
	groupID, topic string,
	recorder PaidOrderRecorder,
	timeout time.Duration,
	logger *slog.Logger,
) (*OrderPaidConsumer, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}

	return newOrderPaidConsumer(group, topic, recorder, timeout, logger), nil
}

func newOrderPaidConsumer(
	group sarama.ConsumerGroup,
	topic string,
	recorder PaidOrderRecorder,
	timeout time.Duration,
	logger *slog.Logger,
) *OrderPaidConsumer {
	return &OrderPaidConsumer{
		group:    group,
		topic:    topic,
		recorder: recorder,
		timeout:  timeout,
		logger:   logger.With("component", "order_paid_consumer", "topic", topic),
	}
}

// Run consumes until ctx is cancelled, rejoining the group after rebalances and errors.
func (c *OrderPaidConsumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			c.logger.Warn("consumer group error", "error", err)
		}
	}()

	for {
		if err := c.group.Consume(ctx, []string{c.topic}, c); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("consume failed", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *OrderPaidConsumer) Close() error {
	return c.group.Close()
}

func (c *OrderPaidConsumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (c *OrderPaidConsumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim handles messages in partition order. Malformed or invalid events are
// logged and skipped; any other failure leaves the offset unmarked so the message is
// redelivered.
func (c *OrderPaidConsumer) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if err := c.handle(sess.Context(), msg); err != nil {
			if isPermanent(err) {
				c.logger.Warn("order-paid event skipped",
					"partition", msg.Partition, "offset", msg.Offset, "error", err)
				sess.MarkMessage(msg, "")
				continue
			}
			c.logger.Error("order-paid event failed, will retry",
				"partition", msg.Partition, "offset", msg.Offset, "error", err)
			return err
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}

func (c *OrderPaidConsumer) handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var event OrderPaidEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("order-paid payload", err)
	}

	cmd, err := event.toCommand()
	if err != nil {
		return err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := c.recorder.Handle(ctx, cmd)
	if err != nil {
		return err
	}

	c.logger.Info("order-paid event dispatched",
		"order_id", event.OrderID,
		"assignment_id", result.Assignment.ID().String(),
		"outcome", string(result.Outcome))
	return nil
}

func (e OrderPaidEvent) toCommand() (commands.RecordPaidOrderCommand, error) {
	orderID, err := kernel.UUIDFromString(strings.TrimSpace(e.OrderID))
	if err != nil {
		return commands.RecordPaidOrderCommand{}, err
	}

	pickup, err := e.Pickup.toDomain()
	if err != nil {
		return commands.RecordPaidOrderCommand{}, err
	}
	dropoff, err := e.Dropoff.toDomain()
	if err != nil {
		return commands.RecordPaidOrderCommand{}, err
	}

	return commands.NewRecordPaidOrderCommand(orderID, pickup, dropoff, e.Total, e.Currency)
}

func (p *LocationPayload) toDomain() (*kernel.Location, error) {
	if p == nil {
		return nil, nil //nolint:nilnil // optional location
	}
	loc, err := kernel.NewLocation(p.Lat, p.Lng)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// isPermanent reports errors that redelivery cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, errs.ErrValueIsInvalid) ||
		errors.Is(err, errs.ErrValueIsRequired) ||
		errors.Is(err, errs.ErrValueIsOutOfRange) ||
		errors.Is(err, errs.ErrObjectNotFound) ||
		errors.Is(err, order.ErrUnresolvableLocation)
}

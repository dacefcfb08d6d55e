package kafka_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"dispatch/internal/adapters/out/kafka"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusProducer_PublishesKeyedEvent(t *testing.T) {
	// Given
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	mock := mocks.NewSyncProducer(t, cfg)
	orderID := kernel.NewUUID()
	at := time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)

	var got kafka.OrderChangedEvent
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		return json.Unmarshal(value, &got)
	})
	producer := kafka.NewOrderStatusProducerFrom(mock, "order.changed")

	// When
	err := producer.PublishOrderStatus(t.Context(), orderID, order.InTransit, at)

	// Then
	require.NoError(t, err)
	assert.Equal(t, orderID.String(), got.OrderID)
	assert.Equal(t, "in_transit", got.Status)
	assert.True(t, got.OccurredAt.Equal(at))
	require.NoError(t, producer.Close())
}

func TestOrderStatusProducer_BrokerFailure_IsReturned(t *testing.T) {
	// Given
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	mock := mocks.NewSyncProducer(t, cfg)
	brokerDown := errors.New("broker down")
	mock.ExpectSendMessageAndFail(brokerDown)
	producer := kafka.NewOrderStatusProducerFrom(mock, "order.changed")

	// When
	err := producer.PublishOrderStatus(t.Context(), kernel.NewUUID(), order.Delivered, time.Now())

	// Then
	require.ErrorIs(t, err, brokerDown)
	require.NoError(t, producer.Close())
}

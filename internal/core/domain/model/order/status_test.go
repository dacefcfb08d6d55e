package order_test

import (
	"testing"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForAssignment(t *testing.T) {
	tests := []struct {
		in     assignment.Status
		want   order.Status
		wantOK bool
	}{
		{assignment.Queued, "", false},
		{assignment.Offered, "", false},
		{assignment.Accepted, order.Preparing, true},
		{assignment.PickedUp, order.Dispatched, true},
		{assignment.EnRoute, order.InTransit, true},
		{assignment.Delivered, order.Delivered, true},
		{assignment.Cancelled, order.DeliveryCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			got, ok := order.StatusForAssignment(tt.in)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, err := order.ParseStatus("in_transit")
	require.NoError(t, err)
	assert.Equal(t, order.InTransit, s)

	_, err = order.ParseStatus("shipped")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestStatus_IsDispatchable(t *testing.T) {
	assert.True(t, order.Paid.IsDispatchable())
	assert.True(t, order.DeliveryCancelled.IsDispatchable())
	assert.False(t, order.Preparing.IsDispatchable())
	assert.False(t, order.Delivered.IsDispatchable())
}

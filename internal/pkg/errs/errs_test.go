package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError_Message(t *testing.T) {
	id := kernel.NewUUID()
	lookupFailed := errors.New("connection reset by peer")

	tests := []struct {
		name string
		err  *errs.ObjectNotFoundError
		want string
	}{
		{
			name: "assignment by kernel id",
			err:  errs.NewObjectNotFoundError("assignment", id),
			want: "object not found: " + id.String(),
		},
		{
			name: "active assignment for order",
			err:  errs.NewObjectNotFoundError("active assignment for order", id.String()),
			want: "object not found: " + id.String(),
		},
		{
			name: "rider lookup with cause",
			err:  errs.NewObjectNotFoundErrorWithCause("rider", id, lookupFailed),
			want: "object not found: param is: rider, ID is: " + id.String() +
				" (cause: connection reset by peer)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, errs.ErrObjectNotFound)
		})
	}
}

func TestValueErrors_Message(t *testing.T) {
	badScheme := errors.New(`unsupported scheme "ftp"`)

	tests := []struct {
		name     string
		err      error
		want     string
		sentinel error
	}{
		{
			name:     "required phone",
			err:      errs.NewValueIsRequiredError("phone"),
			want:     "value is required: phone",
			sentinel: errs.ErrValueIsRequired,
		},
		{
			name:     "required identity with cause",
			err:      errs.NewValueIsRequiredErrorWithCause("identity", errors.New("client ip or device id must be provided")),
			want:     "value is required: identity (cause: client ip or device id must be provided)",
			sentinel: errs.ErrValueIsRequired,
		},
		{
			name:     "invalid order status",
			err:      errs.NewValueIsInvalidError("order status"),
			want:     "value is invalid: order status",
			sentinel: errs.ErrValueIsInvalid,
		},
		{
			name:     "invalid proof url with cause",
			err:      errs.NewValueIsInvalidErrorWithCause("proofUrl", badScheme),
			want:     `value is invalid: proofUrl (cause: unsupported scheme "ftp")`,
			sentinel: errs.ErrValueIsInvalid,
		},
		{
			name:     "stale assignment version",
			err:      errs.NewVersionIsInvalidError("assignment"),
			want:     "version is invalid: assignment",
			sentinel: errs.ErrVersionIsInvalid,
		},
		{
			name:     "stale assignment version with cause",
			err:      errs.NewVersionIsInvalidErrorWithCause("assignment", errors.New("accepted concurrently")),
			want:     "version is invalid: assignment (cause: accepted concurrently)",
			sentinel: errs.ErrVersionIsInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("latitude keeps typed bounds", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("latitude", 91.5, -90.0, 90.0)

		assert.Equal(t, "latitude", err.ParamName)
		assert.InDelta(t, 91.5, err.Value, 0)
		assert.InDelta(t, -90.0, err.Min, 0)
		assert.InDelta(t, 90.0, err.Max, 0)
		assert.Equal(t, "value is invalid: 91.5 is latitude, min value is -90, max value is 90", err.Error())
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("rating with cause", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeErrorWithCause("rating", 6, 1, 5, errors.New("five star scale"))

		assert.Equal(t,
			"value is invalid: 6 is rating, min value is 1, max value is 5 (cause: five star scale)",
			err.Error())
	})

	t.Run("client supplied value stays on one line", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("notes", "left at\r\ngate\nB", 0, 280)

		assert.Contains(t, err.Error(), "left at gate B")
		assert.NotContains(t, err.Error(), "\n")
		assert.NotContains(t, err.Error(), "\r")
	})
}

func TestErrors_SurviveWrapping(t *testing.T) {
	// Given
	id := kernel.NewUUID()
	wrapped := fmt.Errorf("apply transition: %w", errs.NewObjectNotFoundError("assignment", id))

	// When
	var notFound *errs.ObjectNotFoundError
	ok := errors.As(wrapped, &notFound)

	// Then
	require.True(t, ok)
	assert.Equal(t, "assignment", notFound.ParamName)
	assert.Equal(t, id, notFound.ID)
	require.ErrorIs(t, wrapped, errs.ErrObjectNotFound)
	require.NotErrorIs(t, wrapped, errs.ErrVersionIsInvalid)
}

func TestSentinels_AreDistinct(t *testing.T) {
	sentinels := []error{
		errs.ErrObjectNotFound,
		errs.ErrValueIsInvalid,
		errs.ErrValueIsOutOfRange,
		errs.ErrValueIsRequired,
		errs.ErrVersionIsInvalid,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}

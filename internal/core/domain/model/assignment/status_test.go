package assignment_test

import (
	"testing"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"queued", "offered", "accepted", "picked_up", "en_route", "delivered", "cancelled"} {
		status, err := assignment.ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, status.String())
	}

	_, err := assignment.ParseStatus("lost")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestStatus_CanTransitionTo(t *testing.T) {
	allowed := map[assignment.Status][]assignment.Status{
		assignment.Queued:   {assignment.Cancelled},
		assignment.Offered:  {assignment.Accepted, assignment.Cancelled},
		assignment.Accepted: {assignment.PickedUp, assignment.Cancelled},
		assignment.PickedUp: {assignment.EnRoute, assignment.Cancelled},
		assignment.EnRoute:  {assignment.Delivered, assignment.Cancelled},
	}
	all := []assignment.Status{
		assignment.Queued, assignment.Offered, assignment.Accepted, assignment.PickedUp,
		assignment.EnRoute, assignment.Delivered, assignment.Cancelled,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatus_ValidateTransition(t *testing.T) {
	err := assignment.Accepted.ValidateTransition(assignment.Delivered)

	require.ErrorIs(t, err, assignment.ErrInvalidTransition)
	var transitionErr *assignment.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, assignment.Accepted, transitionErr.From)
	assert.Equal(t, assignment.Delivered, transitionErr.To)
	assert.Equal(t, "invalid transition: cannot move from accepted to delivered", err.Error())
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, assignment.Delivered.IsTerminal())
	assert.True(t, assignment.Cancelled.IsTerminal())
	for _, s := range assignment.NonTerminalStatuses() {
		assert.False(t, s.IsTerminal(), s)
	}
}

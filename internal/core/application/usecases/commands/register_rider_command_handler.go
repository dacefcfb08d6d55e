package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/rider"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// RegisterRiderResult is the session after registration.
type RegisterRiderResult struct {
	Rider *rider.Rider
	// Resumed is true when the device already had a session.
	Resumed bool
}

// RegisterRiderCommandHandler creates a rider session keyed by the device identity,
// or refreshes the profile of an existing one.
type RegisterRiderCommandHandler struct {
	uowFactory RiderUoWFactory
	feed       ChangeFeed
	clock      ports.Clock
}

func NewRegisterRiderCommandHandler(uowFactory RiderUoWFactory, feed ChangeFeed, clock ports.Clock) RegisterRiderCommandHandler {
	return RegisterRiderCommandHandler{
		uowFactory: uowFactory,
		feed:       feed,
		clock:      clock,
	}
}

// Handle registers or resumes the session. A new rider starts available; a resumed
// rider keeps its availability so an in-flight delivery is not disturbed.
func (h RegisterRiderCommandHandler) Handle(ctx context.Context, command RegisterRiderCommand) (RegisterRiderResult, error) {
	if err := command.Validate(); err != nil {
		return RegisterRiderResult{}, err
	}

	now := h.clock.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return RegisterRiderResult{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	riders := uow.RiderRepository()

	existing, err := riders.Get(ctx, command.Identity().SessionID())
	if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		return RegisterRiderResult{}, err
	}

	var result RegisterRiderResult
	if existing != nil {
		if err = existing.Resume(command.Name(), command.Phone(), command.Location(), now); err != nil {
			return RegisterRiderResult{}, err
		}
		if err = riders.UpdateProfile(ctx, existing); err != nil {
			return RegisterRiderResult{}, err
		}
		result = RegisterRiderResult{Rider: existing, Resumed: true}
	} else {
		created, err := rider.NewRider(command.Identity(), command.Name(), command.Phone(), command.Location(), now)
		if err != nil {
			return RegisterRiderResult{}, err
		}
		if err = riders.Add(ctx, created); err != nil {
			return RegisterRiderResult{}, err
		}
		result = RegisterRiderResult{Rider: created}
	}

	if err = uow.Commit(ctx); err != nil {
		return RegisterRiderResult{}, err
	}

	if loc := result.Rider.Location(); loc != nil {
		h.feed.RiderMoved(ctx, ports.RiderPositionChange{
			RiderID:    result.Rider.ID(),
			Location:   *loc,
			Available:  result.Rider.IsAvailable(),
			OccurredAt: result.Rider.LastSeenAt(),
		})
	}

	return result, nil
}

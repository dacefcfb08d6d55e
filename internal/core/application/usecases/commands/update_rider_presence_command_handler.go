package commands

import (
	"context"

	"dispatch/internal/core/domain/model/rider"
	"dispatch/internal/core/ports"
)

// UpdateRiderPresenceResult describes what a heartbeat changed.
type UpdateRiderPresenceResult struct {
	Rider *rider.Rider
	// Applied is false when a newer heartbeat had already been stored.
	Applied bool
	// AvailabilityIgnored is true when the rider asked to go online while still
	// holding an active assignment.
	AvailabilityIgnored bool
}

// UpdateRiderPresenceCommandHandler records heartbeats.
//
// Business rules:
//   - Position and lastSeenAt are last-write-wins keyed by the heartbeat time
//   - Going online is refused while the rider owns a non-terminal assignment
//   - Going offline is always honoured
type UpdateRiderPresenceCommandHandler struct {
	uowFactory RiderUoWFactory
	feed       ChangeFeed
	clock      ports.Clock
}

func NewUpdateRiderPresenceCommandHandler(
	uowFactory RiderUoWFactory,
	feed ChangeFeed,
	clock ports.Clock,
) UpdateRiderPresenceCommandHandler {
	return UpdateRiderPresenceCommandHandler{
		uowFactory: uowFactory,
		feed:       feed,
		clock:      clock,
	}
}

func (h UpdateRiderPresenceCommandHandler) Handle(
	ctx context.Context,
	command UpdateRiderPresenceCommand,
) (UpdateRiderPresenceResult, error) {
	if err := command.Validate(); err != nil {
		return UpdateRiderPresenceResult{}, err
	}

	now := h.clock.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return UpdateRiderPresenceResult{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	riders := uow.RiderRepository()

	if _, err := riders.Get(ctx, command.RiderID()); err != nil {
		return UpdateRiderPresenceResult{}, err
	}

	var result UpdateRiderPresenceResult
	applied, err := riders.UpdatePresence(ctx, command.RiderID(), command.Location(), now)
	if err != nil {
		return UpdateRiderPresenceResult{}, err
	}
	result.Applied = applied

	if available := command.Available(); available != nil {
		if *available {
			online, err := riders.GoOnline(ctx, command.RiderID())
			if err != nil {
				return UpdateRiderPresenceResult{}, err
			}
			result.AvailabilityIgnored = !online
		} else if err = riders.GoOffline(ctx, command.RiderID()); err != nil {
			return UpdateRiderPresenceResult{}, err
		}
	}

	if result.Rider, err = riders.Get(ctx, command.RiderID()); err != nil {
		return UpdateRiderPresenceResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return UpdateRiderPresenceResult{}, err
	}

	if applied {
		h.feed.RiderMoved(ctx, ports.RiderPositionChange{
			RiderID:    command.RiderID(),
			Location:   command.Location(),
			Available:  result.Rider.IsAvailable(),
			OccurredAt: now,
		})
	}

	return result, nil
}

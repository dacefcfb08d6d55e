package http

import (
	"dispatch/internal/adapters/in/http/openapi"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/rider"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

func toLocation(loc kernel.Location) openapi.Location {
	return openapi.Location{Lat: loc.Lat(), Lng: loc.Lng()}
}

func fromLocation(loc *openapi.Location) (*kernel.Location, error) {
	if loc == nil {
		return nil, nil //nolint:nilnil // optional location
	}
	l, err := kernel.NewLocation(loc.Lat, loc.Lng)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func optionalUUID(id *kernel.UUID) *openapi_types.UUID {
	if id == nil {
		return nil
	}
	raw := id.Google()
	return &raw
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toAssignment(s assignment.Snapshot) openapi.Assignment {
	dto := openapi.Assignment{
		Id:                       s.ID.Google(),
		OrderId:                  s.OrderID.Google(),
		RiderId:                  optionalUUID(s.RiderID),
		Status:                   openapi.AssignmentStatus(s.Status.String()),
		Pickup:                   toLocation(s.Pickup),
		Dropoff:                  toLocation(s.Dropoff),
		DistanceKm:               s.DistanceKm,
		EstimatedDurationMinutes: s.DurationMinutes,
		OfferedAt:                s.OfferedAt,
		AcceptedAt:               s.AcceptedAt,
		CompletedAt:              s.CompletedAt,
		CreatedAt:                s.CreatedAt,
		UpdatedAt:                s.UpdatedAt,
		Version:                  s.Version,
	}
	if c := s.Completion; c != nil {
		proof, notes := c.ProofURL(), c.Notes()
		dto.ProofOfDeliveryUrl = &proof
		if notes != "" {
			dto.Notes = &notes
		}
		dto.CustomerRating = c.Rating()
	}
	return dto
}

func toEvent(e assignment.Event) openapi.AssignmentEvent {
	return openapi.AssignmentEvent{
		Id:              e.ID.Google(),
		Type:            string(e.Type),
		From:            optionalString(string(e.From)),
		To:              string(e.To),
		RiderId:         optionalUUID(e.RiderID),
		PreviousRiderId: optionalUUID(e.PreviousRiderID),
		OccurredAt:      e.OccurredAt,
	}
}

func toRider(r *rider.Rider) openapi.Rider {
	dto := openapi.Rider{
		Id:         r.ID().Google(),
		Name:       r.Name(),
		Phone:      r.Phone(),
		LastSeenAt: r.LastSeenAt(),
		Available:  r.IsAvailable(),
	}
	if loc := r.Location(); loc != nil {
		l := toLocation(*loc)
		dto.Location = &l
	}
	return dto
}

func toAvailableRider(r queries.FindAvailableRidersQueryResponse) openapi.AvailableRider {
	return openapi.AvailableRider{
		RiderId:    r.RiderID.Google(),
		Name:       r.Name,
		Location:   toLocation(r.Location),
		DistanceKm: r.DistanceKm,
		LastSeenAt: r.LastSeenAt,
	}
}

// Package riderrepo persists rider sessions. Availability is only ever changed by
// conditional UPDATE statements so concurrent dispatchers cannot claim the same rider.
package riderrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/rider"

	"github.com/google/uuid"
)

// RiderDTO is the riders table row.
type RiderDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Fingerprint string    `gorm:"type:varchar(128);uniqueIndex"`
	Name        string    `gorm:"type:varchar(255)"`
	Phone       string    `gorm:"type:varchar(32)"`
	Lat         *float64  `gorm:"type:double precision"`
	Lng         *float64  `gorm:"type:double precision"`
	LastSeenAt  time.Time
	Available   bool `gorm:"not null;default:false"`
}

func (RiderDTO) TableName() string {
	return "riders"
}

func fromDomain(r *rider.Rider) RiderDTO {
	dto := RiderDTO{
		ID:          r.ID().Google(),
		Fingerprint: r.Identity().Fingerprint(),
		Name:        r.Name(),
		Phone:       r.Phone(),
		LastSeenAt:  r.LastSeenAt(),
		Available:   r.IsAvailable(),
	}
	if loc := r.Location(); loc != nil {
		lat, lng := loc.Lat(), loc.Lng()
		dto.Lat, dto.Lng = &lat, &lng
	}
	return dto
}

func toDomain(dto RiderDTO) (*rider.Rider, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	identity, err := rider.IdentityFromFingerprint(dto.Fingerprint)
	if err != nil {
		return nil, err
	}

	var location *kernel.Location
	if dto.Lat != nil && dto.Lng != nil {
		loc, locErr := kernel.NewLocation(*dto.Lat, *dto.Lng)
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
	}

	return rider.RestoreRider(id, identity, dto.Name, dto.Phone, location, dto.LastSeenAt, dto.Available)
}

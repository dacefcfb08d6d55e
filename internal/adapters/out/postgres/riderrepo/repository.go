package riderrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/rider"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// activeExcluded are the assignment statuses that no longer hold a rider.
var activeExcluded = []string{assignment.Delivered.String(), assignment.Cancelled.String()}

// GormRiderRepository implements ports.RiderRepository using GORM.
type GormRiderRepository struct {
	db *gorm.DB
}

func NewGormRiderRepository(db *gorm.DB) *GormRiderRepository {
	return &GormRiderRepository{db: db}
}

// Add inserts a newly registered rider.
func (r *GormRiderRepository) Add(ctx context.Context, aggregate *rider.Rider) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Get retrieves a rider by ID.
func (r *GormRiderRepository) Get(ctx context.Context, id kernel.UUID) (*rider.Rider, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RiderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("rider", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// UpdateProfile writes everything except availability.
func (r *GormRiderRepository) UpdateProfile(ctx context.Context, aggregate *rider.Rider) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&RiderDTO{}).
		Where("id = ?", dto.ID).
		Select("fingerprint", "name", "phone", "lat", "lng", "last_seen_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("rider", aggregate.ID().String())
	}
	return nil
}

// UpdatePresence stores a heartbeat unless a newer one is already recorded.
func (r *GormRiderRepository) UpdatePresence(
	ctx context.Context,
	id kernel.UUID,
	location kernel.Location,
	seenAt time.Time,
) (bool, error) {
	if err := errors.Join(id.Validate(), location.Validate()); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).
		Model(&RiderDTO{}).
		Where("id = ? AND last_seen_at <= ?", id.Google(), seenAt.UTC()).
		Updates(map[string]any{
			"lat":          location.Lat(),
			"lng":          location.Lng(),
			"last_seen_at": seenAt.UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	return false, r.ensureExists(ctx, id)
}

// Claim flips an available rider to unavailable in one statement. A rider still
// holding a non-terminal assignment is never claimed, even if flagged available.
func (r *GormRiderRepository) Claim(ctx context.Context, id kernel.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE riders SET available = FALSE
		WHERE id = ?
		  AND available
		  AND NOT EXISTS (
			SELECT 1 FROM assignments a
			WHERE a.rider_id = riders.id
			  AND a.status NOT IN ?
		  )`, id.Google(), activeExcluded)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	return false, r.ensureExists(ctx, id)
}

func (r *GormRiderRepository) Release(ctx context.Context, id kernel.UUID) error {
	return r.setAvailable(ctx, id, true)
}

// GoOnline makes the rider available unless it still holds a non-terminal assignment.
//
// The rider row is locked first and the assignment check runs as its own statement.
// Under READ COMMITTED a single UPDATE ... NOT EXISTS that waited on a concurrent
// Claim would re-evaluate the subquery against its old snapshot and miss the
// assignment that Claim's transaction inserted.
func (r *GormRiderRepository) GoOnline(ctx context.Context, id kernel.UUID) (bool, error) {
	if err := id.Validate(); err != nil {
		return false, err
	}

	var locked RiderDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&locked, "id = ?", id.Google()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, errs.NewObjectNotFoundError("rider", id.String())
		}
		return false, err
	}

	var active int64
	err = r.db.WithContext(ctx).
		Table("assignments").
		Where("rider_id = ? AND status NOT IN ?", id.Google(), activeExcluded).
		Count(&active).Error
	if err != nil {
		return false, err
	}
	if active > 0 {
		return false, nil
	}

	return true, r.setAvailable(ctx, id, true)
}

func (r *GormRiderRepository) GoOffline(ctx context.Context, id kernel.UUID) error {
	return r.setAvailable(ctx, id, false)
}

// FindAvailable returns available riders with a position and a heartbeat at or after freshSince.
func (r *GormRiderRepository) FindAvailable(ctx context.Context, freshSince time.Time) ([]*rider.Rider, error) {
	var dtos []RiderDTO
	err := r.db.WithContext(ctx).
		Where("available AND lat IS NOT NULL AND lng IS NOT NULL AND last_seen_at >= ?", freshSince.UTC()).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	riders := make([]*rider.Rider, 0, len(dtos))
	for _, dto := range dtos {
		rd, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		riders = append(riders, rd)
	}
	return riders, nil
}

func (r *GormRiderRepository) setAvailable(ctx context.Context, id kernel.UUID, available bool) error {
	result := r.db.WithContext(ctx).
		Model(&RiderDTO{}).
		Where("id = ?", id.Google()).
		Update("available", available)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("rider", id.String())
	}
	return nil
}

// ensureExists tells a rejected conditional update apart from a missing rider.
func (r *GormRiderRepository) ensureExists(ctx context.Context, id kernel.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&RiderDTO{}).Where("id = ?", id.Google()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("rider", id.String())
	}
	return nil
}

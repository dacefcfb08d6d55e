package assignmentrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ActiveOrderIndex is the partial unique index allowing one non-terminal assignment per order.
const ActiveOrderIndex = "ux_assignments_active_order"

// ActiveRiderIndex is the partial unique index allowing one non-terminal assignment per rider.
const ActiveRiderIndex = "ux_assignments_active_rider"

const uniqueViolation = "23505"

var terminal = []string{assignment.Delivered.String(), assignment.Cancelled.String()}

// GormAssignmentRepository implements ports.AssignmentRepository using GORM.
type GormAssignmentRepository struct {
	db *gorm.DB
}

func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// Add inserts a new assignment at version 1.
func (r *GormAssignmentRepository) Add(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = 1
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return mapConflict(err)
	}

	aggregate.MarkPersisted(1)
	return nil
}

// Update writes the aggregate only if the stored row still has the status and version it was read with.
func (r *GormAssignmentRepository) Update(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	next := aggregate.Version() + 1
	dto := fromDomain(aggregate)
	dto.Version = next

	result := r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Where("id = ? AND version = ? AND status = ?",
			dto.ID, aggregate.Version(), aggregate.PersistedStatus().String()).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return mapConflict(result.Error)
	}

	if result.RowsAffected == 0 {
		if _, err := r.Get(ctx, aggregate.ID()); err != nil {
			return err
		}
		return errs.NewVersionIsInvalidError("assignment")
	}

	aggregate.MarkPersisted(next)
	return nil
}

func (r *GormAssignmentRepository) Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, errs.NewObjectNotFoundError("assignment", id.String()),
		r.db.Where("id = ?", id.Google()))
}

func (r *GormAssignmentRepository) GetActiveByOrder(
	ctx context.Context,
	orderID kernel.UUID,
) (*assignment.Assignment, error) {
	return r.first(ctx, errs.NewObjectNotFoundError("active assignment for order", orderID.String()),
		r.db.Where("order_id = ? AND status NOT IN ?", orderID.Google(), terminal))
}

func (r *GormAssignmentRepository) GetLatestByOrder(
	ctx context.Context,
	orderID kernel.UUID,
) (*assignment.Assignment, error) {
	return r.first(ctx, errs.NewObjectNotFoundError("assignment for order", orderID.String()),
		r.db.Where("order_id = ?", orderID.Google()).Order("created_at DESC"))
}

func (r *GormAssignmentRepository) GetActiveByRider(
	ctx context.Context,
	riderID kernel.UUID,
) (*assignment.Assignment, error) {
	return r.first(ctx, errs.NewObjectNotFoundError("active assignment for rider", riderID.String()),
		r.db.Where("rider_id = ? AND status NOT IN ?", riderID.Google(), terminal))
}

// FindOfferedBefore returns stale offers, oldest first.
func (r *GormAssignmentRepository) FindOfferedBefore(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*assignment.Assignment, error) {
	return r.find(ctx, limit,
		r.db.Where("status = ? AND offered_at < ?", assignment.Offered.String(), cutoff.UTC()).
			Order("offered_at ASC"))
}

func (r *GormAssignmentRepository) FindQueued(ctx context.Context, limit int) ([]*assignment.Assignment, error) {
	return r.find(ctx, limit,
		r.db.Where("status = ?", assignment.Queued.String()).Order("created_at ASC"))
}

func (r *GormAssignmentRepository) AppendEvents(ctx context.Context, events []assignment.Event) error {
	if len(events) == 0 {
		return nil
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventFromDomain(e))
	}
	return r.db.WithContext(ctx).Create(&dtos).Error
}

func (r *GormAssignmentRepository) ListEvents(
	ctx context.Context,
	assignmentID kernel.UUID,
) ([]assignment.Event, error) {
	var dtos []EventDTO
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID.Google()).
		Order("occurred_at ASC, seq ASC").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	events := make([]assignment.Event, 0, len(dtos))
	for _, dto := range dtos {
		e, err := eventToDomain(dto)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *GormAssignmentRepository) first(
	ctx context.Context,
	notFound error,
	query *gorm.DB,
) (*assignment.Assignment, error) {
	var dto AssignmentDTO
	if err := query.WithContext(ctx).First(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return toDomain(dto)
}

func (r *GormAssignmentRepository) find(
	ctx context.Context,
	limit int,
	query *gorm.DB,
) ([]*assignment.Assignment, error) {
	query = query.WithContext(ctx).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var dtos []AssignmentDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}

	result := make([]*assignment.Assignment, 0, len(dtos))
	for _, dto := range dtos {
		a, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}

// mapConflict turns violations of the partial unique indexes into port errors.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}

	switch pgErr.ConstraintName {
	case ActiveOrderIndex:
		return ports.ErrActiveAssignmentExists
	case ActiveRiderIndex:
		return ports.ErrRiderAlreadyAssigned
	default:
		return err
	}
}

package postgres

import (
	"context"
	"fmt"

	"dispatch/internal/adapters/out/postgres/assignmentrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/postgres/riderrepo"

	"gorm.io/gorm"
)

// constraints are the parts of the schema AutoMigrate cannot express.
var constraints = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + assignmentrepo.ActiveOrderIndex + `
		ON assignments (order_id)
		WHERE status NOT IN ('delivered', 'cancelled')`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + assignmentrepo.ActiveRiderIndex + `
		ON assignments (rider_id)
		WHERE rider_id IS NOT NULL AND status NOT IN ('delivered', 'cancelled')`,
	`CREATE INDEX IF NOT EXISTS ix_riders_available_seen
		ON riders (last_seen_at)
		WHERE available AND lat IS NOT NULL AND lng IS NOT NULL`,
}

// Migrate creates or updates the dispatch tables and their partial indexes.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if err := db.AutoMigrate(
		&riderrepo.RiderDTO{},
		&orderrepo.OrderDTO{},
		&assignmentrepo.AssignmentDTO{},
		&assignmentrepo.EventDTO{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply constraint: %w", err)
		}
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable/internal/models"
)

// CycleRepository persists cycles and their subject obligations.
type CycleRepository struct {
	catalog[models.Cycle]
	subjects pairTable
}

// NewCycleRepository creates a cycle repository.
func NewCycleRepository(db *sqlx.DB) *CycleRepository {
	return &CycleRepository{
		catalog:  catalog[models.Cycle]{db: db, table: "cycles"},
		subjects: pairTable{table: "cycle_subjects", left: "cycle_id", right: "subject_id"},
	}
}

// LinkSubject adds a subject obligation to the cycle.
func (r *CycleRepository) LinkSubject(ctx context.Context, cycleID, subjectID int64) error {
	return r.subjects.link(ctx, r.db, cycleID, subjectID)
}

// UnlinkSubject removes a subject obligation.
func (r *CycleRepository) UnlinkSubject(ctx context.Context, cycleID, subjectID int64) error {
	return r.subjects.unlink(ctx, r.db, cycleID, subjectID)
}

// ListByPlan returns the cycles attached to a plan.
func (r *CycleRepository) ListByPlan(ctx context.Context, planID int64) ([]models.Cycle, error) {
	const query = `
SELECT c.id, c.name, c.created_at, c.updated_at
FROM plan_cycles pc
JOIN cycles c ON c.id = pc.cycle_id
WHERE pc.plan_id = ?
ORDER BY c.name ASC`
	cycles := []models.Cycle{}
	if err := r.db.SelectContext(ctx, &cycles, r.db.Rebind(query), planID); err != nil {
		return nil, fmt.Errorf("list cycles by plan: %w", err)
	}
	return cycles, nil
}

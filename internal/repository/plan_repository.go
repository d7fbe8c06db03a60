package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable/internal/models"
)

// PlanRepository persists plans and their subject and cycle links.
type PlanRepository struct {
	catalog[models.Plan]
	subjects pairTable
	cycles   pairTable
}

// NewPlanRepository creates a plan repository.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{
		catalog:  catalog[models.Plan]{db: db, table: "plans"},
		subjects: pairTable{table: "plan_subjects", left: "plan_id", right: "subject_id"},
		cycles:   pairTable{table: "plan_cycles", left: "plan_id", right: "cycle_id"},
	}
}

// LinkSubject adds a subject to the plan.
func (r *PlanRepository) LinkSubject(ctx context.Context, planID, subjectID int64) error {
	return r.subjects.link(ctx, r.db, planID, subjectID)
}

// UnlinkSubject removes a subject from the plan.
func (r *PlanRepository) UnlinkSubject(ctx context.Context, planID, subjectID int64) error {
	return r.subjects.unlink(ctx, r.db, planID, subjectID)
}

// LinkCycle attaches a cycle to the plan.
func (r *PlanRepository) LinkCycle(ctx context.Context, planID, cycleID int64) error {
	return r.cycles.link(ctx, r.db, planID, cycleID)
}

// UnlinkCycle detaches a cycle from the plan.
func (r *PlanRepository) UnlinkCycle(ctx context.Context, planID, cycleID int64) error {
	return r.cycles.unlink(ctx, r.db, planID, cycleID)
}

// HasCycle reports whether the cycle belongs to the plan.
func (r *PlanRepository) HasCycle(ctx context.Context, planID, cycleID int64) (bool, error) {
	return r.cycles.has(ctx, r.db, planID, cycleID)
}

// ListByShift returns the plans offered in a shift.
func (r *PlanRepository) ListByShift(ctx context.Context, shiftID int64) ([]models.Plan, error) {
	const query = `
SELECT p.id, p.name, p.created_at, p.updated_at
FROM shift_plans sp
JOIN plans p ON p.id = sp.plan_id
WHERE sp.shift_id = ?
ORDER BY p.name ASC`
	plans := []models.Plan{}
	if err := r.db.SelectContext(ctx, &plans, r.db.Rebind(query), shiftID); err != nil {
		return nil, fmt.Errorf("list plans by shift: %w", err)
	}
	return plans, nil
}

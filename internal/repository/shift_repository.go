package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable/internal/models"
)

// ShiftRepository persists shifts and the plans offered in each.
type ShiftRepository struct {
	catalog[models.Shift]
	plans pairTable
}

// NewShiftRepository creates a shift repository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{
		catalog: catalog[models.Shift]{db: db, table: "shifts"},
		plans:   pairTable{table: "shift_plans", left: "shift_id", right: "plan_id"},
	}
}

// LinkPlan offers the plan in the shift.
func (r *ShiftRepository) LinkPlan(ctx context.Context, shiftID, planID int64) error {
	return r.plans.link(ctx, r.db, shiftID, planID)
}

// UnlinkPlan withdraws the plan from the shift.
func (r *ShiftRepository) UnlinkPlan(ctx context.Context, shiftID, planID int64) error {
	return r.plans.unlink(ctx, r.db, shiftID, planID)
}

// HasPlan reports whether the plan is offered in the shift.
func (r *ShiftRepository) HasPlan(ctx context.Context, shiftID, planID int64) (bool, error) {
	return r.plans.has(ctx, r.db, shiftID, planID)
}

package models

import "time"

// Division is a class section bound to one shift, plan and cycle.
type Division struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	ShiftID   int64     `db:"shift_id" json:"shift_id"`
	PlanID    int64     `db:"plan_id" json:"plan_id"`
	CycleID   int64     `db:"cycle_id" json:"cycle_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DivisionDetail enriches a division with descriptive names.
type DivisionDetail struct {
	Division
	ShiftName string `db:"shift_name" json:"shift_name"`
	PlanName  string `db:"plan_name" json:"plan_name"`
	CycleName string `db:"cycle_name" json:"cycle_name"`
}

// DivisionFilter narrows division listings. Zero values are ignored.
type DivisionFilter struct {
	ShiftID int64
	PlanID  int64
	CycleID int64
}

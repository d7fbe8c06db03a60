package models

import "time"

// Teacher represents an instructor record.
type Teacher struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherShift records that a teacher works in a shift.
type TeacherShift struct {
	TeacherID int64 `db:"teacher_id" json:"teacher_id"`
	ShiftID   int64 `db:"shift_id" json:"shift_id"`
}

// TeacherSubjectAllocation is the hour bank a teacher holds for a subject.
// AllocatedHours is derived: BaseHours plus one per schedule row for the pair.
type TeacherSubjectAllocation struct {
	ID             int64     `db:"id" json:"id"`
	TeacherID      int64     `db:"teacher_id" json:"teacher_id"`
	SubjectID      int64     `db:"subject_id" json:"subject_id"`
	BaseHours      int       `db:"base_hours" json:"base_hours"`
	AllocatedHours int       `db:"allocated_hours" json:"allocated_hours"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// AllocationDetail adds display names to an allocation.
type AllocationDetail struct {
	TeacherSubjectAllocation
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable/internal/models"
)

// TeacherRepository persists teachers.
type TeacherRepository struct {
	catalog[models.Teacher]
}

// NewTeacherRepository creates a teacher repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{catalog[models.Teacher]{db: db, table: "teachers"}}
}

// TeacherShiftRepository persists the teacher-to-shift relation.
type TeacherShiftRepository struct {
	db    *sqlx.DB
	pairs pairTable
}

// NewTeacherShiftRepository creates the repository.
func NewTeacherShiftRepository(db *sqlx.DB) *TeacherShiftRepository {
	return &TeacherShiftRepository{db: db, pairs: pairTable{table: "teacher_shifts", left: "teacher_id", right: "shift_id"}}
}

// Assign records that the teacher works in the shift.
func (r *TeacherShiftRepository) Assign(ctx context.Context, teacherID, shiftID int64) error {
	return r.pairs.link(ctx, r.db, teacherID, shiftID)
}

// Remove deletes the relation. Schedules still placing the teacher in the shift block it.
func (r *TeacherShiftRepository) Remove(ctx context.Context, teacherID, shiftID int64) error {
	return r.pairs.unlink(ctx, r.db, teacherID, shiftID)
}

// Exists reports whether the teacher holds the shift.
func (r *TeacherShiftRepository) Exists(ctx context.Context, exec sqlx.ExtContext, teacherID, shiftID int64) (bool, error) {
	return r.pairs.has(ctx, pick(r.db, exec), teacherID, shiftID)
}

// ListByTeacher returns the shifts a teacher works in.
func (r *TeacherShiftRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.Shift, error) {
	const query = `
SELECT sh.id, sh.name, sh.created_at, sh.updated_at
FROM teacher_shifts ts
JOIN shifts sh ON sh.id = ts.shift_id
WHERE ts.teacher_id = ?
ORDER BY sh.name ASC`
	shifts := []models.Shift{}
	if err := r.db.SelectContext(ctx, &shifts, r.db.Rebind(query), teacherID); err != nil {
		return nil, fmt.Errorf("list teacher shifts: %w", err)
	}
	return shifts, nil
}

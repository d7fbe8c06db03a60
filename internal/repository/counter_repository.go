package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable/internal/models"
)

// CounterRepository adjusts and audits the derived hour counters.
type CounterRepository struct {
	db *sqlx.DB
}

// NewCounterRepository creates the repository.
func NewCounterRepository(db *sqlx.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// AddSubjectHours adds delta to a subject's weekly hours. It returns sql.ErrNoRows when the
// subject does not exist; a result below zero fails the check constraint.
func (r *CounterRepository) AddSubjectHours(ctx context.Context, exec sqlx.ExtContext, subjectID int64, delta int) error {
	const query = `UPDATE subjects SET weekly_hours = weekly_hours + ? WHERE id = ?`
	return execAffecting(ctx, pick(r.db, exec), query, delta, subjectID)
}

// AddAllocationHours adds delta to the allocated hours of a teacher-subject pair.
func (r *CounterRepository) AddAllocationHours(ctx context.Context, exec sqlx.ExtContext, teacherID, subjectID int64, delta int) error {
	const query = `UPDATE teacher_subjects SET allocated_hours = allocated_hours + ? WHERE teacher_id = ? AND subject_id = ?`
	return execAffecting(ctx, pick(r.db, exec), query, delta, teacherID, subjectID)
}

// SubjectDrift lists subjects whose weekly hours differ from base hours plus their
// schedule count.
func (r *CounterRepository) SubjectDrift(ctx context.Context) ([]models.CounterDrift, error) {
	const query = `
SELECT sub.id AS subject_id, sub.weekly_hours AS stored, sub.base_hours + COUNT(s.id) AS expected
FROM subjects sub
LEFT JOIN schedules s ON s.subject_id = sub.id
GROUP BY sub.id, sub.weekly_hours, sub.base_hours
HAVING sub.weekly_hours <> sub.base_hours + COUNT(s.id)
ORDER BY sub.id ASC`
	drift := []models.CounterDrift{}
	if err := r.db.SelectContext(ctx, &drift, query); err != nil {
		return nil, fmt.Errorf("audit subject hours: %w", err)
	}
	for i := range drift {
		drift[i].Kind = models.CounterSubjectWeeklyHours
	}
	return drift, nil
}

// AllocationDrift lists allocations whose allocated hours differ from base hours plus the
// schedule count of the pair.
func (r *CounterRepository) AllocationDrift(ctx context.Context) ([]models.CounterDrift, error) {
	const query = `
SELECT ts.subject_id, ts.teacher_id, ts.allocated_hours AS stored, ts.base_hours + COUNT(s.id) AS expected
FROM teacher_subjects ts
LEFT JOIN schedules s ON s.teacher_id = ts.teacher_id AND s.subject_id = ts.subject_id
GROUP BY ts.id, ts.subject_id, ts.teacher_id, ts.allocated_hours, ts.base_hours
HAVING ts.allocated_hours <> ts.base_hours + COUNT(s.id)
ORDER BY ts.teacher_id ASC, ts.subject_id ASC`
	drift := []models.CounterDrift{}
	if err := r.db.SelectContext(ctx, &drift, query); err != nil {
		return nil, fmt.Errorf("audit allocation hours: %w", err)
	}
	for i := range drift {
		drift[i].Kind = models.CounterAllocationAllocatedHours
	}
	return drift, nil
}

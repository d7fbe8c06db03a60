package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable/internal/models"
)

const subjectColumns = "id, name, base_hours, weekly_hours, created_at, updated_at"

// SubjectRepository handles persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns every subject ordered by name.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	const query = `SELECT ` + subjectColumns + ` FROM subjects ORDER BY name ASC`
	subjects := []models.Subject{}
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID returns a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Subject, error) {
	target := pick(r.db, exec)
	const query = `SELECT ` + subjectColumns + ` FROM subjects WHERE id = ?`
	var subject models.Subject
	if err := sqlx.GetContext(ctx, target, &subject, target.Rebind(query), id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// Exists reports whether the subject is present.
func (r *SubjectRepository) Exists(ctx context.Context, exec sqlx.ExtContext, id int64) (bool, error) {
	found, err := exists(ctx, pick(r.db, exec), `SELECT 1 FROM subjects WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("check subject: %w", err)
	}
	return found, nil
}

// Create persists a new subject. The weekly hours start at the base hours.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	now := time.Now().UTC()
	subject.WeeklyHours = subject.BaseHours
	subject.CreatedAt = now
	subject.UpdatedAt = now

	const query = `INSERT INTO subjects (name, base_hours, weekly_hours, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING id`
	id, err := insertReturningID(ctx, r.db, query, subject.Name, subject.BaseHours, subject.WeeklyHours, now, now)
	if err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	subject.ID = id
	return nil
}

// Update renames the subject and moves its base hours. The weekly hours shift by the
// same delta so the scheduled count they carry is preserved.
func (r *SubjectRepository) Update(ctx context.Context, id int64, name string, baseHours int) error {
	const query = `UPDATE subjects SET name = ?, weekly_hours = weekly_hours + (? - base_hours), base_hours = ?, updated_at = ? WHERE id = ?`
	if err := execAffecting(ctx, r.db, query, name, baseHours, baseHours, time.Now().UTC(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Delete removes a subject record.
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	if err := execAffecting(ctx, r.db, `DELETE FROM subjects WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}

// ListByPlan returns the subjects of a plan.
func (r *SubjectRepository) ListByPlan(ctx context.Context, planID int64) ([]models.Subject, error) {
	const query = `
SELECT s.id, s.name, s.base_hours, s.weekly_hours, s.created_at, s.updated_at
FROM plan_subjects ps
JOIN subjects s ON s.id = ps.subject_id
WHERE ps.plan_id = ?
ORDER BY s.name ASC`
	subjects := []models.Subject{}
	if err := r.db.SelectContext(ctx, &subjects, r.db.Rebind(query), planID); err != nil {
		return nil, fmt.Errorf("list subjects by plan: %w", err)
	}
	return subjects, nil
}

// ListByCycle returns the subject obligations of a cycle.
func (r *SubjectRepository) ListByCycle(ctx context.Context, cycleID int64) ([]models.Subject, error) {
	const query = `
SELECT s.id, s.name, s.base_hours, s.weekly_hours, s.created_at, s.updated_at
FROM cycle_subjects cs
JOIN subjects s ON s.id = cs.subject_id
WHERE cs.cycle_id = ?
ORDER BY s.name ASC`
	subjects := []models.Subject{}
	if err := r.db.SelectContext(ctx, &subjects, r.db.Rebind(query), cycleID); err != nil {
		return nil, fmt.Errorf("list subjects by cycle: %w", err)
	}
	return subjects, nil
}

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

// TeacherSubjectRepository persists teacher-subject hour allocations.
type TeacherSubjectRepository struct {
	db *sqlx.DB
}

// NewTeacherSubjectRepository constructs the repository.
func NewTeacherSubjectRepository(db *sqlx.DB) *TeacherSubjectRepository {
	return &TeacherSubjectRepository{db: db}
}

// ListByTeacher returns allocations owned by teacher.
func (r *TeacherSubjectRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.AllocationDetail, error) {
	const query = `
SELECT ts.id, ts.teacher_id, ts.subject_id, ts.base_hours, ts.allocated_hours, ts.created_at,
       t.name AS teacher_name, s.name AS subject_name
FROM teacher_subjects ts
JOIN teachers t ON t.id = ts.teacher_id
JOIN subjects s ON s.id = ts.subject_id
WHERE ts.teacher_id = ?
ORDER BY s.name ASC`
	allocations := []models.AllocationDetail{}
	if err := r.db.SelectContext(ctx, &allocations, r.db.Rebind(query), teacherID); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return allocations, nil
}

// FindByPair loads the allocation for a teacher and subject.
func (r *TeacherSubjectRepository) FindByPair(ctx context.Context, teacherID, subjectID int64) (*models.TeacherSubjectAllocation, error) {
	const query = `SELECT id, teacher_id, subject_id, base_hours, allocated_hours, created_at FROM teacher_subjects WHERE teacher_id = ? AND subject_id = ?`
	var allocation models.TeacherSubjectAllocation
	if err := r.db.GetContext(ctx, &allocation, r.db.Rebind(query), teacherID, subjectID); err != nil {
		return nil, err
	}
	return &allocation, nil
}

// Exists checks whether the teacher is registered for the subject.
func (r *TeacherSubjectRepository) Exists(ctx context.Context, exec sqlx.ExtContext, teacherID, subjectID int64) (bool, error) {
	const query = `SELECT 1 FROM teacher_subjects WHERE teacher_id = ? AND subject_id = ?`
	found, err := exists(ctx, pick(r.db, exec), query, teacherID, subjectID)
	if err != nil {
		return false, fmt.Errorf("check teacher subject: %w", err)
	}
	return found, nil
}

// Create registers the teacher for the subject with a base hour bank.
func (r *TeacherSubjectRepository) Create(ctx context.Context, allocation *models.TeacherSubjectAllocation) error {
	allocation.AllocatedHours = allocation.BaseHours
	allocation.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO teacher_subjects (teacher_id, subject_id, base_hours, allocated_hours, created_at)
VALUES (?, ?, ?, ?, ?) RETURNING id`
	id, err := insertReturningID(ctx, r.db, query, allocation.TeacherID, allocation.SubjectID, allocation.BaseHours, allocation.AllocatedHours, allocation.CreatedAt)
	if err != nil {
		return fmt.Errorf("create teacher subject: %w", err)
	}
	allocation.ID = id
	return nil
}

// UpdateBase moves the base hours and shifts the allocated hours by the same delta.
func (r *TeacherSubjectRepository) UpdateBase(ctx context.Context, teacherID, subjectID int64, baseHours int) error {
	const query = `UPDATE teacher_subjects SET allocated_hours = allocated_hours + (? - base_hours), base_hours = ? WHERE teacher_id = ? AND subject_id = ?`
	if err := execAffecting(ctx, r.db, query, baseHours, baseHours, teacherID, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("update teacher subject: %w", err)
	}
	return nil
}

// Delete removes an allocation. Schedules still teaching the pair block it.
func (r *TeacherSubjectRepository) Delete(ctx context.Context, teacherID, subjectID int64) error {
	const query = `DELETE FROM teacher_subjects WHERE teacher_id = ? AND subject_id = ?`
	if err := execAffecting(ctx, r.db, query, teacherID, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("delete teacher subject: %w", err)
	}
	return nil
}

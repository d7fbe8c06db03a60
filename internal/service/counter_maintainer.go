package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable/internal/models"
)

type counterStore interface {
	AddSubjectHours(ctx context.Context, exec sqlx.ExtContext, subjectID int64, delta int) error
	AddAllocationHours(ctx context.Context, exec sqlx.ExtContext, teacherID, subjectID int64, delta int) error
}

// counterMaintainer keeps subjects.weekly_hours and teacher_subjects.allocated_hours in
// step with the schedule rows. It only runs inside the caller's transaction.
type counterMaintainer struct {
	store counterStore
}

func (m counterMaintainer) bumpSubjectHours(ctx context.Context, exec sqlx.ExtContext, subjectID int64, delta int) error {
	if err := m.store.AddSubjectHours(ctx, exec, subjectID, delta); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("bump subject hours: subject %d not found", subjectID)
		}
		return fmt.Errorf("bump subject hours: %w", err)
	}
	return nil
}

func (m counterMaintainer) bumpAllocationHours(ctx context.Context, exec sqlx.ExtContext, teacherID, subjectID int64, delta int) error {
	if err := m.store.AddAllocationHours(ctx, exec, teacherID, subjectID, delta); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("bump allocation hours: teacher %d has no allocation for subject %d", teacherID, subjectID)
		}
		return fmt.Errorf("bump allocation hours: %w", err)
	}
	return nil
}

// apply moves both counters of sched by delta: the subject when one is set, and the
// allocation when a teacher is set as well.
func (m counterMaintainer) apply(ctx context.Context, exec sqlx.ExtContext, sched *models.Schedule, delta int) error {
	if sched.SubjectID == nil {
		return nil
	}
	if err := m.bumpSubjectHours(ctx, exec, *sched.SubjectID, delta); err != nil {
		return err
	}
	if sched.TeacherID == nil {
		return nil
	}
	return m.bumpAllocationHours(ctx, exec, *sched.TeacherID, *sched.SubjectID, delta)
}

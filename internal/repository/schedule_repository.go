package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/pkg/database"
)

const scheduleColumns = "id, division_id, day, slot, start_time, end_time, subject_id, teacher_id, shift_id, created_at"

const scheduleDetailSelect = `
SELECT s.id, s.division_id, s.day, s.slot, s.start_time, s.end_time, s.subject_id, s.teacher_id, s.shift_id, s.created_at,
       d.name AS division_name, sub.name AS subject_name, t.name AS teacher_name, sh.name AS shift_name
FROM schedules s
JOIN shifts sh ON sh.id = s.shift_id
LEFT JOIN divisions d ON d.id = s.division_id
LEFT JOIN subjects sub ON sub.id = s.subject_id
LEFT JOIN teachers t ON t.id = s.teacher_id`

const scheduleOrder = `
ORDER BY CASE s.day WHEN 'Monday' THEN 1 WHEN 'Tuesday' THEN 2 WHEN 'Wednesday' THEN 3 WHEN 'Thursday' THEN 4 ELSE 5 END, s.slot ASC, s.id ASC`

// ScheduleRepository provides persistence for schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// FindByID loads a schedule by id. It returns sql.ErrNoRows when the id is unknown.
func (r *ScheduleRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Schedule, error) {
	target := pick(r.db, exec)
	const query = `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = ?`
	var sched models.Schedule
	if err := sqlx.GetContext(ctx, target, &sched, target.Rebind(query), id); err != nil {
		return nil, err
	}
	return &sched, nil
}

// FindDetailByID loads a schedule joined with display names.
func (r *ScheduleRepository) FindDetailByID(ctx context.Context, id int64) (*models.ScheduleDetail, error) {
	query := scheduleDetailSelect + "\nWHERE s.id = ?"
	var sched models.ScheduleDetail
	if err := r.db.GetContext(ctx, &sched, r.db.Rebind(query), id); err != nil {
		return nil, err
	}
	return &sched, nil
}

// ListByDivision returns the timetable of a division ordered by weekday and slot.
func (r *ScheduleRepository) ListByDivision(ctx context.Context, divisionID int64) ([]models.ScheduleDetail, error) {
	query := scheduleDetailSelect + "\nWHERE s.division_id = ?" + scheduleOrder
	schedules := []models.ScheduleDetail{}
	if err := r.db.SelectContext(ctx, &schedules, r.db.Rebind(query), divisionID); err != nil {
		return nil, fmt.Errorf("list schedules by division: %w", err)
	}
	return schedules, nil
}

// ListByTeacher returns the timetable of a teacher within a shift.
func (r *ScheduleRepository) ListByTeacher(ctx context.Context, teacherID, shiftID int64) ([]models.ScheduleDetail, error) {
	query := scheduleDetailSelect + "\nWHERE s.teacher_id = ? AND s.shift_id = ?" + scheduleOrder
	schedules := []models.ScheduleDetail{}
	if err := r.db.SelectContext(ctx, &schedules, r.db.Rebind(query), teacherID, shiftID); err != nil {
		return nil, fmt.Errorf("list schedules by teacher: %w", err)
	}
	return schedules, nil
}

// FindDivisionSlot returns the schedule occupying (division, day, slot), or nil.
func (r *ScheduleRepository) FindDivisionSlot(ctx context.Context, exec sqlx.ExtContext, divisionID int64, day string, slot int) (*models.Schedule, error) {
	target := pick(r.db, exec)
	const query = `SELECT ` + scheduleColumns + ` FROM schedules WHERE division_id = ? AND day = ? AND slot = ?`
	var sched models.Schedule
	if err := sqlx.GetContext(ctx, target, &sched, target.Rebind(query), divisionID, day, slot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find division slot: %w", err)
	}
	return &sched, nil
}

// FindTeacherSlot returns the first schedule holding the teacher at (shift, day, slot),
// skipping q.ExcludeDivisionID when set, or nil.
func (r *ScheduleRepository) FindTeacherSlot(ctx context.Context, exec sqlx.ExtContext, q models.ScheduleSlotQuery) (*models.Schedule, error) {
	target := pick(r.db, exec)
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE teacher_id = ? AND shift_id = ? AND day = ? AND slot = ?`
	args := []interface{}{q.TeacherID, q.ShiftID, q.Day, q.Slot}
	if q.ExcludeDivisionID > 0 {
		query += " AND (division_id IS NULL OR division_id <> ?)"
		args = append(args, q.ExcludeDivisionID)
	}
	query += " ORDER BY id ASC LIMIT 1"

	var sched models.Schedule
	if err := sqlx.GetContext(ctx, target, &sched, target.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find teacher slot: %w", err)
	}
	return &sched, nil
}

// Insert stores a schedule and sets its id. Constraint violations come back classified,
// and a duplicate the driver left unnamed is attributed to the slot index already held.
func (r *ScheduleRepository) Insert(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error {
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = time.Now().UTC()
	}
	target := pick(r.db, exec)
	const query = `INSERT INTO schedules (division_id, day, slot, start_time, end_time, subject_id, teacher_id, shift_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`
	id, err := insertReturningID(ctx, target, query,
		schedule.DivisionID, schedule.Day, schedule.Slot, schedule.StartTime, schedule.EndTime,
		schedule.SubjectID, schedule.TeacherID, schedule.ShiftID, schedule.CreatedAt)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) && database.ConstraintName(err) == "" {
			err = database.WithConstraint(err, r.heldSlot(ctx, target, schedule))
		}
		return fmt.Errorf("insert schedule: %w", err)
	}
	schedule.ID = id
	return nil
}

// heldSlot returns the slot index a stored row already claims for schedule, or "".
func (r *ScheduleRepository) heldSlot(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) string {
	if schedule.DivisionID != nil {
		found, err := exists(ctx, exec, `SELECT 1 FROM schedules WHERE division_id = ? AND day = ? AND slot = ? LIMIT 1`,
			*schedule.DivisionID, schedule.Day, schedule.Slot)
		if err == nil && found {
			return database.ConstraintScheduleDivisionSlot
		}
	}
	if schedule.TeacherID != nil {
		found, err := exists(ctx, exec, `SELECT 1 FROM schedules WHERE teacher_id = ? AND shift_id = ? AND day = ? AND slot = ? LIMIT 1`,
			*schedule.TeacherID, schedule.ShiftID, schedule.Day, schedule.Slot)
		if err == nil && found {
			return database.ConstraintScheduleTeacherSlot
		}
	}
	return ""
}

// Delete removes a schedule by id. It returns sql.ErrNoRows when nothing was deleted.
func (r *ScheduleRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	if err := execAffecting(ctx, pick(r.db, exec), `DELETE FROM schedules WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

// CountAll returns the number of stored schedules.
func (r *ScheduleRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM schedules`); err != nil {
		return 0, fmt.Errorf("count schedules: %w", err)
	}
	return count, nil
}

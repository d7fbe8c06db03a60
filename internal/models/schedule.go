package models

import "time"

// Weekdays lists the canonical day names in timetable order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// WeekdayIndex returns the position of day in Weekdays, or -1.
func WeekdayIndex(day string) int {
	for i, d := range Weekdays {
		if d == day {
			return i
		}
	}
	return -1
}

// Schedule assigns an optional teacher and subject to a day/slot within a shift,
// optionally bound to a division.
type Schedule struct {
	ID         int64     `db:"id" json:"id"`
	DivisionID *int64    `db:"division_id" json:"division_id,omitempty"`
	Day        string    `db:"day" json:"day"`
	Slot       int       `db:"slot" json:"slot"`
	StartTime  *string   `db:"start_time" json:"start_time,omitempty"`
	EndTime    *string   `db:"end_time" json:"end_time,omitempty"`
	SubjectID  *int64    `db:"subject_id" json:"subject_id,omitempty"`
	TeacherID  *int64    `db:"teacher_id" json:"teacher_id,omitempty"`
	ShiftID    int64     `db:"shift_id" json:"shift_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ScheduleDetail is a schedule row joined with display names.
type ScheduleDetail struct {
	Schedule
	DivisionName *string `db:"division_name" json:"division_name,omitempty"`
	SubjectName  *string `db:"subject_name" json:"subject_name,omitempty"`
	TeacherName  *string `db:"teacher_name" json:"teacher_name,omitempty"`
	ShiftName    string  `db:"shift_name" json:"shift_name"`
}

// ScheduleSlotQuery identifies a day/slot lookup, optionally narrowed to a teacher and shift.
type ScheduleSlotQuery struct {
	Day       string
	Slot      int
	TeacherID int64
	ShiftID   int64

	// ExcludeDivisionID skips rows of this division when non-zero.
	ExcludeDivisionID int64
}

// Conflict dimensions reported by the assignment engine.
const (
	ConflictDivisionSlot   = "DIVISION_SLOT"
	ConflictTeacherSlot    = "TEACHER_SLOT"
	ConflictTeacherSubject = "TEACHER_SUBJECT"
	ConflictTeacherShift   = "TEACHER_SHIFT"
	ConflictCrossShift     = "CROSS_SHIFT"
	ConflictDuplicate      = "DUPLICATE"
	ConflictReference      = "REFERENCE"
)

// ScheduleConflict describes the existing schedule, if any, that blocks an assignment.
type ScheduleConflict struct {
	ScheduleID int64  `json:"schedule_id,omitempty"`
	DivisionID *int64 `json:"division_id,omitempty"`
	TeacherID  *int64 `json:"teacher_id,omitempty"`
	ShiftID    int64  `json:"shift_id,omitempty"`
	Day        string `json:"day,omitempty"`
	Slot       int    `json:"slot,omitempty"`
	Dimension  string `json:"dimension"`
}

// ScheduleConflictError is returned when an assignment violates a timetable invariant.
type ScheduleConflictError struct {
	Type     string           `json:"type"`
	Message  string           `json:"message"`
	Conflict ScheduleConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

package models

// CounterKind names a derived counter.
type CounterKind string

const (
	CounterSubjectWeeklyHours       CounterKind = "SUBJECT_WEEKLY_HOURS"
	CounterAllocationAllocatedHours CounterKind = "ALLOCATION_ALLOCATED_HOURS"
)

// CounterDrift reports a derived counter whose stored value differs from base + schedule count.
type CounterDrift struct {
	Kind      CounterKind `json:"kind"`
	SubjectID int64       `db:"subject_id" json:"subject_id"`
	TeacherID int64       `db:"teacher_id" json:"teacher_id,omitempty"`
	Stored    int         `db:"stored" json:"stored"`
	Expected  int         `db:"expected" json:"expected"`
}

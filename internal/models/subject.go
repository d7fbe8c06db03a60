package models

import "time"

// Subject is a taught subject. WeeklyHours is derived: BaseHours plus one per schedule row
// referencing the subject.
type Subject struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	BaseHours   int       `db:"base_hours" json:"base_hours"`
	WeeklyHours int       `db:"weekly_hours" json:"weekly_hours"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

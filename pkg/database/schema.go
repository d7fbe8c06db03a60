package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Named constraints the assignment engine maps back to domain conflicts.
const (
	ConstraintScheduleDivisionSlot  = "uq_schedules_division_slot"
	ConstraintScheduleTeacherSlot   = "uq_schedules_teacher_slot"
	ConstraintScheduleAllocation    = "fk_schedules_allocation"
	ConstraintScheduleTeacherShift  = "fk_schedules_teacher_shift"
	ConstraintScheduleDivisionShift = "fk_schedules_division_shift"
)

// schemaTemplate is rendered per dialect: {{ID}} is the surrogate key column type,
// {{REF}} a foreign key column type and {{TS}} the timestamp type.
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS subjects (
	id {{ID}},
	name TEXT NOT NULL,
	base_hours INTEGER NOT NULL DEFAULT 0 CHECK (base_hours >= 0),
	weekly_hours INTEGER NOT NULL DEFAULT 0 CHECK (weekly_hours >= 0),
	created_at {{TS}} NOT NULL,
	updated_at {{TS}} NOT NULL,
	CONSTRAINT uq_subjects_name UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS teachers (
	id {{ID}},
	name TEXT NOT NULL,
	created_at {{TS}} NOT NULL,
	updated_at {{TS}} NOT NULL,
	CONSTRAINT uq_teachers_name UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS plans (
	id {{ID}},
	name TEXT NOT NULL,
	created_at {{TS}} NOT NULL,
	updated_at {{TS}} NOT NULL,
	CONSTRAINT uq_plans_name UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS cycles (
	id {{ID}},
	name TEXT NOT NULL,
	created_at {{TS}} NOT NULL,
	updated_at {{TS}} NOT NULL,
	CONSTRAINT uq_cycles_name UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS shifts (
	id {{ID}},
	name TEXT NOT NULL,
	created_at {{TS}} NOT NULL,
	updated_at {{TS}} NOT NULL,
	CONSTRAINT uq_shifts_name UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS plan_subjects (
	plan_id {{REF}} NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
	subject_id {{REF}} NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
	PRIMARY KEY (plan_id, subject_id)
);

CREATE TABLE IF NOT EXISTS plan_cycles (
	plan_id {{REF}} NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
	cycle_id {{REF}} NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
	PRIMARY KEY (plan_id, cycle_id)
);

CREATE TABLE IF NOT EXISTS cycle_subjects (
	cycle_id {{REF}} NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
	subject_id {{REF}} NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
	PRIMARY KEY (cycle_id, subject_id)
);

CREATE TABLE IF NOT EXISTS shift_plans (
	shift_id {{REF}} NOT NULL REFERENCES shifts(id) ON DELETE CASCADE,
	plan_id {{REF}} NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
	PRIMARY KEY (shift_id, plan_id)
);

CREATE TABLE IF NOT EXISTS teacher_shifts (
	teacher_id {{REF}} NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
	shift_id {{REF}} NOT NULL REFERENCES shifts(id) ON DELETE CASCADE,
	PRIMARY KEY (teacher_id, shift_id)
);

CREATE TABLE IF NOT EXISTS teacher_subjects (
	id {{ID}},
	teacher_id {{REF}} NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
	subject_id {{REF}} NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
	base_hours INTEGER NOT NULL DEFAULT 0 CHECK (base_hours >= 0),
	allocated_hours INTEGER NOT NULL DEFAULT 0 CHECK (allocated_hours >= 0),
	created_at {{TS}} NOT NULL,
	CONSTRAINT uq_teacher_subjects_pair UNIQUE (teacher_id, subject_id)
);

CREATE TABLE IF NOT EXISTS divisions (
	id {{ID}},
	name TEXT NOT NULL,
	shift_id {{REF}} NOT NULL REFERENCES shifts(id),
	plan_id {{REF}} NOT NULL REFERENCES plans(id),
	cycle_id {{REF}} NOT NULL REFERENCES cycles(id),
	created_at {{TS}} NOT NULL,
	updated_at {{TS}} NOT NULL,
	CONSTRAINT uq_divisions_identity UNIQUE (name, shift_id, plan_id, cycle_id),
	CONSTRAINT uq_divisions_shift UNIQUE (id, shift_id)
);

CREATE TABLE IF NOT EXISTS schedules (
	id {{ID}},
	division_id {{REF}} REFERENCES divisions(id),
	day TEXT NOT NULL CHECK (day IN ('Monday', 'Tuesday', 'Wednesday', 'Thursday', 'Friday')),
	slot INTEGER NOT NULL CHECK (slot > 0),
	start_time TEXT,
	end_time TEXT,
	subject_id {{REF}} REFERENCES subjects(id),
	teacher_id {{REF}} REFERENCES teachers(id),
	shift_id {{REF}} NOT NULL REFERENCES shifts(id),
	created_at {{TS}} NOT NULL,
	CONSTRAINT ck_schedules_time_order CHECK (start_time IS NULL OR end_time IS NULL OR start_time < end_time),
	CONSTRAINT uq_schedules_division_slot UNIQUE (division_id, day, slot),
	CONSTRAINT uq_schedules_teacher_slot UNIQUE (teacher_id, shift_id, day, slot),
	CONSTRAINT fk_schedules_allocation FOREIGN KEY (teacher_id, subject_id) REFERENCES teacher_subjects(teacher_id, subject_id),
	CONSTRAINT fk_schedules_teacher_shift FOREIGN KEY (teacher_id, shift_id) REFERENCES teacher_shifts(teacher_id, shift_id),
	CONSTRAINT fk_schedules_division_shift FOREIGN KEY (division_id, shift_id) REFERENCES divisions(id, shift_id)
);

CREATE INDEX IF NOT EXISTS idx_schedules_subject ON schedules(subject_id);
CREATE INDEX IF NOT EXISTS idx_schedules_teacher_shift ON schedules(teacher_id, shift_id);
CREATE INDEX IF NOT EXISTS idx_divisions_shift ON divisions(shift_id);
`

var dialects = map[string]*strings.Replacer{
	"sqlite3": strings.NewReplacer(
		"{{ID}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{REF}}", "INTEGER",
		"{{TS}}", "TIMESTAMP",
	),
	"postgres": strings.NewReplacer(
		"{{ID}}", "BIGSERIAL PRIMARY KEY",
		"{{REF}}", "BIGINT",
		"{{TS}}", "TIMESTAMPTZ",
	),
}

// SchemaSQL renders the schema for the given sqlx driver name.
func SchemaSQL(driverName string) (string, error) {
	r, ok := dialects[driverName]
	if !ok {
		return "", fmt.Errorf("no schema for driver %q", driverName)
	}
	return r.Replace(schemaTemplate), nil
}

// Migrate creates any missing tables and indexes. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema, err := SchemaSQL(db.DriverName())
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

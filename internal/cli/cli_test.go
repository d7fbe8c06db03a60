package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/internal/validation"
	"github.com/noah-isme/sma-timetable/internal/wire"
	"github.com/noah-isme/sma-timetable/pkg/config"
	"github.com/noah-isme/sma-timetable/pkg/database"
)

type cliFixture struct {
	dbPath                        string
	shift, division, subject, who int64
}

func raw(id int64) validation.Raw {
	return validation.Raw(strconv.FormatInt(id, 10))
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	ctx := context.Background()
	f := &cliFixture{dbPath: filepath.Join(t.TempDir(), "timetable.db")}

	db, err := database.Open(ctx, config.DatabaseConfig{Driver: config.DriverSQLite, Path: f.dbPath})
	require.NoError(t, err)
	defer db.Close()
	c := wire.Build(db, wire.Options{MaxSlots: 8})

	shift, err := c.Shifts.Create(ctx, service.NameRequest{Name: "Morning"})
	require.NoError(t, err)
	plan, err := c.Plans.Create(ctx, service.NameRequest{Name: "Humanities"})
	require.NoError(t, err)
	cycle, err := c.Cycles.Create(ctx, service.NameRequest{Name: "2nd"})
	require.NoError(t, err)
	require.NoError(t, c.Shifts.LinkPlan(ctx, shift.ID, service.LinkRequest{ID: raw(plan.ID)}))
	require.NoError(t, c.Plans.LinkCycle(ctx, plan.ID, service.LinkRequest{ID: raw(cycle.ID)}))
	division, err := c.Divisions.Create(ctx, service.DivisionRequest{
		Name: "2B", ShiftID: raw(shift.ID), PlanID: raw(plan.ID), CycleID: raw(cycle.ID),
	})
	require.NoError(t, err)
	subject, err := c.Subjects.Create(ctx, service.SubjectRequest{Name: "History", BaseHours: "2"})
	require.NoError(t, err)
	teacher, err := c.Teachers.Create(ctx, service.NameRequest{Name: "Lucia"})
	require.NoError(t, err)
	require.NoError(t, c.Teachers.AssignShift(ctx, teacher.ID, shift.ID))
	_, err = c.Teachers.RegisterSubject(ctx, teacher.ID, service.AllocationRequest{SubjectID: raw(subject.ID), BaseHours: "2"})
	require.NoError(t, err)

	f.shift, f.division, f.subject, f.who = shift.ID, division.ID, subject.ID, teacher.ID
	return f
}

func (f *cliFixture) run(args ...string) (string, string, error) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCmd()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--db", f.dbPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func TestSchemaInit(t *testing.T) {
	f := newCLIFixture(t)
	out, _, err := f.run("schema", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "schema applied to "+f.dbPath)

	out, _, err = f.run("schema", "print")
	require.NoError(t, err)
	assert.Contains(t, out, "uq_schedules_division_slot")
}

func TestScheduleCommands(t *testing.T) {
	f := newCLIFixture(t)

	out, _, err := f.run("schedule", "add-division",
		"--division", id(f.division), "--day", "lunes", "--slot", "1",
		"--start", "8:00", "--end", "08:45",
		"--subject", id(f.subject), "--teacher", id(f.who))
	require.NoError(t, err)
	assert.Contains(t, out, "created schedule 1: Monday slot 1")

	_, stderr, err := f.run("schedule", "add-division",
		"--division", id(f.division), "--day", "Monday", "--slot", "1", "--subject", id(f.subject))
	require.Error(t, err)
	assert.Equal(t, "slot already assigned for this division", err.Error())
	assert.Contains(t, stderr, "DIVISION_SLOT: blocked by schedule 1")

	_, _, err = f.run("schedule", "add-teacher",
		"--teacher", id(f.who), "--shift", id(f.shift), "--day", "Monday", "--slot", "1")
	require.Error(t, err)
	assert.Equal(t, "teacher already has an assignment in this day/slot/shift", err.Error())

	_, _, err = f.run("schedule", "add-division", "--division", id(f.division), "--day", "Monday", "--slot", "9")
	require.Error(t, err)
	assert.Equal(t, "slot must be at most 8", err.Error())

	out, _, err = f.run("schedule", "list", "--division", id(f.division))
	require.NoError(t, err)
	assert.Contains(t, out, "History")
	assert.Contains(t, out, "Lucia")
	assert.Contains(t, out, "08:00-08:45")

	out, _, err = f.run("schedule", "list", "--teacher", id(f.who), "--shift", id(f.shift))
	require.NoError(t, err)
	assert.Contains(t, out, "2B")

	_, _, err = f.run("schedule", "list")
	assert.EqualError(t, err, "pass either --division or --teacher")

	out, _, err = f.run("schedule", "remove", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "removed schedule 1")

	_, _, err = f.run("schedule", "remove", "1")
	assert.EqualError(t, err, "schedule not found")

	out, _, err = f.run("schedule", "list", "--division", id(f.division))
	require.NoError(t, err)
	assert.Contains(t, out, "No schedules found")
}

func TestVerifyReportsDrift(t *testing.T) {
	f := newCLIFixture(t)
	_, _, err := f.run("schedule", "add-division",
		"--division", id(f.division), "--day", "Friday", "--slot", "2",
		"--subject", id(f.subject), "--teacher", id(f.who))
	require.NoError(t, err)

	out, _, err := f.run("verify")
	require.NoError(t, err)
	assert.Contains(t, out, "hour counters consistent")

	db, err := database.Open(context.Background(), config.DatabaseConfig{Driver: config.DriverSQLite, Path: f.dbPath})
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE subjects SET weekly_hours = 10 WHERE id = ?`, f.subject)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, _, err = f.run("verify")
	require.ErrorIs(t, err, errCountersDrifted)
	assert.Contains(t, out, "SUBJECT_WEEKLY_HOURS")
	assert.Contains(t, out, "1 counter(s) drifted")

	out, _, err = f.run("verify", "--quiet")
	require.ErrorIs(t, err, errCountersDrifted)
	assert.Empty(t, out)
}

func TestExportWritesFiles(t *testing.T) {
	f := newCLIFixture(t)
	_, _, err := f.run("schedule", "add-division",
		"--division", id(f.division), "--day", "Thursday", "--slot", "3",
		"--subject", id(f.subject), "--teacher", id(f.who))
	require.NoError(t, err)
	outDir := t.TempDir()

	out, _, err := f.run("export", "division", id(f.division), "--out", outDir)
	require.NoError(t, err)
	path := filepath.Join(outDir, "timetable_division_2b_morning.csv")
	assert.Contains(t, out, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "History / Lucia")

	_, _, err = f.run("export", "teacher", id(f.who), "--shift", id(f.shift), "--format", "pdf", "--out", outDir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "timetable_teacher_lucia_morning.pdf"))
	assert.NoError(t, err)

	_, _, err = f.run("export", "division", id(f.division), "--format", "docx", "--out", outDir)
	assert.EqualError(t, err, "format must be csv or pdf")
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/pkg/database"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var scheduleMockColumns = []string{"id", "division_id", "day", "slot", "start_time", "end_time", "subject_id", "teacher_id", "shift_id", "created_at"}

func TestScheduleRepositoryFindDivisionSlot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM schedules WHERE division_id = ? AND day = ? AND slot = ?")).
		WithArgs(int64(1), "Monday", 1).
		WillReturnRows(sqlmock.NewRows(scheduleMockColumns))

	found, err := repo.FindDivisionSlot(context.Background(), nil, 1, "Monday", 1)
	require.NoError(t, err)
	assert.Nil(t, found)

	mock.ExpectQuery(regexp.QuoteMeta("FROM schedules WHERE division_id = ? AND day = ? AND slot = ?")).
		WithArgs(int64(1), "Monday", 2).
		WillReturnRows(sqlmock.NewRows(scheduleMockColumns).AddRow(9, 1, "Monday", 2, "08:00", "09:00", 4, 5, 2, time.Now()))

	found, err = repo.FindDivisionSlot(context.Background(), nil, 1, "Monday", 2)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(9), found.ID)
	assert.Equal(t, int64(5), *found.TeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindTeacherSlotExcludesDivision(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE teacher_id = ? AND shift_id = ? AND day = ? AND slot = ? AND (division_id IS NULL OR division_id <> ?) ORDER BY id ASC LIMIT 1")).
		WithArgs(int64(5), int64(2), "Tuesday", 3, int64(1)).
		WillReturnRows(sqlmock.NewRows(scheduleMockColumns).AddRow(11, 7, "Tuesday", 3, nil, nil, nil, 5, 2, time.Now()))

	found, err := repo.FindTeacherSlot(context.Background(), nil, models.ScheduleSlotQuery{
		Day: "Tuesday", Slot: 3, TeacherID: 5, ShiftID: 2, ExcludeDivisionID: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(7), *found.DivisionID)
	assert.Nil(t, found.SubjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryInsertReturnsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	division, subject := int64(1), int64(4)
	start := "08:00"
	mock.ExpectQuery("INSERT INTO schedules").
		WithArgs(division, "Monday", 1, start, nil, subject, nil, int64(2), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))

	sched := &models.Schedule{DivisionID: &division, Day: "Monday", Slot: 1, StartTime: &start, SubjectID: &subject, ShiftID: 2}
	require.NoError(t, repo.Insert(context.Background(), nil, sched))
	assert.Equal(t, int64(21), sched.ID)
	assert.False(t, sched.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryInsertClassifiesConstraint(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery("INSERT INTO schedules").
		WillReturnError(&pq.Error{Code: "23505", Constraint: database.ConstraintScheduleDivisionSlot})

	err := repo.Insert(context.Background(), nil, &models.Schedule{Day: "Monday", Slot: 1, ShiftID: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, database.ErrDuplicate))
	assert.Equal(t, database.ConstraintScheduleDivisionSlot, database.ConstraintName(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedules WHERE id = ?")).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), nil, 99)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	columns := append(append([]string{}, scheduleMockColumns...), "division_name", "subject_name", "teacher_name", "shift_name")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.teacher_id = ? AND s.shift_id = ?")).
		WithArgs(int64(5), int64(2)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, 1, "Monday", 1, "08:00", "09:00", 4, 5, 2, time.Now(), "1A", "Biology", "Maria", "Afternoon"))

	rows, err := repo.ListByTeacher(context.Background(), 5, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Biology", *rows[0].SubjectName)
	assert.Equal(t, "Afternoon", rows[0].ShiftName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

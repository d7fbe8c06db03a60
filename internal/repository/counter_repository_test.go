package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable/internal/models"
)

func TestCounterRepositoryAddHours(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCounterRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subjects SET weekly_hours = weekly_hours + ? WHERE id = ?")).
		WithArgs(1, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.AddSubjectHours(context.Background(), nil, 4, 1))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE teacher_subjects SET allocated_hours = allocated_hours + ? WHERE teacher_id = ? AND subject_id = ?")).
		WithArgs(-1, int64(5), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.AddAllocationHours(context.Background(), nil, 5, 4, -1)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterRepositoryDriftTagsKind(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCounterRepository(db)

	mock.ExpectQuery("FROM subjects sub").
		WillReturnRows(sqlmock.NewRows([]string{"subject_id", "stored", "expected"}).AddRow(4, 7, 4))
	mock.ExpectQuery("FROM teacher_subjects ts").
		WillReturnRows(sqlmock.NewRows([]string{"subject_id", "teacher_id", "stored", "expected"}))

	subjects, err := repo.SubjectDrift(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, models.CounterSubjectWeeklyHours, subjects[0].Kind)
	assert.Equal(t, 7, subjects[0].Stored)
	assert.Equal(t, 4, subjects[0].Expected)

	allocations, err := repo.AllocationDrift(context.Background())
	require.NoError(t, err)
	assert.Empty(t, allocations)
	assert.NoError(t, mock.ExpectationsWereMet())
}

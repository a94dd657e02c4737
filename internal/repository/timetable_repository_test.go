package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-portal-api/internal/models"
)

func TestTimetableRepositoryListByUserAndDay(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	now := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "day_of_week", "start_time", "end_time", "subject", "room", "lecturer", "created_at", "updated_at"}).
		AddRow("e-1", "u-1", 1, "08:00", "09:40", "Linear Algebra", "B-201", "Dr. Rao", now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_entries WHERE user_id = $1 AND day_of_week = $2 ORDER BY start_time ASC")).
		WithArgs("u-1", 1).
		WillReturnRows(rows)

	entries, err := repo.ListByUserAndDay(context.Background(), "u-1", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Linear Algebra", entries[0].Subject)
	assert.Equal(t, 1, entries[0].DayOfWeek)
}

func TestTimetableRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_entries")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.TimetableEntry{UserID: "u-1", DayOfWeek: 3, StartTime: "10:00", EndTime: "11:00", Subject: "Physics"}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
}

func TestTimetableRepositoryDeleteReportsMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_entries WHERE id = $1 AND user_id = $2")).
		WithArgs("e-9", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.Delete(context.Background(), "u-1", "e-9")
	require.NoError(t, err)
	assert.False(t, removed)
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-portal-api/internal/models"
)

const timetableColumns = `id, user_id, day_of_week, start_time, end_time, subject, room, lecturer, created_at, updated_at`

// TimetableRepository stores weekly class slots per user.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// ListByUser returns all entries of a user ordered by weekday and start time.
func (r *TimetableRepository) ListByUser(ctx context.Context, userID string) ([]models.TimetableEntry, error) {
	query := `SELECT ` + timetableColumns + ` FROM timetable_entries WHERE user_id = $1 ORDER BY day_of_week ASC, start_time ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// ListByUserAndDay returns the entries of a user for a single weekday index.
func (r *TimetableRepository) ListByUserAndDay(ctx context.Context, userID string, dayOfWeek int) ([]models.TimetableEntry, error) {
	query := `SELECT ` + timetableColumns + ` FROM timetable_entries WHERE user_id = $1 AND day_of_week = $2 ORDER BY start_time ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, userID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list timetable entries for day: %w", err)
	}
	return entries, nil
}

// Create inserts an entry.
func (r *TimetableRepository) Create(ctx context.Context, entry *models.TimetableEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	query := `INSERT INTO timetable_entries (` + timetableColumns + `)
VALUES (:id, :user_id, :day_of_week, :start_time, :end_time, :subject, :room, :lecturer, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create timetable entry: %w", err)
	}
	return nil
}

// Delete removes an entry owned by userID. It reports whether a row was removed.
func (r *TimetableRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM timetable_entries WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, fmt.Errorf("delete timetable entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete timetable entry rows: %w", err)
	}
	return affected > 0, nil
}

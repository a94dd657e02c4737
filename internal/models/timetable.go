package models

import "time"

// TimetableEntry is a recurring weekly class slot owned by a student.
type TimetableEntry struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	Subject   string    `db:"subject" json:"subject"`
	Room      string    `db:"room" json:"room"`
	Lecturer  string    `db:"lecturer" json:"lecturer"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

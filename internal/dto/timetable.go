package dto

import "github.com/noah-isme/student-portal-api/internal/models"

// TimetableDay is the class plan of one user on one date.
type TimetableDay struct {
	Date             string                  `json:"date"`
	State            string                  `json:"state"`
	TimetableDay     int                     `json:"timetable_day"`
	TimetableWeekday string                  `json:"timetable_weekday"`
	ClassesSuspended bool                    `json:"classes_suspended"`
	Banner           string                  `json:"banner,omitempty"`
	Entries          []models.TimetableEntry `json:"entries"`
}

// TimetableEntryPayload is the body of POST /timetable.
type TimetableEntryPayload struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Subject   string `json:"subject" binding:"required"`
	Room      string `json:"room"`
	Lecturer  string `json:"lecturer"`
}

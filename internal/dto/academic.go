package dto

// AcademicDayEvent is one calendar event active on a resolved day.
type AcademicDayEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Priority    int    `json:"priority"`
}

// AcademicDay is the API view of a resolved academic date.
type AcademicDay struct {
	Date             string             `json:"date"`
	Weekday          string             `json:"weekday"`
	State            string             `json:"state"`
	TimetableDay     int                `json:"timetable_day"`
	TimetableWeekday string             `json:"timetable_weekday"`
	ClassesSuspended bool               `json:"classes_suspended"`
	Events           []AcademicDayEvent `json:"events"`
}

package dto

// CalendarEventPayload is the body of calendar event writes. Dates use YYYY-MM-DD.
type CalendarEventPayload struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	EventType         string `json:"event_type"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	OverrideDayOfWeek *int   `json:"override_day_of_week"`
}

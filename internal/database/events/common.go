package events

import "github.com/practicehq/calendar-backend/internal/database"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select("id",
		"tenant_id",
		"title",
		"description",
		"all_day",
		"status",
		"visibility",
		"categories",
		"attendees",
		"reminders",
		"attachments",
		"repeat_type",
		"start_date",
		"end_date",
		"duration",
		"recurrence_rule",
		"exceptions",
		"metadata",
		"cancel_reason",
	).
	From(database.EventsTable)

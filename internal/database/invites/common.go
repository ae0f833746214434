package invites

import "github.com/practicehq/calendar-backend/internal/database"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select("event_id",
		"uid",
		"method",
		"organizer_email",
		"organizer_name",
		"response_status",
		"responded_by",
		"sequence",
		"received_at",
	).
	From(database.InvitesTable)

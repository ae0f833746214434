package invites

import (
	"context"
	"fmt"

	"github.com/practicehq/calendar-backend/internal/database"
	"github.com/practicehq/calendar-backend/internal/model"
)

func (*Repository) CreateInvite(ctx context.Context, q database.Queryable, invite *model.ICalInviteState) error {
	qb := database.PSQL.
		Insert(database.InvitesTable).
		Columns(
			"event_id",
			"uid",
			"method",
			"organizer_email",
			"organizer_name",
			"response_status",
			"responded_by",
			"sequence",
			"received_at",
		).
		Values(
			invite.EventID,
			invite.UID,
			invite.Method,
			invite.OrganizerEmail,
			invite.OrganizerName,
			invite.ResponseStatus,
			invite.RespondedBy,
			invite.Sequence,
			invite.ReceivedAt,
		)

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

package invites

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/practicehq/calendar-backend/internal/database"
	"github.com/practicehq/calendar-backend/internal/model"
)

func (*Repository) UpdateInvite(ctx context.Context, q database.Queryable, invite *model.ICalInviteState) error {
	qb := database.PSQL.
		Update(database.InvitesTable).
		SetMap(map[string]interface{}{
			"method":          invite.Method,
			"organizer_email": invite.OrganizerEmail,
			"organizer_name":  invite.OrganizerName,
			"response_status": invite.ResponseStatus,
			"responded_by":    invite.RespondedBy,
			"sequence":        invite.Sequence,
			"received_at":     invite.ReceivedAt,
		}).
		Where(sq.Eq{"event_id": invite.EventID})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

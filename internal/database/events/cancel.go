package events

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/practicehq/calendar-backend/internal/database"
	"github.com/practicehq/calendar-backend/internal/model"
)

// CancelEvent marks the event CANCELLED. Events are never deleted: inbound
// METHOD=CANCEL messages and user cancellations must stay distinguishable in
// history, and recipients keep the record of their prior RSVP.
func (*Repository) CancelEvent(ctx context.Context, q database.Queryable, id int64, reason string) error {
	qb := database.PSQL.
		Update(database.EventsTable).
		SetMap(map[string]interface{}{
			"status":        model.EventStatusCancelled,
			"cancel_reason": reason,
		}).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

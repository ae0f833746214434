package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/practicehq/calendar-backend/internal/database"
	"github.com/practicehq/calendar-backend/internal/model"
)

func (*Repository) UpdateEvent(ctx context.Context, q database.Queryable, event *model.Event) error {
	id, err := strconv.ParseInt(event.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("parse event id %q: %w", event.ID, err)
	}

	exceptions := make([]time.Time, 0, len(event.Exceptions))
	for e := range event.Exceptions {
		exceptions = append(exceptions, time.Unix(e, 0))
	}

	qb := database.PSQL.
		Update(database.EventsTable).
		SetMap(map[string]interface{}{
			"title":           event.Title,
			"description":     event.Description,
			"all_day":         event.AllDay,
			"status":          event.Status,
			"visibility":      event.Visibility,
			"categories":      event.Categories,
			"attendees":       mapToAttendeeDTOs(event.Attendees),
			"reminders":       mapToReminderDTOs(event.Reminders),
			"attachments":     mapToAttachmentDTOs(event.Attachments),
			"repeat_type":     event.RepeatType,
			"start_date":      event.From,
			"end_date":        event.Until,
			"duration":        event.To.Sub(event.From),
			"recurrence_rule": event.RepeatRule,
			"exceptions":      exceptions,
			"metadata":        map[string]interface{}(event.Metadata),
			"cancel_reason":   event.CancelReason,
		}).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/practicehq/calendar-backend/internal/database"
	"github.com/practicehq/calendar-backend/internal/model"
)

func (*Repository) CreateEvent(ctx context.Context, q database.Queryable, event *model.Event) (int64, error) {
	var endDate *time.Time
	if event.RepeatType == model.RepeatTypeNone {
		endDate = &event.To
	}

	qb := database.PSQL.
		Insert(database.EventsTable).
		Columns(
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
			"metadata",
		).
		Values(
			event.TenantID,
			event.Title,
			event.Description,
			event.AllDay,
			event.Status,
			event.Visibility,
			event.Categories,
			mapToAttendeeDTOs(event.Attendees),
			mapToReminderDTOs(event.Reminders),
			mapToAttachmentDTOs(event.Attachments),
			event.RepeatType,
			event.From,
			endDate,
			event.To.Sub(event.From),
			event.RepeatRule,
			map[string]interface{}(event.Metadata),
		).
		Suffix("returning id")

	var id int64
	if err := q.Get(ctx, &id, qb); err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return id, nil
}

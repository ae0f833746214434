package broadcast

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/practicehq/calendar-backend/internal/model"
)

type outbox interface {
	Enqueue(ctx context.Context, eventID int64, due time.Time) error
}

type eventsService interface {
	UpdateMeta(ctx context.Context, id int64, meta *model.EventMeta) (*model.Event, error)
}

// Scheduler validates broadcast specs and queues them for the dispatch loop.
type Scheduler struct {
	logger *zap.SugaredLogger
	events eventsService
	outbox outbox
}

func NewScheduler(logger *zap.SugaredLogger, events eventsService, outbox outbox) *Scheduler {
	return &Scheduler{logger: logger, events: events, outbox: outbox}
}

// Schedule validates the spec, persists it in PENDING state and enqueues the
// event for dispatch. The spec is persisted before the outbox entry exists,
// so a dispatch tick can never pop an event whose stored spec is not yet
// PENDING. A missing or past schedule time means "send on the next tick".
func (s *Scheduler) Schedule(ctx context.Context, eventID int64, meta *model.EventMeta, attendees []*model.Attendee) (*ValidatedSpec, error) {
	validated, err := Validate(meta.Kind, meta.Broadcast, attendees)
	if err != nil {
		return nil, err
	}

	meta.Broadcast = &validated.BroadcastSpec
	if _, err := s.events.UpdateMeta(ctx, eventID, meta); err != nil {
		return nil, fmt.Errorf("broadcast.Schedule: %w", err)
	}

	due := time.Now()
	if validated.ScheduledSendTime != nil {
		due = *validated.ScheduledSendTime
	}

	if err := s.outbox.Enqueue(ctx, eventID, due); err != nil {
		return nil, fmt.Errorf("broadcast.Schedule: %w", err)
	}

	s.logger.Infow("broadcast scheduled",
		"event_id", eventID,
		"kind", meta.Kind,
		"due", due,
		"recipient_count", validated.RecipientCount,
	)
	return validated, nil
}

package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/xlab/closer"
	"go.uber.org/zap"

	"github.com/practicehq/calendar-backend/internal/model"
)

type outbox interface {
	PopDue(ctx context.Context, now time.Time) ([]int64, error)
}

type eventsService interface {
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	RecordBroadcastResult(ctx context.Context, id int64, status model.BroadcastStatus, sentCount int) error
}

type messenger interface {
	SendBroadcast(ctx context.Context, event *model.Event) (int, error)
}

type broadcastOutcome struct {
	status    model.BroadcastStatus
	sentCount int
}

// Sender is the dispatch loop that drains the broadcast outbox and pushes due
// specs to the external messaging dispatcher.
type Sender struct {
	logger    *zap.SugaredLogger
	outbox    outbox
	events    eventsService
	messenger messenger
	period    time.Duration

	// outcomes of sends whose result write failed; only the write is retried
	mu      sync.Mutex
	unsaved map[int64]broadcastOutcome
}

func NewSender(
	logger *zap.SugaredLogger,
	outbox outbox,
	events eventsService,
	messenger messenger,
	period time.Duration,
) *Sender {
	return &Sender{
		logger:    logger,
		outbox:    outbox,
		events:    events,
		messenger: messenger,
		period:    period,
		unsaved:   map[int64]broadcastOutcome{},
	}
}

func (s *Sender) Start(ctx context.Context) {
	// initial drain
	go s.dispatchDue(ctx, time.Now())

	ticker := time.NewTicker(s.period)
	done := make(chan bool)

	closer.Bind(func() {
		done <- true
		ticker.Stop()
	})

	for {
		select {
		case <-done:
			return
		case t := <-ticker.C:
			go s.dispatchDue(ctx, t)
		}
	}
}

func (s *Sender) dispatchDue(ctx context.Context, now time.Time) {
	s.flushUnsaved(ctx)

	ids, err := s.outbox.PopDue(ctx, now)
	if err != nil {
		s.logger.Errorw("failed to pop due broadcasts", "err", err)
		return
	}

	for _, id := range ids {
		s.dispatchOne(ctx, id)
	}
}

// flushUnsaved retries the result writes for broadcasts that already went out.
func (s *Sender) flushUnsaved(ctx context.Context) {
	s.mu.Lock()
	pending := make(map[int64]broadcastOutcome, len(s.unsaved))
	for id, outcome := range s.unsaved {
		pending[id] = outcome
	}
	s.mu.Unlock()

	for id, outcome := range pending {
		if err := s.events.RecordBroadcastResult(ctx, id, outcome.status, outcome.sentCount); err != nil {
			s.logger.Errorw("failed to record broadcast result", "event_id", id, "err", err)
			continue
		}
		s.mu.Lock()
		delete(s.unsaved, id)
		s.mu.Unlock()
	}
}

func (s *Sender) dispatchOne(ctx context.Context, id int64) {
	s.mu.Lock()
	_, held := s.unsaved[id]
	s.mu.Unlock()
	if held {
		// the message already went out, only the result write is outstanding
		s.logger.Debugw("broadcast already sent, result write pending", "event_id", id)
		return
	}

	event, err := s.events.GetEventByID(ctx, id)
	if err != nil {
		s.logger.Errorw("failed to get event for dispatch", "event_id", id, "err", err)
		return
	}

	if event.Meta == nil || event.Meta.Broadcast == nil {
		s.logger.Warnw("event in outbox has no broadcast spec, skipping", "event_id", id)
		return
	}
	if event.Meta.Broadcast.Status != model.BroadcastPending {
		s.logger.Debugw("broadcast already handled, skipping",
			"event_id", id,
			"status", event.Meta.Broadcast.Status,
		)
		return
	}
	if event.Status == model.EventStatusCancelled {
		s.logger.Infow("event cancelled before dispatch, skipping", "event_id", id)
		return
	}

	sentCount, err := s.messenger.SendBroadcast(ctx, event)
	status := model.BroadcastSent
	if err != nil {
		s.logger.Errorw("broadcast dispatch failed", "event_id", id, "err", err)
		status = model.BroadcastFailed
	}

	if err := s.events.RecordBroadcastResult(ctx, id, status, sentCount); err != nil {
		s.logger.Errorw("failed to record broadcast result", "event_id", id, "err", err)
		s.mu.Lock()
		s.unsaved[id] = broadcastOutcome{status: status, sentCount: sentCount}
		s.mu.Unlock()
	}
}

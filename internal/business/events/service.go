package events

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/practicehq/calendar-backend/internal/database"
	"github.com/practicehq/calendar-backend/internal/metadata"
	"github.com/practicehq/calendar-backend/internal/model"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

// Service owns the event lifecycle. Writes always go through the codec's
// merge-overlay encode against the event's current bag, so concurrent
// editors never clobber X- fields they don't understand.
type Service struct {
	db               database.PGX
	logger           *zap.SugaredLogger
	codec            *metadata.Codec
	eventsRepository eventsRepository
}

type eventsRepository interface {
	CreateEvent(ctx context.Context, q database.Queryable, event *model.Event) (int64, error)
	GetEventByID(ctx context.Context, q database.Queryable, id int64) (*model.Event, error)
	GetEvents(ctx context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.Event, error)
	UpdateEvent(ctx context.Context, q database.Queryable, event *model.Event) error
	CancelEvent(ctx context.Context, q database.Queryable, id int64, reason string) error
}

func NewService(db database.PGX, logger *zap.SugaredLogger, codec *metadata.Codec, repo eventsRepository) *Service {
	return &Service{
		db:               db,
		logger:           logger,
		codec:            codec,
		eventsRepository: repo,
	}
}

func (s *Service) CreateEvent(ctx context.Context, info *model.EventCreate) (*model.Event, error) {
	applyDefaults(info)

	if info.AllDay {
		info.From, info.To = normalizeAllDay(info.From, info.To)
	}

	repeatRule := ""
	if info.RepeatType != model.RepeatTypeNone {
		var err error
		repeatRule, err = getRule(info.RepeatType, info.From, nil)
		if err != nil {
			return nil, err
		}
	}

	var endDate *time.Time
	if info.RepeatType == model.RepeatTypeNone {
		endDate = &info.To
	}

	event := &model.Event{
		RepeatRule:  repeatRule,
		Exceptions:  map[int64]struct{}{},
		Until:       endDate,
		Metadata:    s.codec.Encode(info.Meta, nil),
		EventCreate: *info,
	}

	id, err := s.eventsRepository.CreateEvent(ctx, s.db, event)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.CreateEvent: %w", err)
	}

	event.ID = strconv.FormatInt(id, 10)
	event.Meta = s.codec.Decode(event.Metadata)
	return event, nil
}

func (s *Service) GetEventByID(ctx context.Context, id int64) (*model.Event, error) {
	event, err := s.eventsRepository.GetEventByID(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}

	event.Metadata = s.codec.Normalize(event.Metadata)
	event.Meta = s.codec.Decode(event.Metadata)
	return event, nil
}

func (s *Service) GetEvents(ctx context.Context, filter model.EventsFilter) ([]*model.Event, error) {
	baseEvents, err := s.eventsRepository.GetEvents(ctx, s.db, filter)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEvents: %w", err)
	}

	var res []*model.Event

	for _, e := range baseEvents {
		e.Metadata = s.codec.Normalize(e.Metadata)
		meta := s.codec.Decode(e.Metadata)

		if e.RepeatType == model.RepeatTypeNone {
			e.Meta = meta
			res = append(res, e)
			continue
		}

		duration := e.To.Sub(e.From)

		rOption, err := rrule.StrToROption(e.RepeatRule)
		if err != nil {
			return nil, fmt.Errorf("parse repeat rule %q: %w", e.RepeatRule, err)
		}
		rule, err := rrule.NewRRule(*rOption)
		if err != nil {
			return nil, fmt.Errorf("make rule: %w", err)
		}

		repeats := rule.Between(e.From, filter.To.Add(-1), true)
		for _, r := range repeats {
			from := r
			to := r.Add(duration)

			if filter.To.Before(from) || to.Before(filter.From) {
				continue
			}

			if _, ok := e.Exceptions[r.Unix()]; ok {
				continue
			}

			occurrence := *e
			occurrence.ID = fmt.Sprintf("%v_%v", e.ID, from.Unix())
			occurrence.From = from
			occurrence.To = to
			occurrence.Meta = meta
			res = append(res, &occurrence)
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].From.Before(res[j].From)
	})

	return res, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id int64, info *model.EventUpdate) (*model.Event, error) {
	oldEvent, err := s.eventsRepository.GetEventByID(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("get old event: %w", err)
	}

	from, to := info.From, info.To
	if info.AllDay {
		from, to = normalizeAllDay(from, to)
	}

	repeatRule := oldEvent.RepeatRule
	if oldEvent.RepeatType != model.RepeatTypeNone && !oldEvent.From.Equal(from) {
		repeatRule, err = getRule(oldEvent.RepeatType, from, nil)
		if err != nil {
			return nil, err
		}
	}

	var endDate *time.Time
	if oldEvent.RepeatType == model.RepeatTypeNone {
		endDate = &to
	}

	// The store overwrites metadata wholesale, so the new bag is built on
	// top of the one just read. An update that doesn't touch metadata keeps
	// the current typed record instead of downgrading the kind.
	base := s.codec.Normalize(oldEvent.Metadata)
	meta := info.Meta
	if meta == nil {
		meta = s.codec.Decode(base)
	}
	bag := s.codec.Encode(meta, base)

	event := &model.Event{
		ID:           oldEvent.ID,
		RepeatRule:   repeatRule,
		Exceptions:   oldEvent.Exceptions,
		Until:        endDate,
		CancelReason: oldEvent.CancelReason,
		Metadata:     bag,
		EventCreate: model.EventCreate{
			TenantID:    oldEvent.TenantID,
			Title:       info.Title,
			Description: info.Description,
			AllDay:      info.AllDay,
			From:        from,
			To:          to,
			Status:      info.Status,
			Visibility:  info.Visibility,
			Categories:  info.Categories,
			Attendees:   info.Attendees,
			Reminders:   info.Reminders,
			Attachments: info.Attachments,
			RepeatType:  oldEvent.RepeatType,
		},
	}

	if err := s.eventsRepository.UpdateEvent(ctx, s.db, event); err != nil {
		return nil, fmt.Errorf("eventsRepository.UpdateEvent: %w", err)
	}

	event.Meta = s.codec.Decode(bag)
	return event, nil
}

// CancelEvent soft-deletes: status moves to CANCELLED and the record stays.
// Cancelling an already cancelled event is a no-op success, so a lost
// confirmation can be retried safely.
func (s *Service) CancelEvent(ctx context.Context, id int64, reason string) error {
	event, err := s.eventsRepository.GetEventByID(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}

	if event.Status == model.EventStatusCancelled {
		return nil
	}

	if err := s.eventsRepository.CancelEvent(ctx, s.db, id, reason); err != nil {
		return fmt.Errorf("eventsRepository.CancelEvent: %w", err)
	}

	return nil
}

// RecordBroadcastResult writes the dispatcher's status report back into the
// event's bag through the normal read-merge-write path.
func (s *Service) RecordBroadcastResult(ctx context.Context, id int64, status model.BroadcastStatus, sentCount int) error {
	event, err := s.eventsRepository.GetEventByID(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}

	base := s.codec.Normalize(event.Metadata)
	meta := s.codec.Decode(base)
	if meta.Broadcast == nil {
		return fmt.Errorf("event %v has no broadcast to record result for", id)
	}

	meta.Broadcast.Status = status
	meta.Broadcast.SentCount = sentCount

	event.Metadata = s.codec.Encode(meta, base)
	if err := s.eventsRepository.UpdateEvent(ctx, s.db, event); err != nil {
		return fmt.Errorf("eventsRepository.UpdateEvent: %w", err)
	}

	return nil
}

// UpdateMeta re-encodes the supplied typed metadata over the event's current
// bag and persists it, leaving the scheduling fields untouched.
func (s *Service) UpdateMeta(ctx context.Context, id int64, meta *model.EventMeta) (*model.Event, error) {
	event, err := s.eventsRepository.GetEventByID(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}

	base := s.codec.Normalize(event.Metadata)
	event.Metadata = s.codec.Encode(meta, base)

	if err := s.eventsRepository.UpdateEvent(ctx, s.db, event); err != nil {
		return nil, fmt.Errorf("eventsRepository.UpdateEvent: %w", err)
	}

	event.Meta = s.codec.Decode(event.Metadata)
	return event, nil
}

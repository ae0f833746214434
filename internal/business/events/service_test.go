package events

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/practicehq/calendar-backend/internal/database"
	"github.com/practicehq/calendar-backend/internal/metadata"
	"github.com/practicehq/calendar-backend/internal/model"
	"go.uber.org/zap"
)

type fakeDB struct{}

func (fakeDB) Exec(ctx context.Context, s database.Sqlizer) (pgconn.CommandTag, error) {
	return nil, nil
}
func (fakeDB) Get(ctx context.Context, dst interface{}, s database.Sqlizer) error    { return nil }
func (fakeDB) Select(ctx context.Context, dst interface{}, s database.Sqlizer) error { return nil }
func (fakeDB) ExecRaw(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return nil, nil
}
func (fakeDB) GetPool(ctx context.Context) *pgxpool.Pool { return nil }
func (fakeDB) BeginTx(ctx context.Context, opts *pgx.TxOptions) (database.Tx, error) {
	return nil, nil
}

type fakeRepository struct {
	nextID    int64
	events    map[int64]*model.Event
	cancelled map[int64]string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		nextID:    1,
		events:    map[int64]*model.Event{},
		cancelled: map[int64]string{},
	}
}

func (r *fakeRepository) CreateEvent(ctx context.Context, q database.Queryable, event *model.Event) (int64, error) {
	id := r.nextID
	r.nextID++
	stored := *event
	stored.ID = strconv.FormatInt(id, 10)
	r.events[id] = &stored
	return id, nil
}

func (r *fakeRepository) GetEventByID(ctx context.Context, q database.Queryable, id int64) (*model.Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, model.ErrNoRecord
	}
	copied := *event
	return &copied, nil
}

func (r *fakeRepository) GetEvents(ctx context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.Event, error) {
	var res []*model.Event
	for _, e := range r.events {
		if e.TenantID == filter.TenantID {
			copied := *e
			res = append(res, &copied)
		}
	}
	return res, nil
}

func (r *fakeRepository) UpdateEvent(ctx context.Context, q database.Queryable, event *model.Event) error {
	id, err := strconv.ParseInt(event.ID, 10, 64)
	if err != nil {
		return err
	}
	stored := *event
	r.events[id] = &stored
	return nil
}

func (r *fakeRepository) CancelEvent(ctx context.Context, q database.Queryable, id int64, reason string) error {
	event, ok := r.events[id]
	if !ok {
		return model.ErrNoRecord
	}
	event.Status = model.EventStatusCancelled
	event.CancelReason = reason
	r.cancelled[id] = reason
	return nil
}

func newTestService(repo *fakeRepository) *Service {
	logger := zap.NewNop().Sugar()
	return NewService(fakeDB{}, logger, metadata.NewCodec(logger, "practicehq-calendar"), repo)
}

func TestCreateEventNormalizesAllDay(t *testing.T) {
	repo := newFakeRepository()
	s := newTestService(repo)

	loc, err := time.LoadLocation("Pacific/Auckland")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	event, err := s.CreateEvent(context.Background(), &model.EventCreate{
		TenantID: 1,
		Title:    "Planning day",
		AllDay:   true,
		From:     time.Date(2025, 6, 1, 10, 15, 0, 0, loc),
		To:       time.Date(2025, 6, 1, 11, 0, 0, 0, loc),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	wantFrom := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)
	wantTo := time.Date(2025, 6, 1, 23, 59, 59, 999_000_000, loc)
	if !event.From.Equal(wantFrom) {
		t.Errorf("expected start %v, got %v", wantFrom, event.From)
	}
	if !event.To.Equal(wantTo) {
		t.Errorf("expected end %v, got %v", wantTo, event.To)
	}
}

func TestCreateEventStampsMetadata(t *testing.T) {
	repo := newFakeRepository()
	s := newTestService(repo)

	event, err := s.CreateEvent(context.Background(), &model.EventCreate{
		TenantID: 1,
		Title:    "Catch-up",
		From:     time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		To:       time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if event.Metadata[metadata.PropEventType] != "STANDARD" {
		t.Errorf("expected STANDARD metadata, got %v", event.Metadata[metadata.PropEventType])
	}
	if event.Meta.Kind != model.KindStandard {
		t.Errorf("expected decoded kind STANDARD, got %v", event.Meta.Kind)
	}
}

func TestUpdateEventPreservesForeignMetadata(t *testing.T) {
	repo := newFakeRepository()
	s := newTestService(repo)

	event, err := s.CreateEvent(context.Background(), &model.EventCreate{
		TenantID: 1,
		Title:    "Before",
		From:     time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		To:       time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	// Another system wrote its own X- key between our read and write.
	repo.events[1].Metadata["X-FUTURE-FIELD"] = "v"

	updated, err := s.UpdateEvent(context.Background(), 1, &model.EventUpdate{
		TenantID: event.TenantID,
		Title:    "After",
		From:     event.From,
		To:       event.To,
		Status:   model.EventStatusConfirmed,
	})
	if err != nil {
		t.Fatalf("update event: %v", err)
	}

	if updated.Title != "After" {
		t.Errorf("expected updated title, got %q", updated.Title)
	}
	if updated.Metadata["X-FUTURE-FIELD"] != "v" {
		t.Errorf("expected foreign metadata preserved, got %v", updated.Metadata["X-FUTURE-FIELD"])
	}
}

func TestUpdateEventWithoutMetaKeepsKind(t *testing.T) {
	repo := newFakeRepository()
	s := newTestService(repo)

	event, err := s.CreateEvent(context.Background(), &model.EventCreate{
		TenantID: 1,
		Title:    "Campaign",
		From:     time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		To:       time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC),
		Meta: &model.EventMeta{
			Kind: model.KindSMSBroadcast,
			Broadcast: &model.BroadcastSpec{
				SMSContent: "sale on now",
			},
		},
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	updated, err := s.UpdateEvent(context.Background(), 1, &model.EventUpdate{
		TenantID: event.TenantID,
		Title:    "Campaign v2",
		From:     event.From,
		To:       event.To,
		Status:   model.EventStatusConfirmed,
	})
	if err != nil {
		t.Fatalf("update event: %v", err)
	}

	if updated.Meta.Kind != model.KindSMSBroadcast {
		t.Errorf("expected kind SMS_BROADCAST, got %v", updated.Meta.Kind)
	}
	if updated.Meta.Broadcast == nil || updated.Meta.Broadcast.SMSContent != "sale on now" {
		t.Errorf("expected broadcast spec preserved, got %+v", updated.Meta.Broadcast)
	}
}

func TestCancelEventIsIdempotent(t *testing.T) {
	repo := newFakeRepository()
	s := newTestService(repo)

	if _, err := s.CreateEvent(context.Background(), &model.EventCreate{
		TenantID: 1,
		Title:    "Doomed",
		From:     time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		To:       time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	if err := s.CancelEvent(context.Background(), 1, "client asked"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if repo.events[1].Status != model.EventStatusCancelled {
		t.Fatalf("expected CANCELLED, got %v", repo.events[1].Status)
	}

	// Retrying a cancel whose confirmation was lost must succeed.
	if err := s.CancelEvent(context.Background(), 1, "again"); err != nil {
		t.Fatalf("repeated cancel: %v", err)
	}
	if repo.cancelled[1] != "client asked" {
		t.Fatalf("second cancel must be a no-op, got reason %q", repo.cancelled[1])
	}
}

func TestRecordBroadcastResult(t *testing.T) {
	repo := newFakeRepository()
	s := newTestService(repo)

	if _, err := s.CreateEvent(context.Background(), &model.EventCreate{
		TenantID: 1,
		Title:    "Campaign",
		From:     time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		To:       time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC),
		Meta: &model.EventMeta{
			Kind: model.KindSMSBroadcast,
			Broadcast: &model.BroadcastSpec{
				SMSContent: "sale on now",
				Status:     model.BroadcastPending,
			},
		},
	}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	if err := s.RecordBroadcastResult(context.Background(), 1, model.BroadcastSent, 120); err != nil {
		t.Fatalf("record result: %v", err)
	}

	got, err := s.GetEventByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.Meta.Broadcast.Status != model.BroadcastSent {
		t.Errorf("expected SENT, got %v", got.Meta.Broadcast.Status)
	}
	if got.Meta.Broadcast.SentCount != 120 {
		t.Errorf("expected sent count 120, got %v", got.Meta.Broadcast.SentCount)
	}
}

func TestRecordBroadcastResultRejectsNonBroadcast(t *testing.T) {
	repo := newFakeRepository()
	s := newTestService(repo)

	if _, err := s.CreateEvent(context.Background(), &model.EventCreate{
		TenantID: 1,
		Title:    "Plain meeting",
		From:     time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		To:       time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	if err := s.RecordBroadcastResult(context.Background(), 1, model.BroadcastSent, 1); err == nil {
		t.Fatal("expected error for non-broadcast event")
	}
}

func TestGetEventsExpandsRecurrence(t *testing.T) {
	repo := newFakeRepository()
	s := newTestService(repo)

	if _, err := s.CreateEvent(context.Background(), &model.EventCreate{
		TenantID:   1,
		Title:      "Standup",
		From:       time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		To:         time.Date(2025, 6, 2, 9, 15, 0, 0, time.UTC),
		RepeatType: model.RepeatTypeEveryDay,
	}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	events, err := s.GetEvents(context.Background(), model.EventsFilter{
		TenantID: 1,
		From:     time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("get events: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(events))
	}
	for i, e := range events {
		want := time.Date(2025, 6, 2+i, 9, 0, 0, 0, time.UTC)
		if !e.From.Equal(want) {
			t.Errorf("occurrence %d: expected %v, got %v", i, want, e.From)
		}
		if e.Meta == nil || e.Meta.Kind != model.KindStandard {
			t.Errorf("occurrence %d: expected decoded standard meta", i)
		}
	}
}

package rsvp

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/practicehq/calendar-backend/internal/database"
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

type fakeEvents struct {
	nextID    int64
	created   []*model.EventCreate
	cancelled map[int64]string
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{nextID: 1, cancelled: map[int64]string{}}
}

func (f *fakeEvents) CreateEvent(ctx context.Context, info *model.EventCreate) (*model.Event, error) {
	f.created = append(f.created, info)
	event := &model.Event{EventCreate: *info}
	event.ID = strconv.FormatInt(f.nextID, 10)
	f.nextID++
	return event, nil
}

func (f *fakeEvents) CancelEvent(ctx context.Context, id int64, reason string) error {
	f.cancelled[id] = reason
	return nil
}

type fakeInvites struct {
	byUID map[string]*model.ICalInviteState
}

func newFakeInvites() *fakeInvites {
	return &fakeInvites{byUID: map[string]*model.ICalInviteState{}}
}

func (f *fakeInvites) CreateInvite(ctx context.Context, q database.Queryable, invite *model.ICalInviteState) error {
	stored := *invite
	f.byUID[invite.UID] = &stored
	return nil
}

func (f *fakeInvites) GetInviteByEventID(ctx context.Context, q database.Queryable, eventID int64) (*model.ICalInviteState, error) {
	for _, invite := range f.byUID {
		if invite.EventID == eventID {
			copied := *invite
			return &copied, nil
		}
	}
	return nil, model.ErrNoRecord
}

func (f *fakeInvites) GetInviteByUID(ctx context.Context, q database.Queryable, uid string) (*model.ICalInviteState, error) {
	invite, ok := f.byUID[uid]
	if !ok {
		return nil, model.ErrNoRecord
	}
	copied := *invite
	return &copied, nil
}

func (f *fakeInvites) UpdateInvite(ctx context.Context, q database.Queryable, invite *model.ICalInviteState) error {
	stored := *invite
	f.byUID[invite.UID] = &stored
	return nil
}

type fakeTransport struct {
	sent []model.ResponseStatus
}

func (f *fakeTransport) SendRSVPResponse(ctx context.Context, invite *model.ICalInviteState, response model.ResponseStatus) error {
	f.sent = append(f.sent, response)
	return nil
}

func newTestService() (*Service, *fakeEvents, *fakeInvites, *fakeTransport) {
	events := newFakeEvents()
	invites := newFakeInvites()
	transport := &fakeTransport{}
	service := NewService(fakeDB{}, zap.NewNop().Sugar(), events, invites, transport)
	return service, events, invites, transport
}

func inboundRequest(uid string, sequence int64) *model.InboundInvite {
	return &model.InboundInvite{
		UID:            uid,
		Method:         model.MethodRequest,
		OrganizerEmail: "organizer@example.com",
		OrganizerName:  "Organizer",
		Summary:        "Planning session",
		From:           time.Date(2022, 3, 14, 10, 0, 0, 0, time.UTC),
		To:             time.Date(2022, 3, 14, 11, 0, 0, 0, time.UTC),
		Sequence:       sequence,
		ReceivedAt:     time.Date(2022, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestIngestCreatesEventForNewInvite(t *testing.T) {
	service, events, invites, _ := newTestService()

	if err := service.Ingest(context.Background(), 7, inboundRequest("uid-1", 0)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if len(events.created) != 1 {
		t.Fatalf("expected 1 created event, got %d", len(events.created))
	}
	created := events.created[0]
	if created.TenantID != 7 {
		t.Errorf("expected tenant 7, got %d", created.TenantID)
	}
	if created.Meta == nil || created.Meta.Kind != model.KindICalInvite {
		t.Errorf("expected ICAL_INVITE meta, got %+v", created.Meta)
	}

	invite, err := invites.GetInviteByUID(context.Background(), nil, "uid-1")
	if err != nil {
		t.Fatalf("GetInviteByUID: %v", err)
	}
	if invite.ResponseStatus != model.ResponseNeedsAction {
		t.Errorf("expected NEEDS_ACTION, got %s", invite.ResponseStatus)
	}
}

func TestIngestDropsStaleSequence(t *testing.T) {
	service, _, invites, _ := newTestService()
	ctx := context.Background()

	if err := service.Ingest(ctx, 1, inboundRequest("uid-1", 3)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if _, err := service.Respond(ctx, 1, model.ResponseAccepted, "me@example.com", 3); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if err := service.Ingest(ctx, 1, inboundRequest("uid-1", 2)); err != nil {
		t.Fatalf("Ingest stale: %v", err)
	}

	invite, _ := invites.GetInviteByUID(ctx, nil, "uid-1")
	if invite.Sequence != 3 {
		t.Errorf("expected sequence 3, got %d", invite.Sequence)
	}
	if invite.ResponseStatus != model.ResponseAccepted {
		t.Errorf("expected response ACCEPTED to survive, got %s", invite.ResponseStatus)
	}
}

func TestIngestNewerRequestResetsResponse(t *testing.T) {
	service, _, invites, _ := newTestService()
	ctx := context.Background()

	if err := service.Ingest(ctx, 1, inboundRequest("uid-1", 1)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if _, err := service.Respond(ctx, 1, model.ResponseDeclined, "me@example.com", 1); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if err := service.Ingest(ctx, 1, inboundRequest("uid-1", 2)); err != nil {
		t.Fatalf("Ingest reschedule: %v", err)
	}

	invite, _ := invites.GetInviteByUID(ctx, nil, "uid-1")
	if invite.Sequence != 2 {
		t.Errorf("expected sequence 2, got %d", invite.Sequence)
	}
	if invite.ResponseStatus != model.ResponseNeedsAction {
		t.Errorf("expected response reset to NEEDS_ACTION, got %s", invite.ResponseStatus)
	}
}

func TestIngestCancelCancelsEventAndBlocksResponses(t *testing.T) {
	service, events, _, _ := newTestService()
	ctx := context.Background()

	if err := service.Ingest(ctx, 1, inboundRequest("uid-1", 3)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	cancel := inboundRequest("uid-1", 4)
	cancel.Method = model.MethodCancel
	if err := service.Ingest(ctx, 1, cancel); err != nil {
		t.Fatalf("Ingest cancel: %v", err)
	}

	if _, ok := events.cancelled[1]; !ok {
		t.Fatal("expected event 1 to be cancelled")
	}

	_, err := service.Respond(ctx, 1, model.ResponseAccepted, "me@example.com", 4)
	var cancelled *model.InviteCancelledError
	if !errors.As(err, &cancelled) {
		t.Fatalf("expected InviteCancelledError, got %v", err)
	}
}

func TestIngestCancelForUnknownUIDIsDropped(t *testing.T) {
	service, events, invites, _ := newTestService()

	cancel := inboundRequest("uid-unknown", 0)
	cancel.Method = model.MethodCancel
	if err := service.Ingest(context.Background(), 1, cancel); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if len(events.created) != 0 {
		t.Errorf("expected no events created, got %d", len(events.created))
	}
	if len(invites.byUID) != 0 {
		t.Errorf("expected no invites stored, got %d", len(invites.byUID))
	}
}

func TestRespondRejectsSupersededSequence(t *testing.T) {
	service, _, _, _ := newTestService()
	ctx := context.Background()

	if err := service.Ingest(ctx, 1, inboundRequest("uid-1", 5)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	_, err := service.Respond(ctx, 1, model.ResponseAccepted, "me@example.com", 4)
	var stale *model.StaleInviteError
	if !errors.As(err, &stale) {
		t.Fatalf("expected StaleInviteError, got %v", err)
	}
	if stale.Stored != 5 || stale.Incoming != 4 {
		t.Errorf("unexpected sequences in error: %+v", stale)
	}
}

func TestRespondIsIdempotentForSameAnswer(t *testing.T) {
	service, _, _, transport := newTestService()
	ctx := context.Background()

	if err := service.Ingest(ctx, 1, inboundRequest("uid-1", 1)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if _, err := service.Respond(ctx, 1, model.ResponseTentative, "me@example.com", 1); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if _, err := service.Respond(ctx, 1, model.ResponseTentative, "me@example.com", 1); err != nil {
		t.Fatalf("Respond repeat: %v", err)
	}

	if len(transport.sent) != 1 {
		t.Errorf("expected 1 outbound reply, got %d", len(transport.sent))
	}
}

func TestParseInbound(t *testing.T) {
	payload := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Example//EN",
		"METHOD:REQUEST",
		"BEGIN:VEVENT",
		"UID:uid-42@example.com",
		"DTSTAMP:20220301T090000Z",
		"DTSTART:20220314T100000Z",
		"DTEND:20220314T110000Z",
		"SEQUENCE:2",
		"SUMMARY:Planning session",
		"ORGANIZER;CN=Organizer:mailto:organizer@example.com",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	receivedAt := time.Date(2022, 3, 1, 9, 30, 0, 0, time.UTC)
	inbound, err := ParseInbound(strings.NewReader(payload), receivedAt)
	if err != nil {
		t.Fatalf("ParseInbound: %v", err)
	}

	if inbound.UID != "uid-42@example.com" {
		t.Errorf("unexpected uid %q", inbound.UID)
	}
	if inbound.Method != model.MethodRequest {
		t.Errorf("unexpected method %s", inbound.Method)
	}
	if inbound.Sequence != 2 {
		t.Errorf("unexpected sequence %d", inbound.Sequence)
	}
	if inbound.OrganizerEmail != "organizer@example.com" {
		t.Errorf("unexpected organizer %q", inbound.OrganizerEmail)
	}
	if inbound.OrganizerName != "Organizer" {
		t.Errorf("unexpected organizer name %q", inbound.OrganizerName)
	}
	if !inbound.From.Equal(time.Date(2022, 3, 14, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", inbound.From)
	}
	if !inbound.ReceivedAt.Equal(receivedAt) {
		t.Errorf("unexpected receivedAt %v", inbound.ReceivedAt)
	}
}

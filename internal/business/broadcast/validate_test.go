package broadcast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/practicehq/calendar-backend/internal/model"
	"go.uber.org/zap"
)

func TestValidateRecipientCountIsNotDeduplicated(t *testing.T) {
	attendees := []*model.Attendee{
		{Email: "a@example.com"},
		{Email: "b@example.com"},
	}
	spec := &model.BroadcastSpec{
		SMSContent:        "hello",
		SelectedClientIDs: []string{"c"},
	}

	validated, err := Validate(model.KindSMSBroadcast, spec, attendees)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if validated.RecipientCount != 3 {
		t.Errorf("expected recipient count 3, got %d", validated.RecipientCount)
	}
	if validated.Status != model.BroadcastPending {
		t.Errorf("expected status PENDING, got %s", validated.Status)
	}
	if validated.SentCount != 0 {
		t.Errorf("expected sent count 0, got %d", validated.SentCount)
	}
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name      string
		kind      model.EventKind
		spec      model.BroadcastSpec
		wantField string
	}{
		{
			name:      "sms kind requires content",
			kind:      model.KindSMSBroadcast,
			spec:      model.BroadcastSpec{},
			wantField: "smsContent",
		},
		{
			name:      "email kind requires subject",
			kind:      model.KindEmailBroadcast,
			spec:      model.BroadcastSpec{EmailContent: "body"},
			wantField: "emailSubject",
		},
		{
			name:      "both kind requires sms content",
			kind:      model.KindBothBroadcast,
			spec:      model.BroadcastSpec{EmailSubject: "hey", EmailContent: "body"},
			wantField: "smsContent",
		},
		{
			name:      "non broadcast kind rejected",
			kind:      model.KindStandard,
			spec:      model.BroadcastSpec{SMSContent: "hello"},
			wantField: "kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.kind, &tt.spec, nil)
			var validation *model.ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := validation.Fields[tt.wantField]; !ok {
				t.Errorf("expected error on %q, got %v", tt.wantField, validation.Fields)
			}
		})
	}
}

func TestValidateAcceptsPastScheduleTime(t *testing.T) {
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	spec := &model.BroadcastSpec{
		SMSContent:        "hello",
		ScheduledSendTime: &past,
	}

	if _, err := Validate(model.KindSMSBroadcast, spec, nil); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

type fakeOutbox struct {
	ops      *[]string
	eventIDs []int64
	due      []time.Time
}

func (f *fakeOutbox) Enqueue(ctx context.Context, eventID int64, due time.Time) error {
	*f.ops = append(*f.ops, "enqueue")
	f.eventIDs = append(f.eventIDs, eventID)
	f.due = append(f.due, due)
	return nil
}

type fakeEvents struct {
	ops   *[]string
	metas map[int64]*model.EventMeta
}

func (f *fakeEvents) UpdateMeta(ctx context.Context, id int64, meta *model.EventMeta) (*model.Event, error) {
	*f.ops = append(*f.ops, "update_meta")
	f.metas[id] = meta
	return &model.Event{EventCreate: model.EventCreate{Meta: meta}}, nil
}

func newTestScheduler() (*Scheduler, *fakeEvents, *fakeOutbox, *[]string) {
	ops := &[]string{}
	events := &fakeEvents{ops: ops, metas: map[int64]*model.EventMeta{}}
	outbox := &fakeOutbox{ops: ops}
	return NewScheduler(zap.NewNop().Sugar(), events, outbox), events, outbox, ops
}

func TestScheduleEnqueuesAtScheduledTime(t *testing.T) {
	scheduler, _, outbox, _ := newTestScheduler()

	at := time.Date(2022, 5, 1, 8, 0, 0, 0, time.UTC)
	meta := &model.EventMeta{
		Kind: model.KindSMSBroadcast,
		Broadcast: &model.BroadcastSpec{
			SMSContent:        "reminder",
			ScheduledSendTime: &at,
		},
	}

	if _, err := scheduler.Schedule(context.Background(), 42, meta, nil); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if len(outbox.eventIDs) != 1 || outbox.eventIDs[0] != 42 {
		t.Fatalf("expected event 42 enqueued, got %v", outbox.eventIDs)
	}
	if !outbox.due[0].Equal(at) {
		t.Errorf("expected due %v, got %v", at, outbox.due[0])
	}
}

func TestSchedulePersistsPendingSpecBeforeEnqueue(t *testing.T) {
	scheduler, events, _, ops := newTestScheduler()

	meta := &model.EventMeta{
		Kind:      model.KindSMSBroadcast,
		Broadcast: &model.BroadcastSpec{SMSContent: "reminder"},
	}

	if _, err := scheduler.Schedule(context.Background(), 42, meta, nil); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	// an immediately due outbox entry must never race a stale stored spec
	want := []string{"update_meta", "enqueue"}
	if len(*ops) != len(want) || (*ops)[0] != want[0] || (*ops)[1] != want[1] {
		t.Fatalf("expected operations %v, got %v", want, *ops)
	}

	stored := events.metas[42]
	if stored == nil || stored.Broadcast == nil {
		t.Fatal("expected broadcast spec persisted")
	}
	if stored.Broadcast.Status != model.BroadcastPending {
		t.Errorf("expected persisted status PENDING, got %s", stored.Broadcast.Status)
	}
}

func TestScheduleRejectsInvalidSpec(t *testing.T) {
	scheduler, events, outbox, _ := newTestScheduler()

	meta := &model.EventMeta{
		Kind:      model.KindSMSBroadcast,
		Broadcast: &model.BroadcastSpec{},
	}

	_, err := scheduler.Schedule(context.Background(), 42, meta, nil)
	var validation *model.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(outbox.eventIDs) != 0 {
		t.Errorf("expected nothing enqueued, got %v", outbox.eventIDs)
	}
	if len(events.metas) != 0 {
		t.Errorf("expected nothing persisted, got %v", events.metas)
	}
}

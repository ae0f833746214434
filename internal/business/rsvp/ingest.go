package rsvp

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/practicehq/calendar-backend/internal/model"
)

// ParseInbound normalizes an inbound ICS payload into the typed invite
// message. Any legacy or provider-specific quirks stop here; the ingestion
// gate only ever sees the canonical shape.
func ParseInbound(r io.Reader, receivedAt time.Time) (*model.InboundInvite, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("decode ics: %w", err)
	}

	method, err := cal.Props.Text(ical.PropMethod)
	if err != nil {
		return nil, fmt.Errorf("read METHOD: %w", err)
	}

	inboundMethod := model.MethodRequest
	switch strings.ToUpper(method) {
	case "", string(model.MethodRequest):
	case string(model.MethodCancel):
		inboundMethod = model.MethodCancel
	default:
		return nil, fmt.Errorf("unsupported METHOD %q", method)
	}

	events := cal.Events()
	if len(events) == 0 {
		return nil, fmt.Errorf("ics payload contains no VEVENT")
	}
	event := events[0]

	uid, err := event.Props.Text(ical.PropUID)
	if err != nil || uid == "" {
		return nil, fmt.Errorf("missing UID")
	}

	summary, _ := event.Props.Text(ical.PropSummary)
	description, _ := event.Props.Text(ical.PropDescription)

	start, err := event.DateTimeStart(time.UTC)
	if err != nil {
		return nil, fmt.Errorf("read DTSTART: %w", err)
	}
	end, err := event.DateTimeEnd(time.UTC)
	if err != nil {
		return nil, fmt.Errorf("read DTEND: %w", err)
	}

	inbound := &model.InboundInvite{
		UID:         uid,
		Method:      inboundMethod,
		Summary:     summary,
		Description: description,
		From:        start,
		To:          end,
		ReceivedAt:  receivedAt,
	}

	if p := event.Props.Get(ical.PropSequence); p != nil {
		seq, err := strconv.ParseInt(strings.TrimSpace(p.Value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SEQUENCE %q: %w", p.Value, err)
		}
		inbound.Sequence = seq
	}

	if p := event.Props.Get(ical.PropOrganizer); p != nil {
		inbound.OrganizerEmail = strings.TrimPrefix(strings.TrimPrefix(p.Value, "mailto:"), "MAILTO:")
		inbound.OrganizerName = p.Params.Get("CN")
	}

	return inbound, nil
}

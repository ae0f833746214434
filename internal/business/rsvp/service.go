package rsvp

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/practicehq/calendar-backend/internal/database"
	"github.com/practicehq/calendar-backend/internal/model"
)

type eventsService interface {
	CreateEvent(ctx context.Context, info *model.EventCreate) (*model.Event, error)
	CancelEvent(ctx context.Context, id int64, reason string) error
}

type invitesRepository interface {
	CreateInvite(ctx context.Context, q database.Queryable, invite *model.ICalInviteState) error
	GetInviteByEventID(ctx context.Context, q database.Queryable, eventID int64) (*model.ICalInviteState, error)
	GetInviteByUID(ctx context.Context, q database.Queryable, uid string) (*model.ICalInviteState, error)
	UpdateInvite(ctx context.Context, q database.Queryable, invite *model.ICalInviteState) error
}

// transport delivers the attendee's reply back to the organizer, usually as
// an outbound ICS REPLY handled by the mail relay.
type transport interface {
	SendRSVPResponse(ctx context.Context, invite *model.ICalInviteState, response model.ResponseStatus) error
}

type Service struct {
	db        database.PGX
	logger    *zap.SugaredLogger
	events    eventsService
	invites   invitesRepository
	transport transport
}

func NewService(
	db database.PGX,
	logger *zap.SugaredLogger,
	events eventsService,
	invites invitesRepository,
	transport transport,
) *Service {
	return &Service{
		db:        db,
		logger:    logger,
		events:    events,
		invites:   invites,
		transport: transport,
	}
}

// Ingest applies an inbound invite to local state. Messages older than what
// is already stored are dropped without error, so replayed or out-of-order
// deliveries never roll an event back.
func (s *Service) Ingest(ctx context.Context, tenantID int64, inbound *model.InboundInvite) error {
	stored, err := s.invites.GetInviteByUID(ctx, s.db, inbound.UID)
	if err != nil && !errors.Is(err, model.ErrNoRecord) {
		return fmt.Errorf("rsvp.Ingest: %w", err)
	}

	if stored == nil {
		return s.ingestNew(ctx, tenantID, inbound)
	}

	if inbound.Sequence < stored.Sequence {
		s.logger.Debugw("dropping stale invite",
			"uid", inbound.UID,
			"stored_sequence", stored.Sequence,
			"incoming_sequence", inbound.Sequence,
		)
		return nil
	}

	stored.Method = inbound.Method
	stored.OrganizerEmail = inbound.OrganizerEmail
	stored.OrganizerName = inbound.OrganizerName
	stored.ReceivedAt = inbound.ReceivedAt

	switch inbound.Method {
	case model.MethodCancel:
		// ResponseStatus is kept as is for audit.
		if err := s.events.CancelEvent(ctx, stored.EventID, "organizer cancelled"); err != nil {
			return fmt.Errorf("rsvp.Ingest: %w", err)
		}
	case model.MethodRequest:
		if inbound.Sequence > stored.Sequence {
			// A rescheduled invite needs a fresh answer.
			stored.ResponseStatus = model.ResponseNeedsAction
			stored.RespondedBy = ""
		}
	}
	stored.Sequence = inbound.Sequence

	if err := s.invites.UpdateInvite(ctx, s.db, stored); err != nil {
		return fmt.Errorf("rsvp.Ingest: %w", err)
	}
	return nil
}

func (s *Service) ingestNew(ctx context.Context, tenantID int64, inbound *model.InboundInvite) error {
	if inbound.Method == model.MethodCancel {
		s.logger.Debugw("cancel for unknown invite, dropping", "uid", inbound.UID)
		return nil
	}

	event, err := s.events.CreateEvent(ctx, &model.EventCreate{
		TenantID:    tenantID,
		Title:       inbound.Summary,
		Description: inbound.Description,
		From:        inbound.From,
		To:          inbound.To,
		Meta:        &model.EventMeta{Kind: model.KindICalInvite},
	})
	if err != nil {
		return fmt.Errorf("rsvp.ingestNew: %w", err)
	}

	eventID, err := eventIDOf(event)
	if err != nil {
		return fmt.Errorf("rsvp.ingestNew: %w", err)
	}

	invite := &model.ICalInviteState{
		EventID:        eventID,
		UID:            inbound.UID,
		Method:         model.MethodRequest,
		OrganizerEmail: inbound.OrganizerEmail,
		OrganizerName:  inbound.OrganizerName,
		ResponseStatus: model.ResponseNeedsAction,
		Sequence:       inbound.Sequence,
		ReceivedAt:     inbound.ReceivedAt,
	}
	if err := s.invites.CreateInvite(ctx, s.db, invite); err != nil {
		return fmt.Errorf("rsvp.ingestNew: %w", err)
	}
	return nil
}

// Respond records the attendee's answer. seenSequence is the invite revision
// the caller was looking at when they answered; answers to a superseded
// revision are rejected so a reply never lands on terms the organizer has
// since changed.
func (s *Service) Respond(ctx context.Context, eventID int64, response model.ResponseStatus, fromEmail string, seenSequence int64) (*model.ICalInviteState, error) {
	invite, err := s.invites.GetInviteByEventID(ctx, s.db, eventID)
	if err != nil {
		return nil, fmt.Errorf("rsvp.Respond: %w", err)
	}

	if invite.Cancelled() {
		return nil, &model.InviteCancelledError{EventID: eventID}
	}
	if seenSequence < invite.Sequence {
		return nil, &model.StaleInviteError{Stored: invite.Sequence, Incoming: seenSequence}
	}

	if invite.ResponseStatus == response && invite.RespondedBy == fromEmail {
		return invite, nil
	}

	invite.ResponseStatus = response
	invite.RespondedBy = fromEmail
	if err := s.invites.UpdateInvite(ctx, s.db, invite); err != nil {
		return nil, fmt.Errorf("rsvp.Respond: %w", err)
	}

	if err := s.transport.SendRSVPResponse(ctx, invite, response); err != nil {
		return nil, fmt.Errorf("rsvp.Respond: %w", err)
	}
	return invite, nil
}

// Cancel is the local user cancelling the event. The invite record is left
// untouched so a later inbound CANCEL from the organizer stays
// distinguishable from a local cancellation.
func (s *Service) Cancel(ctx context.Context, eventID int64, reason string) error {
	if err := s.events.CancelEvent(ctx, eventID, reason); err != nil {
		return fmt.Errorf("rsvp.Cancel: %w", err)
	}
	return nil
}

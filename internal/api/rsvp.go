package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/practicehq/calendar-backend/internal/business/rsvp"
	"github.com/practicehq/calendar-backend/internal/model"
)

func (a *Api) inboundICalHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := a.tenantFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	inbound, err := rsvp.ParseInbound(r.Body, time.Now())
	if err != nil {
		a.badRequestResponse(w, r, fmt.Errorf("parse ics: %w", err))
		return
	}

	if err := a.rsvpService.Ingest(r.Context(), tenantID, inbound); err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("ingest invite: %w", err))
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (a *Api) respondRSVPHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseEventID(r)
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	req := &struct {
		Response  model.ResponseStatus `json:"response"`
		FromEmail string               `json:"from_email"`
		Sequence  int64                `json:"sequence"`
	}{}
	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	switch req.Response {
	case model.ResponseAccepted, model.ResponseDeclined, model.ResponseTentative:
	default:
		a.failedValidationResponse(w, r, map[string]string{"response": "must be ACCEPTED, DECLINED or TENTATIVE"})
		return
	}

	invite, err := a.rsvpService.Respond(r.Context(), id, req.Response, req.FromEmail, req.Sequence)
	if err != nil {
		var cancelled *model.InviteCancelledError
		var stale *model.StaleInviteError
		switch {
		case errors.Is(err, model.ErrNoRecord):
			a.notFoundResponse(w, r)
		case errors.As(err, &cancelled):
			a.conflictResponse(w, r, cancelled.Error())
		case errors.As(err, &stale):
			a.conflictResponse(w, r, stale.Error())
		default:
			a.serverErrorResponse(w, r, fmt.Errorf("respond: %w", err))
		}
		return
	}

	resp := &struct {
		EventID  int64                `json:"event_id"`
		Response model.ResponseStatus `json:"response"`
		Sequence int64                `json:"sequence"`
	}{
		EventID:  invite.EventID,
		Response: invite.ResponseStatus,
		Sequence: invite.Sequence,
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/practicehq/calendar-backend/internal/model"
)

func (a *Api) scheduleBroadcastHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseEventID(r)
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	event, err := a.eventsService.GetEventByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNoRecord):
			a.notFoundResponse(w, r)
		default:
			a.serverErrorResponse(w, r, fmt.Errorf("get event: %w", err))
		}
		return
	}

	if event.Meta == nil || event.Meta.Broadcast == nil {
		a.failedValidationResponse(w, r, map[string]string{"broadcast": "event has no broadcast spec"})
		return
	}

	validated, err := a.broadcastService.Schedule(r.Context(), id, event.Meta, event.Attendees)
	if err != nil {
		var validation *model.ValidationError
		switch {
		case errors.As(err, &validation):
			a.failedValidationResponse(w, r, validation.Fields)
		default:
			a.serverErrorResponse(w, r, fmt.Errorf("schedule broadcast: %w", err))
		}
		return
	}

	resp := &struct {
		Broadcast      *broadcastResp `json:"broadcast"`
		RecipientCount int            `json:"recipient_count"`
	}{
		Broadcast:      mapToBroadcastResp(&validated.BroadcastSpec),
		RecipientCount: validated.RecipientCount,
	}

	if err := a.writeJSON(w, http.StatusAccepted, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/practicehq/calendar-backend/internal/model"
	"github.com/practicehq/calendar-backend/internal/pkg/validator"
)

func (a *Api) createEventHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := a.tenantFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	req := &struct {
		Title       string           `json:"title"`
		Description string           `json:"description"`
		AllDay      bool             `json:"all_day"`
		From        dateTime         `json:"from"`
		To          dateTime         `json:"to"`
		Visibility  model.Visibility `json:"visibility"`
		Categories  []string         `json:"categories"`
		Attendees   []*attendeeReq   `json:"attendees"`
		RepeatType  model.RepeatType `json:"repeat_type"`
		Broadcast   *broadcastReq    `json:"broadcast"`
		Kind        model.EventKind  `json:"kind"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(len(req.Title) != 0, "title", "title must be provided")
	v.Check(!time.Time(req.From).IsZero(), "from", "from must be provided")
	v.Check(!time.Time(req.To).IsZero(), "to", "to must be provided")
	if req.Kind != "" {
		v.Check(req.Kind.Valid(), "kind", "unrecognized event kind")
	}
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	attendees, err := mapSlice(req.Attendees, mapToAttendee)
	if err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	meta := &model.EventMeta{Kind: model.KindStandard}
	if req.Kind != "" {
		meta.Kind = req.Kind
	}
	if req.Broadcast != nil {
		meta.Broadcast = mapToBroadcastSpec(req.Broadcast)
	}

	event, err := a.eventsService.CreateEvent(r.Context(), &model.EventCreate{
		TenantID:    tenantID,
		Title:       req.Title,
		Description: req.Description,
		AllDay:      req.AllDay,
		From:        time.Time(req.From),
		To:          time.Time(req.To),
		Visibility:  req.Visibility,
		Categories:  req.Categories,
		Attendees:   attendees,
		RepeatType:  req.RepeatType,
		Meta:        meta,
	})
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("create event: %w", err))
		return
	}

	resp, err := mapToEventResp(event)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) getEventsHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := a.tenantFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	filter, err := parseEventsQuery(r)
	if err != nil {
		a.badRequestResponse(w, r, err)
		return
	}
	filter.TenantID = tenantID

	events, err := a.eventsService.GetEvents(r.Context(), *filter)
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("get events: %w", err))
		return
	}

	resp, err := mapSlice(events, mapToEventResp)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) getEventHandler(w http.ResponseWriter, r *http.Request) {
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

	resp, err := mapToEventResp(event)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) updateEventHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := a.tenantFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	id, err := parseEventID(r)
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	req := &struct {
		Title       string           `json:"title"`
		Description string           `json:"description"`
		AllDay      bool             `json:"all_day"`
		From        dateTime         `json:"from"`
		To          dateTime         `json:"to"`
		Visibility  model.Visibility `json:"visibility"`
		Categories  []string         `json:"categories"`
		Attendees   []*attendeeReq   `json:"attendees"`
		Broadcast   *broadcastReq    `json:"broadcast"`
		Kind        model.EventKind  `json:"kind"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(len(req.Title) != 0, "title", "title must be provided")
	v.Check(!time.Time(req.From).IsZero(), "from", "from must be provided")
	v.Check(!time.Time(req.To).IsZero(), "to", "to must be provided")
	if req.Kind != "" {
		v.Check(req.Kind.Valid(), "kind", "unrecognized event kind")
	}
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	attendees, err := mapSlice(req.Attendees, mapToAttendee)
	if err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	var meta *model.EventMeta
	if req.Kind != "" || req.Broadcast != nil {
		meta = &model.EventMeta{Kind: model.KindStandard}
		if req.Kind != "" {
			meta.Kind = req.Kind
		}
		if req.Broadcast != nil {
			meta.Broadcast = mapToBroadcastSpec(req.Broadcast)
		}
	}

	event, err := a.eventsService.UpdateEvent(r.Context(), id, &model.EventUpdate{
		TenantID:    tenantID,
		Title:       req.Title,
		Description: req.Description,
		AllDay:      req.AllDay,
		From:        time.Time(req.From),
		To:          time.Time(req.To),
		Visibility:  req.Visibility,
		Categories:  req.Categories,
		Attendees:   attendees,
		Meta:        meta,
	})
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNoRecord):
			a.notFoundResponse(w, r)
		default:
			a.serverErrorResponse(w, r, fmt.Errorf("update event: %w", err))
		}
		return
	}

	resp, err := mapToEventResp(event)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) cancelEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseEventID(r)
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	req := &struct {
		Reason string `json:"reason"`
	}{}
	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	if err := a.eventsService.CancelEvent(r.Context(), id, req.Reason); err != nil {
		switch {
		case errors.Is(err, model.ErrNoRecord):
			a.notFoundResponse(w, r)
		default:
			a.serverErrorResponse(w, r, fmt.Errorf("cancel event: %w", err))
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

func parseEventID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
}

func parseEventsQuery(r *http.Request) (*model.EventsFilter, error) {
	var err error

	res := &model.EventsFilter{}

	v := r.URL.Query().Get("from")
	if v == "" {
		return nil, fmt.Errorf("from must be provided")
	}
	res.From, err = time.Parse(dateTimeFormat, v)
	if err != nil {
		return nil, fmt.Errorf("invalid time format: %w", err)
	}

	v = r.URL.Query().Get("to")
	if v == "" {
		return nil, fmt.Errorf("to must be provided")
	}
	res.To, err = time.Parse(dateTimeFormat, v)
	if err != nil {
		return nil, fmt.Errorf("invalid time format: %w", err)
	}

	return res, nil
}

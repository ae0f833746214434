package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/practicehq/calendar-backend/internal/model"
	"github.com/practicehq/calendar-backend/internal/pkg/bookingtoken"
	"github.com/practicehq/calendar-backend/internal/pkg/validator"
)

func (a *Api) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := a.tenantFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	req := &struct {
		Title           string              `json:"title"`
		From            dateTime            `json:"from"`
		To              dateTime            `json:"to"`
		BookerName      string              `json:"booker_name"`
		BookerEmail     string              `json:"booker_email"`
		BookerPhone     string              `json:"booker_phone"`
		BookerTimezone  string              `json:"booker_timezone"`
		PaymentAmount   int64               `json:"payment_amount_minor_units"`
		PaymentCurrency string              `json:"payment_currency"`
		MeetingLink     string              `json:"meeting_link"`
		LinkedProjectID string              `json:"linked_project_id"`
		CustomAnswers   []*customAnswerResp `json:"custom_answers"`
	}{}
	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(len(req.Title) != 0, "title", "title must be provided")
	v.Check(!time.Time(req.From).IsZero(), "from", "from must be provided")
	v.Check(!time.Time(req.To).IsZero(), "to", "to must be provided")
	v.Check(len(req.BookerEmail) != 0, "booker_email", "booker email must be provided")
	v.Check(req.PaymentAmount >= 0, "payment_amount_minor_units", "payment amount must not be negative")
	if req.PaymentAmount > 0 {
		v.Check(len(req.PaymentCurrency) == 3, "payment_currency", "currency must be an ISO 4217 code")
	}
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	answers := make([]model.CustomAnswer, len(req.CustomAnswers))
	for i, answer := range req.CustomAnswers {
		answers[i] = model.CustomAnswer{Question: answer.Question, Answer: answer.Answer}
	}
	if len(answers) == 0 {
		answers = nil
	}

	paymentStatus := model.PaymentNotRequired
	if req.PaymentAmount > 0 {
		paymentStatus = model.PaymentPending
	}

	event, err := a.bookingService.CreateBooking(r.Context(), &model.EventCreate{
		TenantID: tenantID,
		Title:    req.Title,
		From:     time.Time(req.From),
		To:       time.Time(req.To),
		Meta: &model.EventMeta{
			Kind: model.KindPublicBooking,
			Booking: &model.BookingRecord{
				BookerName:             req.BookerName,
				BookerEmail:            req.BookerEmail,
				BookerPhone:            req.BookerPhone,
				BookerTimezone:         req.BookerTimezone,
				BookingStatus:          model.BookingPending,
				PaymentStatus:          paymentStatus,
				PaymentAmountMinorUnit: req.PaymentAmount,
				PaymentCurrency:        req.PaymentCurrency,
				MeetingLink:            req.MeetingLink,
				LinkedProjectID:        req.LinkedProjectID,
				CustomAnswers:          answers,
			},
		},
	})
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("create booking: %w", err))
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

func (a *Api) getBookingByTokenHandler(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	event, err := a.bookingService.GetBookingByToken(r.Context(), token)
	if err != nil {
		var invalid *bookingtoken.InvalidTokenError
		switch {
		case errors.Is(err, model.ErrNoRecord), errors.As(err, &invalid):
			a.notFoundResponse(w, r)
		default:
			a.serverErrorResponse(w, r, fmt.Errorf("get booking: %w", err))
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

func (a *Api) paymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	req := &struct {
		EventID int64               `json:"event_id"`
		Status  model.PaymentStatus `json:"status"`
	}{}
	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	switch req.Status {
	case model.PaymentNotRequired, model.PaymentPending, model.PaymentCompleted,
		model.PaymentFailed, model.PaymentRefunded:
	default:
		a.failedValidationResponse(w, r, map[string]string{"status": "unrecognized payment status"})
		return
	}

	if _, err := a.bookingService.UpdatePaymentStatus(r.Context(), req.EventID, req.Status); err != nil {
		switch {
		case errors.Is(err, model.ErrNoRecord):
			a.notFoundResponse(w, r)
		default:
			a.serverErrorResponse(w, r, fmt.Errorf("update payment status: %w", err))
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

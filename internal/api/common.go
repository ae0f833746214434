package api

import (
	"time"

	"github.com/practicehq/calendar-backend/internal/model"
)

type attendeeResp struct {
	Email        string               `json:"email"`
	Name         string               `json:"name,omitempty"`
	Role         model.AttendeeRole   `json:"role"`
	Status       model.ResponseStatus `json:"status"`
	IsOrganizer  bool                 `json:"is_organizer"`
	RSVPRequired bool                 `json:"rsvp_required"`
}

type broadcastResp struct {
	SMSContent        string                `json:"sms_content,omitempty"`
	SMSTemplateID     string                `json:"sms_template_id,omitempty"`
	EmailSubject      string                `json:"email_subject,omitempty"`
	EmailContent      string                `json:"email_content,omitempty"`
	EmailTemplateID   string                `json:"email_template_id,omitempty"`
	RecipientListID   string                `json:"recipient_list_id,omitempty"`
	SelectedClientIDs []string              `json:"selected_client_ids,omitempty"`
	ScheduledSendTime *dateTime             `json:"scheduled_send_time,omitempty"`
	UseAlphaID        bool                  `json:"use_alpha_id"`
	Status            model.BroadcastStatus `json:"status,omitempty"`
	SentCount         int                   `json:"sent_count"`
}

type customAnswerResp struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type bookingResp struct {
	BookerName      string              `json:"booker_name,omitempty"`
	BookerEmail     string              `json:"booker_email,omitempty"`
	BookerPhone     string              `json:"booker_phone,omitempty"`
	BookerTimezone  string              `json:"booker_timezone,omitempty"`
	BookingStatus   model.BookingStatus `json:"booking_status,omitempty"`
	PaymentStatus   model.PaymentStatus `json:"payment_status,omitempty"`
	PaymentAmount   int64               `json:"payment_amount_minor_units"`
	PaymentCurrency string              `json:"payment_currency,omitempty"`
	MeetingLink     string              `json:"meeting_link,omitempty"`
	BookingToken    string              `json:"booking_token,omitempty"`
	LinkedProjectID string              `json:"linked_project_id,omitempty"`
	CustomAnswers   []*customAnswerResp `json:"custom_answers,omitempty"`
}

type eventResp struct {
	ID           string            `json:"id"`
	Kind         model.EventKind   `json:"kind"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	AllDay       bool              `json:"all_day"`
	From         dateTime          `json:"from"`
	To           dateTime          `json:"to"`
	Status       model.EventStatus `json:"status"`
	Visibility   model.Visibility  `json:"visibility"`
	Categories   []string          `json:"categories,omitempty"`
	Attendees    []*attendeeResp   `json:"attendees,omitempty"`
	RepeatType   model.RepeatType  `json:"repeat_type"`
	CancelReason string            `json:"cancel_reason,omitempty"`
	Broadcast    *broadcastResp    `json:"broadcast,omitempty"`
	Booking      *bookingResp      `json:"booking,omitempty"`
	Extra        model.Properties  `json:"extra,omitempty"`
}

func mapToEventResp(event *model.Event) (*eventResp, error) {
	attendees, err := mapSlice(event.Attendees, mapToAttendeeResp)
	if err != nil {
		return nil, err
	}

	resp := &eventResp{
		ID:           event.ID,
		Kind:         model.KindStandard,
		Title:        event.Title,
		Description:  event.Description,
		AllDay:       event.AllDay,
		From:         dateTime(event.From),
		To:           dateTime(event.To),
		Status:       event.Status,
		Visibility:   event.Visibility,
		Categories:   event.Categories,
		Attendees:    attendees,
		RepeatType:   event.RepeatType,
		CancelReason: event.CancelReason,
	}

	if event.Meta != nil {
		resp.Kind = event.Meta.Kind
		resp.Extra = event.Meta.Extra
		resp.Broadcast = mapToBroadcastResp(event.Meta.Broadcast)
		resp.Booking = mapToBookingResp(event.Meta.Booking)
	}

	return resp, nil
}

func mapToAttendeeResp(a *model.Attendee) (*attendeeResp, error) {
	return &attendeeResp{
		Email:        a.Email,
		Name:         a.Name,
		Role:         a.Role,
		Status:       a.Status,
		IsOrganizer:  a.IsOrganizer,
		RSVPRequired: a.RSVPRequired,
	}, nil
}

func mapToBroadcastResp(spec *model.BroadcastSpec) *broadcastResp {
	if spec == nil {
		return nil
	}

	resp := &broadcastResp{
		SMSContent:        spec.SMSContent,
		SMSTemplateID:     spec.SMSTemplateID,
		EmailSubject:      spec.EmailSubject,
		EmailContent:      spec.EmailContent,
		EmailTemplateID:   spec.EmailTemplateID,
		RecipientListID:   spec.RecipientListID,
		SelectedClientIDs: spec.SelectedClientIDs,
		UseAlphaID:        spec.UseAlphaID,
		Status:            spec.Status,
		SentCount:         spec.SentCount,
	}
	if spec.ScheduledSendTime != nil {
		scheduled := dateTime(*spec.ScheduledSendTime)
		resp.ScheduledSendTime = &scheduled
	}
	return resp
}

func mapToBookingResp(rec *model.BookingRecord) *bookingResp {
	if rec == nil {
		return nil
	}

	answers := make([]*customAnswerResp, len(rec.CustomAnswers))
	for i, answer := range rec.CustomAnswers {
		answers[i] = &customAnswerResp{Question: answer.Question, Answer: answer.Answer}
	}
	if len(answers) == 0 {
		answers = nil
	}

	return &bookingResp{
		BookerName:      rec.BookerName,
		BookerEmail:     rec.BookerEmail,
		BookerPhone:     rec.BookerPhone,
		BookerTimezone:  rec.BookerTimezone,
		BookingStatus:   rec.BookingStatus,
		PaymentStatus:   rec.PaymentStatus,
		PaymentAmount:   rec.PaymentAmountMinorUnit,
		PaymentCurrency: rec.PaymentCurrency,
		MeetingLink:     rec.MeetingLink,
		BookingToken:    rec.BookingToken,
		LinkedProjectID: rec.LinkedProjectID,
		CustomAnswers:   answers,
	}
}

type attendeeReq struct {
	Email        string               `json:"email"`
	Name         string               `json:"name"`
	Role         model.AttendeeRole   `json:"role"`
	Status       model.ResponseStatus `json:"status"`
	IsOrganizer  bool                 `json:"is_organizer"`
	RSVPRequired *bool                `json:"rsvp_required"`
}

func mapToAttendee(req *attendeeReq) (*model.Attendee, error) {
	rsvpRequired := true
	if req.RSVPRequired != nil {
		rsvpRequired = *req.RSVPRequired
	}

	return &model.Attendee{
		Email:        req.Email,
		Name:         req.Name,
		Role:         req.Role,
		Status:       req.Status,
		IsOrganizer:  req.IsOrganizer,
		RSVPRequired: rsvpRequired,
	}, nil
}

type broadcastReq struct {
	SMSContent        string    `json:"sms_content"`
	SMSTemplateID     string    `json:"sms_template_id"`
	EmailSubject      string    `json:"email_subject"`
	EmailContent      string    `json:"email_content"`
	EmailTemplateID   string    `json:"email_template_id"`
	RecipientListID   string    `json:"recipient_list_id"`
	SelectedClientIDs []string  `json:"selected_client_ids"`
	ScheduledSendTime *dateTime `json:"scheduled_send_time"`
	UseAlphaID        bool      `json:"use_alpha_id"`
}

func mapToBroadcastSpec(req *broadcastReq) *model.BroadcastSpec {
	spec := &model.BroadcastSpec{
		SMSContent:        req.SMSContent,
		SMSTemplateID:     req.SMSTemplateID,
		EmailSubject:      req.EmailSubject,
		EmailContent:      req.EmailContent,
		EmailTemplateID:   req.EmailTemplateID,
		RecipientListID:   req.RecipientListID,
		SelectedClientIDs: req.SelectedClientIDs,
		UseAlphaID:        req.UseAlphaID,
	}
	if req.ScheduledSendTime != nil {
		scheduled := time.Time(*req.ScheduledSendTime)
		spec.ScheduledSendTime = &scheduled
	}
	return spec
}

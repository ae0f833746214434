package events

import (
	"strconv"
	"time"

	"github.com/practicehq/calendar-backend/internal/model"
)

type eventDTO struct {
	ID             int64
	TenantID       int64
	Title          string
	Description    string
	AllDay         bool
	Status         string
	Visibility     string
	Categories     []string
	Attendees      []*attendeeDTO
	Reminders      []*reminderDTO
	Attachments    []*attachmentDTO
	RepeatType     int
	StartDate      time.Time
	EndDate        *time.Time
	Duration       time.Duration
	RecurrenceRule string
	Exceptions     []time.Time
	Metadata       map[string]interface{}
	CancelReason   string
}

type attendeeDTO struct {
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	IsOrganizer  bool   `json:"is_organizer"`
	RSVPRequired bool   `json:"rsvp_required"`
}

type reminderDTO struct {
	MinutesBefore int    `json:"minutes_before"`
	Method        string `json:"method"`
	Enabled       bool   `json:"enabled"`
}

type attachmentDTO struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func mapToEvent(dto *eventDTO) *model.Event {
	exceptions := make(map[int64]struct{}, len(dto.Exceptions))
	for _, e := range dto.Exceptions {
		exceptions[e.Unix()] = struct{}{}
	}

	attendees := make([]*model.Attendee, len(dto.Attendees))
	for i, a := range dto.Attendees {
		attendees[i] = &model.Attendee{
			Email:        a.Email,
			Name:         a.Name,
			Role:         model.AttendeeRole(a.Role),
			Status:       model.ResponseStatus(a.Status),
			IsOrganizer:  a.IsOrganizer,
			RSVPRequired: a.RSVPRequired,
		}
	}

	reminders := make([]*model.Reminder, len(dto.Reminders))
	for i, r := range dto.Reminders {
		reminders[i] = &model.Reminder{
			MinutesBefore: r.MinutesBefore,
			Method:        model.ReminderMethod(r.Method),
			Enabled:       r.Enabled,
		}
	}

	attachments := make([]*model.Attachment, len(dto.Attachments))
	for i, a := range dto.Attachments {
		attachments[i] = &model.Attachment{
			Name: a.Name,
			URL:  a.URL,
		}
	}

	return &model.Event{
		ID:           strconv.FormatInt(dto.ID, 10),
		RepeatRule:   dto.RecurrenceRule,
		Exceptions:   exceptions,
		Until:        dto.EndDate,
		CancelReason: dto.CancelReason,
		Metadata:     model.Properties(dto.Metadata),
		EventCreate: model.EventCreate{
			TenantID:    dto.TenantID,
			Title:       dto.Title,
			Description: dto.Description,
			AllDay:      dto.AllDay,
			From:        dto.StartDate,
			To:          dto.StartDate.Add(dto.Duration),
			Status:      model.EventStatus(dto.Status),
			Visibility:  model.Visibility(dto.Visibility),
			Categories:  dto.Categories,
			Attendees:   attendees,
			Reminders:   reminders,
			Attachments: attachments,
			RepeatType:  model.RepeatType(dto.RepeatType),
		},
	}
}

func mapToAttendeeDTOs(attendees []*model.Attendee) []*attendeeDTO {
	res := make([]*attendeeDTO, len(attendees))
	for i, a := range attendees {
		res[i] = &attendeeDTO{
			Email:        a.Email,
			Name:         a.Name,
			Role:         string(a.Role),
			Status:       string(a.Status),
			IsOrganizer:  a.IsOrganizer,
			RSVPRequired: a.RSVPRequired,
		}
	}
	return res
}

func mapToReminderDTOs(reminders []*model.Reminder) []*reminderDTO {
	res := make([]*reminderDTO, len(reminders))
	for i, r := range reminders {
		res[i] = &reminderDTO{
			MinutesBefore: r.MinutesBefore,
			Method:        string(r.Method),
			Enabled:       r.Enabled,
		}
	}
	return res
}

func mapToAttachmentDTOs(attachments []*model.Attachment) []*attachmentDTO {
	res := make([]*attachmentDTO, len(attachments))
	for i, a := range attachments {
		res[i] = &attachmentDTO{
			Name: a.Name,
			URL:  a.URL,
		}
	}
	return res
}

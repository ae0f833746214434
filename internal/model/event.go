package model

import "time"

// Properties is the flat string-keyed bag persisted as an event's metadata.
// Non RFC-5545 keys carry the X- prefix. The bag is the only channel through
// which kind-specific data survives a round trip through the store.
type Properties map[string]interface{}

// Copy returns a shallow copy of the bag. A nil receiver yields an empty bag.
func (p Properties) Copy() Properties {
	res := make(Properties, len(p))
	for k, v := range p {
		res[k] = v
	}
	return res
}

type EventStatus string

const (
	EventStatusConfirmed EventStatus = "CONFIRMED"
	EventStatusTentative EventStatus = "TENTATIVE"
	EventStatusCancelled EventStatus = "CANCELLED"
)

type Visibility string

const (
	VisibilityPublic       Visibility = "PUBLIC"
	VisibilityPrivate      Visibility = "PRIVATE"
	VisibilityConfidential Visibility = "CONFIDENTIAL"
)

type AttendeeRole string

const (
	RoleReqParticipant AttendeeRole = "REQ_PARTICIPANT"
	RoleOptParticipant AttendeeRole = "OPT_PARTICIPANT"
	RoleNonParticipant AttendeeRole = "NON_PARTICIPANT"
	RoleChair          AttendeeRole = "CHAIR"
)

type ResponseStatus string

const (
	ResponseNeedsAction ResponseStatus = "NEEDS_ACTION"
	ResponseAccepted    ResponseStatus = "ACCEPTED"
	ResponseDeclined    ResponseStatus = "DECLINED"
	ResponseTentative   ResponseStatus = "TENTATIVE"
)

type Attendee struct {
	Email        string
	Name         string
	Role         AttendeeRole
	Status       ResponseStatus
	IsOrganizer  bool
	RSVPRequired bool
}

type ReminderMethod string

const (
	ReminderPush  ReminderMethod = "PUSH"
	ReminderEmail ReminderMethod = "EMAIL"
	ReminderSMS   ReminderMethod = "SMS"
)

type Reminder struct {
	MinutesBefore int
	Method        ReminderMethod
	Enabled       bool
}

type Attachment struct {
	Name string
	URL  string
}

type RepeatType int

const (
	RepeatTypeNone RepeatType = iota
	RepeatTypeEveryDay
	RepeatTypeEveryThreeDays
	RepeatTypeEveryWeek
	RepeatTypeEveryMonth
	RepeatTypeEveryYear
)

type EventCreate struct {
	TenantID    int64
	Title       string
	Description string
	AllDay      bool
	From        time.Time
	To          time.Time
	Status      EventStatus
	Visibility  Visibility
	Categories  []string
	Attendees   []*Attendee
	Reminders   []*Reminder
	Attachments []*Attachment
	RepeatType  RepeatType
	Meta        *EventMeta
}

type EventUpdate struct {
	TenantID    int64
	Title       string
	Description string
	AllDay      bool
	From        time.Time
	To          time.Time
	Status      EventStatus
	Visibility  Visibility
	Categories  []string
	Attendees   []*Attendee
	Reminders   []*Reminder
	Attachments []*Attachment
	Meta        *EventMeta
}

type Event struct {
	ID           string
	RepeatRule   string
	Exceptions   map[int64]struct{}
	Until        *time.Time
	CancelReason string
	Metadata     Properties
	EventCreate
}

type EventsFilter struct {
	TenantID int64
	From     time.Time
	To       time.Time
}

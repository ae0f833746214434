package model

import "time"

// EventKind is the mutually exclusive event category derived from metadata.
// Exactly one kind applies per event; fields belonging to other kinds are
// absent, never partially interpreted.
type EventKind string

const (
	KindStandard       EventKind = "STANDARD"
	KindICalInvite     EventKind = "ICAL_INVITE"
	KindSMSBroadcast   EventKind = "SMS_BROADCAST"
	KindEmailBroadcast EventKind = "EMAIL_BROADCAST"
	KindBothBroadcast  EventKind = "BOTH_BROADCAST"
	KindPublicBooking  EventKind = "PUBLIC_BOOKING"
)

// Valid reports whether k is a member of the kind vocabulary.
func (k EventKind) Valid() bool {
	switch k {
	case KindStandard, KindICalInvite, KindSMSBroadcast, KindEmailBroadcast, KindBothBroadcast, KindPublicBooking:
		return true
	}
	return false
}

// IncludesSMS reports whether the kind carries an SMS broadcast block.
func (k EventKind) IncludesSMS() bool {
	return k == KindSMSBroadcast || k == KindBothBroadcast
}

// IncludesEmail reports whether the kind carries an email broadcast block.
func (k EventKind) IncludesEmail() bool {
	return k == KindEmailBroadcast || k == KindBothBroadcast
}

// EventMeta is the typed view of an event's property bag: one kind plus the
// sub-record that kind owns. Extra holds X- keys outside the codec's
// vocabulary so they survive a decode/re-encode cycle untouched.
type EventMeta struct {
	Kind      EventKind
	Broadcast *BroadcastSpec
	Booking   *BookingRecord
	Extra     Properties
}

type BroadcastStatus string

const (
	BroadcastPending BroadcastStatus = "PENDING"
	BroadcastSent    BroadcastStatus = "SENT"
	BroadcastFailed  BroadcastStatus = "FAILED"
)

// BroadcastSpec carries the recipient and content fields the external
// messaging dispatcher consumes at send time. Only meaningful for the
// broadcast kinds.
type BroadcastSpec struct {
	SMSContent        string
	SMSTemplateID     string
	EmailSubject      string
	EmailContent      string
	EmailTemplateID   string
	RecipientListID   string
	SelectedClientIDs []string
	ScheduledSendTime *time.Time
	UseAlphaID        bool
	Status            BroadcastStatus
	SentCount         int
}

type InviteMethod string

const (
	MethodRequest InviteMethod = "REQUEST"
	MethodCancel  InviteMethod = "CANCEL"
)

// ICalInviteState tracks an inbound invite's response lifecycle. Sequence is
// monotonically non-decreasing per logical invite; an inbound message with a
// lower sequence than stored never overwrites response state.
type ICalInviteState struct {
	EventID        int64
	UID            string
	Method         InviteMethod
	OrganizerEmail string
	OrganizerName  string
	ResponseStatus ResponseStatus
	RespondedBy    string
	Sequence       int64
	ReceivedAt     time.Time
}

// Cancelled reports whether the invite reached the terminal CANCELLED state
// via an inbound METHOD=CANCEL message.
func (s *ICalInviteState) Cancelled() bool {
	return s.Method == MethodCancel
}

// InboundInvite is an inbound iCalendar message after boundary normalization.
type InboundInvite struct {
	UID            string
	Method         InviteMethod
	OrganizerEmail string
	OrganizerName  string
	Summary        string
	Description    string
	From           time.Time
	To             time.Time
	Sequence       int64
	ReceivedAt     time.Time
}

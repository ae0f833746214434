// Package metadata owns the X-property encoding of calendar events: the
// vocabulary of vendor keys, the kind discriminator and the codec between
// typed event records and the flat property bag the event store persists.
package metadata

import (
	"fmt"
	"strings"
)

// Fixed vocabulary of the metadata wire format. Anything outside the
// RFC 5545 property set carries the X- prefix.
const (
	PropEventType          = "X-EVENT-TYPE"
	PropSMSContent         = "X-SMS-CONTENT"
	PropSMSRecipientList   = "X-SMS-RECIPIENT-LIST"
	PropSMSTemplateID      = "X-SMS-TEMPLATE-ID"
	PropEmailSubject       = "X-EMAIL-SUBJECT"
	PropEmailContent       = "X-EMAIL-CONTENT"
	PropEmailRecipientList = "X-EMAIL-RECIPIENT-LIST"
	PropEmailTemplateID    = "X-EMAIL-TEMPLATE-ID"
	PropSelectedClientIDs  = "X-SELECTED-CLIENT-IDS"
	PropUseAlphaID         = "X-USE-ALPHA-ID"
	PropBroadcastScheduled = "X-BROADCAST-SCHEDULED"
	PropBroadcastStatus    = "X-BROADCAST-STATUS"
	PropBroadcastSentCount = "X-BROADCAST-SENT-COUNT"
	PropSendICalInvites    = "X-SEND-ICAL-INVITES"
	PropICalMethod         = "X-ICAL-METHOD"
	PropCreatedBy          = "X-CREATED-BY"
	PropICalVersion        = "X-ICAL-VERSION"
	PropBookerName         = "X-BOOKER-NAME"
	PropBookerEmail        = "X-BOOKER-EMAIL"
	PropBookerPhone        = "X-BOOKER-PHONE"
	PropBookerTimezone     = "X-BOOKER-TIMEZONE"
	PropBookingStatus      = "X-BOOKING-STATUS"
	PropPaymentStatus      = "X-PAYMENT-STATUS"
	PropPaymentAmount      = "X-PAYMENT-AMOUNT"
	PropPaymentCurrency    = "X-PAYMENT-CURRENCY"
	PropMeetingLink        = "X-MEETING-LINK"
	PropBookingToken       = "X-BOOKING-TOKEN"
	PropProjectID          = "X-PROJECT-ID"
)

// Indexed booking question/answer pairs: X-BOOKING-QUESTION-<n> paired with
// X-BOOKING-ANSWER-<n>, 1-based.
const (
	propBookingQuestionPrefix = "X-BOOKING-QUESTION-"
	propBookingAnswerPrefix   = "X-BOOKING-ANSWER-"
)

// ICalVersion is the protocol version stamped on every encode, for forward
// compatibility and cron-style external queries.
const ICalVersion = "2.0"

// Legacy un-prefixed keys written by older records. They are read as
// fallbacks during decode and never written back.
const (
	legacyEventType     = "eventType"
	legacyBroadcastData = "broadcastData"
)

func propBookingQuestion(n int) string {
	return fmt.Sprintf("%s%d", propBookingQuestionPrefix, n)
}

func propBookingAnswer(n int) string {
	return fmt.Sprintf("%s%d", propBookingAnswerPrefix, n)
}

var vocabulary = map[string]struct{}{
	PropEventType:          {},
	PropSMSContent:         {},
	PropSMSRecipientList:   {},
	PropSMSTemplateID:      {},
	PropEmailSubject:       {},
	PropEmailContent:       {},
	PropEmailRecipientList: {},
	PropEmailTemplateID:    {},
	PropSelectedClientIDs:  {},
	PropUseAlphaID:         {},
	PropBroadcastScheduled: {},
	PropBroadcastStatus:    {},
	PropBroadcastSentCount: {},
	PropSendICalInvites:    {},
	PropICalMethod:         {},
	PropCreatedBy:          {},
	PropICalVersion:        {},
	PropBookerName:         {},
	PropBookerEmail:        {},
	PropBookerPhone:        {},
	PropBookerTimezone:     {},
	PropBookingStatus:      {},
	PropPaymentStatus:      {},
	PropPaymentAmount:      {},
	PropPaymentCurrency:    {},
	PropMeetingLink:        {},
	PropBookingToken:       {},
	PropProjectID:          {},
}

// inVocabulary reports whether key belongs to the codec's fixed vocabulary,
// including the indexed booking question/answer pairs.
func inVocabulary(key string) bool {
	if _, ok := vocabulary[key]; ok {
		return true
	}
	return strings.HasPrefix(key, propBookingQuestionPrefix) ||
		strings.HasPrefix(key, propBookingAnswerPrefix)
}

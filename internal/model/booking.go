package model

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingPending   BookingStatus = "PENDING"
	BookingCancelled BookingStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentNotRequired PaymentStatus = "NOT_REQUIRED"
	PaymentPending     PaymentStatus = "PENDING"
	PaymentCompleted   PaymentStatus = "COMPLETED"
	PaymentFailed      PaymentStatus = "FAILED"
	PaymentRefunded    PaymentStatus = "REFUNDED"
)

type CustomAnswer struct {
	Question string
	Answer   string
}

// BookingRecord is the payment and booker sub-record of a PUBLIC_BOOKING
// event. BookingToken is opaque and used for idempotent correlation with the
// public booking surface.
type BookingRecord struct {
	BookerName             string
	BookerEmail            string
	BookerPhone            string
	BookerTimezone         string
	BookingStatus          BookingStatus
	PaymentStatus          PaymentStatus
	PaymentAmountMinorUnit int64
	PaymentCurrency        string
	MeetingLink            string
	BookingToken           string
	LinkedProjectID        string
	CustomAnswers          []CustomAnswer
}

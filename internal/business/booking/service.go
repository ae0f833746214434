package booking

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/practicehq/calendar-backend/internal/model"
)

type eventsService interface {
	CreateEvent(ctx context.Context, info *model.EventCreate) (*model.Event, error)
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	UpdateMeta(ctx context.Context, id int64, meta *model.EventMeta) (*model.Event, error)
}

type tokens interface {
	CreateToken(eventID int64) (string, error)
	ParseToken(token string) (int64, error)
}

type Service struct {
	logger *zap.SugaredLogger
	events eventsService
	tokens tokens
}

func NewService(logger *zap.SugaredLogger, events eventsService, tokens tokens) *Service {
	return &Service{logger: logger, events: events, tokens: tokens}
}

// CreateBooking persists a public booking event and stamps its correlation
// token into the booking record. The token is issued after the first persist
// because it encodes the store-assigned event id.
func (s *Service) CreateBooking(ctx context.Context, info *model.EventCreate) (*model.Event, error) {
	if info.Meta == nil || info.Meta.Booking == nil {
		return nil, fmt.Errorf("booking.CreateBooking: missing booking record")
	}
	info.Meta.Kind = model.KindPublicBooking
	if info.Meta.Booking.BookingStatus == "" {
		info.Meta.Booking.BookingStatus = model.BookingPending
	}
	if info.Meta.Booking.PaymentStatus == "" {
		info.Meta.Booking.PaymentStatus = model.PaymentNotRequired
	}

	event, err := s.events.CreateEvent(ctx, info)
	if err != nil {
		return nil, fmt.Errorf("booking.CreateBooking: %w", err)
	}

	eventID, err := eventIDOf(event)
	if err != nil {
		return nil, fmt.Errorf("booking.CreateBooking: %w", err)
	}

	token, err := s.tokens.CreateToken(eventID)
	if err != nil {
		return nil, fmt.Errorf("booking.CreateBooking: %w", err)
	}

	event.Meta.Booking.BookingToken = token
	event, err = s.events.UpdateMeta(ctx, eventID, event.Meta)
	if err != nil {
		return nil, fmt.Errorf("booking.CreateBooking: %w", err)
	}
	return event, nil
}

// GetBookingByToken resolves a booker-held token back to its event. Tokens
// for events that are not public bookings, or whose stored token no longer
// matches, resolve to ErrNoRecord rather than leaking the event.
func (s *Service) GetBookingByToken(ctx context.Context, token string) (*model.Event, error) {
	eventID, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("booking.GetBookingByToken: %w", err)
	}

	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("booking.GetBookingByToken: %w", err)
	}

	if event.Meta == nil || event.Meta.Kind != model.KindPublicBooking ||
		event.Meta.Booking == nil || event.Meta.Booking.BookingToken != token {
		return nil, model.ErrNoRecord
	}
	return event, nil
}

// UpdatePaymentStatus persists the latest status reported by the payment
// provider. Webhook ordering is not guaranteed, so any transition is
// accepted; only the latest value is kept.
func (s *Service) UpdatePaymentStatus(ctx context.Context, eventID int64, status model.PaymentStatus) (*model.Event, error) {
	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("booking.UpdatePaymentStatus: %w", err)
	}
	if event.Meta == nil || event.Meta.Booking == nil {
		return nil, fmt.Errorf("booking.UpdatePaymentStatus: event %d is not a booking", eventID)
	}

	event.Meta.Booking.PaymentStatus = status
	updated, err := s.events.UpdateMeta(ctx, eventID, event.Meta)
	if err != nil {
		return nil, fmt.Errorf("booking.UpdatePaymentStatus: %w", err)
	}

	s.logger.Infow("payment status updated", "event_id", eventID, "status", status)
	return updated, nil
}

// Ledger builds the derived view for one booking event.
func (s *Service) Ledger(ctx context.Context, eventID int64, correlatedClientID string) (*Ledger, error) {
	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("booking.Ledger: %w", err)
	}
	if event.Meta == nil || event.Meta.Booking == nil {
		return nil, fmt.Errorf("booking.Ledger: event %d is not a booking", eventID)
	}
	return NewLedger(event.Meta.Booking, correlatedClientID), nil
}

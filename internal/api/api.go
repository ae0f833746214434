package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/practicehq/calendar-backend/internal/business/broadcast"
	"github.com/practicehq/calendar-backend/internal/model"
)

type Api struct {
	handler http.Handler
	logger  *zap.SugaredLogger

	eventsService    eventsService
	rsvpService      rsvpService
	bookingService   bookingService
	broadcastService broadcastService
}

type eventsService interface {
	CreateEvent(ctx context.Context, info *model.EventCreate) (*model.Event, error)
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	GetEvents(ctx context.Context, filter model.EventsFilter) ([]*model.Event, error)
	UpdateEvent(ctx context.Context, id int64, info *model.EventUpdate) (*model.Event, error)
	CancelEvent(ctx context.Context, id int64, reason string) error
}

type rsvpService interface {
	Ingest(ctx context.Context, tenantID int64, inbound *model.InboundInvite) error
	Respond(ctx context.Context, eventID int64, response model.ResponseStatus, fromEmail string, seenSequence int64) (*model.ICalInviteState, error)
	Cancel(ctx context.Context, eventID int64, reason string) error
}

type bookingService interface {
	CreateBooking(ctx context.Context, info *model.EventCreate) (*model.Event, error)
	GetBookingByToken(ctx context.Context, token string) (*model.Event, error)
	UpdatePaymentStatus(ctx context.Context, eventID int64, status model.PaymentStatus) (*model.Event, error)
}

type broadcastService interface {
	Schedule(ctx context.Context, eventID int64, meta *model.EventMeta, attendees []*model.Attendee) (*broadcast.ValidatedSpec, error)
}

func NewApi(
	logger *zap.SugaredLogger,
	eventsService eventsService,
	rsvpService rsvpService,
	bookingService bookingService,
	broadcastService broadcastService,
) (*Api, error) {
	a := &Api{
		logger:           logger,
		eventsService:    eventsService,
		rsvpService:      rsvpService,
		bookingService:   bookingService,
		broadcastService: broadcastService,
	}
	a.setupHandler()

	return a, nil
}

func (a *Api) setupHandler() {
	middleware.DefaultLogger = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.logger.Debugw(r.URL.RequestURI(),
				"addr", r.RemoteAddr,
				"protocol", r.Proto,
				"method", r.Method,
			)
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewMux()

	r.Use(middleware.Logger, middleware.Recoverer, middleware.StripSlashes)
	r.NotFound(a.notFoundResponse)
	r.MethodNotAllowed(a.methodNotAllowedResponse)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.With(a.tenantCtx).Route("/events", func(r chi.Router) {
		r.Post("/", a.createEventHandler)
		r.Get("/", a.getEventsHandler)
		r.Route("/{eventID}", func(r chi.Router) {
			r.Get("/", a.getEventHandler)
			r.Put("/", a.updateEventHandler)
			r.Post("/cancel", a.cancelEventHandler)
			r.Post("/broadcast", a.scheduleBroadcastHandler)
			r.Post("/rsvp", a.respondRSVPHandler)
		})
	})

	r.With(a.tenantCtx).Post("/inbound/ical", a.inboundICalHandler)

	r.Route("/bookings", func(r chi.Router) {
		r.With(a.tenantCtx).Post("/", a.createBookingHandler)
		r.Get("/{token}", a.getBookingByTokenHandler)
	})

	// payment provider callbacks carry no tenant header
	r.Post("/webhooks/payments", a.paymentWebhookHandler)

	a.handler = r
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

package main

import (
	"context"
	"log"
	"net/http"

	"github.com/practicehq/calendar-backend/internal/api"
	booking_service "github.com/practicehq/calendar-backend/internal/business/booking"
	broadcast_service "github.com/practicehq/calendar-backend/internal/business/broadcast"
	events_service "github.com/practicehq/calendar-backend/internal/business/events"
	rsvp_service "github.com/practicehq/calendar-backend/internal/business/rsvp"
	"github.com/practicehq/calendar-backend/internal/config"
	_ "github.com/practicehq/calendar-backend/internal/config"
	"github.com/practicehq/calendar-backend/internal/database"
	"github.com/practicehq/calendar-backend/internal/database/events"
	"github.com/practicehq/calendar-backend/internal/database/invites"
	"github.com/practicehq/calendar-backend/internal/dispatch"
	"github.com/practicehq/calendar-backend/internal/metadata"
	"github.com/practicehq/calendar-backend/internal/pkg/bookingtoken"
	"github.com/practicehq/calendar-backend/internal/pkg/dispatcher"
	"github.com/practicehq/calendar-backend/internal/redis"
	"github.com/xlab/closer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx := context.Background()

	logger, err := initLogger()
	if err != nil {
		log.Fatalf("unable to initializae logger: %v", err)
	}

	redisPool := redis.NewRedisPool(logger, config.RedisURL())
	outbox := redis.NewBroadcastOutboxRepository(redisPool, logger)

	db, err := database.NewPGX(ctx)
	if err != nil {
		log.Fatalf("unable to initializae db: %v", err)
	}
	eventsRepository := events.NewRepository()
	invitesRepository := invites.NewRepository()

	codec := metadata.NewCodec(logger, config.CreatedBy())
	bookingTokens := bookingtoken.NewManager(config.Secret())
	dispatcherClient := dispatcher.NewClient(config.DispatcherURL())

	eventsService := events_service.NewService(db, logger, codec, eventsRepository)
	rsvpService := rsvp_service.NewService(db, logger, eventsService, invitesRepository, dispatcherClient)
	bookingService := booking_service.NewService(logger, eventsService, bookingTokens)
	broadcastScheduler := broadcast_service.NewScheduler(logger, eventsService, outbox)

	sender := dispatch.NewSender(logger, outbox, eventsService, dispatcherClient, config.DispatchPeriod())
	go sender.Start(ctx)

	api, err := api.NewApi(
		logger,
		eventsService,
		rsvpService,
		bookingService,
		broadcastScheduler,
	)
	if err != nil {
		logger.Fatalw("error initiating api", "err", err)
	}

	errLogger, err := zap.NewStdLogAt(logger.Desugar(), zap.ErrorLevel)
	if err != nil {
		logger.Fatalw("error initiating server logger", "err", err)
	}

	server := &http.Server{
		Addr:     ":" + config.Port(),
		Handler:  api,
		ErrorLog: errLogger,
	}

	logger.Infow("Started server", "port", config.Port())
	logger.Fatalw("server error", "err", server.ListenAndServe())
}

func initLogger() (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error

	if config.Production() {
		logger, err = zap.NewProduction()
	} else {
		conf := zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err = conf.Build()
	}

	if err != nil {
		return nil, err
	}

	closer.Bind(func() {
		_ = logger.Sync()
	})

	return logger.Sugar(), nil
}

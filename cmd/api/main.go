package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jkamga/axis-ride-main-projet/internal/api"
	"github.com/jkamga/axis-ride-main-projet/internal/application/factories/infrastructure"
	"github.com/jkamga/axis-ride-main-projet/internal/config"
	"github.com/jkamga/axis-ride-main-projet/internal/consumer"
	"github.com/jkamga/axis-ride-main-projet/internal/infrastructure/kafka"
	"github.com/jkamga/axis-ride-main-projet/internal/infrastructure/postgres"
	"github.com/jkamga/axis-ride-main-projet/internal/ledger"
	"github.com/jkamga/axis-ride-main-projet/internal/usecase"
	"github.com/jkamga/axis-ride-main-projet/internal/worker"
)

const migrationsDir = "migrations"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	if err := postgres.Migrate(infraFactory.PostgresConfig(), migrationsDir); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := infraFactory.Redis(ctx)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	// Repositories
	tripRepo := postgres.NewTripRepository(pgPool)
	bookingRepo := postgres.NewBookingRepository(pgPool)
	outboxRepo := postgres.NewOutboxRepository(pgPool)
	inboxRepo := postgres.NewInboxRepository(pgPool)
	txManager := postgres.NewTxManager(pgPool)

	// Seat ledger: rebuilt from persisted state before anything can reserve.
	seats := ledger.New()
	restored, err := usecase.NewRestoreLedger(tripRepo, bookingRepo, seats).Execute(ctx)
	if err != nil {
		logger.Error("failed to restore seat ledger", "error", err)
		os.Exit(1)
	}
	logger.Info("seat ledger restored", "trips", restored)

	// UseCases
	createTripUC := usecase.NewCreateTrip(txManager, tripRepo, outboxRepo, seats)
	getTripUC := usecase.NewGetTrip(redisClient, tripRepo, seats)
	deleteTripUC := usecase.NewDeleteTrip(tripRepo, bookingRepo, seats)
	startTripUC := usecase.NewStartTrip(txManager, tripRepo, bookingRepo, outboxRepo, seats)
	completeTripUC := usecase.NewCompleteTrip(txManager, tripRepo, bookingRepo, outboxRepo, seats)
	cancelTripUC := usecase.NewCancelTrip(txManager, tripRepo, bookingRepo, outboxRepo, seats)
	searchTripsUC := usecase.NewSearchTrips(tripRepo, seats, cfg.Search.MaxPageSize, cfg.Search.CandidateCap)
	driverTripsUC := usecase.NewListDriverTrips(tripRepo, seats)

	createBookingUC := usecase.NewCreateBooking(txManager, tripRepo, bookingRepo, outboxRepo, seats)
	getBookingUC := usecase.NewGetBooking(bookingRepo)
	cancelBookingUC := usecase.NewCancelBooking(txManager, bookingRepo, outboxRepo, seats)
	passengerBookingsUC := usecase.NewListPassengerBookings(bookingRepo)

	applyPaymentUC := usecase.NewApplyPayment(txManager, inboxRepo, bookingRepo, outboxRepo, seats)
	expireBookingsUC := usecase.NewExpireBookings(txManager, bookingRepo, outboxRepo, seats, cfg.Booking.PendingTimeout)

	// Outbox poller publishes trip.* / booking.* events to Kafka.
	kafkaProd := kafka.NewProducer(kafka.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
	defer kafkaProd.Close()
	poller := worker.NewOutboxPoller(outboxRepo, kafkaProd, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize)
	go poller.Run(ctx)

	// Payment consumer applies payment.authorized / payment.failed to bookings.
	paymentConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.PaymentTopic, cfg.Kafka.GroupID)
	defer paymentConsumer.Close()
	go consumer.NewPaymentConsumer(paymentConsumer, applyPaymentUC).Run(ctx)

	// Expirer sweeps PENDING bookings past their payment window.
	go worker.NewExpirer(expireBookingsUC, cfg.Booking.SweepInterval).Run(ctx)

	handlers := api.NewHandlers(
		createTripUC,
		getTripUC,
		deleteTripUC,
		startTripUC,
		completeTripUC,
		cancelTripUC,
		searchTripsUC,
		driverTripsUC,
		createBookingUC,
		getBookingUC,
		cancelBookingUC,
		passengerBookingsUC,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: api.NewRouter(handlers, redisClient),
	}

	go func() {
		logger.Info("server starting", "port", cfg.HTTP.Port, "app", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exiting")
}

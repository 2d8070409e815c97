package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/event"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/outbox"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/trip"
	"github.com/jkamga/axis-ride-main-projet/internal/infrastructure/postgres"
	"github.com/jkamga/axis-ride-main-projet/internal/ledger"
)

// producerName identifies this service in outbox events.
const producerName = "trip-service"

type CreateTrip struct {
	txManager  postgres.Transactor
	tripRepo   trip.Repository
	outboxRepo outbox.Repository
	seats      *ledger.Ledger
}

func NewCreateTrip(
	txManager postgres.Transactor,
	tripRepo trip.Repository,
	outboxRepo outbox.Repository,
	seats *ledger.Ledger,
) *CreateTrip {
	return &CreateTrip{
		txManager:  txManager,
		tripRepo:   tripRepo,
		outboxRepo: outboxRepo,
		seats:      seats,
	}
}

func (uc *CreateTrip) Execute(ctx context.Context, in trip.NewTripInput) (*trip.Trip, error) {
	now := time.Now().UTC()

	t, err := trip.New(uuid.New().String(), in, now)
	if err != nil {
		return nil, err
	}

	outboxEvent, err := outbox.NewEvent(event.TypeTripCreated, event.TripCreated{
		TripID:        t.ID,
		DriverID:      t.DriverID,
		TotalSeats:    t.TotalSeats,
		DepartureTime: t.DepartureTime,
	}, t.ID, "", producerName, now)
	if err != nil {
		return nil, err
	}

	if err := uc.seats.Register(t.ID, t.TotalSeats); err != nil {
		return nil, err
	}

	err = uc.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.tripRepo.Create(txCtx, t); err != nil {
			return err
		}
		return uc.outboxRepo.Create(txCtx, outboxEvent)
	})
	if err != nil {
		// Compensate: the trip record never became durable, so its
		// inventory entry must not survive either.
		uc.seats.Drop(t.ID)
		return nil, fmt.Errorf("create trip: %w", err)
	}

	return t, nil
}

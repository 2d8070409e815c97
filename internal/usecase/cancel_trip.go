package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/booking"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/event"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/outbox"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/trip"
	"github.com/jkamga/axis-ride-main-projet/internal/infrastructure/postgres"
	"github.com/jkamga/axis-ride-main-projet/internal/ledger"
)

type CancelTrip struct {
	txManager   postgres.Transactor
	tripRepo    trip.Repository
	bookingRepo booking.Repository
	outboxRepo  outbox.Repository
	seats       *ledger.Ledger
}

func NewCancelTrip(
	txManager postgres.Transactor,
	tripRepo trip.Repository,
	bookingRepo booking.Repository,
	outboxRepo outbox.Repository,
	seats *ledger.Ledger,
) *CancelTrip {
	return &CancelTrip{
		txManager:   txManager,
		tripRepo:    tripRepo,
		bookingRepo: bookingRepo,
		outboxRepo:  outboxRepo,
		seats:       seats,
	}
}

type CancelTripParams struct {
	TripID string `json:"trip_id"`
	Reason string `json:"reason"`
}

// Execute cancels the trip and force-cancels every non-terminal booking in
// the same transaction (cascading cancellation). Seats are released and the
// inventory entry dropped once the cascade is durable.
func (uc *CancelTrip) Execute(ctx context.Context, params CancelTripParams) (*trip.Trip, error) {
	t, err := uc.tripRepo.GetByID(ctx, params.TripID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := trip.ApplyTransition(t, trip.StatusCancelled, now); err != nil {
		return nil, err
	}

	tripCancelled, err := outbox.NewEvent(event.TypeTripCancelled, event.TripCancelled{
		TripID: t.ID,
	}, t.ID, "", producerName, now)
	if err != nil {
		return nil, err
	}

	var cancelled []string
	err = uc.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.tripRepo.UpdateStatus(txCtx, t.ID, t.Status, now); err != nil {
			return err
		}

		bs, err := uc.bookingRepo.ListActiveByTrip(txCtx, t.ID)
		if err != nil {
			return err
		}
		for _, b := range bs {
			if err := booking.Apply(b, booking.EventCancelledByTrip, params.Reason, now); err != nil {
				return err
			}
			if err := uc.bookingRepo.Update(txCtx, b); err != nil {
				return err
			}
			bookingCancelled, err := outbox.NewEvent(event.TypeBookingCancelled, event.BookingCancelled{
				BookingID: b.ID,
				Reason:    b.CancellationReason,
			}, b.ID, tripCancelled.ID, producerName, now)
			if err != nil {
				return err
			}
			if err := uc.outboxRepo.Create(txCtx, bookingCancelled); err != nil {
				return err
			}
			cancelled = append(cancelled, b.ID)
		}

		return uc.outboxRepo.Create(txCtx, tripCancelled)
	})
	if err != nil {
		return nil, fmt.Errorf("cancel trip: %w", err)
	}

	for _, id := range cancelled {
		uc.seats.Release(t.ID, id)
	}
	uc.seats.Drop(t.ID)

	return t, nil
}

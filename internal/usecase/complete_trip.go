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

type CompleteTrip struct {
	txManager   postgres.Transactor
	tripRepo    trip.Repository
	bookingRepo booking.Repository
	outboxRepo  outbox.Repository
	seats       *ledger.Ledger
}

func NewCompleteTrip(
	txManager postgres.Transactor,
	tripRepo trip.Repository,
	bookingRepo booking.Repository,
	outboxRepo outbox.Repository,
	seats *ledger.Ledger,
) *CompleteTrip {
	return &CompleteTrip{
		txManager:   txManager,
		tripRepo:    tripRepo,
		bookingRepo: bookingRepo,
		outboxRepo:  outboxRepo,
		seats:       seats,
	}
}

// Execute moves the trip ACTIVE -> COMPLETED. IN_PROGRESS bookings complete
// with it; PENDING and CONFIRMED stragglers are cancelled so no booking stays
// non-terminal on a completed trip. The inventory entry is dropped last; a
// completed trip never takes reservations again.
func (uc *CompleteTrip) Execute(ctx context.Context, tripID string) (*trip.Trip, error) {
	t, err := uc.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := trip.ApplyTransition(t, trip.StatusCompleted, now); err != nil {
		return nil, err
	}

	err = uc.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.tripRepo.UpdateStatus(txCtx, t.ID, t.Status, now); err != nil {
			return err
		}

		bs, err := uc.bookingRepo.ListActiveByTrip(txCtx, t.ID)
		if err != nil {
			return err
		}
		for _, b := range bs {
			switch b.Status {
			case booking.StatusInProgress:
				if err := booking.Apply(b, booking.EventTripEnded, "", now); err != nil {
					return err
				}
			default:
				// PENDING or CONFIRMED on a completing trip never rode.
				if err := booking.Apply(b, booking.EventCancelledByTrip, "trip completed before pickup", now); err != nil {
					return err
				}
				cancelled, err := outbox.NewEvent(event.TypeBookingCancelled, event.BookingCancelled{
					BookingID: b.ID,
					Reason:    b.CancellationReason,
				}, b.ID, "", producerName, now)
				if err != nil {
					return err
				}
				if err := uc.outboxRepo.Create(txCtx, cancelled); err != nil {
					return err
				}
			}
			if err := uc.bookingRepo.Update(txCtx, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("complete trip: %w", err)
	}

	uc.seats.Drop(t.ID)

	return t, nil
}

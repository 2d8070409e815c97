package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/booking"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/domainerr"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/event"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/outbox"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/trip"
	"github.com/jkamga/axis-ride-main-projet/internal/infrastructure/postgres"
	"github.com/jkamga/axis-ride-main-projet/internal/ledger"
)

type StartTrip struct {
	txManager   postgres.Transactor
	tripRepo    trip.Repository
	bookingRepo booking.Repository
	outboxRepo  outbox.Repository
	seats       *ledger.Ledger
}

func NewStartTrip(
	txManager postgres.Transactor,
	tripRepo trip.Repository,
	bookingRepo booking.Repository,
	outboxRepo outbox.Repository,
	seats *ledger.Ledger,
) *StartTrip {
	return &StartTrip{
		txManager:   txManager,
		tripRepo:    tripRepo,
		bookingRepo: bookingRepo,
		outboxRepo:  outboxRepo,
		seats:       seats,
	}
}

// Execute moves the trip PLANNED -> ACTIVE. CONFIRMED bookings ride along to
// IN_PROGRESS; PENDING bookings whose payment never settled are cancelled and
// their seats freed. Starting before departure time is rejected.
func (uc *StartTrip) Execute(ctx context.Context, tripID string) (*trip.Trip, error) {
	t, err := uc.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if t.Status == trip.StatusPlanned && now.Before(t.DepartureTime) {
		return nil, fmt.Errorf("%w: departure at %s", domainerr.ErrTooEarly, t.DepartureTime.Format(time.RFC3339))
	}
	if err := trip.ApplyTransition(t, trip.StatusActive, now); err != nil {
		return nil, err
	}

	var released []string
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
			case booking.StatusConfirmed:
				if err := booking.Apply(b, booking.EventTripStarted, "", now); err != nil {
					return err
				}
			case booking.StatusPending:
				if err := booking.Apply(b, booking.EventPaymentTimeout, "no payment outcome before departure", now); err != nil {
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
				released = append(released, b.ID)
			}
			if err := uc.bookingRepo.Update(txCtx, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("start trip: %w", err)
	}

	for _, id := range released {
		uc.seats.Release(t.ID, id)
	}

	return t, nil
}

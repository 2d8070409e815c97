package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/booking"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/event"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/outbox"
	"github.com/jkamga/axis-ride-main-projet/internal/infrastructure/postgres"
	"github.com/jkamga/axis-ride-main-projet/internal/ledger"
)

var bookingsExpired = promauto.NewCounter(prometheus.CounterOpts{
	Name: "trip_service_bookings_expired_total",
	Help: "PENDING bookings cancelled by the expiry sweep",
})

type ExpireBookings struct {
	txManager   postgres.Transactor
	bookingRepo booking.Repository
	outboxRepo  outbox.Repository
	seats       *ledger.Ledger
	timeout     time.Duration
}

func NewExpireBookings(
	txManager postgres.Transactor,
	bookingRepo booking.Repository,
	outboxRepo outbox.Repository,
	seats *ledger.Ledger,
	timeout time.Duration,
) *ExpireBookings {
	return &ExpireBookings{
		txManager:   txManager,
		bookingRepo: bookingRepo,
		outboxRepo:  outboxRepo,
		seats:       seats,
		timeout:     timeout,
	}
}

// Execute cancels PENDING bookings that saw no payment outcome within the
// configured window and frees their seats. Each booking is its own
// transaction so one bad record cannot wedge the sweep; the first error is
// reported after the rest of the batch was attempted.
func (uc *ExpireBookings) Execute(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	cutoff := now.Add(-uc.timeout)

	expired, err := uc.bookingRepo.ListExpiredPending(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list expired pending: %w", err)
	}

	var count int
	var firstErr error
	for _, b := range expired {
		if err := uc.expireOne(ctx, b, now); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("expire booking %s: %w", b.ID, err)
			}
			continue
		}
		count++
		bookingsExpired.Inc()
	}

	return count, firstErr
}

func (uc *ExpireBookings) expireOne(ctx context.Context, b *booking.Booking, now time.Time) error {
	if err := booking.Apply(b, booking.EventPaymentTimeout, "", now); err != nil {
		return err
	}

	cancelled, err := outbox.NewEvent(event.TypeBookingCancelled, event.BookingCancelled{
		BookingID: b.ID,
		Reason:    b.CancellationReason,
	}, b.ID, "", producerName, now)
	if err != nil {
		return err
	}

	err = uc.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.bookingRepo.Update(txCtx, b); err != nil {
			return err
		}
		return uc.outboxRepo.Create(txCtx, cancelled)
	})
	if err != nil {
		return err
	}

	uc.seats.Release(b.TripID, b.ID)
	return nil
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/booking"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/event"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/outbox"
	"github.com/jkamga/axis-ride-main-projet/internal/infrastructure/postgres"
	"github.com/jkamga/axis-ride-main-projet/internal/ledger"
)

type CancelBooking struct {
	txManager   postgres.Transactor
	bookingRepo booking.Repository
	outboxRepo  outbox.Repository
	seats       *ledger.Ledger
}

func NewCancelBooking(
	txManager postgres.Transactor,
	bookingRepo booking.Repository,
	outboxRepo outbox.Repository,
	seats *ledger.Ledger,
) *CancelBooking {
	return &CancelBooking{
		txManager:   txManager,
		bookingRepo: bookingRepo,
		outboxRepo:  outboxRepo,
		seats:       seats,
	}
}

type CancelBookingParams struct {
	BookingID string `json:"booking_id"`
	// CancelledBy is "passenger" or "driver".
	CancelledBy string `json:"cancelled_by"`
	Reason      string `json:"reason"`
}

func (uc *CancelBooking) Execute(ctx context.Context, params CancelBookingParams) (*booking.Booking, error) {
	b, err := uc.bookingRepo.GetByID(ctx, params.BookingID)
	if err != nil {
		return nil, err
	}

	ev := booking.EventCancelledByPassenger
	if params.CancelledBy == booking.CancelledByDriver {
		ev = booking.EventCancelledByDriver
	}

	now := time.Now().UTC()
	if err := booking.Apply(b, ev, params.Reason, now); err != nil {
		return nil, err
	}

	outboxEvent, err := outbox.NewEvent(event.TypeBookingCancelled, event.BookingCancelled{
		BookingID: b.ID,
		Reason:    b.CancellationReason,
	}, b.ID, "", producerName, now)
	if err != nil {
		return nil, err
	}

	err = uc.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.bookingRepo.Update(txCtx, b); err != nil {
			return err
		}
		return uc.outboxRepo.Create(txCtx, outboxEvent)
	})
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	// The booking is durably CANCELLED; freeing the seats is idempotent, so
	// a crash between commit and release is healed by the startup rebuild.
	uc.seats.Release(b.TripID, b.ID)

	return b, nil
}

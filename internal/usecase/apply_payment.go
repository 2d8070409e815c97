package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/booking"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/event"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/inbox"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/outbox"
	"github.com/jkamga/axis-ride-main-projet/internal/infrastructure/postgres"
	"github.com/jkamga/axis-ride-main-projet/internal/ledger"
)

// consumerName keys the inbox dedup records.
const consumerName = "trip-service"

// PaymentResult reports what applying a payment event did.
type PaymentResult int

const (
	// PaymentIgnored: not a payment event, or a duplicate/stale delivery.
	PaymentIgnored PaymentResult = iota
	PaymentConfirmed
	PaymentCancelled
)

func (r PaymentResult) String() string {
	switch r {
	case PaymentConfirmed:
		return "confirmed"
	case PaymentCancelled:
		return "cancelled"
	default:
		return "ignored"
	}
}

type ApplyPayment struct {
	txManager   postgres.Transactor
	inboxRepo   inbox.Repository
	bookingRepo booking.Repository
	outboxRepo  outbox.Repository
	seats       *ledger.Ledger
}

func NewApplyPayment(
	txManager postgres.Transactor,
	inboxRepo inbox.Repository,
	bookingRepo booking.Repository,
	outboxRepo outbox.Repository,
	seats *ledger.Ledger,
) *ApplyPayment {
	return &ApplyPayment{
		txManager:   txManager,
		inboxRepo:   inboxRepo,
		bookingRepo: bookingRepo,
		outboxRepo:  outboxRepo,
		seats:       seats,
	}
}

// Execute applies a payment.authorized or payment.failed event to its
// booking. Delivery is at-least-once and unordered, so the handler is
// idempotent twice over: exact redeliveries are dropped by the inbox, and
// semantically repeated outcomes (authorized for an already-CONFIRMED
// booking) are no-ops. A transition the state machine rejects is returned as
// an error so the caller can route the message to the dead-letter path; the
// transaction rolls back and no state is half-applied.
func (uc *ApplyPayment) Execute(ctx context.Context, msg event.Message) (PaymentResult, error) {
	switch msg.Type {
	case event.TypePaymentAuthorized, event.TypePaymentFailed:
	default:
		return PaymentIgnored, nil
	}

	var outcome event.PaymentOutcome
	if err := json.Unmarshal(msg.Payload, &outcome); err != nil {
		return PaymentIgnored, fmt.Errorf("unmarshal payment payload: %w", err)
	}
	if outcome.BookingID == "" {
		return PaymentIgnored, fmt.Errorf("payment event %s has no booking_id", msg.ID)
	}

	now := time.Now().UTC()
	result := PaymentIgnored
	var releaseBooking *booking.Booking

	err := uc.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		isNew, err := uc.inboxRepo.SaveIfNotExists(txCtx, consumerName, msg.ID, msg.Type, outcome.BookingID)
		if err != nil {
			return fmt.Errorf("inbox save: %w", err)
		}
		if !isNew {
			return nil
		}

		b, err := uc.bookingRepo.GetByID(txCtx, outcome.BookingID)
		if err != nil {
			return err
		}

		switch msg.Type {
		case event.TypePaymentAuthorized:
			// Stale redelivery after the booking already advanced.
			if b.Status == booking.StatusConfirmed || b.Status == booking.StatusInProgress || b.Status == booking.StatusCompleted {
				return nil
			}
			if err := booking.Apply(b, booking.EventPaymentAuthorized, "", now); err != nil {
				return err
			}
			if outcome.PaymentID != "" {
				b.PaymentID = outcome.PaymentID
			}
			confirmed, err := outbox.NewEvent(event.TypeBookingConfirmed, event.BookingConfirmed{
				BookingID: b.ID,
			}, b.ID, msg.ID, producerName, now)
			if err != nil {
				return err
			}
			if err := uc.outboxRepo.Create(txCtx, confirmed); err != nil {
				return err
			}
			result = PaymentConfirmed

		case event.TypePaymentFailed:
			if b.Status == booking.StatusCancelled {
				return nil
			}
			if err := booking.Apply(b, booking.EventPaymentFailed, "", now); err != nil {
				return err
			}
			if outcome.PaymentID != "" {
				b.PaymentID = outcome.PaymentID
			}
			cancelled, err := outbox.NewEvent(event.TypeBookingCancelled, event.BookingCancelled{
				BookingID: b.ID,
				Reason:    b.CancellationReason,
			}, b.ID, msg.ID, producerName, now)
			if err != nil {
				return err
			}
			if err := uc.outboxRepo.Create(txCtx, cancelled); err != nil {
				return err
			}
			result = PaymentCancelled
			releaseBooking = b
		}

		return uc.bookingRepo.Update(txCtx, b)
	})
	if err != nil {
		return PaymentIgnored, err
	}

	if releaseBooking != nil {
		uc.seats.Release(releaseBooking.TripID, releaseBooking.ID)
	}

	return result, nil
}

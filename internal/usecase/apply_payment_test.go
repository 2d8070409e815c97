package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/booking"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/domainerr"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/event"
	"github.com/jkamga/axis-ride-main-projet/internal/ledger"
)

func paymentMessage(t *testing.T, id, eventType, bookingID string) event.Message {
	t.Helper()
	payload, err := json.Marshal(event.PaymentOutcome{BookingID: bookingID, PaymentID: "pay-1"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return event.Message{
		ID:         id,
		Type:       eventType,
		Producer:   "payment-service",
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

func newApplyPaymentFixture(t *testing.T) (*ApplyPayment, *fakeBookingRepo, *fakeOutboxRepo, *ledger.Ledger) {
	t.Helper()
	bookingRepo := newFakeBookingRepo()
	outboxRepo := &fakeOutboxRepo{}
	seats := ledger.New()
	if err := seats.Register("trip-1", 4); err != nil {
		t.Fatalf("register: %v", err)
	}
	uc := NewApplyPayment(&fakeTxManager{}, newFakeInboxRepo(), bookingRepo, outboxRepo, seats)
	return uc, bookingRepo, outboxRepo, seats
}

func TestApplyPaymentAuthorized(t *testing.T) {
	uc, bookingRepo, outboxRepo, seats := newApplyPaymentFixture(t)
	seedBooking(t, bookingRepo, seats, "b1", "trip-1", 2, booking.StatusPending)

	result, err := uc.Execute(context.Background(), paymentMessage(t, "ev-1", event.TypePaymentAuthorized, "b1"))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result != PaymentConfirmed {
		t.Fatalf("result = %s", result)
	}

	b := bookingRepo.bookings["b1"]
	if b.Status != booking.StatusConfirmed {
		t.Fatalf("status = %s", b.Status)
	}
	if b.PaymentID != "pay-1" {
		t.Fatalf("payment_id = %q", b.PaymentID)
	}
	// Seats stay held on confirmation.
	if got := seats.Available("trip-1"); got != 2 {
		t.Fatalf("available = %d, want 2", got)
	}
	if types := outboxRepo.typesCreated(); len(types) != 1 || types[0] != event.TypeBookingConfirmed {
		t.Fatalf("outbox events = %v", types)
	}
}

func TestApplyPaymentFailed(t *testing.T) {
	uc, bookingRepo, outboxRepo, seats := newApplyPaymentFixture(t)
	seedBooking(t, bookingRepo, seats, "b1", "trip-1", 2, booking.StatusPending)

	result, err := uc.Execute(context.Background(), paymentMessage(t, "ev-1", event.TypePaymentFailed, "b1"))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result != PaymentCancelled {
		t.Fatalf("result = %s", result)
	}

	b := bookingRepo.bookings["b1"]
	if b.Status != booking.StatusCancelled {
		t.Fatalf("status = %s", b.Status)
	}
	if b.PaymentStatus != booking.PaymentStatusFailed {
		t.Fatalf("payment_status = %q", b.PaymentStatus)
	}
	if got := seats.Available("trip-1"); got != 4 {
		t.Fatalf("seats not released: available %d", got)
	}
	if types := outboxRepo.typesCreated(); len(types) != 1 || types[0] != event.TypeBookingCancelled {
		t.Fatalf("outbox events = %v", types)
	}
}

func TestApplyPaymentDuplicateDelivery(t *testing.T) {
	uc, bookingRepo, _, seats := newApplyPaymentFixture(t)
	seedBooking(t, bookingRepo, seats, "b1", "trip-1", 2, booking.StatusPending)

	msg := paymentMessage(t, "ev-1", event.TypePaymentAuthorized, "b1")
	if _, err := uc.Execute(context.Background(), msg); err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	// Exact redelivery: dropped by the inbox, no error, no state change.
	result, err := uc.Execute(context.Background(), msg)
	if err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if result != PaymentIgnored {
		t.Fatalf("redelivery result = %s", result)
	}
	if got := bookingRepo.bookings["b1"].Status; got != booking.StatusConfirmed {
		t.Fatalf("status after redelivery = %s", got)
	}
}

func TestApplyPaymentStaleAuthorized(t *testing.T) {
	uc, bookingRepo, outboxRepo, seats := newApplyPaymentFixture(t)
	seedBooking(t, bookingRepo, seats, "b1", "trip-1", 2, booking.StatusConfirmed)

	// Semantically repeated outcome under a fresh event id: no-op.
	result, err := uc.Execute(context.Background(), paymentMessage(t, "ev-2", event.TypePaymentAuthorized, "b1"))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result != PaymentIgnored {
		t.Fatalf("result = %s", result)
	}
	if len(outboxRepo.events) != 0 {
		t.Fatalf("stale outcome produced events: %v", outboxRepo.typesCreated())
	}
}

func TestApplyPaymentAuthorizedOnCancelled(t *testing.T) {
	uc, bookingRepo, _, seats := newApplyPaymentFixture(t)
	seedBooking(t, bookingRepo, seats, "b1", "trip-1", 2, booking.StatusCancelled)

	// authorized on a CANCELLED booking is a conflict, not a silent no-op;
	// the error routes the message to the dead-letter path.
	_, err := uc.Execute(context.Background(), paymentMessage(t, "ev-1", event.TypePaymentAuthorized, "b1"))
	if !errors.Is(err, domainerr.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	if got := bookingRepo.bookings["b1"].Status; got != booking.StatusCancelled {
		t.Fatalf("status mutated to %s", got)
	}
}

func TestApplyPaymentFailedOnCancelledIsNoop(t *testing.T) {
	uc, bookingRepo, outboxRepo, seats := newApplyPaymentFixture(t)
	seedBooking(t, bookingRepo, seats, "b1", "trip-1", 2, booking.StatusCancelled)

	result, err := uc.Execute(context.Background(), paymentMessage(t, "ev-1", event.TypePaymentFailed, "b1"))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result != PaymentIgnored {
		t.Fatalf("result = %s", result)
	}
	if len(outboxRepo.events) != 0 {
		t.Fatalf("no-op produced events")
	}
	if got := bookingRepo.bookings["b1"].Status; got != booking.StatusCancelled {
		t.Fatalf("status mutated to %s", got)
	}
}

func TestApplyPaymentUnknownType(t *testing.T) {
	uc, _, _, _ := newApplyPaymentFixture(t)

	result, err := uc.Execute(context.Background(), paymentMessage(t, "ev-1", "trip.created", "b1"))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result != PaymentIgnored {
		t.Fatalf("result = %s", result)
	}
}

func TestApplyPaymentUnknownBooking(t *testing.T) {
	uc, _, _, _ := newApplyPaymentFixture(t)

	_, err := uc.Execute(context.Background(), paymentMessage(t, "ev-1", event.TypePaymentAuthorized, "ghost"))
	if !errors.Is(err, domainerr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

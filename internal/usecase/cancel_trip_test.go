package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/booking"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/domainerr"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/event"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/trip"
	"github.com/jkamga/axis-ride-main-projet/internal/ledger"
)

func TestCancelTripCascades(t *testing.T) {
	tripRepo := newFakeTripRepo()
	bookingRepo := newFakeBookingRepo()
	outboxRepo := &fakeOutboxRepo{}
	seats := ledger.New()

	seedTrip(t, tripRepo, seats, "trip-1", 6, trip.StatusActive)
	seedBooking(t, bookingRepo, seats, "b1", "trip-1", 1, booking.StatusPending)
	seedBooking(t, bookingRepo, seats, "b2", "trip-1", 2, booking.StatusConfirmed)
	seedBooking(t, bookingRepo, seats, "b3", "trip-1", 1, booking.StatusInProgress)
	seedBooking(t, bookingRepo, seats, "b4", "trip-1", 1, booking.StatusCancelled) // already terminal

	uc := NewCancelTrip(&fakeTxManager{}, tripRepo, bookingRepo, outboxRepo, seats)

	cancelled, err := uc.Execute(context.Background(), CancelTripParams{TripID: "trip-1", Reason: "vehicle breakdown"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if cancelled.Status != trip.StatusCancelled {
		t.Fatalf("trip status = %s", cancelled.Status)
	}

	for _, id := range []string{"b1", "b2", "b3"} {
		b := bookingRepo.bookings[id]
		if b.Status != booking.StatusCancelled {
			t.Fatalf("booking %s = %s, want CANCELLED", id, b.Status)
		}
		if b.CancelledBy != booking.CancelledBySystem {
			t.Fatalf("booking %s cancelled_by = %q", id, b.CancelledBy)
		}
		if b.CancellationReason != "vehicle breakdown" {
			t.Fatalf("booking %s reason = %q", id, b.CancellationReason)
		}
	}

	// Already-terminal booking untouched.
	if got := bookingRepo.bookings["b4"].CancelledBy; got != "" {
		t.Fatalf("terminal booking mutated: cancelled_by %q", got)
	}

	// trip.cancelled plus one booking.cancelled per cascaded booking.
	var tripEvents, bookingEvents int
	for _, typ := range outboxRepo.typesCreated() {
		switch typ {
		case event.TypeTripCancelled:
			tripEvents++
		case event.TypeBookingCancelled:
			bookingEvents++
		}
	}
	if tripEvents != 1 || bookingEvents != 3 {
		t.Fatalf("events: %d trip.cancelled, %d booking.cancelled", tripEvents, bookingEvents)
	}

	// Inventory entry dropped: further reservations must fail.
	if _, err := seats.TryReserve("trip-1", "b-new", 1); !errors.Is(err, domainerr.ErrNotFound) {
		t.Fatalf("expected dropped inventory, got %v", err)
	}
}

func TestCancelTripAlreadyTerminal(t *testing.T) {
	tripRepo := newFakeTripRepo()
	seats := ledger.New()
	seedTrip(t, tripRepo, seats, "trip-1", 4, trip.StatusCancelled)

	uc := NewCancelTrip(&fakeTxManager{}, tripRepo, newFakeBookingRepo(), &fakeOutboxRepo{}, seats)

	_, err := uc.Execute(context.Background(), CancelTripParams{TripID: "trip-1"})
	if !errors.Is(err, domainerr.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestCancelTripPersistenceFailureKeepsState(t *testing.T) {
	tripRepo := newFakeTripRepo()
	bookingRepo := newFakeBookingRepo()
	seats := ledger.New()
	seedTrip(t, tripRepo, seats, "trip-1", 4, trip.StatusPlanned)
	seedBooking(t, bookingRepo, seats, "b1", "trip-1", 2, booking.StatusConfirmed)

	uc := NewCancelTrip(&fakeTxManager{failNext: errBoom}, tripRepo, bookingRepo, &fakeOutboxRepo{}, seats)

	if _, err := uc.Execute(context.Background(), CancelTripParams{TripID: "trip-1"}); err == nil {
		t.Fatalf("expected persistence error")
	}
	// Nothing durable changed, so the seats stay held.
	if got := seats.Available("trip-1"); got != 2 {
		t.Fatalf("available = %d, want 2", got)
	}
	if got := tripRepo.trips["trip-1"].Status; got != trip.StatusPlanned {
		t.Fatalf("trip status mutated to %s", got)
	}
}

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/booking"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/domainerr"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/trip"
	"github.com/jkamga/axis-ride-main-projet/internal/ledger"
)

func TestStartTripTooEarly(t *testing.T) {
	tripRepo := newFakeTripRepo()
	seats := ledger.New()
	seedTrip(t, tripRepo, seats, "trip-1", 4, trip.StatusPlanned) // departs in 24h

	uc := NewStartTrip(&fakeTxManager{}, tripRepo, newFakeBookingRepo(), &fakeOutboxRepo{}, seats)

	_, err := uc.Execute(context.Background(), "trip-1")
	if !errors.Is(err, domainerr.ErrTooEarly) {
		t.Fatalf("expected ErrTooEarly, got %v", err)
	}
	if got := tripRepo.trips["trip-1"].Status; got != trip.StatusPlanned {
		t.Fatalf("rejected start mutated status to %s", got)
	}
}

func TestStartTrip(t *testing.T) {
	tripRepo := newFakeTripRepo()
	bookingRepo := newFakeBookingRepo()
	outboxRepo := &fakeOutboxRepo{}
	seats := ledger.New()

	tr := seedTrip(t, tripRepo, seats, "trip-1", 4, trip.StatusPlanned)
	tr.DepartureTime = time.Now().UTC().Add(-time.Minute) // departure reached

	seedBooking(t, bookingRepo, seats, "b-confirmed", "trip-1", 2, booking.StatusConfirmed)
	seedBooking(t, bookingRepo, seats, "b-pending", "trip-1", 1, booking.StatusPending)

	uc := NewStartTrip(&fakeTxManager{}, tripRepo, bookingRepo, outboxRepo, seats)

	started, err := uc.Execute(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if started.Status != trip.StatusActive {
		t.Fatalf("status = %s", started.Status)
	}

	// CONFIRMED rides along to IN_PROGRESS.
	if got := bookingRepo.bookings["b-confirmed"].Status; got != booking.StatusInProgress {
		t.Fatalf("confirmed booking = %s, want IN_PROGRESS", got)
	}

	// PENDING missed its payment window: cancelled, seats freed.
	pending := bookingRepo.bookings["b-pending"]
	if pending.Status != booking.StatusCancelled {
		t.Fatalf("pending booking = %s, want CANCELLED", pending.Status)
	}
	if pending.CancelledBy != booking.CancelledBySystem {
		t.Fatalf("cancelled_by = %q", pending.CancelledBy)
	}
	if got := seats.Available("trip-1"); got != 2 {
		t.Fatalf("available = %d, want 2 (only the confirmed hold remains)", got)
	}
	if types := outboxRepo.typesCreated(); len(types) != 1 {
		t.Fatalf("expected one booking.cancelled event, got %v", types)
	}
}

func TestStartTripTerminalState(t *testing.T) {
	tripRepo := newFakeTripRepo()
	seats := ledger.New()
	seedTrip(t, tripRepo, seats, "trip-1", 4, trip.StatusCompleted)

	uc := NewStartTrip(&fakeTxManager{}, tripRepo, newFakeBookingRepo(), &fakeOutboxRepo{}, seats)

	_, err := uc.Execute(context.Background(), "trip-1")
	if !errors.Is(err, domainerr.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

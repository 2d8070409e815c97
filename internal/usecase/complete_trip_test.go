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

func TestCompleteTrip(t *testing.T) {
	tripRepo := newFakeTripRepo()
	bookingRepo := newFakeBookingRepo()
	seats := ledger.New()

	seedTrip(t, tripRepo, seats, "trip-1", 4, trip.StatusActive)
	seedBooking(t, bookingRepo, seats, "b1", "trip-1", 2, booking.StatusInProgress)

	uc := NewCompleteTrip(&fakeTxManager{}, tripRepo, bookingRepo, &fakeOutboxRepo{}, seats)

	done, err := uc.Execute(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if done.Status != trip.StatusCompleted {
		t.Fatalf("trip status = %s", done.Status)
	}
	if got := bookingRepo.bookings["b1"].Status; got != booking.StatusCompleted {
		t.Fatalf("booking status = %s, want COMPLETED", got)
	}

	// Inventory dropped with the trip.
	if _, err := seats.TryReserve("trip-1", "b-new", 1); !errors.Is(err, domainerr.ErrNotFound) {
		t.Fatalf("expected dropped inventory, got %v", err)
	}
}

func TestCompleteTripCancelsStragglers(t *testing.T) {
	tripRepo := newFakeTripRepo()
	bookingRepo := newFakeBookingRepo()
	outboxRepo := &fakeOutboxRepo{}
	seats := ledger.New()

	seedTrip(t, tripRepo, seats, "trip-1", 6, trip.StatusActive)
	seedBooking(t, bookingRepo, seats, "b1", "trip-1", 2, booking.StatusInProgress)
	seedBooking(t, bookingRepo, seats, "b2", "trip-1", 1, booking.StatusConfirmed)
	seedBooking(t, bookingRepo, seats, "b3", "trip-1", 1, booking.StatusPending)

	uc := NewCompleteTrip(&fakeTxManager{}, tripRepo, bookingRepo, outboxRepo, seats)

	if _, err := uc.Execute(context.Background(), "trip-1"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	// The rider completes; the bookings that never started are cancelled
	// so nothing stays non-terminal on a completed trip.
	if got := bookingRepo.bookings["b1"].Status; got != booking.StatusCompleted {
		t.Fatalf("b1 status = %s, want COMPLETED", got)
	}
	for _, id := range []string{"b2", "b3"} {
		b := bookingRepo.bookings[id]
		if b.Status != booking.StatusCancelled {
			t.Fatalf("%s status = %s, want CANCELLED", id, b.Status)
		}
		if b.CancelledBy != booking.CancelledBySystem {
			t.Fatalf("%s cancelled_by = %s", id, b.CancelledBy)
		}
	}

	var cancelledEvents int
	for _, typ := range outboxRepo.typesCreated() {
		if typ == event.TypeBookingCancelled {
			cancelledEvents++
		}
	}
	if cancelledEvents != 2 {
		t.Fatalf("booking.cancelled events = %d, want 2", cancelledEvents)
	}
}

func TestCompleteTripFromPlanned(t *testing.T) {
	tripRepo := newFakeTripRepo()
	seats := ledger.New()
	seedTrip(t, tripRepo, seats, "trip-1", 4, trip.StatusPlanned)

	uc := NewCompleteTrip(&fakeTxManager{}, tripRepo, newFakeBookingRepo(), &fakeOutboxRepo{}, seats)

	// PLANNED -> COMPLETED skips ACTIVE and is rejected.
	_, err := uc.Execute(context.Background(), "trip-1")
	if !errors.Is(err, domainerr.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

package usecase

import (
	"context"
	"fmt"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/booking"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/trip"
	"github.com/jkamga/axis-ride-main-projet/internal/ledger"
)

type RestoreLedger struct {
	tripRepo    trip.Repository
	bookingRepo booking.Repository
	seats       *ledger.Ledger
}

func NewRestoreLedger(tripRepo trip.Repository, bookingRepo booking.Repository, seats *ledger.Ledger) *RestoreLedger {
	return &RestoreLedger{
		tripRepo:    tripRepo,
		bookingRepo: bookingRepo,
		seats:       seats,
	}
}

// Execute rebuilds the in-process seat ledger from persisted state at
// startup: one inventory entry per open trip, one hold per seat-holding
// booking. Holds on trips that already reached a terminal state are skipped
// (Restore no-ops on unregistered trips).
func (uc *RestoreLedger) Execute(ctx context.Context) (int, error) {
	trips, err := uc.tripRepo.ListOpen(ctx)
	if err != nil {
		return 0, fmt.Errorf("list open trips: %w", err)
	}
	for _, t := range trips {
		if err := uc.seats.Register(t.ID, t.TotalSeats); err != nil {
			return 0, fmt.Errorf("register trip %s: %w", t.ID, err)
		}
	}

	holds, err := uc.bookingRepo.ListSeatHolds(ctx)
	if err != nil {
		return 0, fmt.Errorf("list seat holds: %w", err)
	}
	for _, h := range holds {
		uc.seats.Restore(h.TripID, h.BookingID, h.Seats)
	}

	return len(trips), nil
}

package usecase

import (
	"context"
	"fmt"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/booking"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/domainerr"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/trip"
	"github.com/jkamga/axis-ride-main-projet/internal/ledger"
)

type DeleteTrip struct {
	tripRepo    trip.Repository
	bookingRepo booking.Repository
	seats       *ledger.Ledger
}

func NewDeleteTrip(tripRepo trip.Repository, bookingRepo booking.Repository, seats *ledger.Ledger) *DeleteTrip {
	return &DeleteTrip{
		tripRepo:    tripRepo,
		bookingRepo: bookingRepo,
		seats:       seats,
	}
}

// Execute removes a trip that never took a booking. Once any booking exists
// (whatever its state) the trip can only be cancelled, not deleted.
func (uc *DeleteTrip) Execute(ctx context.Context, tripID string) error {
	if _, err := uc.tripRepo.GetByID(ctx, tripID); err != nil {
		return err
	}

	n, err := uc.bookingRepo.CountByTrip(ctx, tripID)
	if err != nil {
		return fmt.Errorf("count bookings: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: trip %s has %d bookings, cancel it instead", domainerr.ErrIllegalTransition, tripID, n)
	}

	if err := uc.tripRepo.Delete(ctx, tripID); err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}

	uc.seats.Drop(tripID)
	return nil
}

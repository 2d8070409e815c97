package booking

import (
	"context"
	"time"
)

// SeatHold is one booking's claim on a trip's inventory, used to rebuild the
// ledger at startup.
type SeatHold struct {
	TripID    string
	BookingID string
	Seats     int
}

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	Update(ctx context.Context, b *Booking) error
	// ListActiveByTrip returns the trip's PENDING, CONFIRMED and IN_PROGRESS
	// bookings.
	ListActiveByTrip(ctx context.Context, tripID string) ([]*Booking, error)
	ListByPassenger(ctx context.Context, passengerID string) ([]*Booking, error)
	CountByTrip(ctx context.Context, tripID string) (int, error)
	// ListExpiredPending returns PENDING bookings created at or before the
	// cutoff.
	ListExpiredPending(ctx context.Context, cutoff time.Time) ([]*Booking, error)
	// ListSeatHolds returns the seat claims of all seat-holding bookings.
	ListSeatHolds(ctx context.Context) ([]SeatHold, error)
}

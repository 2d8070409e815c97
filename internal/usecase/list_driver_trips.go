package usecase

import (
	"context"
	"fmt"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/trip"
	"github.com/jkamga/axis-ride-main-projet/internal/ledger"
)

type ListDriverTrips struct {
	tripRepo trip.Repository
	seats    *ledger.Ledger
}

func NewListDriverTrips(tripRepo trip.Repository, seats *ledger.Ledger) *ListDriverTrips {
	return &ListDriverTrips{tripRepo: tripRepo, seats: seats}
}

// Execute returns the driver's upcoming (PLANNED or ACTIVE) trips with live
// availability.
func (uc *ListDriverTrips) Execute(ctx context.Context, driverID string) ([]TripView, error) {
	ts, err := uc.tripRepo.ListUpcomingByDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("list driver trips: %w", err)
	}

	out := make([]TripView, 0, len(ts))
	for _, t := range ts {
		out = append(out, TripView{Trip: *t, AvailableSeats: uc.seats.Available(t.ID)})
	}
	return out, nil
}

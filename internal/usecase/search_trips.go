package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/trip"
	"github.com/jkamga/axis-ride-main-projet/internal/ledger"
)

// TripView is a trip joined with its live seat availability.
type TripView struct {
	trip.Trip
	AvailableSeats int `json:"available_seats"`
}

type SearchTrips struct {
	tripRepo     trip.Repository
	seats        *ledger.Ledger
	maxPageSize  int
	candidateCap int
}

func NewSearchTrips(tripRepo trip.Repository, seats *ledger.Ledger, maxPageSize, candidateCap int) *SearchTrips {
	return &SearchTrips{
		tripRepo:     tripRepo,
		seats:        seats,
		maxPageSize:  maxPageSize,
		candidateCap: candidateCap,
	}
}

type SearchTripsParams struct {
	DepartureCity string
	ArrivalCity   string
	From          time.Time
	MinSeats      int
	Page          int
	PageSize      int
}

// Execute answers "PLANNED trips on this city pair departing at or after
// From with at least MinSeats available", ordered by (departure_time, id).
// Availability is read live from the ledger on every call, never cached:
// the result is a hint, the subsequent reservation is the commitment, and a
// favorable result may still lose the reserve race.
func (uc *SearchTrips) Execute(ctx context.Context, params SearchTripsParams) ([]TripView, error) {
	if params.MinSeats < 1 {
		params.MinSeats = 1
	}
	if params.Page < 0 {
		params.Page = 0
	}
	if params.PageSize < 1 || params.PageSize > uc.maxPageSize {
		params.PageSize = uc.maxPageSize
	}
	if params.From.IsZero() {
		params.From = time.Now().UTC()
	}

	candidates, err := uc.tripRepo.SearchCandidates(ctx, trip.SearchQuery{
		DepartureCity: params.DepartureCity,
		ArrivalCity:   params.ArrivalCity,
		From:          params.From,
		Limit:         uc.candidateCap,
	})
	if err != nil {
		return nil, fmt.Errorf("search trips: %w", err)
	}

	skip := params.Page * params.PageSize
	out := make([]TripView, 0, params.PageSize)
	for _, t := range candidates {
		avail := uc.seats.Available(t.ID)
		if avail < params.MinSeats {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		out = append(out, TripView{Trip: *t, AvailableSeats: avail})
		if len(out) == params.PageSize {
			break
		}
	}

	return out, nil
}

package trip

import (
	"fmt"
	"strings"
	"time"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/domainerr"
)

// allowTransition is the trip status graph. COMPLETED and CANCELLED are
// terminal: no outgoing edges.
var allowTransition = map[Status][]Status{
	StatusPlanned:   {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether from -> to is an allowed status change.
// A self-transition is not allowed; callers must not re-apply states.
func CanTransition(from, to Status) bool {
	allowed, ok := allowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition moves the trip to the target status, or returns
// ErrIllegalTransition leaving the trip unchanged.
func ApplyTransition(t *Trip, to Status, now time.Time) error {
	if t == nil {
		return fmt.Errorf("trip is nil")
	}
	if !CanTransition(t.Status, to) {
		return fmt.Errorf("%w: trip %s -> %s", domainerr.ErrIllegalTransition, t.Status, to)
	}
	t.Status = to
	t.UpdatedAt = now
	return nil
}

// NewTripInput carries the caller-supplied fields for trip creation.
type NewTripInput struct {
	DriverID string

	DepartureAddress string
	DepartureCity    string
	DepartureLat     float64
	DepartureLon     float64
	ArrivalAddress   string
	ArrivalCity      string
	ArrivalLat       float64
	ArrivalLon       float64

	DepartureTime time.Time
	ArrivalTime   *time.Time

	TotalSeats   int
	PricePerSeat int64
	Currency     string
	Description  string

	LuggageAllowed bool
	PetsAllowed    bool
	SmokingAllowed bool
	MusicAllowed   bool
	InstantBooking bool

	VehicleType  string
	VehicleModel string
	VehicleColor string
	LicensePlate string

	DistanceKm      float64
	DurationMinutes int
}

// New validates the input and builds a PLANNED trip. The id is assigned by
// the caller so that creation stays deterministic in tests.
func New(id string, in NewTripInput, now time.Time) (*Trip, error) {
	if strings.TrimSpace(in.DriverID) == "" {
		return nil, fmt.Errorf("%w: driver_id required", domainerr.ErrInvalidTripParameters)
	}
	if strings.TrimSpace(in.DepartureCity) == "" || strings.TrimSpace(in.ArrivalCity) == "" {
		return nil, fmt.Errorf("%w: departure and arrival city required", domainerr.ErrInvalidTripParameters)
	}
	if in.TotalSeats < 1 {
		return nil, fmt.Errorf("%w: total_seats must be >= 1", domainerr.ErrInvalidTripParameters)
	}
	if in.PricePerSeat < 0 {
		return nil, fmt.Errorf("%w: price_per_seat must not be negative", domainerr.ErrInvalidTripParameters)
	}
	if !in.DepartureTime.After(now) {
		return nil, fmt.Errorf("%w: departure_time must be in the future", domainerr.ErrInvalidTripParameters)
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	return &Trip{
		ID:               id,
		DriverID:         strings.TrimSpace(in.DriverID),
		DepartureAddress: strings.TrimSpace(in.DepartureAddress),
		DepartureCity:    strings.TrimSpace(in.DepartureCity),
		DepartureLat:     in.DepartureLat,
		DepartureLon:     in.DepartureLon,
		ArrivalAddress:   strings.TrimSpace(in.ArrivalAddress),
		ArrivalCity:      strings.TrimSpace(in.ArrivalCity),
		ArrivalLat:       in.ArrivalLat,
		ArrivalLon:       in.ArrivalLon,
		DepartureTime:    in.DepartureTime,
		ArrivalTime:      in.ArrivalTime,
		TotalSeats:       in.TotalSeats,
		PricePerSeat:     in.PricePerSeat,
		Currency:         currency,
		Status:           StatusPlanned,
		Description:      strings.TrimSpace(in.Description),
		LuggageAllowed:   in.LuggageAllowed,
		PetsAllowed:      in.PetsAllowed,
		SmokingAllowed:   in.SmokingAllowed,
		MusicAllowed:     in.MusicAllowed,
		InstantBooking:   in.InstantBooking,
		VehicleType:      strings.TrimSpace(in.VehicleType),
		VehicleModel:     strings.TrimSpace(in.VehicleModel),
		VehicleColor:     strings.TrimSpace(in.VehicleColor),
		LicensePlate:     strings.TrimSpace(in.LicensePlate),
		DistanceKm:       in.DistanceKm,
		DurationMinutes:  in.DurationMinutes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

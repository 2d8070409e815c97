package trip

import (
	"time"
)

// Status is the trip lifecycle state (persisted as a string).
type Status string

const (
	StatusPlanned   Status = "PLANNED"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

const DefaultCurrency = "XOF"

// Trip is a driver-published ride offer with a fixed seat inventory.
// Seat accounting itself lives in the ledger; TotalSeats is immutable
// after creation.
type Trip struct {
	ID       string `json:"id"`
	DriverID string `json:"driver_id"`

	DepartureAddress string  `json:"departure_address"`
	DepartureCity    string  `json:"departure_city"`
	DepartureLat     float64 `json:"departure_lat"`
	DepartureLon     float64 `json:"departure_lon"`
	ArrivalAddress   string  `json:"arrival_address"`
	ArrivalCity      string  `json:"arrival_city"`
	ArrivalLat       float64 `json:"arrival_lat"`
	ArrivalLon       float64 `json:"arrival_lon"`

	DepartureTime time.Time  `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time,omitempty"`

	TotalSeats int `json:"total_seats"`

	// PricePerSeat is in minor currency units.
	PricePerSeat int64  `json:"price_per_seat"`
	Currency     string `json:"currency"`

	Status      Status `json:"status"`
	Description string `json:"description,omitempty"`

	LuggageAllowed bool `json:"luggage_allowed"`
	PetsAllowed    bool `json:"pets_allowed"`
	SmokingAllowed bool `json:"smoking_allowed"`
	MusicAllowed   bool `json:"music_allowed"`
	InstantBooking bool `json:"instant_booking"`

	VehicleType  string `json:"vehicle_type,omitempty"`
	VehicleModel string `json:"vehicle_model,omitempty"`
	VehicleColor string `json:"vehicle_color,omitempty"`
	LicensePlate string `json:"license_plate,omitempty"`

	DistanceKm      float64 `json:"distance_km,omitempty"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bookable reports whether the trip accepts new bookings in its current state.
func (t *Trip) Bookable() bool {
	return t.Status.Bookable()
}

// Bookable reports whether a trip in this status accepts new bookings.
func (s Status) Bookable() bool {
	return s == StatusPlanned || s == StatusActive
}

// Terminal reports whether the trip reached a state with no outgoing transitions.
func (t *Trip) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusCancelled
}

package event

import "time"

type TripCreated struct {
	TripID        string    `json:"trip_id"`
	DriverID      string    `json:"driver_id"`
	TotalSeats    int       `json:"total_seats"`
	DepartureTime time.Time `json:"departure_time"`
}

type TripCancelled struct {
	TripID string `json:"trip_id"`
}

type BookingCreated struct {
	BookingID   string `json:"booking_id"`
	TripID      string `json:"trip_id"`
	PassengerID string `json:"passenger_id"`
	Seats       int    `json:"seats"`
	TotalPrice  int64  `json:"total_price"`
}

type BookingConfirmed struct {
	BookingID string `json:"booking_id"`
}

type BookingCancelled struct {
	BookingID string `json:"booking_id"`
	Reason    string `json:"reason"`
}

// PaymentOutcome is the payload of payment.authorized and payment.failed.
type PaymentOutcome struct {
	BookingID string `json:"booking_id"`
	PaymentID string `json:"payment_id,omitempty"`
}

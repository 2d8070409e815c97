package booking

import "time"

// Status is the booking lifecycle state (persisted as a string).
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Payment status values mirrored from the payment service.
const (
	PaymentStatusAuthorized = "AUTHORIZED"
	PaymentStatusFailed     = "FAILED"
)

// Booking is a passenger's seat reservation on a trip. TripID is a lookup
// key, not an object graph edge. Bookings are mutated only through Apply;
// direct field writes would bypass invariant enforcement.
type Booking struct {
	ID          string `json:"id"`
	TripID      string `json:"trip_id"`
	PassengerID string `json:"passenger_id"`

	SeatsBooked int `json:"seats_booked"`

	// TotalPrice is seats x trip price, frozen at creation, in minor units.
	TotalPrice int64  `json:"total_price"`
	Currency   string `json:"currency"`

	Status Status `json:"status"`

	PickupAddress  string `json:"pickup_address,omitempty"`
	DropoffAddress string `json:"dropoff_address,omitempty"`
	PassengerNotes string `json:"passenger_notes,omitempty"`

	PaymentID     string `json:"payment_id,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`

	CancelledBy        string     `json:"cancelled_by,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HoldsSeats reports whether the booking currently counts against the trip's
// seat inventory.
func (b *Booking) HoldsSeats() bool {
	switch b.Status {
	case StatusPending, StatusConfirmed, StatusInProgress:
		return true
	default:
		return false
	}
}

// Terminal reports whether the booking reached a state with no outgoing
// transitions.
func (b *Booking) Terminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled
}

package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/domainerr"
)

// LifecycleEvent drives booking state transitions. Bookings never change
// state any other way.
type LifecycleEvent string

const (
	EventPaymentAuthorized    LifecycleEvent = "payment_authorized"
	EventPaymentFailed        LifecycleEvent = "payment_failed"
	EventPaymentTimeout       LifecycleEvent = "payment_timeout"
	EventTripStarted          LifecycleEvent = "trip_started"
	EventTripEnded            LifecycleEvent = "trip_ended"
	EventCancelledByPassenger LifecycleEvent = "cancelled_by_passenger"
	EventCancelledByDriver    LifecycleEvent = "cancelled_by_driver"
	EventCancelledByTrip      LifecycleEvent = "cancelled_by_trip"
)

// Actors recorded in CancelledBy.
const (
	CancelledByPassenger = "passenger"
	CancelledByDriver    = "driver"
	CancelledBySystem    = "system"
)

// Apply transitions the booking according to the lifecycle table. Any
// (state, event) pair outside the table returns ErrIllegalTransition and
// leaves the booking unchanged. reason is only used for cancelling events.
func Apply(b *Booking, ev LifecycleEvent, reason string, now time.Time) error {
	if b == nil {
		return fmt.Errorf("booking is nil")
	}

	switch ev {
	case EventPaymentAuthorized:
		if b.Status != StatusPending {
			return illegal(b, ev)
		}
		b.Status = StatusConfirmed
		b.PaymentStatus = PaymentStatusAuthorized

	case EventPaymentFailed:
		if b.Status != StatusPending {
			return illegal(b, ev)
		}
		b.PaymentStatus = PaymentStatusFailed
		cancel(b, CancelledBySystem, orDefault(reason, "payment failed"), now)

	case EventPaymentTimeout:
		if b.Status != StatusPending {
			return illegal(b, ev)
		}
		cancel(b, CancelledBySystem, orDefault(reason, "no payment outcome within window"), now)

	case EventTripStarted:
		if b.Status != StatusConfirmed {
			return illegal(b, ev)
		}
		b.Status = StatusInProgress

	case EventTripEnded:
		if b.Status != StatusInProgress {
			return illegal(b, ev)
		}
		b.Status = StatusCompleted

	case EventCancelledByPassenger:
		if !b.HoldsSeats() {
			return illegal(b, ev)
		}
		cancel(b, CancelledByPassenger, reason, now)

	case EventCancelledByDriver:
		if !b.HoldsSeats() {
			return illegal(b, ev)
		}
		cancel(b, CancelledByDriver, reason, now)

	case EventCancelledByTrip:
		if !b.HoldsSeats() {
			return illegal(b, ev)
		}
		cancel(b, CancelledBySystem, orDefault(reason, "trip cancelled"), now)

	default:
		return fmt.Errorf("%w: unknown booking event %q", domainerr.ErrIllegalTransition, ev)
	}

	b.UpdatedAt = now
	return nil
}

func illegal(b *Booking, ev LifecycleEvent) error {
	return fmt.Errorf("%w: booking %s does not accept %s", domainerr.ErrIllegalTransition, b.Status, ev)
}

func cancel(b *Booking, by, reason string, now time.Time) {
	b.Status = StatusCancelled
	b.CancelledBy = by
	b.CancellationReason = strings.TrimSpace(reason)
	t := now
	b.CancelledAt = &t
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// New builds a PENDING booking with the total price frozen from the trip's
// per-seat price. Seat validation against capacity happens at the ledger,
// not here.
func New(id, tripID, passengerID string, seats int, pricePerSeat int64, currency string, now time.Time) (*Booking, error) {
	if strings.TrimSpace(passengerID) == "" {
		return nil, fmt.Errorf("%w: passenger_id required", domainerr.ErrInvalidBookingParameters)
	}
	if seats < 1 {
		return nil, fmt.Errorf("%w: seats_booked must be >= 1", domainerr.ErrInvalidBookingParameters)
	}
	return &Booking{
		ID:          id,
		TripID:      tripID,
		PassengerID: strings.TrimSpace(passengerID),
		SeatsBooked: seats,
		TotalPrice:  int64(seats) * pricePerSeat,
		Currency:    currency,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

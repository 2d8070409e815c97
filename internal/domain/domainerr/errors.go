package domainerr

import "errors"

// Sentinel errors returned by the trip and booking operations. Callers match
// with errors.Is; the HTTP layer maps them to status codes.
var (
	// ErrInsufficientCapacity means the seat reservation race was lost. The
	// caller should surface "fully booked", not retry automatically.
	ErrInsufficientCapacity = errors.New("insufficient seat capacity")

	// ErrTripNotBookable means the trip state precludes new bookings.
	ErrTripNotBookable = errors.New("trip not bookable")

	// ErrIllegalTransition means a state change invalid for the current state
	// was attempted. It indicates a caller or ordering bug and is never a
	// silent no-op.
	ErrIllegalTransition = errors.New("illegal state transition")

	// ErrInvalidTripParameters is a validation failure on trip creation.
	ErrInvalidTripParameters = errors.New("invalid trip parameters")

	// ErrInvalidBookingParameters is a validation failure on booking creation.
	ErrInvalidBookingParameters = errors.New("invalid booking parameters")

	// ErrTooEarly means a driver tried to start a trip before its departure time.
	ErrTooEarly = errors.New("trip cannot start before departure time")

	ErrNotFound = errors.New("not found")
)

// Package ledger is the authoritative seat inventory. Every seat-count
// mutation for a trip goes through TryReserve/Release; nothing else may
// touch the committed counters.
package ledger

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/domainerr"
)

var reservationsRejected = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ledger_reservations_rejected_total",
	Help: "The total number of seat reservations rejected for insufficient capacity",
})

// Reservation is the handle returned by a successful TryReserve.
type Reservation struct {
	TripID    string
	BookingID string
	Seats     int
}

// entry is one trip's inventory. Its mutex serializes all reservation
// attempts for that trip; holds records live claims per booking so that
// Release is idempotent per booking.
type entry struct {
	mu        sync.Mutex
	total     int
	committed int
	holds     map[string]int
}

// Ledger tracks committed seats per trip. Locking is per trip; the map
// mutex only guards entry lookup and is never held during reservation work.
type Ledger struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func New() *Ledger {
	return &Ledger{entries: make(map[string]*entry)}
}

// Register creates the inventory entry for a new trip. Registering an
// already-known trip is an error: total seats are immutable.
func (l *Ledger) Register(tripID string, totalSeats int) error {
	if totalSeats < 1 {
		return fmt.Errorf("%w: total seats must be >= 1", domainerr.ErrInvalidTripParameters)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[tripID]; ok {
		return fmt.Errorf("trip %s already registered", tripID)
	}
	l.entries[tripID] = &entry{total: totalSeats, holds: make(map[string]int)}
	return nil
}

// Drop removes a trip's inventory entry once the trip reaches a terminal
// state. Dropping an unknown trip is a no-op.
func (l *Ledger) Drop(tripID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, tripID)
}

// TryReserve atomically claims seats for a booking. It either commits the
// claim and returns a handle, or returns ErrInsufficientCapacity with no
// state change. Re-reserving under the same booking id is rejected.
func (l *Ledger) TryReserve(tripID, bookingID string, seats int) (Reservation, error) {
	if seats < 1 {
		return Reservation{}, fmt.Errorf("%w: seats must be >= 1", domainerr.ErrInvalidBookingParameters)
	}
	e, err := l.lookup(tripID)
	if err != nil {
		return Reservation{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, held := e.holds[bookingID]; held {
		return Reservation{}, fmt.Errorf("booking %s already holds seats on trip %s", bookingID, tripID)
	}
	if e.committed+seats > e.total {
		reservationsRejected.Inc()
		return Reservation{}, fmt.Errorf("%w: trip %s has %d of %d seats committed, wanted %d more",
			domainerr.ErrInsufficientCapacity, tripID, e.committed, e.total, seats)
	}
	e.committed += seats
	e.holds[bookingID] = seats

	return Reservation{TripID: tripID, BookingID: bookingID, Seats: seats}, nil
}

// Release frees the seats held by a booking and returns how many were freed.
// It is idempotent per booking: releasing an unknown or already-released
// booking returns 0, not an error. This guards against duplicate
// cancellation events.
func (l *Ledger) Release(tripID, bookingID string) int {
	e, err := l.lookup(tripID)
	if err != nil {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	seats, held := e.holds[bookingID]
	if !held {
		return 0
	}
	delete(e.holds, bookingID)
	e.committed -= seats
	if e.committed < 0 {
		e.committed = 0
	}
	return seats
}

// Restore force-registers an existing hold, bypassing the capacity check.
// Only for rebuilding the ledger from persisted bookings at startup.
func (l *Ledger) Restore(tripID, bookingID string, seats int) {
	e, err := l.lookup(tripID)
	if err != nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, held := e.holds[bookingID]; held {
		return
	}
	e.committed += seats
	e.holds[bookingID] = seats
}

// Committed returns the seats currently claimed on a trip.
func (l *Ledger) Committed(tripID string) int {
	e, err := l.lookup(tripID)
	if err != nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.committed
}

// Available returns total minus committed, or 0 for unknown trips.
func (l *Ledger) Available(tripID string) int {
	e, err := l.lookup(tripID)
	if err != nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.total - e.committed
}

func (l *Ledger) lookup(tripID string) (*entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[tripID]
	if !ok {
		return nil, fmt.Errorf("%w: trip %s not in ledger", domainerr.ErrNotFound, tripID)
	}
	return e, nil
}

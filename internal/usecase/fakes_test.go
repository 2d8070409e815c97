package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/booking"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/domainerr"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/outbox"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/trip"
)

// fakeTxManager runs the function directly; failNext makes the whole
// "transaction" fail to exercise compensation paths.
type fakeTxManager struct {
	failNext error
}

func (m *fakeTxManager) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	return tFunc(ctx)
}

type fakeTripRepo struct {
	trips     map[string]*trip.Trip
	createErr error
	// onStatusForShare runs before the locked status read, standing in for
	// a concurrent transaction that wins the row lock first.
	onStatusForShare func()
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{trips: make(map[string]*trip.Trip)}
}

func (r *fakeTripRepo) Create(_ context.Context, t *trip.Trip) error {
	if r.createErr != nil {
		return r.createErr
	}
	cp := *t
	r.trips[t.ID] = &cp
	return nil
}

func (r *fakeTripRepo) GetByID(_ context.Context, id string) (*trip.Trip, error) {
	t, ok := r.trips[id]
	if !ok {
		return nil, fmt.Errorf("%w: trip %s", domainerr.ErrNotFound, id)
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTripRepo) StatusForShare(_ context.Context, id string) (trip.Status, error) {
	if r.onStatusForShare != nil {
		r.onStatusForShare()
	}
	t, ok := r.trips[id]
	if !ok {
		return "", fmt.Errorf("%w: trip %s", domainerr.ErrNotFound, id)
	}
	return t.Status, nil
}

func (r *fakeTripRepo) UpdateStatus(_ context.Context, id string, status trip.Status, updatedAt time.Time) error {
	t, ok := r.trips[id]
	if !ok {
		return fmt.Errorf("%w: trip %s", domainerr.ErrNotFound, id)
	}
	t.Status = status
	t.UpdatedAt = updatedAt
	return nil
}

func (r *fakeTripRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.trips[id]; !ok {
		return fmt.Errorf("%w: trip %s", domainerr.ErrNotFound, id)
	}
	delete(r.trips, id)
	return nil
}

func (r *fakeTripRepo) SearchCandidates(_ context.Context, q trip.SearchQuery) ([]*trip.Trip, error) {
	var out []*trip.Trip
	for _, t := range r.trips {
		if t.Status != trip.StatusPlanned {
			continue
		}
		if t.DepartureCity != q.DepartureCity || t.ArrivalCity != q.ArrivalCity {
			continue
		}
		if t.DepartureTime.Before(q.From) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DepartureTime.Equal(out[j].DepartureTime) {
			return out[i].DepartureTime.Before(out[j].DepartureTime)
		}
		return out[i].ID < out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *fakeTripRepo) ListUpcomingByDriver(_ context.Context, driverID string) ([]*trip.Trip, error) {
	var out []*trip.Trip
	for _, t := range r.trips {
		if t.DriverID != driverID {
			continue
		}
		if t.Status != trip.StatusPlanned && t.Status != trip.StatusActive {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartureTime.Before(out[j].DepartureTime) })
	return out, nil
}

func (r *fakeTripRepo) ListOpen(_ context.Context) ([]*trip.Trip, error) {
	var out []*trip.Trip
	for _, t := range r.trips {
		if t.Status == trip.StatusPlanned || t.Status == trip.StatusActive {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeBookingRepo struct {
	bookings  map[string]*booking.Booking
	createErr error
	updateErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*booking.Booking)}
}

func (r *fakeBookingRepo) Create(_ context.Context, b *booking.Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id string) (*booking.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", domainerr.ErrNotFound, id)
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *booking.Booking) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.bookings[b.ID]; !ok {
		return fmt.Errorf("%w: booking %s", domainerr.ErrNotFound, b.ID)
	}
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *fakeBookingRepo) ListActiveByTrip(_ context.Context, tripID string) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.TripID == tripID && b.HoldsSeats() {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBookingRepo) ListByPassenger(_ context.Context, passengerID string) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.PassengerID == passengerID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBookingRepo) CountByTrip(_ context.Context, tripID string) (int, error) {
	var n int
	for _, b := range r.bookings {
		if b.TripID == tripID {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) ListExpiredPending(_ context.Context, cutoff time.Time) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.Status == booking.StatusPending && !b.CreatedAt.After(cutoff) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBookingRepo) ListSeatHolds(_ context.Context) ([]booking.SeatHold, error) {
	var out []booking.SeatHold
	for _, b := range r.bookings {
		if b.HoldsSeats() {
			out = append(out, booking.SeatHold{TripID: b.TripID, BookingID: b.ID, Seats: b.SeatsBooked})
		}
	}
	return out, nil
}

type fakeOutboxRepo struct {
	events    []*outbox.Event
	createErr error
}

func (r *fakeOutboxRepo) Create(_ context.Context, e *outbox.Event) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.events = append(r.events, e)
	return nil
}

func (r *fakeOutboxRepo) FetchBatch(_ context.Context, limit int) ([]*outbox.Event, error) {
	if limit > len(r.events) {
		limit = len(r.events)
	}
	return r.events[:limit], nil
}

func (r *fakeOutboxRepo) MarkProcessed(_ context.Context, _ []string) error { return nil }
func (r *fakeOutboxRepo) MarkFailed(_ context.Context, _ []string) error    { return nil }

func (r *fakeOutboxRepo) typesCreated() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

type fakeInboxRepo struct {
	seen    map[string]bool
	saveErr error
}

func newFakeInboxRepo() *fakeInboxRepo {
	return &fakeInboxRepo{seen: make(map[string]bool)}
}

func (r *fakeInboxRepo) SaveIfNotExists(_ context.Context, consumer, eventID, _, _ string) (bool, error) {
	if r.saveErr != nil {
		return false, r.saveErr
	}
	key := consumer + ":" + eventID
	if r.seen[key] {
		return false, nil
	}
	r.seen[key] = true
	return true, nil
}

var errBoom = errors.New("boom")

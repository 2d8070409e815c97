package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/booking"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/domainerr"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/event"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/outbox"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/trip"
	"github.com/jkamga/axis-ride-main-projet/internal/infrastructure/postgres"
	"github.com/jkamga/axis-ride-main-projet/internal/ledger"
)

var bookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "trip_service_bookings_created_total",
	Help: "Bookings accepted and persisted in PENDING state",
})

type CreateBooking struct {
	txManager   postgres.Transactor
	tripRepo    trip.Repository
	bookingRepo booking.Repository
	outboxRepo  outbox.Repository
	seats       *ledger.Ledger
}

func NewCreateBooking(
	txManager postgres.Transactor,
	tripRepo trip.Repository,
	bookingRepo booking.Repository,
	outboxRepo outbox.Repository,
	seats *ledger.Ledger,
) *CreateBooking {
	return &CreateBooking{
		txManager:   txManager,
		tripRepo:    tripRepo,
		bookingRepo: bookingRepo,
		outboxRepo:  outboxRepo,
		seats:       seats,
	}
}

type CreateBookingParams struct {
	TripID         string `json:"trip_id"`
	PassengerID    string `json:"passenger_id"`
	Seats          int    `json:"seats"`
	PickupAddress  string `json:"pickup_address"`
	DropoffAddress string `json:"dropoff_address"`
	PassengerNotes string `json:"passenger_notes"`
}

// Execute reserves seats and persists the PENDING booking. The ledger
// reservation is the authoritative capacity check; if persistence fails the
// reservation is released again so no seat stays held without a durable
// booking record.
func (uc *CreateBooking) Execute(ctx context.Context, params CreateBookingParams) (*booking.Booking, error) {
	t, err := uc.tripRepo.GetByID(ctx, params.TripID)
	if err != nil {
		return nil, err
	}
	if !t.Bookable() {
		return nil, fmt.Errorf("%w: trip %s is %s", domainerr.ErrTripNotBookable, t.ID, t.Status)
	}

	now := time.Now().UTC()
	b, err := booking.New(uuid.New().String(), t.ID, params.PassengerID, params.Seats, t.PricePerSeat, t.Currency, now)
	if err != nil {
		return nil, err
	}
	b.PickupAddress = params.PickupAddress
	b.DropoffAddress = params.DropoffAddress
	b.PassengerNotes = params.PassengerNotes

	outboxEvent, err := outbox.NewEvent(event.TypeBookingCreated, event.BookingCreated{
		BookingID:   b.ID,
		TripID:      t.ID,
		PassengerID: b.PassengerID,
		Seats:       b.SeatsBooked,
		TotalPrice:  b.TotalPrice,
	}, b.ID, "", producerName, now)
	if err != nil {
		return nil, err
	}

	if _, err := uc.seats.TryReserve(t.ID, b.ID, b.SeatsBooked); err != nil {
		return nil, err
	}

	err = uc.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		// Re-read the status under a shared row lock: a trip cancellation
		// committing between the first read and this insert must veto the
		// booking, or it would escape the cascading cancellation.
		status, err := uc.tripRepo.StatusForShare(txCtx, t.ID)
		if err != nil {
			return err
		}
		if !status.Bookable() {
			return fmt.Errorf("%w: trip %s is %s", domainerr.ErrTripNotBookable, t.ID, status)
		}
		if err := uc.bookingRepo.Create(txCtx, b); err != nil {
			return err
		}
		return uc.outboxRepo.Create(txCtx, outboxEvent)
	})
	if err != nil {
		// Compensating release: the reservation must not outlive the
		// failed booking record.
		uc.seats.Release(t.ID, b.ID)
		if errors.Is(err, domainerr.ErrTripNotBookable) || errors.Is(err, domainerr.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	bookingsCreated.Inc()
	return b, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/booking"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/domainerr"
)

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

const bookingColumns = `
	id, trip_id, passenger_id, seats_booked, total_price, currency, status,
	COALESCE(pickup_address, ''), COALESCE(dropoff_address, ''), COALESCE(passenger_notes, ''),
	COALESCE(payment_id, ''), COALESCE(payment_status, ''),
	COALESCE(cancelled_by, ''), COALESCE(cancellation_reason, ''), cancelled_at,
	created_at, updated_at
`

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	const sql = `
		INSERT INTO bookings (
			id, trip_id, passenger_id, seats_booked, total_price, currency, status,
			pickup_address, dropoff_address, passenger_notes,
			payment_id, payment_status,
			cancelled_by, cancellation_reason, cancelled_at,
			created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''),
			NULLIF($11, ''), NULLIF($12, ''),
			NULLIF($13, ''), NULLIF($14, ''), $15,
			$16, $17
		)
	`

	_, err := exec(ctx, r.pool).Exec(ctx, sql,
		b.ID, b.TripID, b.PassengerID, b.SeatsBooked, b.TotalPrice, b.Currency, b.Status,
		b.PickupAddress, b.DropoffAddress, b.PassengerNotes,
		b.PaymentID, b.PaymentStatus,
		b.CancelledBy, b.CancellationReason, b.CancelledAt,
		b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	sql := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(exec(ctx, r.pool).QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: booking %s", domainerr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	const sql = `
		UPDATE bookings
		SET status = $2,
		    payment_id = NULLIF($3, ''),
		    payment_status = NULLIF($4, ''),
		    cancelled_by = NULLIF($5, ''),
		    cancellation_reason = NULLIF($6, ''),
		    cancelled_at = $7,
		    updated_at = $8
		WHERE id = $1
	`

	cmdTag, err := exec(ctx, r.pool).Exec(ctx, sql,
		b.ID, b.Status, b.PaymentID, b.PaymentStatus,
		b.CancelledBy, b.CancellationReason, b.CancelledAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: booking %s", domainerr.ErrNotFound, b.ID)
	}

	return nil
}

func (r *BookingRepository) ListActiveByTrip(ctx context.Context, tripID string) ([]*booking.Booking, error) {
	sql := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE trip_id = $1
		  AND status IN ('PENDING', 'CONFIRMED', 'IN_PROGRESS')
		ORDER BY created_at ASC
	`

	rows, err := exec(ctx, r.pool).Query(ctx, sql, tripID)
	if err != nil {
		return nil, fmt.Errorf("list active bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (r *BookingRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*booking.Booking, error) {
	sql := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE passenger_id = $1
		ORDER BY created_at DESC
	`

	rows, err := exec(ctx, r.pool).Query(ctx, sql, passengerID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by passenger: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (r *BookingRepository) CountByTrip(ctx context.Context, tripID string) (int, error) {
	var n int
	err := exec(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE trip_id = $1`, tripID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}

func (r *BookingRepository) ListExpiredPending(ctx context.Context, cutoff time.Time) ([]*booking.Booking, error) {
	sql := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'PENDING' AND created_at <= $1
		ORDER BY created_at ASC
	`

	rows, err := exec(ctx, r.pool).Query(ctx, sql, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expired pending bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (r *BookingRepository) ListSeatHolds(ctx context.Context) ([]booking.SeatHold, error) {
	const sql = `
		SELECT trip_id, id, seats_booked
		FROM bookings
		WHERE status IN ('PENDING', 'CONFIRMED', 'IN_PROGRESS')
	`

	rows, err := exec(ctx, r.pool).Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("list seat holds: %w", err)
	}
	defer rows.Close()

	var out []booking.SeatHold
	for rows.Next() {
		var h booking.SeatHold
		if err := rows.Scan(&h.TripID, &h.BookingID, &h.Seats); err != nil {
			return nil, fmt.Errorf("scan seat hold: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var b booking.Booking
	err := row.Scan(
		&b.ID, &b.TripID, &b.PassengerID, &b.SeatsBooked, &b.TotalPrice, &b.Currency, &b.Status,
		&b.PickupAddress, &b.DropoffAddress, &b.PassengerNotes,
		&b.PaymentID, &b.PaymentStatus,
		&b.CancelledBy, &b.CancellationReason, &b.CancelledAt,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBookings(rows pgx.Rows) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

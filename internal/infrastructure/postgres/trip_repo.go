package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/domainerr"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/trip"
)

type TripRepository struct {
	pool *pgxpool.Pool
}

func NewTripRepository(pool *pgxpool.Pool) *TripRepository {
	return &TripRepository{pool: pool}
}

const tripColumns = `
	id, driver_id,
	departure_address, departure_city, departure_lat, departure_lon,
	arrival_address, arrival_city, arrival_lat, arrival_lon,
	departure_time, arrival_time,
	total_seats, price_per_seat, currency,
	status, COALESCE(description, ''),
	luggage_allowed, pets_allowed, smoking_allowed, music_allowed, instant_booking,
	COALESCE(vehicle_type, ''), COALESCE(vehicle_model, ''), COALESCE(vehicle_color, ''), COALESCE(license_plate, ''),
	COALESCE(distance_km, 0), COALESCE(duration_minutes, 0),
	created_at, updated_at
`

func (r *TripRepository) Create(ctx context.Context, t *trip.Trip) error {
	const sql = `
		INSERT INTO trips (
			id, driver_id,
			departure_address, departure_city, departure_lat, departure_lon,
			arrival_address, arrival_city, arrival_lat, arrival_lon,
			departure_time, arrival_time,
			total_seats, price_per_seat, currency,
			status, description,
			luggage_allowed, pets_allowed, smoking_allowed, music_allowed, instant_booking,
			vehicle_type, vehicle_model, vehicle_color, license_plate,
			distance_km, duration_minutes,
			created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, NULLIF($17, ''),
			$18, $19, $20, $21, $22,
			NULLIF($23, ''), NULLIF($24, ''), NULLIF($25, ''), NULLIF($26, ''),
			NULLIF($27, 0.0), NULLIF($28, 0),
			$29, $30
		)
	`

	_, err := exec(ctx, r.pool).Exec(ctx, sql,
		t.ID, t.DriverID,
		t.DepartureAddress, t.DepartureCity, t.DepartureLat, t.DepartureLon,
		t.ArrivalAddress, t.ArrivalCity, t.ArrivalLat, t.ArrivalLon,
		t.DepartureTime, t.ArrivalTime,
		t.TotalSeats, t.PricePerSeat, t.Currency,
		t.Status, t.Description,
		t.LuggageAllowed, t.PetsAllowed, t.SmokingAllowed, t.MusicAllowed, t.InstantBooking,
		t.VehicleType, t.VehicleModel, t.VehicleColor, t.LicensePlate,
		t.DistanceKm, t.DurationMinutes,
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}

	return nil
}

func (r *TripRepository) GetByID(ctx context.Context, id string) (*trip.Trip, error) {
	sql := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	t, err := scanTrip(exec(ctx, r.pool).QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: trip %s", domainerr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get trip by id: %w", err)
	}
	return t, nil
}

// StatusForShare takes a shared lock on the trip row, so it blocks behind an
// uncommitted status UPDATE and reads the status that transaction leaves
// behind. Only meaningful inside a transaction.
func (r *TripRepository) StatusForShare(ctx context.Context, id string) (trip.Status, error) {
	const sql = `SELECT status FROM trips WHERE id = $1 FOR SHARE`

	var status trip.Status
	if err := exec(ctx, r.pool).QueryRow(ctx, sql, id).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: trip %s", domainerr.ErrNotFound, id)
		}
		return "", fmt.Errorf("lock trip status: %w", err)
	}
	return status, nil
}

func (r *TripRepository) UpdateStatus(ctx context.Context, id string, status trip.Status, updatedAt time.Time) error {
	const sql = `
		UPDATE trips
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	cmdTag, err := exec(ctx, r.pool).Exec(ctx, sql, id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update trip status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: trip %s", domainerr.ErrNotFound, id)
	}

	return nil
}

func (r *TripRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := exec(ctx, r.pool).Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: trip %s", domainerr.ErrNotFound, id)
	}
	return nil
}

func (r *TripRepository) SearchCandidates(ctx context.Context, q trip.SearchQuery) ([]*trip.Trip, error) {
	sql := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE status = 'PLANNED'
		  AND departure_city = $1
		  AND arrival_city = $2
		  AND departure_time >= $3
		ORDER BY departure_time ASC, id ASC
		LIMIT $4
	`

	rows, err := exec(ctx, r.pool).Query(ctx, sql, q.DepartureCity, q.ArrivalCity, q.From, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("search trips: %w", err)
	}
	defer rows.Close()

	return scanTrips(rows)
}

func (r *TripRepository) ListUpcomingByDriver(ctx context.Context, driverID string) ([]*trip.Trip, error) {
	sql := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE driver_id = $1
		  AND status IN ('PLANNED', 'ACTIVE')
		ORDER BY departure_time ASC, id ASC
	`

	rows, err := exec(ctx, r.pool).Query(ctx, sql, driverID)
	if err != nil {
		return nil, fmt.Errorf("list trips by driver: %w", err)
	}
	defer rows.Close()

	return scanTrips(rows)
}

func (r *TripRepository) ListOpen(ctx context.Context) ([]*trip.Trip, error) {
	sql := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE status IN ('PLANNED', 'ACTIVE')
		ORDER BY created_at ASC
	`

	rows, err := exec(ctx, r.pool).Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("list open trips: %w", err)
	}
	defer rows.Close()

	return scanTrips(rows)
}

func scanTrip(row pgx.Row) (*trip.Trip, error) {
	var t trip.Trip
	err := row.Scan(
		&t.ID, &t.DriverID,
		&t.DepartureAddress, &t.DepartureCity, &t.DepartureLat, &t.DepartureLon,
		&t.ArrivalAddress, &t.ArrivalCity, &t.ArrivalLat, &t.ArrivalLon,
		&t.DepartureTime, &t.ArrivalTime,
		&t.TotalSeats, &t.PricePerSeat, &t.Currency,
		&t.Status, &t.Description,
		&t.LuggageAllowed, &t.PetsAllowed, &t.SmokingAllowed, &t.MusicAllowed, &t.InstantBooking,
		&t.VehicleType, &t.VehicleModel, &t.VehicleColor, &t.LicensePlate,
		&t.DistanceKm, &t.DurationMinutes,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTrips(rows pgx.Rows) ([]*trip.Trip, error) {
	var out []*trip.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

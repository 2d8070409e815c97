package trip

import (
	"context"
	"time"
)

// SearchQuery selects PLANNED trips on a city pair departing at or after From.
// Seat availability is not part of the SQL predicate; the caller checks it
// against the live ledger.
type SearchQuery struct {
	DepartureCity string
	ArrivalCity   string
	From          time.Time
	Limit         int
}

type Repository interface {
	Create(ctx context.Context, t *Trip) error
	GetByID(ctx context.Context, id string) (*Trip, error)
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error
	// StatusForShare reads the trip status under a shared row lock, so that
	// within a transaction it serializes against concurrent status updates.
	StatusForShare(ctx context.Context, id string) (Status, error)
	Delete(ctx context.Context, id string) error
	// SearchCandidates returns PLANNED trips matching the query, ordered by
	// (departure_time asc, id asc) for deterministic paging.
	SearchCandidates(ctx context.Context, q SearchQuery) ([]*Trip, error)
	// ListUpcomingByDriver returns the driver's PLANNED and ACTIVE trips,
	// ordered by departure_time asc.
	ListUpcomingByDriver(ctx context.Context, driverID string) ([]*Trip, error)
	// ListOpen returns all PLANNED and ACTIVE trips. Used to rebuild the
	// seat ledger at startup.
	ListOpen(ctx context.Context) ([]*Trip, error)
}

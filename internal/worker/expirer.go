package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/jkamga/axis-ride-main-projet/internal/usecase"
)

// Expirer periodically cancels PENDING bookings whose payment outcome
// never arrived, returning their seats to the pool.
type Expirer struct {
	expire   *usecase.ExpireBookings
	interval time.Duration
}

func NewExpirer(expire *usecase.ExpireBookings, interval time.Duration) *Expirer {
	return &Expirer{expire: expire, interval: interval}
}

func (e *Expirer) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	slog.Info("booking expirer started", "interval", e.interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := e.expire.Execute(ctx)
			if err != nil {
				slog.Error("booking expiry sweep failed", "error", err)
			}
			if expired > 0 {
				slog.Info("expired pending bookings", "count", expired)
			}
		}
	}
}

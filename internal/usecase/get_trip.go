package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/trip"
	"github.com/jkamga/axis-ride-main-projet/internal/ledger"
)

type GetTrip struct {
	redisClient *redis.Client
	tripRepo    trip.Repository
	seats       *ledger.Ledger
}

func NewGetTrip(redisClient *redis.Client, tripRepo trip.Repository, seats *ledger.Ledger) *GetTrip {
	return &GetTrip{
		redisClient: redisClient,
		tripRepo:    tripRepo,
		seats:       seats,
	}
}

// Execute returns the trip with its live availability. Only the entity
// fields are cached; available seats always come straight from the ledger.
func (uc *GetTrip) Execute(ctx context.Context, tripID string) (*TripView, error) {
	cacheKey := fmt.Sprintf("trip:%s", tripID)

	if uc.redisClient != nil {
		val, err := uc.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var t trip.Trip
			if err := json.Unmarshal([]byte(val), &t); err == nil {
				return &TripView{Trip: t, AvailableSeats: uc.seats.Available(t.ID)}, nil
			}
		}
	}

	t, err := uc.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if uc.redisClient != nil {
		data, _ := json.Marshal(t)
		// TTL kept at 1 second so status changes show up quickly
		uc.redisClient.Set(ctx, cacheKey, data, 1*time.Second)
	}

	return &TripView{Trip: *t, AvailableSeats: uc.seats.Available(t.ID)}, nil
}

package usecase

import (
	"context"
	"fmt"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/booking"
)

type ListPassengerBookings struct {
	bookingRepo booking.Repository
}

func NewListPassengerBookings(bookingRepo booking.Repository) *ListPassengerBookings {
	return &ListPassengerBookings{bookingRepo: bookingRepo}
}

func (uc *ListPassengerBookings) Execute(ctx context.Context, passengerID string) ([]*booking.Booking, error) {
	bs, err := uc.bookingRepo.ListByPassenger(ctx, passengerID)
	if err != nil {
		return nil, fmt.Errorf("list passenger bookings: %w", err)
	}
	return bs, nil
}

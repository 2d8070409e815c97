package usecase

import (
	"context"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/booking"
)

type GetBooking struct {
	bookingRepo booking.Repository
}

func NewGetBooking(bookingRepo booking.Repository) *GetBooking {
	return &GetBooking{bookingRepo: bookingRepo}
}

func (uc *GetBooking) Execute(ctx context.Context, bookingID string) (*booking.Booking, error) {
	return uc.bookingRepo.GetByID(ctx, bookingID)
}

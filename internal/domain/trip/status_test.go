package trip

import (
	"errors"
	"testing"
	"time"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/domainerr"
)

func TestCanTransition(t *testing.T) {
	statuses := []Status{StatusPlanned, StatusActive, StatusCompleted, StatusCancelled}
	allowed := map[[2]Status]bool{
		{StatusPlanned, StatusActive}:    true,
		{StatusPlanned, StatusCancelled}: true,
		{StatusActive, StatusCompleted}:  true,
		{StatusActive, StatusCancelled}:  true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}

	if CanTransition(Status("UNKNOWN"), StatusActive) {
		t.Errorf("unknown status must not transition anywhere")
	}
}

func TestApplyTransition(t *testing.T) {
	now := time.Now().UTC()

	tr := &Trip{Status: StatusPlanned}
	if err := ApplyTransition(tr, StatusActive, now); err != nil {
		t.Fatalf("planned -> active: %v", err)
	}
	if tr.Status != StatusActive {
		t.Fatalf("expected ACTIVE, got %s", tr.Status)
	}
	if !tr.UpdatedAt.Equal(now) {
		t.Fatalf("updated_at not set")
	}

	if err := ApplyTransition(tr, StatusActive, now); !errors.Is(err, domainerr.ErrIllegalTransition) {
		t.Fatalf("self-transition: expected ErrIllegalTransition, got %v", err)
	}
	if err := ApplyTransition(tr, StatusCompleted, now); err != nil {
		t.Fatalf("active -> completed: %v", err)
	}
	if err := ApplyTransition(tr, StatusCancelled, now); !errors.Is(err, domainerr.ErrIllegalTransition) {
		t.Fatalf("completed is terminal: expected ErrIllegalTransition, got %v", err)
	}
	if tr.Status != StatusCompleted {
		t.Fatalf("failed transition mutated status to %s", tr.Status)
	}
}

func validInput(now time.Time) NewTripInput {
	return NewTripInput{
		DriverID:      "driver-1",
		DepartureCity: "Douala",
		ArrivalCity:   "Yaounde",
		DepartureTime: now.Add(24 * time.Hour),
		TotalSeats:    4,
		PricePerSeat:  500000,
	}
}

func TestNew(t *testing.T) {
	now := time.Now().UTC()

	tr, err := New("trip-1", validInput(now), now)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if tr.Status != StatusPlanned {
		t.Fatalf("expected PLANNED, got %s", tr.Status)
	}
	if tr.Currency != DefaultCurrency {
		t.Fatalf("expected default currency %s, got %s", DefaultCurrency, tr.Currency)
	}
	if !tr.Bookable() {
		t.Fatalf("planned trip must be bookable")
	}
	if tr.Terminal() {
		t.Fatalf("planned trip must not be terminal")
	}
}

func TestNewValidation(t *testing.T) {
	now := time.Now().UTC()

	cases := []struct {
		name   string
		mutate func(*NewTripInput)
	}{
		{"missing driver", func(in *NewTripInput) { in.DriverID = "  " }},
		{"missing departure city", func(in *NewTripInput) { in.DepartureCity = "" }},
		{"missing arrival city", func(in *NewTripInput) { in.ArrivalCity = "" }},
		{"zero seats", func(in *NewTripInput) { in.TotalSeats = 0 }},
		{"negative price", func(in *NewTripInput) { in.PricePerSeat = -1 }},
		{"departure in the past", func(in *NewTripInput) { in.DepartureTime = now.Add(-time.Minute) }},
		{"departure exactly now", func(in *NewTripInput) { in.DepartureTime = now }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput(now)
			tc.mutate(&in)
			if _, err := New("trip-1", in, now); !errors.Is(err, domainerr.ErrInvalidTripParameters) {
				t.Fatalf("expected ErrInvalidTripParameters, got %v", err)
			}
		})
	}
}

func TestNewNormalizesCurrency(t *testing.T) {
	now := time.Now().UTC()
	in := validInput(now)
	in.Currency = " eur "

	tr, err := New("trip-1", in, now)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if tr.Currency != "EUR" {
		t.Fatalf("expected EUR, got %s", tr.Currency)
	}
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/domainerr"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/trip"
	"github.com/jkamga/axis-ride-main-projet/internal/usecase"
)

type Handlers struct {
	createTripUC   *usecase.CreateTrip
	getTripUC      *usecase.GetTrip
	deleteTripUC   *usecase.DeleteTrip
	startTripUC    *usecase.StartTrip
	completeTripUC *usecase.CompleteTrip
	cancelTripUC   *usecase.CancelTrip
	searchTripsUC  *usecase.SearchTrips
	driverTripsUC  *usecase.ListDriverTrips

	createBookingUC     *usecase.CreateBooking
	getBookingUC        *usecase.GetBooking
	cancelBookingUC     *usecase.CancelBooking
	passengerBookingsUC *usecase.ListPassengerBookings
}

func NewHandlers(
	createTripUC *usecase.CreateTrip,
	getTripUC *usecase.GetTrip,
	deleteTripUC *usecase.DeleteTrip,
	startTripUC *usecase.StartTrip,
	completeTripUC *usecase.CompleteTrip,
	cancelTripUC *usecase.CancelTrip,
	searchTripsUC *usecase.SearchTrips,
	driverTripsUC *usecase.ListDriverTrips,
	createBookingUC *usecase.CreateBooking,
	getBookingUC *usecase.GetBooking,
	cancelBookingUC *usecase.CancelBooking,
	passengerBookingsUC *usecase.ListPassengerBookings,
) *Handlers {
	return &Handlers{
		createTripUC:        createTripUC,
		getTripUC:           getTripUC,
		deleteTripUC:        deleteTripUC,
		startTripUC:         startTripUC,
		completeTripUC:      completeTripUC,
		cancelTripUC:        cancelTripUC,
		searchTripsUC:       searchTripsUC,
		driverTripsUC:       driverTripsUC,
		createBookingUC:     createBookingUC,
		getBookingUC:        getBookingUC,
		cancelBookingUC:     cancelBookingUC,
		passengerBookingsUC: passengerBookingsUC,
	}
}

type createTripRequest struct {
	DriverID string `json:"driver_id"`

	DepartureAddress string  `json:"departure_address"`
	DepartureCity    string  `json:"departure_city"`
	DepartureLat     float64 `json:"departure_lat"`
	DepartureLon     float64 `json:"departure_lon"`
	ArrivalAddress   string  `json:"arrival_address"`
	ArrivalCity      string  `json:"arrival_city"`
	ArrivalLat       float64 `json:"arrival_lat"`
	ArrivalLon       float64 `json:"arrival_lon"`

	DepartureTime time.Time  `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`

	TotalSeats   int    `json:"total_seats"`
	PricePerSeat int64  `json:"price_per_seat"`
	Currency     string `json:"currency"`
	Description  string `json:"description"`

	LuggageAllowed bool `json:"luggage_allowed"`
	PetsAllowed    bool `json:"pets_allowed"`
	SmokingAllowed bool `json:"smoking_allowed"`
	MusicAllowed   bool `json:"music_allowed"`
	InstantBooking bool `json:"instant_booking"`

	VehicleType  string `json:"vehicle_type"`
	VehicleModel string `json:"vehicle_model"`
	VehicleColor string `json:"vehicle_color"`
	LicensePlate string `json:"license_plate"`

	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes int     `json:"duration_minutes"`
}

func (h *Handlers) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	t, err := h.createTripUC.Execute(r.Context(), trip.NewTripInput{
		DriverID:         req.DriverID,
		DepartureAddress: req.DepartureAddress,
		DepartureCity:    req.DepartureCity,
		DepartureLat:     req.DepartureLat,
		DepartureLon:     req.DepartureLon,
		ArrivalAddress:   req.ArrivalAddress,
		ArrivalCity:      req.ArrivalCity,
		ArrivalLat:       req.ArrivalLat,
		ArrivalLon:       req.ArrivalLon,
		DepartureTime:    req.DepartureTime,
		ArrivalTime:      req.ArrivalTime,
		TotalSeats:       req.TotalSeats,
		PricePerSeat:     req.PricePerSeat,
		Currency:         req.Currency,
		Description:      req.Description,
		LuggageAllowed:   req.LuggageAllowed,
		PetsAllowed:      req.PetsAllowed,
		SmokingAllowed:   req.SmokingAllowed,
		MusicAllowed:     req.MusicAllowed,
		InstantBooking:   req.InstantBooking,
		VehicleType:      req.VehicleType,
		VehicleModel:     req.VehicleModel,
		VehicleColor:     req.VehicleColor,
		LicensePlate:     req.LicensePlate,
		DistanceKm:       req.DistanceKm,
		DurationMinutes:  req.DurationMinutes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

func (h *Handlers) GetTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing trip id", http.StatusBadRequest)
		return
	}

	t, err := h.getTripUC.Execute(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.deleteTripUC.Execute(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) StartTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.startTripUC.Execute(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) CompleteTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.completeTripUC.Execute(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) CancelTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Reason string `json:"reason"`
	}
	// body is optional; an empty reason is allowed
	_ = json.NewDecoder(r.Body).Decode(&req)

	t, err := h.cancelTripUC.Execute(r.Context(), usecase.CancelTripParams{
		TripID: id,
		Reason: req.Reason,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) SearchTrips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var from time.Time
	if v := q.Get("after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "invalid after timestamp, want RFC3339", http.StatusBadRequest)
			return
		}
		from = t
	}

	trips, err := h.searchTripsUC.Execute(r.Context(), usecase.SearchTripsParams{
		DepartureCity: q.Get("from"),
		ArrivalCity:   q.Get("to"),
		From:          from,
		MinSeats:      intParam(q.Get("seats"), 1),
		Page:          intParam(q.Get("page"), 0),
		PageSize:      intParam(q.Get("page_size"), 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"trips": trips})
}

func (h *Handlers) ListDriverTrips(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "driverId")
	trips, err := h.driverTripsUC.Execute(r.Context(), driverID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trips": trips})
}

func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var params usecase.CreateBookingParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	b, err := h.createBookingUC.Execute(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, b)
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := h.getBookingUC.Execute(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		CancelledBy string `json:"cancelled_by"`
		Reason      string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b, err := h.cancelBookingUC.Execute(r.Context(), usecase.CancelBookingParams{
		BookingID:   id,
		CancelledBy: req.CancelledBy,
		Reason:      req.Reason,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) ListPassengerBookings(w http.ResponseWriter, r *http.Request) {
	passengerID := chi.URLParam(r, "passengerId")
	bs, err := h.passengerBookingsUC.Execute(r.Context(), passengerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels to HTTP status codes. Illegal transitions
// indicate a caller or ordering bug; they are logged before rejection.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, domainerr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domainerr.ErrInvalidTripParameters),
		errors.Is(err, domainerr.ErrInvalidBookingParameters):
		status = http.StatusBadRequest
	case errors.Is(err, domainerr.ErrInsufficientCapacity),
		errors.Is(err, domainerr.ErrTripNotBookable),
		errors.Is(err, domainerr.ErrTooEarly):
		status = http.StatusConflict
	case errors.Is(err, domainerr.ErrIllegalTransition):
		slog.Warn("illegal transition rejected", "error", err)
		status = http.StatusConflict
	default:
		slog.Error("request failed", "error", err)
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func intParam(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

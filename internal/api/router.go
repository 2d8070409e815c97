package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/jkamga/axis-ride-main-projet/internal/api/middleware"
)

func NewRouter(h *Handlers, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Handle("/metrics", promhttp.Handler())

	idem := middleware.Idempotency(redisClient)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/trips", func(r chi.Router) {
			r.With(idem).Post("/", h.CreateTrip)
			r.Get("/search", h.SearchTrips)
			r.Get("/driver/{driverId}", h.ListDriverTrips)
			r.Get("/{id}", h.GetTrip)
			r.Delete("/{id}", h.DeleteTrip)
			r.Post("/{id}/start", h.StartTrip)
			r.Post("/{id}/complete", h.CompleteTrip)
			r.Post("/{id}/cancel", h.CancelTrip)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.With(idem).Post("/", h.CreateBooking)
			r.Get("/passenger/{passengerId}", h.ListPassengerBookings)
			r.Get("/{id}", h.GetBooking)
			r.Post("/{id}/cancel", h.CancelBooking)
		})
	})

	return r
}

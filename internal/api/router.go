package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/api/handlers"
	"github.com/Cheertaboi/restaurant-promotion-service/internal/api/middleware"
)

// NewRouter builds the HTTP router for the promotion-service
func NewRouter(h *handlers.PromotionHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(15 * time.Second))

	// Public promotion endpoints
	r.Route("/promotions", func(r chi.Router) {
		r.Get("/", h.ListPromotions)
		r.Post("/simulate", h.Simulate)
		r.Get("/badges", h.Badges)
		r.Get("/banners", h.Banners)
		r.Get("/{id}", h.GetPromotion)
	})

	// Admin endpoints
	r.Route("/admin/promotions", func(r chi.Router) {
		r.Post("/", h.CreatePromotion)
		r.Put("/{id}", h.UpdatePromotion)
		r.Patch("/{id}/status", h.SetStatus)
		r.Delete("/{id}", h.DeletePromotion)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

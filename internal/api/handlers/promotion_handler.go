package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
	"github.com/Cheertaboi/restaurant-promotion-service/internal/repository"
	"github.com/Cheertaboi/restaurant-promotion-service/internal/service"
)

// --- Request / Response DTOs ---

type SimulateRequestBody struct {
	Cart      models.Cart      `json:"cart"`
	Customer  *models.Customer `json:"customer,omitempty"`
	PromoCode string           `json:"promo_code,omitempty"`
	At        string           `json:"at,omitempty"` // optional, RFC3339
}

type StatusRequestBody struct {
	Status models.Status `json:"status"`
}

type PromotionsResponse struct {
	Promotions []models.Promotion `json:"promotions"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// --- Handler struct & constructor ---

// PromotionService is what the handlers need from the service layer.
type PromotionService interface {
	Catalog(ctx context.Context, now time.Time) ([]models.Promotion, error)
	GetPromotion(ctx context.Context, id string) (models.Promotion, error)
	Simulate(ctx context.Context, req models.SimulationRequest, now time.Time) (models.SimulationResult, error)
	Badges(ctx context.Context, productID, categoryID string, now time.Time) ([]models.Promotion, error)
	Banners(ctx context.Context, now time.Time) ([]models.Promotion, error)
	CreatePromotion(ctx context.Context, p models.Promotion, now time.Time) (models.Promotion, error)
	UpdatePromotion(ctx context.Context, id string, p models.Promotion, now time.Time) (models.Promotion, error)
	SetStatus(ctx context.Context, id string, status models.Status, now time.Time) (models.Promotion, error)
	DeletePromotion(ctx context.Context, id string) error
}

type PromotionHandler struct {
	service PromotionService
	loc     *time.Location
	clock   func() time.Time
}

// NewPromotionHandler evaluates requests in the restaurant's time zone loc.
func NewPromotionHandler(svc PromotionService, loc *time.Location) *PromotionHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &PromotionHandler{service: svc, loc: loc, clock: time.Now}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_failed", Detail: err.Error()})
	case errors.Is(err, repository.ErrPromotionNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "promotion_not_found"})
	case errors.Is(err, service.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "invalid_status_transition", Detail: err.Error()})
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
}

// evaluationTime parses an RFC3339 override, or returns the current time,
// in the restaurant's zone.
func (h *PromotionHandler) evaluationTime(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return h.clock().In(h.loc), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(h.loc), nil
}

func orEmpty(p []models.Promotion) []models.Promotion {
	if p == nil {
		return []models.Promotion{}
	}
	return p
}

// --- Handlers ---

// ListPromotions handles GET /promotions
func (h *PromotionHandler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	promos, err := h.service.Catalog(r.Context(), h.clock().In(h.loc))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PromotionsResponse{Promotions: orEmpty(promos)})
}

// GetPromotion handles GET /promotions/{id}
func (h *PromotionHandler) GetPromotion(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetPromotion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Simulate handles POST /promotions/simulate
func (h *PromotionHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_body", Detail: err.Error()})
		return
	}
	now, err := h.evaluationTime(req.At)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_at", Detail: "use RFC3339"})
		return
	}

	res, err := h.service.Simulate(r.Context(), models.SimulationRequest{
		Cart:      req.Cart,
		Customer:  req.Customer,
		PromoCode: req.PromoCode,
	}, now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Badges handles GET /promotions/badges?product_id=&category_id=&at=
func (h *PromotionHandler) Badges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	productID, categoryID := q.Get("product_id"), q.Get("category_id")
	if productID == "" && categoryID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "product_id or category_id required"})
		return
	}
	now, err := h.evaluationTime(q.Get("at"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_at", Detail: "use RFC3339"})
		return
	}

	promos, err := h.service.Badges(r.Context(), productID, categoryID, now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PromotionsResponse{Promotions: orEmpty(promos)})
}

// Banners handles GET /promotions/banners?at=
func (h *PromotionHandler) Banners(w http.ResponseWriter, r *http.Request) {
	now, err := h.evaluationTime(r.URL.Query().Get("at"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_at", Detail: "use RFC3339"})
		return
	}
	promos, err := h.service.Banners(r.Context(), now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PromotionsResponse{Promotions: orEmpty(promos)})
}

// CreatePromotion handles POST /admin/promotions
func (h *PromotionHandler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var p models.Promotion
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_body", Detail: err.Error()})
		return
	}
	created, err := h.service.CreatePromotion(r.Context(), p, h.clock())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdatePromotion handles PUT /admin/promotions/{id}
func (h *PromotionHandler) UpdatePromotion(w http.ResponseWriter, r *http.Request) {
	var p models.Promotion
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_body", Detail: err.Error()})
		return
	}
	updated, err := h.service.UpdatePromotion(r.Context(), chi.URLParam(r, "id"), p, h.clock())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// SetStatus handles PATCH /admin/promotions/{id}/status
func (h *PromotionHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_body", Detail: err.Error()})
		return
	}
	p, err := h.service.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status, h.clock())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePromotion handles DELETE /admin/promotions/{id}
func (h *PromotionHandler) DeletePromotion(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePromotion(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

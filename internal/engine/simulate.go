package engine

import (
	"time"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
)

// Simulate validates the request, resolves eligibility against s at now and
// composes the result. Identical arguments give identical results.
func Simulate(s *Snapshot, req models.SimulationRequest, now time.Time) (models.SimulationResult, error) {
	if err := req.Validate(); err != nil {
		return models.SimulationResult{}, err
	}
	eligible := Resolve(s, req.Cart, req.Customer, req.PromoCode, now)
	result, err := Compose(eligible, req.Cart)
	if err != nil {
		return models.SimulationResult{}, err
	}
	result.EvaluatedAt = now
	return result, nil
}

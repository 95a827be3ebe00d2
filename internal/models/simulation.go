package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SimulationRequest struct {
	Cart      Cart      `json:"cart"`
	Customer  *Customer `json:"customer,omitempty"`
	PromoCode string    `json:"promo_code,omitempty"`
}

type AppliedPromotion struct {
	PromotionID string          `json:"promotion_id"`
	Name        string          `json:"name"`
	Badge       string          `json:"badge,omitempty"`
	Discount    decimal.Decimal `json:"discount"`
}

type SimulationResult struct {
	OriginalTotal     decimal.Decimal    `json:"original_total"`
	AppliedPromotions []AppliedPromotion `json:"applied_promotions"`
	TotalDiscount     decimal.Decimal    `json:"total_discount"`
	FinalTotal        decimal.Decimal    `json:"final_total"`
	LoyaltyMultiplier decimal.Decimal    `json:"loyalty_multiplier"`
	EvaluatedAt       time.Time          `json:"evaluated_at"`
}

// IdentitySimulation is the result for a cart no promotion applies to.
func IdentitySimulation(cart Cart) SimulationResult {
	total := cart.Total()
	return SimulationResult{
		OriginalTotal:     total,
		AppliedPromotions: []AppliedPromotion{},
		TotalDiscount:     decimal.Zero,
		FinalTotal:        total,
		LoyaltyMultiplier: decimal.NewFromInt(1),
	}
}

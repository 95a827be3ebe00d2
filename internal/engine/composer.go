package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
)

// Compose turns the eligible promotions into a simulation for cart.
//
// Promotions are taken by descending priority, ties keeping the order of
// eligible. The first one always applies. Any later one applies only if it
// and everything already applied are stackable, so a non-stackable winner
// excludes all others. Each discount is rounded to cents and capped at what
// is left of the total, so the final total never goes below zero.
func Compose(eligible []models.Promotion, cart models.Cart) (models.SimulationResult, error) {
	if err := cart.Validate(); err != nil {
		return models.SimulationResult{}, err
	}

	entries := make([]*entry, 0, len(eligible))
	for i, p := range eligible {
		e, err := newEntry(p, i)
		if err != nil {
			return models.SimulationResult{}, err
		}
		entries = append(entries, e)
	}
	sortByPriority(entries)

	result := models.IdentitySimulation(cart)
	remaining := result.OriginalTotal
	var committed []*entry
	loyaltySet := false

	for _, e := range entries {
		if !canStack(committed, e) {
			continue
		}
		committed = append(committed, e)

		var discount decimal.Decimal
		switch r := e.rule.(type) {
		case loyaltyFactor:
			// The highest-priority multiplier wins.
			if !loyaltySet {
				result.LoyaltyMultiplier = r.factor
				loyaltySet = true
			}
			discount = decimal.Zero
		case percentOfTargets, fixedPerTargetLine, cheapestUnitFree, cartThreshold, freeDelivery:
			discount = r.amount(e, cart).Round(2)
		default:
			panic(fmt.Sprintf("engine: rule %T has no composer case", r))
		}
		discount = clamp(discount, remaining)
		remaining = remaining.Sub(discount)

		result.AppliedPromotions = append(result.AppliedPromotions, models.AppliedPromotion{
			PromotionID: e.promo.ID,
			Name:        e.promo.Name,
			Badge:       e.promo.BadgeText,
			Discount:    discount,
		})
		result.TotalDiscount = result.TotalDiscount.Add(discount)
	}

	result.FinalTotal = result.OriginalTotal.Sub(result.TotalDiscount)
	return result, nil
}

func canStack(committed []*entry, next *entry) bool {
	if len(committed) == 0 {
		return true
	}
	if !next.promo.Stackable {
		return false
	}
	for _, c := range committed {
		if !c.promo.Stackable {
			return false
		}
	}
	return true
}

// sortByPriority orders by priority descending; entry.order breaks ties.
func sortByPriority(entries []*entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].promo.Priority != entries[j].promo.Priority {
			return entries[i].promo.Priority > entries[j].promo.Priority
		}
		return entries[i].order < entries[j].order
	})
}

func clamp(v, ceiling decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	if v.GreaterThan(ceiling) {
		return ceiling
	}
	return v
}

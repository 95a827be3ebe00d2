package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
)

var hundred = decimal.NewFromInt(100)

// rule is the discount behaviour of a promotion. The set of implementations
// is closed: ruleFor is the only constructor and the composer switches over
// the concrete types.
type rule interface {
	// amount is the undiscounted magnitude for cart, before rounding and
	// before capping at the remaining total.
	amount(e *entry, cart models.Cart) decimal.Decimal
}

// percentOfTargets takes a percentage off the subtotal of targeted lines.
type percentOfTargets struct{ percent decimal.Decimal }

// fixedPerTargetLine takes a flat amount off each targeted line once,
// regardless of quantity, never more than the line subtotal.
type fixedPerTargetLine struct{ value decimal.Decimal }

// cheapestUnitFree makes one targeted unit free per pair of targeted units,
// starting with the cheapest.
type cheapestUnitFree struct{}

// cartThreshold takes a flat amount, or a percentage of the subtotal, off a
// cart that reached the minimum amount.
type cartThreshold struct {
	value      decimal.Decimal
	percentage bool
}

// freeDelivery waives the delivery fee.
type freeDelivery struct{}

// loyaltyFactor grants no discount and scales downstream cashback instead.
type loyaltyFactor struct{ factor decimal.Decimal }

func ruleFor(p models.Promotion) (rule, error) {
	switch p.Type {
	case models.TypePercentItem, models.TypePercentCategory:
		return percentOfTargets{percent: p.DiscountValue}, nil
	case models.TypeFixedItem, models.TypeFixedCategory:
		return fixedPerTargetLine{value: p.DiscountValue}, nil
	case models.TypeBOGO:
		return cheapestUnitFree{}, nil
	case models.TypeThreshold:
		return cartThreshold{value: p.DiscountValue, percentage: p.DiscountType == models.DiscountPercentage}, nil
	case models.TypeShippingFree:
		return freeDelivery{}, nil
	case models.TypeLoyaltyMultiplier:
		return loyaltyFactor{factor: p.DiscountValue}, nil
	case models.TypeHappyHour, models.TypeFlash, models.TypeSeasonal, models.TypePromoCode,
		models.TypeNewCustomer, models.TypeInactiveCustomer, models.TypeConditionalDiscount:
		// Time and customer conditions are the resolver's job; magnitude
		// follows the promotion's own discount type.
		if p.DiscountType == models.DiscountPercentage {
			return percentOfTargets{percent: p.DiscountValue}, nil
		}
		return fixedPerTargetLine{value: p.DiscountValue}, nil
	}
	return nil, &models.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown type %q", p.Type)}
}

func (r percentOfTargets) amount(e *entry, cart models.Cart) decimal.Decimal {
	base := decimal.Zero
	for _, l := range cart.Items {
		if e.targetsLine(l) {
			base = base.Add(l.Subtotal())
		}
	}
	return base.Mul(r.percent).Div(hundred)
}

func (r fixedPerTargetLine) amount(e *entry, cart models.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, l := range cart.Items {
		if !e.targetsLine(l) {
			continue
		}
		total = total.Add(decimal.Min(r.value, l.Subtotal()))
	}
	return total
}

func (cheapestUnitFree) amount(e *entry, cart models.Cart) decimal.Decimal {
	var lines []models.CartLine
	units := 0
	for _, l := range cart.Items {
		if e.targetsLine(l) {
			lines = append(lines, l)
			units += l.Quantity
		}
	}
	free := units / 2
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].UnitPrice.LessThan(lines[j].UnitPrice)
	})
	total := decimal.Zero
	for _, l := range lines {
		if free == 0 {
			break
		}
		n := min(free, l.Quantity)
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(n))))
		free -= n
	}
	return total
}

func (r cartThreshold) amount(_ *entry, cart models.Cart) decimal.Decimal {
	if r.percentage {
		return cart.Subtotal().Mul(r.value).Div(hundred)
	}
	return r.value
}

func (freeDelivery) amount(_ *entry, cart models.Cart) decimal.Decimal {
	return cart.DeliveryFee
}

func (loyaltyFactor) amount(*entry, models.Cart) decimal.Decimal {
	return decimal.Zero
}

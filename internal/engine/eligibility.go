package engine

import (
	"time"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
)

// Resolve returns, in catalog order, the promotions of s that apply to cart
// at now. A nil customer is a guest; an empty promoCode means none was
// entered. An unknown code is not an error, it simply matches nothing.
func Resolve(s *Snapshot, cart models.Cart, customer *models.Customer, promoCode string, now time.Time) []models.Promotion {
	out := make([]models.Promotion, 0)
	for _, e := range s.entries {
		if e.eligible(cart, customer, promoCode, now) {
			out = append(out, e.promo.Clone())
		}
	}
	return out
}

func (e *entry) eligible(cart models.Cart, customer *models.Customer, promoCode string, now time.Time) bool {
	return e.liveAt(now) &&
		e.targetsCart(cart) &&
		e.conditionHolds(cart, customer, promoCode) &&
		e.underLimit(customer)
}

// liveAt covers status, the date range, the intra-day window and the weekday.
func (e *entry) liveAt(now time.Time) bool {
	p := e.promo
	if p.Status != models.StatusActive {
		return false
	}
	today := models.DateOf(now)
	if today.Before(p.StartDate) || today.After(p.EndDate) {
		return false
	}
	if !e.withinHours(models.ClockOf(now)) {
		return false
	}
	if len(e.days) > 0 {
		if _, ok := e.days[models.Weekday(now.Weekday())]; !ok {
			return false
		}
	}
	return true
}

// withinHours is inclusive at both ends. A window whose end is earlier than
// its start runs across midnight, e.g. 22:00-02:00.
func (e *entry) withinHours(at models.ClockTime) bool {
	if e.promo.StartTime == nil || e.promo.EndTime == nil {
		return true
	}
	start, end := *e.promo.StartTime, *e.promo.EndTime
	if start <= end {
		return start <= at && at <= end
	}
	return at >= start || at <= end
}

func (e *entry) targetsLine(l models.CartLine) bool {
	return e.targets(l.ProductID, l.CategoryID)
}

func (e *entry) targets(productID, categoryID string) bool {
	if e.promo.AllProducts {
		return true
	}
	if _, ok := e.products[productID]; ok && productID != "" {
		return true
	}
	_, ok := e.categories[categoryID]
	return ok && categoryID != ""
}

func (e *entry) targetsCart(cart models.Cart) bool {
	for _, l := range cart.Items {
		if e.targetsLine(l) {
			return true
		}
	}
	return false
}

func (e *entry) conditionHolds(cart models.Cart, customer *models.Customer, promoCode string) bool {
	p := e.promo
	switch p.Type {
	case models.TypeThreshold:
		return p.MinCartAmount != nil && cart.Subtotal().GreaterThanOrEqual(*p.MinCartAmount)
	case models.TypePromoCode:
		return promoCode != "" && promoCode == p.PromoCode
	case models.TypeNewCustomer:
		return customer != nil && customer.IsNew
	case models.TypeInactiveCustomer:
		return customer != nil && customer.IsInactive
	}
	return true
}

// underLimit only applies to identified customers; the counts are read,
// never written, here.
func (e *entry) underLimit(customer *models.Customer) bool {
	limit := e.promo.LimitPerCustomer
	if limit == nil || customer == nil {
		return true
	}
	return customer.UsageOf(e.promo.ID) < *limit
}

// dependsOnCart reports whether the type's extra condition needs a cart,
// customer or code, which a product badge cannot supply.
func (e *entry) dependsOnCart() bool {
	switch e.promo.Type {
	case models.TypeThreshold, models.TypePromoCode, models.TypeNewCustomer, models.TypeInactiveCustomer:
		return true
	}
	return false
}

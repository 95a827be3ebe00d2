package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrValidation = errors.New("validation failed")

// ValidationError names the offending field. It unwraps to ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

var hundred = decimal.NewFromInt(100)

func (l CartLine) Validate(i int) error {
	switch {
	case l.ProductID == "":
		return invalid(fmt.Sprintf("items[%d].product_id", i), "required")
	case l.UnitPrice.IsNegative():
		return invalid(fmt.Sprintf("items[%d].unit_price", i), "must not be negative, got %s", l.UnitPrice)
	case l.Quantity < 1:
		return invalid(fmt.Sprintf("items[%d].quantity", i), "must be at least 1, got %d", l.Quantity)
	}
	return nil
}

func (c Cart) Validate() error {
	for i, l := range c.Items {
		if err := l.Validate(i); err != nil {
			return err
		}
	}
	if c.DeliveryFee.IsNegative() {
		return invalid("delivery_fee", "must not be negative, got %s", c.DeliveryFee)
	}
	return nil
}

func (r SimulationRequest) Validate() error {
	return r.Cart.Validate()
}

// Validate checks the authoring invariants of a promotion definition.
func (p Promotion) Validate() error {
	if p.ID == "" {
		return invalid("id", "required")
	}
	if p.Name == "" {
		return invalid("name", "required")
	}
	if !p.Status.Valid() {
		return invalid("status", "unknown status %q", p.Status)
	}
	if !p.Type.Valid() {
		return invalid("type", "unknown type %q", p.Type)
	}
	if !p.DiscountType.Valid() {
		return invalid("discount_type", "unknown discount type %q", p.DiscountType)
	}
	if p.DiscountValue.IsNegative() {
		return invalid("discount_value", "must not be negative")
	}
	if p.percentBased() && p.DiscountValue.GreaterThan(hundred) {
		return invalid("discount_value", "percentage must not exceed 100")
	}
	if p.Type == TypeLoyaltyMultiplier && p.DiscountValue.LessThan(decimal.NewFromInt(1)) {
		return invalid("discount_value", "loyalty multiplier must be at least 1")
	}
	if p.StartDate.IsZero() {
		return invalid("start_date", "required")
	}
	if p.EndDate.IsZero() {
		return invalid("end_date", "required")
	}
	if p.EndDate.Before(p.StartDate) {
		return invalid("end_date", "%s is before start_date %s", p.EndDate, p.StartDate)
	}
	if (p.StartTime == nil) != (p.EndTime == nil) {
		return invalid("start_time", "start_time and end_time must be set together")
	}
	if p.Type == TypePromoCode && p.PromoCode == "" {
		return invalid("promo_code", "required for promo_code promotions")
	}
	if p.Type == TypeThreshold {
		if p.MinCartAmount == nil {
			return invalid("min_cart_amount", "required for threshold promotions")
		}
		if p.MinCartAmount.IsNegative() {
			return invalid("min_cart_amount", "must not be negative")
		}
	}
	if p.LimitPerCustomer != nil && *p.LimitPerCustomer < 1 {
		return invalid("limit_per_customer", "must be at least 1 when set")
	}
	return nil
}

func (p Promotion) percentBased() bool {
	switch p.Type {
	case TypePercentItem, TypePercentCategory:
		return true
	case TypeLoyaltyMultiplier, TypeShippingFree, TypeBOGO:
		return false
	}
	return p.DiscountType == DiscountPercentage
}

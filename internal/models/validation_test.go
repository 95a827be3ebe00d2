package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPromotion() Promotion {
	return Promotion{
		ID:            "p1",
		Name:          "Pizza week",
		Status:        StatusActive,
		Type:          TypePercentCategory,
		DiscountType:  DiscountPercentage,
		DiscountValue: decimal.NewFromInt(15),
		StartDate:     Date{2026, time.October, 1},
		EndDate:       Date{2026, time.October, 7},
	}
}

func TestPromotion_Validate(t *testing.T) {
	one := ClockTime(60)
	minusOne := decimal.NewFromInt(-1)
	zero := 0

	tests := []struct {
		name   string
		mutate func(*Promotion)
		field  string
	}{
		{"valid", func(p *Promotion) {}, ""},
		{"missing id", func(p *Promotion) { p.ID = "" }, "id"},
		{"missing name", func(p *Promotion) { p.Name = "" }, "name"},
		{"unknown status", func(p *Promotion) { p.Status = "archived" }, "status"},
		{"unknown type", func(p *Promotion) { p.Type = "mystery" }, "type"},
		{"unknown discount type", func(p *Promotion) { p.DiscountType = "free" }, "discount_type"},
		{"negative value", func(p *Promotion) { p.DiscountValue = minusOne }, "discount_value"},
		{"percentage over 100", func(p *Promotion) { p.DiscountValue = decimal.NewFromInt(101) }, "discount_value"},
		{"fixed over 100 is fine", func(p *Promotion) {
			p.Type = TypeFixedItem
			p.DiscountType = DiscountFixed
			p.DiscountValue = decimal.NewFromInt(150)
		}, ""},
		{"loyalty below one", func(p *Promotion) {
			p.Type = TypeLoyaltyMultiplier
			p.DiscountValue = decimal.RequireFromString("0.5")
		}, "discount_value"},
		{"missing start", func(p *Promotion) { p.StartDate = Date{} }, "start_date"},
		{"end before start", func(p *Promotion) { p.EndDate = Date{2026, time.September, 30} }, "end_date"},
		{"same day", func(p *Promotion) { p.EndDate = p.StartDate }, ""},
		{"half a time window", func(p *Promotion) { p.StartTime = &one }, "start_time"},
		{"code type without code", func(p *Promotion) { p.Type = TypePromoCode }, "promo_code"},
		{"threshold without minimum", func(p *Promotion) { p.Type = TypeThreshold }, "min_cart_amount"},
		{"threshold negative minimum", func(p *Promotion) {
			p.Type = TypeThreshold
			p.MinCartAmount = &minusOne
		}, "min_cart_amount"},
		{"zero limit", func(p *Promotion) { p.LimitPerCustomer = &zero }, "limit_per_customer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPromotion()
			tt.mutate(&p)
			err := p.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCart_SubtotalAndTotal(t *testing.T) {
	c := Cart{
		Items: []CartLine{
			{ProductID: "a", UnitPrice: decimal.RequireFromString("9.90"), Quantity: 2},
			{ProductID: "b", UnitPrice: decimal.RequireFromString("0.20"), Quantity: 3},
		},
		DeliveryFee: decimal.RequireFromString("1.50"),
	}
	assert.True(t, decimal.RequireFromString("20.40").Equal(c.Subtotal()))
	assert.True(t, decimal.RequireFromString("21.90").Equal(c.Total()))
	assert.NoError(t, c.Validate())
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusDraft, StatusActive))
	assert.True(t, CanTransition(StatusActive, StatusPaused))
	assert.True(t, CanTransition(StatusPaused, StatusActive))
	assert.True(t, CanTransition(StatusPaused, StatusExpired))
	assert.False(t, CanTransition(StatusExpired, StatusActive))
	assert.False(t, CanTransition(StatusActive, StatusDraft))
	assert.False(t, CanTransition(StatusActive, StatusActive))
	assert.False(t, CanTransition("bogus", StatusActive))
}

func TestCustomer_UsageOf(t *testing.T) {
	var guest *Customer
	assert.Equal(t, 0, guest.UsageOf("p1"))
	c := &Customer{Usage: map[string]int{"p1": 2}}
	assert.Equal(t, 2, c.UsageOf("p1"))
	assert.Equal(t, 0, c.UsageOf("p2"))
}

func TestPromotion_Clone(t *testing.T) {
	limit := 3
	p := validPromotion()
	p.EligibleProducts = []string{"a"}
	p.LimitPerCustomer = &limit

	c := p.Clone()
	c.EligibleProducts[0] = "b"
	*c.LimitPerCustomer = 9

	assert.Equal(t, "a", p.EligibleProducts[0])
	assert.Equal(t, 3, *p.LimitPerCustomer)
}

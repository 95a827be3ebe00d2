package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
)

var madrid = time.FixedZone("CET", 3600)

// at returns 2026-10-18 (a Sunday) at hh:mm in the restaurant's zone.
func at(hh, mm int) time.Time {
	return time.Date(2026, time.October, 18, hh, mm, 0, 0, madrid)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func moneyPtr(s string) *decimal.Decimal {
	d := money(s)
	return &d
}

func clock(s string) *models.ClockTime {
	c, err := models.ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return &c
}

func intPtr(n int) *int { return &n }

// promo returns an active, stackable, all-products 10% promotion valid for
// all of October 2026. Tests override what they care about.
func promo(id string, mutate ...func(*models.Promotion)) models.Promotion {
	p := models.Promotion{
		ID:            id,
		Name:          "promo " + id,
		Status:        models.StatusActive,
		Type:          models.TypePercentItem,
		DiscountType:  models.DiscountPercentage,
		DiscountValue: money("10"),
		AllProducts:   true,
		StartDate:     models.Date{Year: 2026, Month: time.October, Day: 1},
		EndDate:       models.Date{Year: 2026, Month: time.October, Day: 31},
		Stackable:     true,
	}
	for _, m := range mutate {
		m(&p)
	}
	return p
}

func line(product, category, price string, qty int) models.CartLine {
	return models.CartLine{ProductID: product, CategoryID: category, UnitPrice: money(price), Quantity: qty}
}

func cart(fee string, lines ...models.CartLine) models.Cart {
	return models.Cart{Items: lines, DeliveryFee: money(fee)}
}

func snapshot(t *testing.T, promos ...models.Promotion) *Snapshot {
	t.Helper()
	s, err := NewSnapshot(promos, at(0, 0))
	require.NoError(t, err)
	return s
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, money(want).Equal(got), "want %s, got %s", want, got.String())
}

func ids(promos []models.Promotion) []string {
	out := make([]string, 0, len(promos))
	for _, p := range promos {
		out = append(out, p.ID)
	}
	return out
}

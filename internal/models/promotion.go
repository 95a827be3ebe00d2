package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft   Status = "draft"
	StatusActive  Status = "active"
	StatusPaused  Status = "paused"
	StatusExpired Status = "expired"
)

var validNext = map[Status]map[Status]bool{
	StatusDraft:   {StatusActive: true, StatusExpired: true},
	StatusActive:  {StatusPaused: true, StatusExpired: true},
	StatusPaused:  {StatusActive: true, StatusExpired: true},
	StatusExpired: {},
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// CanTransition reports whether an operator may move a promotion from one
// status to another. Expired is terminal.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

type Type string

const (
	TypeBOGO                Type = "bogo"
	TypePercentItem         Type = "percent_item"
	TypePercentCategory     Type = "percent_category"
	TypeFixedItem           Type = "fixed_item"
	TypeFixedCategory       Type = "fixed_category"
	TypeConditionalDiscount Type = "conditional_discount"
	TypeThreshold           Type = "threshold"
	TypeShippingFree        Type = "shipping_free"
	TypeNewCustomer         Type = "new_customer"
	TypeInactiveCustomer    Type = "inactive_customer"
	TypeLoyaltyMultiplier   Type = "loyalty_multiplier"
	TypeHappyHour           Type = "happy_hour"
	TypeFlash               Type = "flash"
	TypeSeasonal            Type = "seasonal"
	TypePromoCode           Type = "promo_code"
)

// Types lists every promotion type the engine knows how to evaluate.
var Types = []Type{
	TypeBOGO, TypePercentItem, TypePercentCategory, TypeFixedItem, TypeFixedCategory,
	TypeConditionalDiscount, TypeThreshold, TypeShippingFree, TypeNewCustomer,
	TypeInactiveCustomer, TypeLoyaltyMultiplier, TypeHappyHour, TypeFlash,
	TypeSeasonal, TypePromoCode,
}

func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

func (d DiscountType) Valid() bool {
	return d == DiscountPercentage || d == DiscountFixed
}

type Promotion struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status"`
	Type        Type   `json:"type"`

	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`

	AllProducts        bool     `json:"all_products"`
	EligibleProducts   []string `json:"eligible_products,omitempty"`
	EligibleCategories []string `json:"eligible_categories,omitempty"`

	StartDate  Date       `json:"start_date"`
	EndDate    Date       `json:"end_date"`
	StartTime  *ClockTime `json:"start_time,omitempty"`
	EndTime    *ClockTime `json:"end_time,omitempty"`
	DaysActive []Weekday  `json:"days_active,omitempty"`

	MinCartAmount *decimal.Decimal `json:"min_cart_amount,omitempty"`
	PromoCode     string           `json:"promo_code,omitempty"`

	Priority  int  `json:"priority"`
	Stackable bool `json:"stackable"`

	LimitPerCustomer *int `json:"limit_per_customer,omitempty"`

	BadgeText      string `json:"badge_text,omitempty"`
	BadgeColor     string `json:"badge_color,omitempty"`
	BannerText     string `json:"banner_text,omitempty"`
	BannerImageURL string `json:"banner_image_url,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// HasBanner reports whether the promotion carries anything to show on the home banner.
func (p Promotion) HasBanner() bool {
	return p.BannerText != "" || p.BannerImageURL != ""
}

// Clone returns a copy that shares no slices or pointers with p.
func (p Promotion) Clone() Promotion {
	c := p
	c.EligibleProducts = append([]string(nil), p.EligibleProducts...)
	c.EligibleCategories = append([]string(nil), p.EligibleCategories...)
	c.DaysActive = append([]Weekday(nil), p.DaysActive...)
	if p.StartTime != nil {
		t := *p.StartTime
		c.StartTime = &t
	}
	if p.EndTime != nil {
		t := *p.EndTime
		c.EndTime = &t
	}
	if p.MinCartAmount != nil {
		m := *p.MinCartAmount
		c.MinCartAmount = &m
	}
	if p.LimitPerCustomer != nil {
		l := *p.LimitPerCustomer
		c.LimitPerCustomer = &l
	}
	return c
}

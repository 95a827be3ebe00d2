package models

import "github.com/shopspring/decimal"

type CartLine struct {
	ProductID  string          `json:"product_id"`
	CategoryID string          `json:"category_id"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

// Subtotal is unit price times quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Items       []CartLine      `json:"items"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
}

func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Items {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Total is the subtotal plus the delivery fee, before any discount.
func (c Cart) Total() decimal.Decimal {
	return c.Subtotal().Add(c.DeliveryFee)
}

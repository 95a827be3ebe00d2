package models

// Customer carries the classification the caller already knows about the
// person ordering. A nil *Customer means a guest checkout.
type Customer struct {
	ID         string `json:"id,omitempty"`
	IsNew      bool   `json:"is_new"`
	IsInactive bool   `json:"is_inactive"`

	// Usage maps promotion id to how many completed orders already used it.
	Usage map[string]int `json:"usage,omitempty"`
}

func (c *Customer) UsageOf(promotionID string) int {
	if c == nil {
		return 0
	}
	return c.Usage[promotionID]
}

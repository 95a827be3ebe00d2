package engine

import (
	"time"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
)

// HasBadge returns the highest-priority promotion that would label the
// product at now, or nil. Only promotions with badge text count, and
// conditions that need a cart, customer or code are treated as unmet.
func HasBadge(s *Snapshot, productID, categoryID string, now time.Time) *models.Promotion {
	badges := Badges(s, productID, categoryID, now)
	if len(badges) == 0 {
		return nil
	}
	return &badges[0]
}

// Badges is HasBadge returning every match, by priority.
func Badges(s *Snapshot, productID, categoryID string, now time.Time) []models.Promotion {
	return project(s, now, func(e *entry) bool {
		return e.promo.BadgeText != "" &&
			!e.dependsOnCart() &&
			e.targets(productID, categoryID)
	})
}

// Banners returns the promotions live at now that carry banner text or an
// image, by priority. Banners advertise a promotion rather than apply it, so
// targeting and type conditions are not checked.
func Banners(s *Snapshot, now time.Time) []models.Promotion {
	return project(s, now, func(e *entry) bool {
		return e.promo.HasBanner()
	})
}

func project(s *Snapshot, now time.Time, keep func(*entry) bool) []models.Promotion {
	matched := make([]*entry, 0)
	for _, e := range s.entries {
		if e.liveAt(now) && keep(e) {
			matched = append(matched, e)
		}
	}
	sortByPriority(matched)
	out := make([]models.Promotion, 0, len(matched))
	for _, e := range matched {
		out = append(out, e.promo.Clone())
	}
	return out
}

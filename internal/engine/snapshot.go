// Package engine decides which promotions apply to a cart at a given instant
// and what they are worth.
//
// Every function here is a pure function of its arguments: the catalog
// snapshot, the cart, the optional customer and promo code, and the instant
// passed in by the caller. Nothing reads the wall clock and nothing is cached,
// so concurrent calls for different carts never interfere.
package engine

import (
	"time"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
)

// Snapshot is an immutable view of the promotion catalog. Catalog edits
// produce a new Snapshot; a Snapshot in use is never modified.
type Snapshot struct {
	entries  []*entry
	byID     map[string]*entry
	loadedAt time.Time
}

// entry is one promotion plus the lookup structures derived from it.
type entry struct {
	promo      models.Promotion
	order      int
	products   map[string]struct{}
	categories map[string]struct{}
	days       map[models.Weekday]struct{}
	rule       rule
}

func newEntry(p models.Promotion, order int) (*entry, error) {
	r, err := ruleFor(p)
	if err != nil {
		return nil, err
	}
	e := &entry{
		promo:      p.Clone(),
		order:      order,
		products:   toSet(p.EligibleProducts),
		categories: toSet(p.EligibleCategories),
		days:       make(map[models.Weekday]struct{}, len(p.DaysActive)),
		rule:       r,
	}
	for _, d := range p.DaysActive {
		e.days[d] = struct{}{}
	}
	return e, nil
}

// NewSnapshot validates every promotion and freezes them in the given order,
// which is the tie-break order for equal priorities.
func NewSnapshot(promotions []models.Promotion, loadedAt time.Time) (*Snapshot, error) {
	s := &Snapshot{
		entries:  make([]*entry, 0, len(promotions)),
		byID:     make(map[string]*entry, len(promotions)),
		loadedAt: loadedAt,
	}
	for i, p := range promotions {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		e, err := newEntry(p, i)
		if err != nil {
			return nil, err
		}
		s.entries = append(s.entries, e)
		s.byID[p.ID] = e
	}
	return s, nil
}

// Promotions returns copies of all promotions in catalog order.
func (s *Snapshot) Promotions() []models.Promotion {
	out := make([]models.Promotion, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.promo.Clone())
	}
	return out
}

func (s *Snapshot) Get(id string) (models.Promotion, bool) {
	e, ok := s.byID[id]
	if !ok {
		return models.Promotion{}, false
	}
	return e.promo.Clone(), true
}

func (s *Snapshot) Len() int { return len(s.entries) }

func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

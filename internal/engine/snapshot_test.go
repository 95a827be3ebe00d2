package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
)

func TestNewSnapshot_RejectsInvalidPromotion(t *testing.T) {
	bad := promo("b", func(p *models.Promotion) {
		p.StartDate, p.EndDate = p.EndDate, p.StartDate
	})
	_, err := NewSnapshot([]models.Promotion{promo("a"), bad}, at(0, 0))

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "end_date", verr.Field)
}

func TestSnapshot_IsImmutable(t *testing.T) {
	src := []models.Promotion{promo("a", func(p *models.Promotion) {
		p.AllProducts = false
		p.EligibleProducts = []string{"p1"}
	})}
	s := snapshot(t, src...)

	src[0].EligibleProducts[0] = "p2"
	src[0].Status = models.StatusPaused

	c := cart("0", line("p1", "pizza", "10.00", 1))
	assert.Len(t, Resolve(s, c, nil, "", at(12, 0)), 1)

	listed := s.Promotions()
	listed[0].Name = "renamed"
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "promo a", got.Name)
	assert.Equal(t, 1, s.Len())
}

func TestSnapshot_Get(t *testing.T) {
	s := snapshot(t, promo("a"), promo("b"))
	_, ok := s.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, ids(s.Promotions()))
	assert.True(t, s.LoadedAt().Equal(at(0, 0)))
}

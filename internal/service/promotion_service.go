package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/engine"
	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Repos required by service (use interfaces to allow mocking)
type PromotionRepo interface {
	List(ctx context.Context) ([]models.Promotion, error)
	Get(ctx context.Context, id string) (models.Promotion, error)
	Create(ctx context.Context, p models.Promotion) error
	Update(ctx context.Context, p models.Promotion) error
	UpdateStatus(ctx context.Context, id string, status models.Status, at time.Time) error
	Delete(ctx context.Context, id string) error
	ExpireEndedBefore(ctx context.Context, day models.Date, at time.Time) ([]string, error)
}

type UsageRepo interface {
	CountsForCustomer(ctx context.Context, customerID string) (map[string]int, error)
	RedeemOrder(ctx context.Context, orderID, customerID string, promotionIDs []string, at time.Time) (int, error)
}

// LocalCache holds the snapshot in process.
// Every Invalidate starts a new generation; SetIfGeneration only stores a
// snapshot loaded within the generation it names.
type LocalCache interface {
	Get() (*engine.Snapshot, bool)
	Generation() uint64
	SetIfGeneration(snap *engine.Snapshot, gen uint64) bool
	Invalidate()
}

// SharedCatalog holds the raw catalog for all replicas.
type SharedCatalog interface {
	Load(ctx context.Context) ([]models.Promotion, bool, error)
	Store(ctx context.Context, promotions []models.Promotion) error
	Invalidate(ctx context.Context) error
}

// ChangeNotifier tells other replicas the catalog changed.
type ChangeNotifier interface {
	CatalogChanged(ctx context.Context, promotionID, reason string)
}

type PromotionService struct {
	promoRepo PromotionRepo
	usageRepo UsageRepo
	local     LocalCache
	shared    SharedCatalog  // optional
	notifier  ChangeNotifier // optional
	loc       *time.Location
}

func NewPromotionService(pRepo PromotionRepo, uRepo UsageRepo, local LocalCache) *PromotionService {
	return &PromotionService{
		promoRepo: pRepo,
		usageRepo: uRepo,
		local:     local,
		loc:       time.UTC,
	}
}

// WithLocation sets the restaurant's time zone. Calendar dates used by
// the expiry sweep are taken in it.
func (s *PromotionService) WithLocation(loc *time.Location) *PromotionService {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// WithSharedCatalog adds a cache shared between replicas behind the local one.
func (s *PromotionService) WithSharedCatalog(shared SharedCatalog) *PromotionService {
	s.shared = shared
	return s
}

// WithNotifier publishes catalog changes after every admin mutation.
func (s *PromotionService) WithNotifier(n ChangeNotifier) *PromotionService {
	s.notifier = n
	return s
}

// Snapshot returns the current catalog snapshot: local cache first, then the
// shared cache, then Postgres.
func (s *PromotionService) Snapshot(ctx context.Context, now time.Time) (*engine.Snapshot, error) {
	if snap, ok := s.local.Get(); ok {
		return snap, nil
	}
	gen := s.local.Generation()

	var promotions []models.Promotion
	fromShared := false
	if s.shared != nil {
		p, ok, err := s.shared.Load(ctx)
		if err != nil {
			// the shared cache is an optimisation; Postgres stays the source of truth
			log.Printf("shared catalog load: %v", err)
		}
		if ok {
			promotions, fromShared = p, true
		}
	}
	if !fromShared {
		p, err := s.promoRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		promotions = p
	}

	snap, err := engine.NewSnapshot(promotions, now)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	stored := s.shared != nil && !fromShared
	if stored {
		if err := s.shared.Store(ctx, promotions); err != nil {
			log.Printf("shared catalog store: %v", err)
			stored = false
		}
	}
	if !s.local.SetIfGeneration(snap, gen) {
		// the catalog changed while loading: serve this one, cache nothing
		if stored {
			if err := s.shared.Invalidate(ctx); err != nil {
				log.Printf("shared catalog invalidate: %v", err)
			}
		}
	}
	return snap, nil
}

// Catalog lists every promotion, active or not.
func (s *PromotionService) Catalog(ctx context.Context, now time.Time) ([]models.Promotion, error) {
	snap, err := s.Snapshot(ctx, now)
	if err != nil {
		return nil, err
	}
	return snap.Promotions(), nil
}

func (s *PromotionService) GetPromotion(ctx context.Context, id string) (models.Promotion, error) {
	return s.promoRepo.Get(ctx, id)
}

// Simulate prices the cart at now. When the request names a customer but
// carries no usage counts, the counts are read from the usage repository.
func (s *PromotionService) Simulate(ctx context.Context, req models.SimulationRequest, now time.Time) (models.SimulationResult, error) {
	if err := req.Validate(); err != nil {
		return models.SimulationResult{}, err
	}
	snap, err := s.Snapshot(ctx, now)
	if err != nil {
		return models.SimulationResult{}, err
	}

	if c := req.Customer; c != nil && c.ID != "" && c.Usage == nil {
		counts, err := s.usageRepo.CountsForCustomer(ctx, c.ID)
		if err != nil {
			return models.SimulationResult{}, err
		}
		withUsage := *c
		withUsage.Usage = counts
		req.Customer = &withUsage
	}

	return engine.Simulate(snap, req, now)
}

func (s *PromotionService) Badges(ctx context.Context, productID, categoryID string, now time.Time) ([]models.Promotion, error) {
	snap, err := s.Snapshot(ctx, now)
	if err != nil {
		return nil, err
	}
	return engine.Badges(snap, productID, categoryID, now), nil
}

func (s *PromotionService) Banners(ctx context.Context, now time.Time) ([]models.Promotion, error) {
	snap, err := s.Snapshot(ctx, now)
	if err != nil {
		return nil, err
	}
	return engine.Banners(snap, now), nil
}

// CreatePromotion assigns an id, defaults the status to draft and stores
// the promotion once it validates.
func (s *PromotionService) CreatePromotion(ctx context.Context, p models.Promotion, now time.Time) (models.Promotion, error) {
	p.ID = uuid.NewString()
	if p.Status == "" {
		p.Status = models.StatusDraft
	}
	p.CreatedAt, p.UpdatedAt = now, now
	if err := p.Validate(); err != nil {
		return models.Promotion{}, err
	}
	if err := s.promoRepo.Create(ctx, p); err != nil {
		return models.Promotion{}, err
	}
	s.catalogChanged(ctx, p.ID, "created")
	return p, nil
}

// UpdatePromotion replaces the definition of id. Status changes go through
// SetStatus; the stored status is kept.
func (s *PromotionService) UpdatePromotion(ctx context.Context, id string, p models.Promotion, now time.Time) (models.Promotion, error) {
	current, err := s.promoRepo.Get(ctx, id)
	if err != nil {
		return models.Promotion{}, err
	}
	p.ID = id
	p.Status = current.Status
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = now
	if err := p.Validate(); err != nil {
		return models.Promotion{}, err
	}
	if err := s.promoRepo.Update(ctx, p); err != nil {
		return models.Promotion{}, err
	}
	s.catalogChanged(ctx, id, "updated")
	return p, nil
}

func (s *PromotionService) SetStatus(ctx context.Context, id string, status models.Status, now time.Time) (models.Promotion, error) {
	if !status.Valid() {
		return models.Promotion{}, &models.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}
	current, err := s.promoRepo.Get(ctx, id)
	if err != nil {
		return models.Promotion{}, err
	}
	if !models.CanTransition(current.Status, status) {
		return models.Promotion{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}
	if err := s.promoRepo.UpdateStatus(ctx, id, status, now); err != nil {
		return models.Promotion{}, err
	}
	current.Status = status
	current.UpdatedAt = now
	s.catalogChanged(ctx, id, "status:"+string(status))
	return current, nil
}

func (s *PromotionService) DeletePromotion(ctx context.Context, id string) error {
	if err := s.promoRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.catalogChanged(ctx, id, "deleted")
	return nil
}

// ExpireStale marks promotions that ended before the restaurant's today as
// expired.
func (s *PromotionService) ExpireStale(ctx context.Context, now time.Time) ([]string, error) {
	ids, err := s.promoRepo.ExpireEndedBefore(ctx, models.DateOf(now.In(s.loc)), now)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		s.catalogChanged(ctx, "", "expired")
	}
	return ids, nil
}

// RunExpirySweep calls ExpireStale every interval until ctx is done.
func (s *PromotionService) RunExpirySweep(ctx context.Context, every time.Duration, clock func() time.Time) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ids, err := s.ExpireStale(ctx, clock())
			if err != nil {
				log.Printf("expiry sweep: %v", err)
				continue
			}
			if len(ids) > 0 {
				log.Printf("expiry sweep: expired %d promotion(s)", len(ids))
			}
		}
	}
}

// Redemption is a completed order and the promotions it applied.
type Redemption struct {
	OrderID      string
	CustomerID   string
	PromotionIDs []string
}

// RecordRedemption counts the order's promotions against the customer's
// usage limits. Guests and orders without promotions are ignored.
func (s *PromotionService) RecordRedemption(ctx context.Context, r Redemption, now time.Time) error {
	if r.CustomerID == "" || len(r.PromotionIDs) == 0 {
		return nil
	}
	if r.OrderID == "" {
		return &models.ValidationError{Field: "order_id", Reason: "required"}
	}
	n, err := s.usageRepo.RedeemOrder(ctx, r.OrderID, r.CustomerID, r.PromotionIDs, now)
	if err != nil {
		return err
	}
	log.Printf("order %s: counted %d promotion use(s) for customer %s", r.OrderID, n, r.CustomerID)
	return nil
}

// InvalidateLocal drops the in-process snapshot; used when another replica
// announced a change.
func (s *PromotionService) InvalidateLocal() {
	s.local.Invalidate()
}

func (s *PromotionService) catalogChanged(ctx context.Context, promotionID, reason string) {
	s.local.Invalidate()
	if s.shared != nil {
		if err := s.shared.Invalidate(ctx); err != nil {
			log.Printf("shared catalog invalidate: %v", err)
		}
	}
	if s.notifier != nil {
		s.notifier.CatalogChanged(ctx, promotionID, reason)
	}
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/marketplace-discovery/internal/catalog"
	"github.com/utafrali/marketplace-discovery/internal/discovery"
	"github.com/utafrali/marketplace-discovery/internal/domain"
	"github.com/utafrali/marketplace-discovery/internal/event"
	"github.com/utafrali/marketplace-discovery/internal/recommend"
	apperrors "github.com/utafrali/marketplace-discovery/pkg/errors"
	"github.com/utafrali/marketplace-discovery/pkg/logger"
)

// DefaultPoolSize is how many candidates are fetched per listing when
// picking related products.
const DefaultPoolSize = 100

// Page selects a page of the upstream catalog.
type Page struct {
	Page    int
	PerPage int
}

// BrowseResult is one discovery listing.
type BrowseResult struct {
	Products []domain.Product   `json:"products"`
	Mode     domain.DisplayMode `json:"mode"`
	Guidance domain.Guidance    `json:"guidance"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PerPage  int                `json:"per_page"`
}

// ProductView is a product detail page with its related products.
type ProductView struct {
	Product domain.Product   `json:"product"`
	Related []domain.Product `json:"related"`
}

// DiscoveryService orchestrates listing, product views and behavior tracking.
type DiscoveryService struct {
	catalog      catalog.Fetcher
	engine       *discovery.Engine
	selector     *recommend.Selector
	events       event.Publisher
	relatedLimit int
	poolSize     int
	logger       *slog.Logger
}

// NewDiscoveryService creates a new discovery service.
func NewDiscoveryService(
	fetcher catalog.Fetcher,
	engine *discovery.Engine,
	selector *recommend.Selector,
	events event.Publisher,
	relatedLimit int,
	logger *slog.Logger,
) *DiscoveryService {
	return &DiscoveryService{
		catalog:      fetcher,
		engine:       engine,
		selector:     selector,
		events:       events,
		relatedLimit: relatedLimit,
		poolSize:     DefaultPoolSize,
		logger:       logger,
	}
}

// Browse fetches a catalog page, applies criteria locally, records the
// visitor's search and filter usage and picks the display mode and guidance.
// Tracking is skipped when sessionID is empty.
func (s *DiscoveryService) Browse(ctx context.Context, sessionID string, criteria domain.Criteria, page Page) (*BrowseResult, error) {
	fetched, err := s.catalog.ListProducts(ctx, catalog.Query{
		Search:   criteria.TextQuery(),
		Category: criteria.Category,
		SortBy:   criteria.SortBy,
		Page:     page.Page,
		PerPage:  page.PerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("browse products: %w", err)
	}

	products := s.engine.Discover(fetched, criteria)

	profile := domain.NewBehaviorProfile()
	if sessionID != "" {
		eng := s.engine.ForSession(sessionID)
		profile = eng.LoadProfile(ctx)
		if criteria.HasQuery() {
			profile = s.track(ctx, "search", func() (domain.BehaviorProfile, error) { return eng.TrackSearch(ctx, profile) })
		}
		if criteria.HasFilters() || criteria.HasCustomSort() {
			profile = s.track(ctx, "filter", func() (domain.BehaviorProfile, error) { return eng.TrackFilter(ctx, profile) })
		}
	}

	mode := discovery.ClassifyDisplayMode(criteria, len(products))
	discoveryFilterResults.WithLabelValues(string(mode)).Observe(float64(len(products)))

	return &BrowseResult{
		Products: products,
		Mode:     mode,
		Guidance: discovery.SelectGuidance(mode, profile),
		Total:    len(products),
		Page:     page.Page,
		PerPage:  page.PerPage,
	}, nil
}

// track runs a tracking call. Persistence failures are logged and the
// updated in-memory profile is kept.
func (s *DiscoveryService) track(ctx context.Context, action string, fn func() (domain.BehaviorProfile, error)) domain.BehaviorProfile {
	profile, err := fn()
	if err != nil {
		logger.WithContext(ctx, s.logger).Warn("behavior tracking failed",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
	return profile
}

// ViewProduct fetches productID from the catalog, records the view and
// selects related products.
func (s *DiscoveryService) ViewProduct(ctx context.Context, sessionID, productID string) (*ProductView, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("view product: %w", err)
	}

	viewed := 0
	if sessionID != "" {
		eng := s.engine.ForSession(sessionID)
		profile := eng.LoadProfile(ctx)
		profile = s.track(ctx, "view", func() (domain.BehaviorProfile, error) { return eng.TrackView(ctx, profile, productID) })
		viewed = profile.ViewedCount()
	}

	if err := s.events.PublishProductViewed(ctx, event.ProductViewedData{
		ProductID:   productID,
		SessionID:   sessionID,
		Category:    product.CategoryKey(),
		ViewedCount: viewed,
	}); err != nil {
		logger.WithContext(ctx, s.logger).Warn("publish product viewed failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	return &ProductView{
		Product: *product,
		Related: s.related(ctx, *product),
	}, nil
}

// related picks products for current's detail page. Candidates come from the
// catalog listing filtered by current's category, backfilled from an
// unfiltered page when too few share it. A failed listing is logged and only
// shrinks the candidate pool.
func (s *DiscoveryService) related(ctx context.Context, current domain.Product) []domain.Product {
	if s.relatedLimit <= 0 {
		return []domain.Product{}
	}

	category := current.CategoryKey()
	var pool []domain.Product
	if category != "" {
		pool = s.candidates(ctx, catalog.Query{Category: category, PerPage: s.poolSize})
	}

	same := 0
	for i := range pool {
		if pool[i].ID != current.ID && pool[i].CategoryKey() == category {
			same++
		}
	}
	if same < s.relatedLimit {
		pool = append(pool, s.candidates(ctx, catalog.Query{PerPage: s.poolSize})...)
	}

	return s.selector.SelectRelated(current, pool, s.relatedLimit)
}

func (s *DiscoveryService) candidates(ctx context.Context, q catalog.Query) []domain.Product {
	products, err := s.catalog.ListProducts(ctx, q)
	if err != nil {
		logger.WithContext(ctx, s.logger).Warn("related products listing failed",
			slog.String("category", q.Category),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return products
}

// Profile returns the stored behavior profile for sessionID.
func (s *DiscoveryService) Profile(ctx context.Context, sessionID string) (domain.BehaviorProfile, error) {
	if sessionID == "" {
		return domain.BehaviorProfile{}, apperrors.InvalidInput("session id is required")
	}
	return s.engine.ForSession(sessionID).LoadProfile(ctx), nil
}

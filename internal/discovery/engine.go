package discovery

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/utafrali/marketplace-discovery/internal/behavior"
	"github.com/utafrali/marketplace-discovery/internal/domain"
	apperrors "github.com/utafrali/marketplace-discovery/pkg/errors"
)

// Engine filters and orders product listings and tracks visitor behavior.
// Listing operations never modify their input and always return a new slice.
type Engine struct {
	store  *behavior.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates a discovery engine that persists behavior through store.
func NewEngine(store *behavior.Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ForSession returns an engine whose tracking persists to sessionID's profile.
func (e *Engine) ForSession(sessionID string) *Engine {
	return &Engine{store: e.store.ForSession(sessionID), logger: e.logger, now: e.now}
}

// LoadProfile returns the persisted behavior profile.
func (e *Engine) LoadProfile(ctx context.Context) domain.BehaviorProfile {
	return e.store.Load(ctx)
}

// ---------------------------------------------------------------------------
// Listing
// ---------------------------------------------------------------------------

// Filter returns the products matching criteria, in input order. The text
// query, category and minimum rating are applied in that order and each is
// skipped when unset.
func (e *Engine) Filter(products []domain.Product, criteria domain.Criteria) []domain.Product {
	query := strings.ToLower(criteria.TextQuery())

	out := make([]domain.Product, 0, len(products))
	for i := range products {
		p := &products[i]
		if query != "" && !matchesText(p, query) {
			continue
		}
		if criteria.Category != "" && !p.InCategory(criteria.Category) {
			continue
		}
		if criteria.MinRating > 0 && e.rating(p) < criteria.MinRating {
			continue
		}
		out = append(out, *p)
	}
	return out
}

func matchesText(p *domain.Product, query string) bool {
	fields := [...]string{p.Title, p.Description, p.DesignType, p.Category, p.Shop.Name}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// rating returns p's average rating, or 0 when it is outside the valid range.
func (e *Engine) rating(p *domain.Product) float64 {
	if p.HasValidRating() {
		return p.Rating
	}
	e.logger.Warn("malformed product rating treated as 0",
		slog.String("product_id", p.ID),
		slog.String("field", "rating"),
		slog.Float64("value", p.Rating),
	)
	return 0
}

// Sort returns products ordered by key using a stable sort. Unknown keys,
// including recommended, order newest first. Products without a creation
// time sort as the oldest.
func (e *Engine) Sort(products []domain.Product, key domain.SortKey) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)

	switch key {
	case domain.SortRating:
		type rated struct {
			product domain.Product
			rating  float64
		}
		keyed := make([]rated, len(out))
		for i := range out {
			keyed[i] = rated{product: out[i], rating: e.rating(&out[i])}
		}
		slices.SortStableFunc(keyed, func(x, y rated) int {
			return cmp.Compare(y.rating, x.rating)
		})
		for i := range keyed {
			out[i] = keyed[i].product
		}
	case domain.SortName:
		slices.SortStableFunc(out, func(x, y domain.Product) int {
			if c := strings.Compare(strings.ToLower(x.Title), strings.ToLower(y.Title)); c != 0 {
				return c
			}
			return strings.Compare(x.Title, y.Title)
		})
	default:
		slices.SortStableFunc(out, func(x, y domain.Product) int {
			return y.CreatedAt.Compare(x.CreatedAt)
		})
	}
	return out
}

// Discover filters products by criteria and sorts the result.
func (e *Engine) Discover(products []domain.Product, criteria domain.Criteria) []domain.Product {
	return e.Sort(e.Filter(products, criteria), criteria.SortBy)
}

// ClassifyDisplayMode decides what the listing is showing: a text search, a
// filtered or re-sorted view, a plain non-empty listing, or nothing yet.
func ClassifyDisplayMode(criteria domain.Criteria, resultCount int) domain.DisplayMode {
	switch {
	case criteria.HasQuery():
		return domain.ModeSearching
	case criteria.HasFilters() || criteria.HasCustomSort():
		return domain.ModeFiltered
	case resultCount > 0:
		return domain.ModeBrowsing
	default:
		return domain.ModeInitial
	}
}

// SelectGuidance picks the hint shown for mode. While browsing, the hint
// nudges visitors toward the first feature they have not used yet.
func SelectGuidance(mode domain.DisplayMode, profile domain.BehaviorProfile) domain.Guidance {
	switch mode {
	case domain.ModeSearching:
		return domain.GuidanceRefineSearch
	case domain.ModeFiltered:
		return domain.GuidanceAdjustFilters
	case domain.ModeBrowsing:
		switch {
		case !profile.HasSearched:
			return domain.GuidanceTrySearch
		case !profile.HasFiltered:
			return domain.GuidanceTryFilters
		default:
			return domain.GuidanceKeepBrowsing
		}
	default:
		if profile.ViewedCount() > 0 {
			return domain.GuidanceWelcomeBack
		}
		return domain.GuidanceWelcome
	}
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

// TrackView records that productID was opened and persists the result. The
// updated profile is returned even when persisting fails.
func (e *Engine) TrackView(ctx context.Context, profile domain.BehaviorProfile, productID string) (domain.BehaviorProfile, error) {
	if productID == "" {
		return profile, apperrors.InvalidInput("product id is required")
	}
	return e.persist(ctx, profile.WithView(productID, e.now()))
}

// TrackSearch records that a text search was run and persists the result.
func (e *Engine) TrackSearch(ctx context.Context, profile domain.BehaviorProfile) (domain.BehaviorProfile, error) {
	return e.persist(ctx, profile.WithSearch(e.now()))
}

// TrackFilter records that a filter or sort was applied and persists the result.
func (e *Engine) TrackFilter(ctx context.Context, profile domain.BehaviorProfile) (domain.BehaviorProfile, error) {
	return e.persist(ctx, profile.WithFilter(e.now()))
}

func (e *Engine) persist(ctx context.Context, profile domain.BehaviorProfile) (domain.BehaviorProfile, error) {
	if err := e.store.Save(ctx, profile); err != nil {
		return profile, fmt.Errorf("track behavior: %w", err)
	}
	return profile, nil
}

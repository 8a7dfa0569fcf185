package recommend

import (
	"github.com/utafrali/marketplace-discovery/internal/domain"
)

// Selector picks related products for a product detail page.
type Selector struct{}

// NewSelector creates a new recommendation selector.
func NewSelector() *Selector {
	return &Selector{}
}

// SelectRelated returns up to limit products from pool that are related to
// current. Products sharing current's category come first, in pool order, and
// remaining slots are backfilled with other pool products, also in pool order.
// current itself is never returned and no product id appears twice.
func (s *Selector) SelectRelated(current domain.Product, pool []domain.Product, limit int) []domain.Product {
	if limit <= 0 {
		return []domain.Product{}
	}

	out := make([]domain.Product, 0, min(limit, len(pool)))
	seen := make(map[string]struct{}, limit+1)
	seen[current.ID] = struct{}{}

	category := current.CategoryKey()

	take := func(match func(p *domain.Product) bool) {
		for i := range pool {
			if len(out) == limit {
				return
			}
			p := &pool[i]
			if _, dup := seen[p.ID]; dup || !match(p) {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, *p)
		}
	}

	if category != "" {
		take(func(p *domain.Product) bool { return p.CategoryKey() == category })
	}
	take(func(*domain.Product) bool { return true })

	return out
}

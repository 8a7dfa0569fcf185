package domain

import (
	"time"
)

// Measure is an optional numeric attribute tagged with its unit, e.g. 12.5 "g".
type Measure struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// ShopRef identifies the shop that owns a product.
type ShopRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is a read-only snapshot of a catalog item as returned by the
// upstream product API.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DesignType  string    `json:"design_type,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       *Measure  `json:"price,omitempty"`
	Weight      *Measure  `json:"weight,omitempty"`
	Karat       *Measure  `json:"karat,omitempty"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	Shop        ShopRef   `json:"shop"`
	CreatedAt   time.Time `json:"created_at"`
}

// Rating bounds for a product's average rating.
const (
	MinProductRating = 0.0
	MaxProductRating = 5.0
)

// CategoryKey returns the primary design-type tag, falling back to the
// generic category tag.
func (p *Product) CategoryKey() string {
	if p.DesignType != "" {
		return p.DesignType
	}
	return p.Category
}

// InCategory reports whether either category field equals c.
func (p *Product) InCategory(c string) bool {
	return p.DesignType == c || p.Category == c
}

// HasValidRating reports whether the average rating lies within [0,5].
// NaN fails both comparisons and is therefore invalid.
func (p *Product) HasValidRating() bool {
	return p.Rating >= MinProductRating && p.Rating <= MaxProductRating
}

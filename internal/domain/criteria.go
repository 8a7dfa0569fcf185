package domain

import (
	"strings"
)

// SortKey orders a product listing.
type SortKey string

// Product sort keys. Recommended currently orders like Newest.
const (
	SortRecommended SortKey = "recommended"
	SortNewest      SortKey = "newest"
	SortName        SortKey = "name"
	SortRating      SortKey = "rating"
)

// ValidSortKeys returns every supported sort key.
func ValidSortKeys() []SortKey {
	return []SortKey{SortRecommended, SortNewest, SortName, SortRating}
}

// IsValidSortKey reports whether s is a supported sort key. Empty is valid.
func IsValidSortKey(s string) bool {
	if s == "" {
		return true
	}
	for _, k := range ValidSortKeys() {
		if string(k) == s {
			return true
		}
	}
	return false
}

// Criteria is the set of search, filter and sort parameters for a single
// discovery request. It is built per request and never persisted.
type Criteria struct {
	Query     string  `json:"query,omitempty"`
	Category  string  `json:"category,omitempty"`
	MinRating float64 `json:"min_rating,omitempty"`
	SortBy    SortKey `json:"sort_by,omitempty"`
}

// TextQuery returns the trimmed free-text query.
func (c Criteria) TextQuery() string {
	return strings.TrimSpace(c.Query)
}

// HasQuery reports whether a non-blank text query is set.
func (c Criteria) HasQuery() bool {
	return c.TextQuery() != ""
}

// HasFilters reports whether a category or minimum rating filter is set.
func (c Criteria) HasFilters() bool {
	return c.Category != "" || c.MinRating > 0
}

// HasCustomSort reports whether a sort other than the default is requested.
func (c Criteria) HasCustomSort() bool {
	return c.SortBy != "" && c.SortBy != SortRecommended
}

// DisplayMode describes what the listing page is currently showing.
type DisplayMode string

// Display modes, in decreasing precedence.
const (
	ModeSearching DisplayMode = "searching"
	ModeFiltered  DisplayMode = "filtered"
	ModeBrowsing  DisplayMode = "browsing"
	ModeInitial   DisplayMode = "initial"
)

// Guidance identifies one of a fixed set of hint messages shown above the
// listing. The text for each key is owned by the presentation layer.
type Guidance string

// Guidance keys.
const (
	GuidanceRefineSearch  Guidance = "refine_search"
	GuidanceAdjustFilters Guidance = "adjust_filters"
	GuidanceTrySearch     Guidance = "try_search"
	GuidanceTryFilters    Guidance = "try_filters"
	GuidanceKeepBrowsing  Guidance = "keep_browsing"
	GuidanceWelcome       Guidance = "welcome"
	GuidanceWelcomeBack   Guidance = "welcome_back"
)

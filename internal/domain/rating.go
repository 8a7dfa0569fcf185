package domain

import (
	"time"
)

// TargetKind is the kind of entity a rating is submitted against.
type TargetKind string

// Rating target kinds. A submission targets exactly one of them.
const (
	TargetProduct TargetKind = "product"
	TargetShop    TargetKind = "shop"
)

// IsValid reports whether k is a known target kind.
func (k TargetKind) IsValid() bool {
	return k == TargetProduct || k == TargetShop
}

// TargetRef identifies the product or shop a rating belongs to.
type TargetRef struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

// Score bounds and comment limit for rating submissions.
const (
	MinScore         = 1
	MaxScore         = 5
	MaxCommentLength = 500
)

// Rating is a single user's score for a target. At most one rating exists per
// (UserID, Target); a later submission replaces the earlier one in place.
type Rating struct {
	ID        string    `json:"id"`
	Score     int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	UserID    string    `json:"user_id"`
	Target    TargetRef `json:"target"`
	CreatedAt time.Time `json:"created_at"`
}

// HasValidScore reports whether the score lies within [MinScore, MaxScore].
func (r *Rating) HasValidScore() bool {
	return r.Score >= MinScore && r.Score <= MaxScore
}

// RatingInput is a raw rating submission before validation. Rating is a
// float so that non-integer input can be detected and reported.
type RatingInput struct {
	Rating  *float64 `json:"rating"`
	Comment *string  `json:"comment,omitempty"`
}

// RatingStats summarizes a rating collection.
type RatingStats struct {
	Total        int         `json:"total"`
	Average      float64     `json:"average"`
	Distribution map[int]int `json:"distribution"`
}

// NewRatingStats returns empty stats with every score key present.
func NewRatingStats() RatingStats {
	dist := make(map[int]int, MaxScore)
	for s := MinScore; s <= MaxScore; s++ {
		dist[s] = 0
	}
	return RatingStats{Distribution: dist}
}

// RatingSortMode orders a rating list.
type RatingSortMode string

// Rating sort modes.
const (
	RatingSortNewest  RatingSortMode = "newest"
	RatingSortOldest  RatingSortMode = "oldest"
	RatingSortHighest RatingSortMode = "highest"
	RatingSortLowest  RatingSortMode = "lowest"
)

// ValidRatingSortModes returns every supported rating sort mode.
func ValidRatingSortModes() []RatingSortMode {
	return []RatingSortMode{RatingSortNewest, RatingSortOldest, RatingSortHighest, RatingSortLowest}
}

// IsValidRatingSortMode reports whether m is supported. Empty is valid and
// means the default (newest).
func IsValidRatingSortMode(m string) bool {
	if m == "" {
		return true
	}
	for _, v := range ValidRatingSortModes() {
		if string(v) == m {
			return true
		}
	}
	return false
}

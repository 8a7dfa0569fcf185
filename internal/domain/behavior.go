package domain

import (
	"slices"
	"time"
)

// BehaviorProfile records a visitor's browsing activity. It is a value type:
// the With* methods return an updated copy and never modify the receiver.
type BehaviorProfile struct {
	// Viewed holds unique product ids in ascending order.
	Viewed       []string   `json:"viewed"`
	HasSearched  bool       `json:"has_searched"`
	HasFiltered  bool       `json:"has_filtered"`
	LastActivity *time.Time `json:"last_activity"`
}

// NewBehaviorProfile returns the default empty profile.
func NewBehaviorProfile() BehaviorProfile {
	return BehaviorProfile{Viewed: []string{}}
}

// HasViewed reports whether productID is in the viewed set.
func (b BehaviorProfile) HasViewed(productID string) bool {
	_, found := slices.BinarySearch(b.Viewed, productID)
	return found
}

// ViewedCount returns the number of distinct viewed products.
func (b BehaviorProfile) ViewedCount() int {
	return len(b.Viewed)
}

// WithView returns a copy with productID added to the viewed set and
// LastActivity set to at. Adding an id twice leaves the set unchanged.
func (b BehaviorProfile) WithView(productID string, at time.Time) BehaviorProfile {
	out := b.clone()
	if i, found := slices.BinarySearch(out.Viewed, productID); !found {
		out.Viewed = slices.Insert(out.Viewed, i, productID)
	}
	out.LastActivity = &at
	return out
}

// WithSearch returns a copy marked as having searched.
func (b BehaviorProfile) WithSearch(at time.Time) BehaviorProfile {
	out := b.clone()
	out.HasSearched = true
	out.LastActivity = &at
	return out
}

// WithFilter returns a copy marked as having filtered.
func (b BehaviorProfile) WithFilter(at time.Time) BehaviorProfile {
	out := b.clone()
	out.HasFiltered = true
	out.LastActivity = &at
	return out
}

// Normalize sorts and deduplicates Viewed and drops empty ids. It is applied
// to profiles restored from storage, which may have been written by older
// clients in insertion order.
func (b BehaviorProfile) Normalize() BehaviorProfile {
	out := b.clone()
	out.Viewed = slices.DeleteFunc(out.Viewed, func(id string) bool { return id == "" })
	slices.Sort(out.Viewed)
	out.Viewed = slices.Compact(out.Viewed)
	return out
}

func (b BehaviorProfile) clone() BehaviorProfile {
	out := b
	out.Viewed = make([]string, len(b.Viewed))
	copy(out.Viewed, b.Viewed)
	if b.LastActivity != nil {
		t := *b.LastActivity
		out.LastActivity = &t
	}
	return out
}

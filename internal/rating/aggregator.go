// Package rating aggregates rating collections into summary statistics and
// ordered, filtered views. Every function works on a snapshot and returns a
// new slice; inputs are never modified.
//
// The aggregator assumes the caller keeps at most one rating per
// (user, target) pair and does not check user identity itself.
package rating

import (
	"cmp"
	"log/slog"
	"slices"
	"unicode/utf8"

	"github.com/utafrali/marketplace-discovery/internal/domain"
	"github.com/utafrali/marketplace-discovery/pkg/validator"
)

// Aggregator computes rating statistics and views.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates a new rating aggregator.
func NewAggregator(logger *slog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// ComputeStats returns the count, rounded average and per-score distribution
// of ratings. Ratings with a score outside 1..5 are logged and left out of all
// three figures, so the distribution always sums to the total.
func (a *Aggregator) ComputeStats(ratings []domain.Rating) domain.RatingStats {
	stats := domain.NewRatingStats()

	sum := 0
	for i := range ratings {
		r := &ratings[i]
		if !r.HasValidScore() {
			a.logger.Warn("malformed rating skipped",
				slog.String("rating_id", r.ID),
				slog.String("field", "rating"),
				slog.Int("score", r.Score),
			)
			continue
		}
		stats.Distribution[r.Score]++
		stats.Total++
		sum += r.Score
	}

	stats.Average = roundedAverage(sum, stats.Total)
	return stats
}

// roundedAverage returns sum/count rounded half-up to one decimal place.
// Integer arithmetic keeps x.x5 boundaries exact.
func roundedAverage(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	tenths := (20*sum + count) / (2 * count)
	return float64(tenths) / 10
}

// Sort returns ratings ordered by mode using a stable sort. Unknown or empty
// modes sort newest first. Score-based modes break ties newest first.
func (a *Aggregator) Sort(ratings []domain.Rating, mode domain.RatingSortMode) []domain.Rating {
	out := make([]domain.Rating, len(ratings))
	copy(out, ratings)

	slices.SortStableFunc(out, comparator(mode))
	return out
}

func comparator(mode domain.RatingSortMode) func(x, y domain.Rating) int {
	newest := func(x, y domain.Rating) int { return y.CreatedAt.Compare(x.CreatedAt) }

	switch mode {
	case domain.RatingSortOldest:
		return func(x, y domain.Rating) int { return x.CreatedAt.Compare(y.CreatedAt) }
	case domain.RatingSortHighest:
		return func(x, y domain.Rating) int {
			if c := cmp.Compare(y.Score, x.Score); c != 0 {
				return c
			}
			return newest(x, y)
		}
	case domain.RatingSortLowest:
		return func(x, y domain.Rating) int {
			if c := cmp.Compare(x.Score, y.Score); c != 0 {
				return c
			}
			return newest(x, y)
		}
	default:
		return newest
	}
}

// FilterByScore returns the ratings whose score equals score exactly.
// A score of 0 returns every rating.
func (a *Aggregator) FilterByScore(ratings []domain.Rating, score int) []domain.Rating {
	out := make([]domain.Rating, 0, len(ratings))
	for _, r := range ratings {
		if score == 0 || r.Score == score {
			out = append(out, r)
		}
	}
	return out
}

// Validate checks a rating submission and returns a *validator.ValidationError
// listing every violated rule, or nil when the input is acceptable.
func (a *Aggregator) Validate(input domain.RatingInput) error {
	verr := &validator.ValidationError{}

	if input.Rating == nil {
		verr.Add("rating", "required", "is required")
	} else {
		v := *input.Rating
		if !validator.IsWhole(v) {
			verr.Add("rating", "integer", "must be a whole number")
		}
		if !(v >= domain.MinScore && v <= domain.MaxScore) {
			verr.Add("rating", "range", "must be between 1 and 5")
		}
	}

	if input.Comment != nil && utf8.RuneCountInString(*input.Comment) > domain.MaxCommentLength {
		verr.Add("comment", "max", "length must be at most 500 characters")
	}

	return verr.OrNil()
}

// Summary is the rating view rendered for a product or shop page.
type Summary struct {
	Stats   domain.RatingStats `json:"stats"`
	Ratings []domain.Rating    `json:"ratings"`
}

// Summarize computes stats over the whole collection and returns the list
// filtered by score and sorted by mode.
func (a *Aggregator) Summarize(ratings []domain.Rating, mode domain.RatingSortMode, score int) Summary {
	return Summary{
		Stats:   a.ComputeStats(ratings),
		Ratings: a.Sort(a.FilterByScore(ratings, score), mode),
	}
}

package rating

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/marketplace-discovery/internal/domain"
	"github.com/utafrali/marketplace-discovery/pkg/logger"
	"github.com/utafrali/marketplace-discovery/pkg/validator"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestAggregator() *Aggregator {
	return NewAggregator(logger.Discard())
}

func ratingsFromScores(scores ...int) []domain.Rating {
	out := make([]domain.Rating, len(scores))
	for i, s := range scores {
		out[i] = domain.Rating{
			ID:        fmt.Sprintf("r-%d", i),
			Score:     s,
			UserID:    fmt.Sprintf("user-%d", i),
			Target:    domain.TargetRef{Kind: domain.TargetProduct, ID: "prod-1"},
			CreatedAt: baseTime.Add(time.Duration(i) * time.Hour),
		}
	}
	return out
}

func ids(ratings []domain.Rating) []string {
	out := make([]string, len(ratings))
	for i, r := range ratings {
		out[i] = r.ID
	}
	return out
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

// ---------------------------------------------------------------------------
// ComputeStats
// ---------------------------------------------------------------------------

func TestComputeStats_Scenario(t *testing.T) {
	stats := newTestAggregator().ComputeStats(ratingsFromScores(5, 5, 4, 3, 1))

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3.6, stats.Average)
	assert.Equal(t, map[int]int{1: 1, 2: 0, 3: 1, 4: 1, 5: 2}, stats.Distribution)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := newTestAggregator().ComputeStats(nil)

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0.0, stats.Average)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, stats.Distribution)
}

func TestComputeStats_RoundsHalfUp(t *testing.T) {
	agg := newTestAggregator()

	// 11/4 = 2.75 -> 2.8
	assert.Equal(t, 2.8, agg.ComputeStats(ratingsFromScores(2, 3, 3, 3)).Average)
	// 5/3 = 1.666.. -> 1.7
	assert.Equal(t, 1.7, agg.ComputeStats(ratingsFromScores(1, 2, 2)).Average)
	// 7/2 = 3.5 stays 3.5
	assert.Equal(t, 3.5, agg.ComputeStats(ratingsFromScores(3, 4)).Average)
	// 21/8 = 2.625 -> 2.6
	assert.Equal(t, 2.6, agg.ComputeStats(ratingsFromScores(1, 2, 2, 3, 3, 3, 3, 4)).Average)
}

func TestComputeStats_SkipsMalformedScores(t *testing.T) {
	stats := newTestAggregator().ComputeStats(ratingsFromScores(5, 0, 7, 4))

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 4.5, stats.Average)
	assert.Equal(t, 2, stats.Distribution[4]+stats.Distribution[5])
}

func TestComputeStats_RandomCollections(t *testing.T) {
	agg := newTestAggregator()
	rng := rand.New(rand.NewPCG(1, 2))

	for n := 0; n < 50; n++ {
		scores := make([]int, rng.IntN(40))
		for i := range scores {
			scores[i] = 1 + rng.IntN(5)
		}
		stats := agg.ComputeStats(ratingsFromScores(scores...))

		sum := 0
		for _, c := range stats.Distribution {
			sum += c
		}
		assert.Equal(t, len(scores), stats.Total)
		assert.Equal(t, stats.Total, sum)
		assert.Len(t, stats.Distribution, 5)
		if len(scores) > 0 {
			assert.GreaterOrEqual(t, stats.Average, 0.0)
			assert.LessOrEqual(t, stats.Average, 5.0)
		} else {
			assert.Zero(t, stats.Average)
		}
	}
}

// ---------------------------------------------------------------------------
// Sort
// ---------------------------------------------------------------------------

func TestSort_NewestAndOldest(t *testing.T) {
	agg := newTestAggregator()
	in := ratingsFromScores(3, 5, 1)

	assert.Equal(t, []string{"r-2", "r-1", "r-0"}, ids(agg.Sort(in, domain.RatingSortNewest)))
	assert.Equal(t, []string{"r-0", "r-1", "r-2"}, ids(agg.Sort(in, domain.RatingSortOldest)))
}

func TestSort_DefaultsToNewest(t *testing.T) {
	agg := newTestAggregator()
	in := ratingsFromScores(3, 5, 1)

	assert.Equal(t, []string{"r-2", "r-1", "r-0"}, ids(agg.Sort(in, "")))
	assert.Equal(t, []string{"r-2", "r-1", "r-0"}, ids(agg.Sort(in, "shuffle")))
}

func TestSort_HighestAndLowest_TieBreakNewest(t *testing.T) {
	agg := newTestAggregator()
	in := ratingsFromScores(4, 5, 4, 1)

	assert.Equal(t, []string{"r-1", "r-2", "r-0", "r-3"}, ids(agg.Sort(in, domain.RatingSortHighest)))
	assert.Equal(t, []string{"r-3", "r-2", "r-0", "r-1"}, ids(agg.Sort(in, domain.RatingSortLowest)))
}

func TestSort_StableOnEqualKeys(t *testing.T) {
	agg := newTestAggregator()
	in := ratingsFromScores(4, 4, 4)
	for i := range in {
		in[i].CreatedAt = baseTime
	}

	assert.Equal(t, []string{"r-0", "r-1", "r-2"}, ids(agg.Sort(in, domain.RatingSortHighest)))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	agg := newTestAggregator()
	in := ratingsFromScores(1, 2, 3)

	_ = agg.Sort(in, domain.RatingSortHighest)
	assert.Equal(t, []string{"r-0", "r-1", "r-2"}, ids(in))
}

// ---------------------------------------------------------------------------
// FilterByScore
// ---------------------------------------------------------------------------

func TestFilterByScore(t *testing.T) {
	agg := newTestAggregator()
	in := ratingsFromScores(5, 4, 5, 3)

	assert.Equal(t, []string{"r-0", "r-2"}, ids(agg.FilterByScore(in, 5)))
	assert.Empty(t, agg.FilterByScore(in, 2))
	assert.Equal(t, ids(in), ids(agg.FilterByScore(in, 0)))
}

func TestFilterByScore_Empty(t *testing.T) {
	out := newTestAggregator().FilterByScore(nil, 3)
	require.NotNil(t, out)
	assert.Empty(t, out)
}

// ---------------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------------

func validationMessages(t *testing.T, err error) []string {
	t.Helper()
	var verr *validator.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Messages()
}

func TestValidate_Valid(t *testing.T) {
	agg := newTestAggregator()

	assert.NoError(t, agg.Validate(domain.RatingInput{Rating: floatPtr(1)}))
	assert.NoError(t, agg.Validate(domain.RatingInput{Rating: floatPtr(5), Comment: strPtr(strings.Repeat("x", 500))}))
	assert.NoError(t, agg.Validate(domain.RatingInput{Rating: floatPtr(3), Comment: strPtr("")}))
}

func TestValidate_MissingRating(t *testing.T) {
	msgs := validationMessages(t, newTestAggregator().Validate(domain.RatingInput{}))
	assert.Equal(t, []string{"field 'rating' is required"}, msgs)
}

func TestValidate_OutOfRange(t *testing.T) {
	msgs := validationMessages(t, newTestAggregator().Validate(domain.RatingInput{Rating: floatPtr(6)}))
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "between 1 and 5")
}

func TestValidate_CommentTooLong(t *testing.T) {
	input := domain.RatingInput{Rating: floatPtr(3), Comment: strPtr(strings.Repeat("x", 501))}
	msgs := validationMessages(t, newTestAggregator().Validate(input))
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "length")
}

func TestValidate_CommentCountsCharactersNotBytes(t *testing.T) {
	input := domain.RatingInput{Rating: floatPtr(4), Comment: strPtr(strings.Repeat("ü", 500))}
	assert.NoError(t, newTestAggregator().Validate(input))
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	input := domain.RatingInput{Rating: floatPtr(7.5), Comment: strPtr(strings.Repeat("x", 600))}
	msgs := validationMessages(t, newTestAggregator().Validate(input))

	assert.Equal(t, []string{
		"field 'rating' must be a whole number",
		"field 'rating' must be between 1 and 5",
		"field 'comment' length must be at most 500 characters",
	}, msgs)
}

// ---------------------------------------------------------------------------
// Summarize
// ---------------------------------------------------------------------------

func TestSummarize_StatsCoverWholeCollection(t *testing.T) {
	agg := newTestAggregator()
	summary := agg.Summarize(ratingsFromScores(5, 5, 4, 3, 1), domain.RatingSortOldest, 5)

	assert.Equal(t, 5, summary.Stats.Total)
	assert.Equal(t, []string{"r-0", "r-1"}, ids(summary.Ratings))
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/marketplace-discovery/internal/domain"
	"github.com/utafrali/marketplace-discovery/internal/rating"
	apperrors "github.com/utafrali/marketplace-discovery/pkg/errors"
	"github.com/utafrali/marketplace-discovery/pkg/validator"
)

var ratingNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRatingService(repo *mockRatingRepository, pub *mockPublisher) *RatingService {
	svc := NewRatingService(repo, rating.NewAggregator(newTestLogger()), pub, newTestLogger())
	svc.now = func() time.Time { return ratingNow }
	return svc
}

func score(v float64) *float64 { return &v }

func text(s string) *string { return &s }

var productTarget = domain.TargetRef{Kind: domain.TargetProduct, ID: "p-1"}

// ---------------------------------------------------------------------------
// Submit
// ---------------------------------------------------------------------------

func TestSubmit_Success(t *testing.T) {
	repo := new(mockRatingRepository)
	pub := new(mockPublisher)
	svc := newTestRatingService(repo, pub)
	ctx := context.Background()

	var captured *domain.Rating
	repo.On("Upsert", ctx, mock.AnythingOfType("*domain.Rating")).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*domain.Rating) }).
		Return(&domain.Rating{ID: "r-1", Score: 4, Comment: "nice", UserID: "u-1", Target: productTarget, CreatedAt: ratingNow}, nil)
	pub.On("PublishRatingSubmitted", ctx, mock.AnythingOfType("*domain.Rating")).Return(nil)

	got, err := svc.Submit(ctx, "u-1", productTarget, domain.RatingInput{Rating: score(4), Comment: text("nice")})

	require.NoError(t, err)
	assert.Equal(t, "r-1", got.ID)
	require.NotNil(t, captured)
	assert.NotEmpty(t, captured.ID)
	assert.Equal(t, 4, captured.Score)
	assert.Equal(t, "nice", captured.Comment)
	assert.Equal(t, "u-1", captured.UserID)
	assert.Equal(t, productTarget, captured.Target)
	assert.Equal(t, ratingNow, captured.CreatedAt)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestSubmit_ReturnsStoredID(t *testing.T) {
	repo := new(mockRatingRepository)
	pub := new(mockPublisher)
	svc := newTestRatingService(repo, pub)
	ctx := context.Background()

	stored := &domain.Rating{ID: "existing", Score: 2, UserID: "u-1", Target: productTarget, CreatedAt: ratingNow}
	repo.On("Upsert", ctx, mock.AnythingOfType("*domain.Rating")).Return(stored, nil)
	pub.On("PublishRatingSubmitted", ctx, stored).Return(nil)

	got, err := svc.Submit(ctx, "u-1", productTarget, domain.RatingInput{Rating: score(2)})

	require.NoError(t, err)
	assert.Equal(t, "existing", got.ID)
	pub.AssertExpectations(t)
}

func TestSubmit_MissingUser(t *testing.T) {
	repo := new(mockRatingRepository)
	svc := newTestRatingService(repo, new(mockPublisher))

	_, err := svc.Submit(context.Background(), "", productTarget, domain.RatingInput{Rating: score(4)})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSubmit_InvalidTarget(t *testing.T) {
	tests := []struct {
		name   string
		target domain.TargetRef
	}{
		{"unknown kind", domain.TargetRef{Kind: "seller", ID: "x"}},
		{"empty kind", domain.TargetRef{ID: "x"}},
		{"empty id", domain.TargetRef{Kind: domain.TargetShop}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestRatingService(new(mockRatingRepository), new(mockPublisher))

			_, err := svc.Submit(context.Background(), "u-1", tt.target, domain.RatingInput{Rating: score(4)})

			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}

func TestSubmit_ValidationError(t *testing.T) {
	repo := new(mockRatingRepository)
	svc := newTestRatingService(repo, new(mockPublisher))

	_, err := svc.Submit(context.Background(), "u-1", productTarget,
		domain.RatingInput{Rating: score(7.5), Comment: text(strings.Repeat("a", 501))})

	var verr *validator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Violations, 3)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSubmit_RepositoryError(t *testing.T) {
	repo := new(mockRatingRepository)
	pub := new(mockPublisher)
	svc := newTestRatingService(repo, pub)
	ctx := context.Background()

	repo.On("Upsert", ctx, mock.Anything).Return(nil, errors.New("db down"))

	_, err := svc.Submit(ctx, "u-1", productTarget, domain.RatingInput{Rating: score(3)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "submit rating")
	pub.AssertNotCalled(t, "PublishRatingSubmitted", mock.Anything, mock.Anything)
}

func TestSubmit_PublishErrorIsNotFatal(t *testing.T) {
	repo := new(mockRatingRepository)
	pub := new(mockPublisher)
	svc := newTestRatingService(repo, pub)
	ctx := context.Background()

	stored := &domain.Rating{ID: "r-1", Score: 5, UserID: "u-1", Target: productTarget}
	repo.On("Upsert", ctx, mock.Anything).Return(stored, nil)
	pub.On("PublishRatingSubmitted", ctx, stored).Return(errors.New("broker down"))

	got, err := svc.Submit(ctx, "u-1", productTarget, domain.RatingInput{Rating: score(5)})

	require.NoError(t, err)
	assert.Equal(t, "r-1", got.ID)
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestList_Summary(t *testing.T) {
	repo := new(mockRatingRepository)
	svc := newTestRatingService(repo, new(mockPublisher))
	ctx := context.Background()

	ratings := []domain.Rating{
		{ID: "a", Score: 5, CreatedAt: ratingNow.Add(-3 * time.Hour)},
		{ID: "b", Score: 4, CreatedAt: ratingNow.Add(-2 * time.Hour)},
		{ID: "c", Score: 5, CreatedAt: ratingNow.Add(-1 * time.Hour)},
	}
	repo.On("ListByTarget", ctx, productTarget).Return(ratings, nil)

	summary, err := svc.List(ctx, productTarget, domain.RatingSortNewest, 5)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Stats.Total)
	assert.Equal(t, 4.7, summary.Stats.Average)
	require.Len(t, summary.Ratings, 2)
	assert.Equal(t, "c", summary.Ratings[0].ID)
	assert.Equal(t, "a", summary.Ratings[1].ID)
}

func TestList_InvalidArguments(t *testing.T) {
	tests := []struct {
		name   string
		target domain.TargetRef
		mode   domain.RatingSortMode
		score  int
	}{
		{"bad target", domain.TargetRef{Kind: "x", ID: "1"}, "", 0},
		{"bad mode", productTarget, "best", 0},
		{"negative score", productTarget, "", -1},
		{"score too high", productTarget, "", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRatingRepository)
			svc := newTestRatingService(repo, new(mockPublisher))

			_, err := svc.List(context.Background(), tt.target, tt.mode, tt.score)

			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
			repo.AssertNotCalled(t, "ListByTarget", mock.Anything, mock.Anything)
		})
	}
}

func TestList_RepositoryError(t *testing.T) {
	repo := new(mockRatingRepository)
	svc := newTestRatingService(repo, new(mockPublisher))
	ctx := context.Background()

	repo.On("ListByTarget", ctx, productTarget).Return(nil, errors.New("timeout"))

	_, err := svc.List(ctx, productTarget, "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list ratings")
}

// ---------------------------------------------------------------------------
// Mine
// ---------------------------------------------------------------------------

func TestMine(t *testing.T) {
	repo := new(mockRatingRepository)
	svc := newTestRatingService(repo, new(mockPublisher))
	ctx := context.Background()

	repo.On("GetByUserAndTarget", ctx, "u-1", productTarget).
		Return(&domain.Rating{ID: "r-1", Score: 3}, nil)

	got, err := svc.Mine(ctx, "u-1", productTarget)
	require.NoError(t, err)
	assert.Equal(t, "r-1", got.ID)

	_, err = svc.Mine(ctx, "", productTarget)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

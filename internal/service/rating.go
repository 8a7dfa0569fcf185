package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/marketplace-discovery/internal/domain"
	"github.com/utafrali/marketplace-discovery/internal/event"
	"github.com/utafrali/marketplace-discovery/internal/rating"
	"github.com/utafrali/marketplace-discovery/internal/repository"
	apperrors "github.com/utafrali/marketplace-discovery/pkg/errors"
	"github.com/utafrali/marketplace-discovery/pkg/logger"
)

// RatingService implements rating submission and listing.
type RatingService struct {
	repo       repository.RatingRepository
	aggregator *rating.Aggregator
	events     event.Publisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewRatingService creates a new rating service.
func NewRatingService(repo repository.RatingRepository, aggregator *rating.Aggregator, events event.Publisher, logger *slog.Logger) *RatingService {
	return &RatingService{
		repo:       repo,
		aggregator: aggregator,
		events:     events,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func validateTarget(target domain.TargetRef) error {
	if !target.Kind.IsValid() {
		return apperrors.InvalidInput(fmt.Sprintf("unknown rating target kind %q", target.Kind))
	}
	if target.ID == "" {
		return apperrors.InvalidInput("target id is required")
	}
	return nil
}

// Submit validates input and stores it as userID's rating for target. A
// second submission by the same user for the same target replaces the first.
// Validation failures are returned as *validator.ValidationError.
func (s *RatingService) Submit(ctx context.Context, userID string, target domain.TargetRef, input domain.RatingInput) (*domain.Rating, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("user id is required")
	}
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	if err := s.aggregator.Validate(input); err != nil {
		ratingSubmissionsTotal.WithLabelValues(string(target.Kind), "invalid").Inc()
		return nil, err
	}

	r := &domain.Rating{
		ID:        uuid.NewString(),
		Score:     int(*input.Rating),
		UserID:    userID,
		Target:    target,
		CreatedAt: s.now(),
	}
	if input.Comment != nil {
		r.Comment = *input.Comment
	}

	stored, err := s.repo.Upsert(ctx, r)
	if err != nil {
		ratingSubmissionsTotal.WithLabelValues(string(target.Kind), "error").Inc()
		return nil, fmt.Errorf("submit rating: %w", err)
	}
	ratingSubmissionsTotal.WithLabelValues(string(target.Kind), "stored").Inc()

	log := logger.WithContext(ctx, s.logger)
	log.Info("rating stored",
		slog.String("rating_id", stored.ID),
		slog.String("target_kind", string(target.Kind)),
		slog.String("target_id", target.ID),
		slog.Int("rating", stored.Score),
	)

	if err := s.events.PublishRatingSubmitted(ctx, stored); err != nil {
		log.Warn("publish rating submitted failed",
			slog.String("rating_id", stored.ID),
			slog.String("error", err.Error()),
		)
	}

	return stored, nil
}

// List returns the rating summary for target: statistics over every rating
// and the list filtered to score (0 for all) and ordered by mode.
func (s *RatingService) List(ctx context.Context, target domain.TargetRef, mode domain.RatingSortMode, score int) (*rating.Summary, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	if !domain.IsValidRatingSortMode(string(mode)) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown sort mode %q", mode))
	}
	if score < 0 || score > domain.MaxScore {
		return nil, apperrors.InvalidInput("score filter must be between 0 and 5")
	}

	ratings, err := s.repo.ListByTarget(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	summary := s.aggregator.Summarize(ratings, mode, score)
	return &summary, nil
}

// Mine returns userID's rating for target.
func (s *RatingService) Mine(ctx context.Context, userID string, target domain.TargetRef) (*domain.Rating, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("user id is required")
	}
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	return s.repo.GetByUserAndTarget(ctx, userID, target)
}

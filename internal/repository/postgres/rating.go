package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/marketplace-discovery/internal/domain"
	"github.com/utafrali/marketplace-discovery/pkg/database"
	apperrors "github.com/utafrali/marketplace-discovery/pkg/errors"
)

const ratingColumns = `id, user_id, target_kind, target_id, score, comment, created_at`

// RatingRepository implements repository.RatingRepository using PostgreSQL.
type RatingRepository struct {
	pool   database.DBTX
	tracer database.QueryTracer
}

// NewRatingRepository creates a new PostgreSQL-backed rating repository.
func NewRatingRepository(pool database.DBTX, tracer database.QueryTracer) *RatingRepository {
	return &RatingRepository{pool: pool, tracer: tracer}
}

// Upsert inserts r, or replaces the score, comment and creation time of the
// user's existing rating for the same target. The returned rating carries the
// id actually stored.
func (r *RatingRepository) Upsert(ctx context.Context, rating *domain.Rating) (_ *domain.Rating, err error) {
	query := `
		INSERT INTO ratings (` + ratingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, target_kind, target_id) DO UPDATE
		SET score = EXCLUDED.score,
		    comment = EXCLUDED.comment,
		    created_at = EXCLUDED.created_at
		RETURNING id`

	ctx, end := r.tracer.Start(ctx, "UpsertRating", query)
	defer func() { end(err) }()

	var id string
	err = r.pool.QueryRow(ctx, query,
		rating.ID,
		rating.UserID,
		string(rating.Target.Kind),
		rating.Target.ID,
		rating.Score,
		rating.Comment,
		rating.CreatedAt,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("upsert rating: %w", err)
	}

	stored := *rating
	stored.ID = id
	return &stored, nil
}

// ListByTarget returns every rating for target, newest first.
func (r *RatingRepository) ListByTarget(ctx context.Context, target domain.TargetRef) (_ []domain.Rating, err error) {
	query := `
		SELECT ` + ratingColumns + `
		FROM ratings
		WHERE target_kind = $1 AND target_id = $2
		ORDER BY created_at DESC`

	ctx, end := r.tracer.Start(ctx, "ListRatingsByTarget", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, string(target.Kind), target.ID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	ratings := []domain.Rating{}
	for rows.Next() {
		rt, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, *rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating rows: %w", err)
	}

	return ratings, nil
}

// GetByUserAndTarget returns the user's rating for target.
func (r *RatingRepository) GetByUserAndTarget(ctx context.Context, userID string, target domain.TargetRef) (_ *domain.Rating, err error) {
	query := `
		SELECT ` + ratingColumns + `
		FROM ratings
		WHERE user_id = $1 AND target_kind = $2 AND target_id = $3`

	ctx, end := r.tracer.Start(ctx, "GetRatingByUserAndTarget", query)
	defer func() { end(err) }()

	rt, err := scanRating(r.pool.QueryRow(ctx, query, userID, string(target.Kind), target.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("rating", userID+"/"+string(target.Kind)+"/"+target.ID)
		}
		return nil, err
	}
	return rt, nil
}

func scanRating(row pgx.Row) (*domain.Rating, error) {
	var (
		rt   domain.Rating
		kind string
	)
	if err := row.Scan(
		&rt.ID,
		&rt.UserID,
		&kind,
		&rt.Target.ID,
		&rt.Score,
		&rt.Comment,
		&rt.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan rating: %w", err)
	}
	rt.Target.Kind = domain.TargetKind(kind)
	return &rt, nil
}

package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/marketplace-discovery/internal/domain"
	"github.com/utafrali/marketplace-discovery/internal/service"
	apperrors "github.com/utafrali/marketplace-discovery/pkg/errors"
	"github.com/utafrali/marketplace-discovery/pkg/httputil"
	"github.com/utafrali/marketplace-discovery/pkg/middleware"
	"github.com/utafrali/marketplace-discovery/pkg/validator"
)

// maxRatingBody bounds a rating submission body.
const maxRatingBody = 16 << 10

// RatingHandler serves rating listing and submission endpoints.
type RatingHandler struct {
	service *service.RatingService
	logger  *slog.Logger
}

// NewRatingHandler creates a new rating HTTP handler.
func NewRatingHandler(svc *service.RatingService, logger *slog.Logger) *RatingHandler {
	return &RatingHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

type listRatingsQuery struct {
	Sort  string `json:"sort" validate:"omitempty,oneof=newest oldest highest lowest"`
	Score int    `json:"score" validate:"gte=0,lte=5"`
}

// SubmitRatingRequest is the JSON body of a rating submission. The score is
// decoded as a number so that fractional values reach validation.
type SubmitRatingRequest struct {
	Rating  *float64 `json:"rating"`
	Comment *string  `json:"comment,omitempty"`
}

func target(r *http.Request) domain.TargetRef {
	return domain.TargetRef{
		Kind: domain.TargetKind(chi.URLParam(r, "kind")),
		ID:   chi.URLParam(r, "targetId"),
	}
}

// --- Handlers ---

// ListRatings handles GET /api/v1/ratings/{kind}/{targetId}
func (h *RatingHandler) ListRatings(w http.ResponseWriter, r *http.Request) {
	score, err := httputil.QueryInt(r, "score", 0)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	req := listRatingsQuery{Sort: r.URL.Query().Get("sort"), Score: score}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	summary, err := h.service.List(r.Context(), target(r), domain.RatingSortMode(req.Sort), req.Score)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, summary)
}

// SubmitRating handles PUT /api/v1/ratings/{kind}/{targetId}. A repeated
// submission by the same user replaces the earlier rating.
func (h *RatingHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	var req SubmitRatingRequest
	if err := validator.DecodeAndValidate(w, r, &req, maxRatingBody); err != nil {
		httputil.WriteError(w, r, decodeError(err), h.logger)
		return
	}

	stored, err := h.service.Submit(r.Context(), middleware.UserIDFromContext(r.Context()), target(r),
		domain.RatingInput{Rating: req.Rating, Comment: req.Comment})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, stored)
}

// GetMyRating handles GET /api/v1/ratings/{kind}/{targetId}/mine
func (h *RatingHandler) GetMyRating(w http.ResponseWriter, r *http.Request) {
	mine, err := h.service.Mine(r.Context(), middleware.UserIDFromContext(r.Context()), target(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, mine)
}

func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	var verr *validator.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr
	case errors.As(err, &tooLarge):
		return apperrors.InvalidInput("request body too large")
	case errors.Is(err, io.EOF):
		return apperrors.InvalidInput("request body is required")
	default:
		verr = &validator.ValidationError{}
		verr.Add("body", "json", "must be a valid rating object: "+err.Error())
		return verr
	}
}

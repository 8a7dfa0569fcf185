package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/marketplace-discovery/internal/domain"
	"github.com/utafrali/marketplace-discovery/internal/service"
	"github.com/utafrali/marketplace-discovery/pkg/httputil"
	"github.com/utafrali/marketplace-discovery/pkg/middleware"
	"github.com/utafrali/marketplace-discovery/pkg/pagination"
	"github.com/utafrali/marketplace-discovery/pkg/validator"
)

// DiscoveryHandler serves product listing, product detail and profile endpoints.
type DiscoveryHandler struct {
	service *service.DiscoveryService
	logger  *slog.Logger
}

// NewDiscoveryHandler creates a new discovery HTTP handler.
func NewDiscoveryHandler(svc *service.DiscoveryService, logger *slog.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

type listProductsQuery struct {
	Query     string  `json:"q" validate:"max=200"`
	Category  string  `json:"category" validate:"max=100"`
	MinRating float64 `json:"min_rating" validate:"gte=0,lte=5"`
	SortBy    string  `json:"sort" validate:"omitempty,oneof=recommended newest name rating"`
}

// --- Handlers ---

// ListProducts handles GET /api/v1/discovery/products
func (h *DiscoveryHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minRating, err := httputil.QueryFloat(r, "min_rating", 0)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	req := listProductsQuery{
		Query:     q.Get("q"),
		Category:  strings.TrimSpace(q.Get("category")),
		MinRating: minRating,
		SortBy:    q.Get("sort"),
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page, err := pagination.FromRequest(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	criteria := domain.Criteria{
		Query:     req.Query,
		Category:  req.Category,
		MinRating: req.MinRating,
		SortBy:    domain.SortKey(req.SortBy),
	}
	result, err := h.service.Browse(r.Context(), middleware.SessionIDFromContext(r.Context()), criteria,
		service.Page{Page: page.Page, PerPage: page.PerPage})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, result)
}

// GetProduct handles GET /api/v1/discovery/products/{id}
func (h *DiscoveryHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ViewProduct(r.Context(), middleware.SessionIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, view)
}

// GetProfile handles GET /api/v1/discovery/profile
func (h *DiscoveryHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Profile(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, profile)
}

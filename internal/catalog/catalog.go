package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/marketplace-discovery/internal/domain"
	apperrors "github.com/utafrali/marketplace-discovery/pkg/errors"
	"github.com/utafrali/marketplace-discovery/pkg/httpclient"
	"github.com/utafrali/marketplace-discovery/pkg/logger"
	"github.com/utafrali/marketplace-discovery/pkg/tracing"
)

const (
	serviceName = "catalog"
	tracerName  = "github.com/utafrali/marketplace-discovery/internal/catalog"
)

// Query holds the optional server-side filters forwarded to the product API.
type Query struct {
	Search   string
	Category string
	SortBy   domain.SortKey
	Page     int
	PerPage  int
}

// Fetcher retrieves product snapshots from the product API.
type Fetcher interface {
	ListProducts(ctx context.Context, q Query) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// Getter performs GET requests. Satisfied by *httpclient.CircuitBreakerClient.
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// Client implements Fetcher over the product API's HTTP interface.
type Client struct {
	http    Getter
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a catalog client for the API at baseURL.
func NewClient(getter Getter, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http:    getter,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

type listResponse struct {
	Data []json.RawMessage `json:"data"`
}

type getResponse struct {
	Data *domain.Product `json:"data"`
}

// ListProducts fetches one page of products. Items that cannot be decoded are
// logged and skipped so a single bad record does not fail the page.
func (c *Client) ListProducts(ctx context.Context, q Query) ([]domain.Product, error) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "catalog.ListProducts",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Bool("catalog.search", strings.TrimSpace(q.Search) != ""),
			attribute.String("catalog.category", q.Category),
			attribute.Int("catalog.page", q.Page),
		),
	)
	defer span.End()

	products, err := c.listProducts(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("catalog.results", len(products)))
	return products, nil
}

// GetProduct fetches a single product by id. A missing product yields an
// error wrapping apperrors.ErrNotFound.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "catalog.GetProduct",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("catalog.product_id", id)),
	)
	defer span.End()

	product, err := c.getProduct(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return product, nil
}

func (c *Client) getProduct(ctx context.Context, id string) (*domain.Product, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/api/v1/products/"+url.PathEscape(id))
	if err != nil {
		return nil, apperrors.Unavailable(serviceName, fmt.Errorf("get product: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var body getResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	if body.Data == nil || body.Data.ID == "" {
		return nil, apperrors.NotFound("product", id)
	}
	return body.Data, nil
}

func (c *Client) listProducts(ctx context.Context, q Query) ([]domain.Product, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/api/v1/products?"+q.values().Encode())
	if err != nil {
		return nil, apperrors.Unavailable(serviceName, fmt.Errorf("list products: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode product list: %w", err)
	}

	log := logger.WithContext(ctx, c.logger)
	products := make([]domain.Product, 0, len(body.Data))
	for i, raw := range body.Data {
		var p domain.Product
		if err := json.Unmarshal(raw, &p); err != nil {
			log.Warn("malformed product skipped",
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (q Query) values() url.Values {
	v := url.Values{}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.SortBy != "" {
		v.Set("sort_by", string(q.SortBy))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

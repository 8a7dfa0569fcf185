package event

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/marketplace-discovery/internal/domain"
	pkgkafka "github.com/utafrali/marketplace-discovery/pkg/kafka"
	"github.com/utafrali/marketplace-discovery/pkg/logger"
)

// Topics written by this service.
var (
	TopicProductViewed   = pkgkafka.Topic("product", "viewed")
	TopicRatingSubmitted = pkgkafka.Topic("rating", "submitted")
)

// SourceDiscoveryService identifies events emitted by this service.
const SourceDiscoveryService = "discovery-service"

// MetadataTraceID is the metadata key carrying the publishing request's trace id.
const MetadataTraceID = "trace_id"

// ProductViewedData is the payload of a product.viewed event.
type ProductViewedData struct {
	ProductID   string `json:"product_id"`
	SessionID   string `json:"session_id,omitempty"`
	Category    string `json:"category,omitempty"`
	ViewedCount int    `json:"viewed_count"`
}

// RatingSubmittedData is the payload of a rating.submitted event.
type RatingSubmittedData struct {
	RatingID   string `json:"rating_id"`
	UserID     string `json:"user_id"`
	TargetKind string `json:"target_kind"`
	TargetID   string `json:"target_id"`
	Rating     int    `json:"rating"`
}

// Publisher emits discovery domain events.
type Publisher interface {
	PublishProductViewed(ctx context.Context, data ProductViewedData) error
	PublishRatingSubmitted(ctx context.Context, r *domain.Rating) error
}

// KafkaPublisher is the minimal kafka producer surface the Producer needs.
type KafkaPublisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes discovery events to Kafka.
type Producer struct {
	kafka  KafkaPublisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka KafkaPublisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishProductViewed publishes a product.viewed event.
func (p *Producer) PublishProductViewed(ctx context.Context, data ProductViewedData) error {
	return p.publish(ctx, TopicProductViewed, "product.viewed", data.ProductID, "product", data)
}

// PublishRatingSubmitted publishes a rating.submitted event.
func (p *Producer) PublishRatingSubmitted(ctx context.Context, r *domain.Rating) error {
	data := RatingSubmittedData{
		RatingID:   r.ID,
		UserID:     r.UserID,
		TargetKind: string(r.Target.Kind),
		TargetID:   r.Target.ID,
		Rating:     r.Score,
	}
	return p.publish(ctx, TopicRatingSubmitted, "rating.submitted", r.Target.ID, string(r.Target.Kind), data)
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(eventType, aggregateID, aggregateType, SourceDiscoveryService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		event.WithMetadata(MetadataTraceID, sc.TraceID().String())
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("event_type", eventType),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// NopPublisher discards every event. Used when events are disabled.
type NopPublisher struct{}

// PublishProductViewed implements Publisher.
func (NopPublisher) PublishProductViewed(context.Context, ProductViewedData) error { return nil }

// PublishRatingSubmitted implements Publisher.
func (NopPublisher) PublishRatingSubmitted(context.Context, *domain.Rating) error { return nil }

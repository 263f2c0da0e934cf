package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aviral-m/Backend-Project/internal/domain"
	pkgkafka "github.com/aviral-m/Backend-Project/pkg/kafka"
)

// Kafka topic constants for domain events.
const (
	TopicUserRegistered = "videohost.user.registered"
	TopicUserUpdated    = "videohost.user.updated"
	TopicVideoPublished = "videohost.video.published"
	TopicVideoDeleted   = "videohost.video.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeUser  = "user"
	AggregateTypeVideo = "video"
)

// Source identifier for events originating from this service.
const Source = "videohost"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// UserUpdatedData is the payload for a user.updated event.
type UserUpdatedData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// VideoPublishedData is the payload for a video.published event.
type VideoPublishedData struct {
	ID              string  `json:"id"`
	OwnerID         string  `json:"owner_id"`
	Title           string  `json:"title"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// VideoDeletedData is the payload for a video.deleted event.
type VideoDeletedData struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
}

// Publisher is the subset of the Kafka producer used by the event layer.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
	}

	return p.publish(ctx, TopicUserRegistered, user.ID.String(), AggregateTypeUser, data)
}

// PublishUserUpdated publishes a user.updated event.
func (p *Producer) PublishUserUpdated(ctx context.Context, user *domain.User) error {
	data := UserUpdatedData{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
	}

	return p.publish(ctx, TopicUserUpdated, user.ID.String(), AggregateTypeUser, data)
}

// PublishVideoPublished publishes a video.published event.
func (p *Producer) PublishVideoPublished(ctx context.Context, video *domain.Video) error {
	data := VideoPublishedData{
		ID:              video.ID.String(),
		OwnerID:         video.OwnerID.String(),
		Title:           video.Title,
		DurationSeconds: video.DurationSeconds,
	}

	return p.publish(ctx, TopicVideoPublished, video.ID.String(), AggregateTypeVideo, data)
}

// PublishVideoDeleted publishes a video.deleted event.
func (p *Producer) PublishVideoDeleted(ctx context.Context, video *domain.Video) error {
	data := VideoDeletedData{
		ID:      video.ID.String(),
		OwnerID: video.OwnerID.String(),
	}

	return p.publish(ctx, TopicVideoDeleted, video.ID.String(), AggregateTypeVideo, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}

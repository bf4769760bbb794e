package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/kafka"
)

// Event types.
const (
	CouponCreated  = "coupon.created"
	CouponUpdated  = "coupon.updated"
	CouponDeleted  = "coupon.deleted"
	UserRegistered = "user.registered"
)

// Topic names, before the configured prefix.
const (
	TopicCouponEvents = "coupon.events"
	TopicUserEvents   = "user.events"
)

const source = "service-coupon"

// CouponEvent describes a committed coupon change.
type CouponEvent struct {
	CouponID   int       `json:"coupon_id"`
	Name       string    `json:"name"`
	Percent    int       `json:"percent"`
	IsActive   bool      `json:"is_active"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserRegisteredEvent describes a completed registration.
type UserRegisteredEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits lifecycle notifications. Callers treat failures as non-fatal.
type Publisher interface {
	PublishCouponEvent(ctx context.Context, eventType string, event CouponEvent) error
	PublishUserRegistered(ctx context.Context, event UserRegisteredEvent) error
}

// EventWriter is the subset of kafka.Producer the publisher needs.
type EventWriter interface {
	PublishEvent(ctx context.Context, topic string, ce kafka.CloudEvent) error
}

// KafkaPublisher publishes events as CloudEvents.
type KafkaPublisher struct {
	writer      EventWriter
	topicPrefix string
	logger      *zap.Logger
}

// NewKafkaPublisher creates a new KafkaPublisher.
func NewKafkaPublisher(writer EventWriter, topicPrefix string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topicPrefix: topicPrefix, logger: logger}
}

// PublishCouponEvent publishes a coupon event keyed by coupon id.
func (p *KafkaPublisher) PublishCouponEvent(ctx context.Context, eventType string, event CouponEvent) error {
	return p.publish(ctx, TopicCouponEvents, eventType, strconv.Itoa(event.CouponID), event)
}

// PublishUserRegistered publishes a registration keyed by user id.
func (p *KafkaPublisher) PublishUserRegistered(ctx context.Context, event UserRegisteredEvent) error {
	return p.publish(ctx, TopicUserEvents, UserRegistered, event.UserID.String(), event)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, eventType, subject string, data interface{}) error {
	ce, err := kafka.NewCloudEvent(source, eventType, data)
	if err != nil {
		return fmt.Errorf("build %s event: %w", eventType, err)
	}
	ce.Subject = subject

	if err := p.writer.PublishEvent(ctx, p.topicPrefix+topic, ce); err != nil {
		return err
	}
	p.logger.Debug("lifecycle event published", zap.String("type", eventType), zap.String("subject", subject))
	return nil
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishCouponEvent(context.Context, string, CouponEvent) error { return nil }

func (NoopPublisher) PublishUserRegistered(context.Context, UserRegisteredEvent) error { return nil }

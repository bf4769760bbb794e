package mocks

import (
	"context"
	"sync"

	"github.com/Kilat-Pet-Delivery/service-coupon/internal/events"
)

// PublishedCouponEvent is a coupon event captured by RecordingPublisher.
type PublishedCouponEvent struct {
	Type  string
	Event events.CouponEvent
}

// RecordingPublisher captures published events. Err makes every publish fail.
type RecordingPublisher struct {
	mu         sync.Mutex
	coupons    []PublishedCouponEvent
	registered []events.UserRegisteredEvent

	Err error
}

func (p *RecordingPublisher) PublishCouponEvent(ctx context.Context, eventType string, event events.CouponEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.coupons = append(p.coupons, PublishedCouponEvent{Type: eventType, Event: event})
	return nil
}

func (p *RecordingPublisher) PublishUserRegistered(ctx context.Context, event events.UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.registered = append(p.registered, event)
	return nil
}

// CouponEvents returns the captured coupon events in publish order.
func (p *RecordingPublisher) CouponEvents() []PublishedCouponEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedCouponEvent(nil), p.coupons...)
}

// Registrations returns the captured registration events.
func (p *RecordingPublisher) Registrations() []events.UserRegisteredEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.UserRegisteredEvent(nil), p.registered...)
}

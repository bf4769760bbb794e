package coupon

import (
	"fmt"
	"strings"
	"time"
)

const (
	MinPercent    = 1
	MaxPercent    = 100
	MaxNameLength = 50
)

// Coupon is the aggregate root for percentage discount coupons.
type Coupon struct {
	id          int
	name        string
	percent     int
	isActive    bool
	createdAt   time.Time
	lastUpdated time.Time
}

// NewCoupon creates an unsaved coupon stamped with now. The id is assigned on insert.
func NewCoupon(name string, percent int, isActive bool, now time.Time) (*Coupon, error) {
	if err := checkAttributes(name, percent); err != nil {
		return nil, err
	}
	now = now.UTC()
	return &Coupon{
		name:        name,
		percent:     percent,
		isActive:    isActive,
		createdAt:   now,
		lastUpdated: now,
	}, nil
}

// Reconstruct rebuilds a Coupon from persistence.
func Reconstruct(id int, name string, percent int, isActive bool, createdAt, lastUpdated time.Time) *Coupon {
	return &Coupon{
		id: id, name: name, percent: percent, isActive: isActive,
		createdAt: createdAt, lastUpdated: lastUpdated,
	}
}

// Update replaces the mutable attributes. id and createdAt never change.
func (c *Coupon) Update(name string, percent int, isActive bool, now time.Time) error {
	if err := checkAttributes(name, percent); err != nil {
		return err
	}
	c.name = name
	c.percent = percent
	c.isActive = isActive
	c.lastUpdated = now.UTC()
	return nil
}

// AssignID records the store-generated identity. It only applies to unsaved coupons.
func (c *Coupon) AssignID(id int) {
	if c.id == 0 {
		c.id = id
	}
}

// SameName reports whether name refers to this coupon, ignoring case.
func (c *Coupon) SameName(name string) bool {
	return strings.EqualFold(c.name, name)
}

func checkAttributes(name string, percent int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("coupon name is required")
	}
	if len([]rune(name)) > MaxNameLength {
		return fmt.Errorf("coupon name cannot exceed %d characters", MaxNameLength)
	}
	if percent < MinPercent || percent > MaxPercent {
		return fmt.Errorf("percent must be between %d and %d", MinPercent, MaxPercent)
	}
	return nil
}

// Getters.
func (c *Coupon) ID() int                { return c.id }
func (c *Coupon) Name() string           { return c.name }
func (c *Coupon) Percent() int           { return c.percent }
func (c *Coupon) IsActive() bool         { return c.isActive }
func (c *Coupon) CreatedAt() time.Time   { return c.createdAt }
func (c *Coupon) LastUpdated() time.Time { return c.lastUpdated }

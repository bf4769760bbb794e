package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-coupon/internal/domain/coupon"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/events"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/domain"
)

// CreateCouponRequest is the payload for creating a coupon.
type CreateCouponRequest struct {
	Name     string `json:"name"`
	Percent  int    `json:"percent"`
	IsActive bool   `json:"is_active"`
}

// UpdateCouponRequest is the payload for replacing a coupon's attributes.
type UpdateCouponRequest struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Percent  int    `json:"percent"`
	IsActive bool   `json:"is_active"`
}

// CouponDTO is the transport shape of a coupon.
type CouponDTO struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Percent     int       `json:"percent"`
	IsActive    bool      `json:"is_active"`
	Created     time.Time `json:"created"`
	LastUpdated time.Time `json:"last_updated"`
}

// CouponService handles coupon CRUD with existence and uniqueness checks.
type CouponService struct {
	repo      coupon.CouponRepository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewCouponService creates a new CouponService. publisher and m may be nil.
func NewCouponService(repo coupon.CouponRepository, publisher events.Publisher, m *metrics.Metrics, logger *zap.Logger) *CouponService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &CouponService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// ListCoupons returns every coupon ordered by id.
func (s *CouponService) ListCoupons(ctx context.Context) ([]*CouponDTO, error) {
	coupons, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("failed to list coupons", zap.Error(err))
		return nil, domain.NewInternalError("An error occurred while retrieving coupons", err)
	}

	dtos := make([]*CouponDTO, len(coupons))
	for i, c := range coupons {
		dtos[i] = toCouponDTO(c)
	}
	return dtos, nil
}

// GetCoupon returns the coupon with the given id.
func (s *CouponService) GetCoupon(ctx context.Context, id int) (*CouponDTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, couponNotFound(id)
		}
		return nil, domain.NewInternalError("An error occurred while retrieving the coupon", err)
	}
	return toCouponDTO(c), nil
}

// GetCouponByName returns the coupon with the given name, ignoring case.
func (s *CouponService) GetCouponByName(ctx context.Context, name string) (*CouponDTO, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("Coupon name cannot be empty")
	}

	c, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("Coupon with name '%s' not found", name))
		}
		return nil, domain.NewInternalError("An error occurred while retrieving the coupon", err)
	}
	return toCouponDTO(c), nil
}

// CreateCoupon stores a new coupon stamped with the current time.
func (s *CouponService) CreateCoupon(ctx context.Context, req *CreateCouponRequest) (*CouponDTO, error) {
	dto, err := s.createCoupon(ctx, req)
	s.observe("create", err)
	return dto, err
}

func (s *CouponService) createCoupon(ctx context.Context, req *CreateCouponRequest) (*CouponDTO, error) {
	if req == nil {
		return nil, domain.NewValidationError("Coupon data cannot be null")
	}

	taken, err := s.nameTaken(ctx, req.Name, 0)
	if err != nil {
		return nil, domain.NewInternalError("An error occurred while creating the coupon", err)
	}
	if taken {
		return nil, duplicateName(req.Name)
	}

	c, err := coupon.NewCoupon(req.Name, req.Percent, req.IsActive, s.now())
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	uow, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, domain.NewInternalError("An error occurred while creating the coupon", err)
	}
	defer uow.Rollback()

	if err := uow.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, duplicateName(req.Name)
		}
		return nil, domain.NewInternalError("Failed to create coupon", err)
	}
	if err := uow.Commit(); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, duplicateName(req.Name)
		}
		return nil, domain.NewInternalError("Failed to save coupon to database", err)
	}

	s.logger.Info("coupon created", zap.Int("coupon_id", c.ID()), zap.String("name", c.Name()))
	s.publish(ctx, events.CouponCreated, c)
	return toCouponDTO(c), nil
}

// UpdateCoupon replaces the name, percent and active flag of an existing coupon.
func (s *CouponService) UpdateCoupon(ctx context.Context, req *UpdateCouponRequest) (*CouponDTO, error) {
	dto, err := s.updateCoupon(ctx, req)
	s.observe("update", err)
	return dto, err
}

func (s *CouponService) updateCoupon(ctx context.Context, req *UpdateCouponRequest) (*CouponDTO, error) {
	if req == nil {
		return nil, domain.NewValidationError("Coupon data cannot be null")
	}

	c, err := s.repo.FindByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, couponNotFound(req.ID)
		}
		return nil, domain.NewInternalError("An error occurred while updating the coupon", err)
	}

	taken, err := s.nameTaken(ctx, req.Name, req.ID)
	if err != nil {
		return nil, domain.NewInternalError("An error occurred while updating the coupon", err)
	}
	if taken {
		return nil, duplicateName(req.Name)
	}

	if err := c.Update(req.Name, req.Percent, req.IsActive, s.now()); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	uow, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, domain.NewInternalError("An error occurred while updating the coupon", err)
	}
	defer uow.Rollback()

	if err := uow.Update(ctx, c); err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			return nil, duplicateName(req.Name)
		case errors.Is(err, domain.ErrNotFound):
			return nil, couponNotFound(req.ID)
		}
		return nil, domain.NewInternalError("Failed to update coupon", err)
	}
	if err := uow.Commit(); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, duplicateName(req.Name)
		}
		return nil, domain.NewInternalError("Failed to save coupon changes to database", err)
	}

	s.logger.Info("coupon updated", zap.Int("coupon_id", c.ID()))
	s.publish(ctx, events.CouponUpdated, c)
	return toCouponDTO(c), nil
}

// DeleteCoupon removes the coupon with the given id.
func (s *CouponService) DeleteCoupon(ctx context.Context, id int) error {
	err := s.deleteCoupon(ctx, id)
	s.observe("delete", err)
	return err
}

func (s *CouponService) deleteCoupon(ctx context.Context, id int) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return couponNotFound(id)
		}
		return domain.NewInternalError("An error occurred while deleting the coupon", err)
	}

	uow, err := s.repo.Begin(ctx)
	if err != nil {
		return domain.NewInternalError("An error occurred while deleting the coupon", err)
	}
	defer uow.Rollback()

	if err := uow.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return couponNotFound(id)
		}
		return domain.NewInternalError("Failed to remove coupon", err)
	}
	if err := uow.Commit(); err != nil {
		return domain.NewInternalError("Failed to save changes to database", err)
	}

	s.logger.Info("coupon deleted", zap.Int("coupon_id", id))
	s.publish(ctx, events.CouponDeleted, c)
	return nil
}

// nameTaken reports whether a coupon other than exceptID already uses name.
func (s *CouponService) nameTaken(ctx context.Context, name string, exceptID int) (bool, error) {
	existing, err := s.repo.FindByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID() != exceptID, nil
}

func (s *CouponService) publish(ctx context.Context, eventType string, c *coupon.Coupon) {
	event := events.CouponEvent{
		CouponID:   c.ID(),
		Name:       c.Name(),
		Percent:    c.Percent(),
		IsActive:   c.IsActive(),
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishCouponEvent(ctx, eventType, event); err != nil {
		s.logger.Warn("failed to publish coupon event",
			zap.String("type", eventType),
			zap.Int("coupon_id", c.ID()),
			zap.Error(err),
		)
	}
}

func (s *CouponService) observe(operation string, err error) {
	s.metrics.ObserveCoupon(operation, outcome(err))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrInternal):
		return metrics.OutcomeError
	default:
		return metrics.OutcomeRejected
	}
}

func couponNotFound(id int) error {
	return domain.NewNotFoundError(fmt.Sprintf("Coupon with ID %d not found", id))
}

func duplicateName(name string) error {
	return domain.NewConflictError(fmt.Sprintf("Coupon with name '%s' already exists", name))
}

func toCouponDTO(c *coupon.Coupon) *CouponDTO {
	return &CouponDTO{
		ID:          c.ID(),
		Name:        c.Name(),
		Percent:     c.Percent(),
		IsActive:    c.IsActive(),
		Created:     c.CreatedAt(),
		LastUpdated: c.LastUpdated(),
	}
}

package coupon

import "context"

// CouponRepository reads coupons and opens units of work for writes.
// Lookups by name are case-insensitive. Missing rows are reported with
// an error matching domain.ErrNotFound.
type CouponRepository interface {
	FindAll(ctx context.Context) ([]*Coupon, error)
	FindByID(ctx context.Context, id int) (*Coupon, error)
	FindByName(ctx context.Context, name string) (*Coupon, error)

	// Begin starts a unit of work. Callers must Commit or Rollback it.
	Begin(ctx context.Context) (UnitOfWork, error)
}

// UnitOfWork stages coupon writes that become visible only on Commit.
// Duplicate names surface as errors matching domain.ErrConflict, either when
// staged or on Commit.
type UnitOfWork interface {
	// Create stages an insert and assigns the coupon's id.
	Create(ctx context.Context, c *Coupon) error
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id int) error
	Commit() error
	// Rollback discards staged writes. It is a no-op after Commit.
	Rollback() error
}

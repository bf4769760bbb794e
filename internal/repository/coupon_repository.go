package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kilat-Pet-Delivery/service-coupon/internal/domain/coupon"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/domain"
)

// CouponModel is the GORM model for the coupons table.
type CouponModel struct {
	ID          int       `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Percent     int       `gorm:"not null"`
	IsActive    bool      `gorm:"not null"`
	Created     time.Time `gorm:"column:created;not null"`
	LastUpdated time.Time `gorm:"column:last_updated;not null"`
}

// TableName sets the table name.
func (CouponModel) TableName() string { return "coupons" }

// GormCouponRepository implements coupon.CouponRepository using GORM.
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository.
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// FindAll returns every coupon ordered by id.
func (r *GormCouponRepository) FindAll(ctx context.Context) ([]*coupon.Coupon, error) {
	var models []CouponModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}

	coupons := make([]*coupon.Coupon, len(models))
	for i := range models {
		coupons[i] = toCouponDomain(&models[i])
	}
	return coupons, nil
}

// FindByID returns a coupon by id.
func (r *GormCouponRepository) FindByID(ctx context.Context, id int) (*coupon.Coupon, error) {
	var model CouponModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err, "coupon")
	}
	return toCouponDomain(&model), nil
}

// FindByName returns a coupon by name, ignoring case.
func (r *GormCouponRepository) FindByName(ctx context.Context, name string) (*coupon.Coupon, error) {
	var model CouponModel
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&model).Error; err != nil {
		return nil, translateError(err, "coupon")
	}
	return toCouponDomain(&model), nil
}

// Begin opens a database transaction wrapped as a unit of work.
func (r *GormCouponRepository) Begin(ctx context.Context) (coupon.UnitOfWork, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &gormCouponUnitOfWork{tx: tx}, nil
}

type gormCouponUnitOfWork struct {
	tx   *gorm.DB
	done bool
}

func (u *gormCouponUnitOfWork) Create(ctx context.Context, c *coupon.Coupon) error {
	model := toCouponModel(c)
	if err := u.tx.WithContext(ctx).Create(&model).Error; err != nil {
		return translateError(err, "coupon")
	}
	c.AssignID(model.ID)
	return nil
}

func (u *gormCouponUnitOfWork) Update(ctx context.Context, c *coupon.Coupon) error {
	result := u.tx.WithContext(ctx).
		Model(&CouponModel{}).
		Where("id = ?", c.ID()).
		Updates(map[string]interface{}{
			"name":         c.Name(),
			"percent":      c.Percent(),
			"is_active":    c.IsActive(),
			"last_updated": c.LastUpdated(),
		})
	if result.Error != nil {
		return translateError(result.Error, "coupon")
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("coupon not found")
	}
	return nil
}

func (u *gormCouponUnitOfWork) Delete(ctx context.Context, id int) error {
	result := u.tx.WithContext(ctx).Where("id = ?", id).Delete(&CouponModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("coupon not found")
	}
	return nil
}

func (u *gormCouponUnitOfWork) Commit() error {
	u.done = true
	return translateError(u.tx.Commit().Error, "coupon")
}

func (u *gormCouponUnitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	return u.tx.Rollback().Error
}

// SeedDefaultCoupons inserts the starter coupons, skipping names already present.
func SeedDefaultCoupons(ctx context.Context, db *gorm.DB) error {
	created := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	seeds := []CouponModel{
		{Name: "10OFF", Percent: 10, IsActive: true, Created: created, LastUpdated: created},
		{Name: "20OFF", Percent: 20, IsActive: true, Created: created, LastUpdated: created},
		{Name: "WELCOME15", Percent: 15, IsActive: true, Created: created, LastUpdated: created},
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seeds).Error
}

// AutoMigrate creates the schema from the GORM models. Used in development
// instead of the SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&CouponModel{}, &UserModel{}, &RoleModel{}, &UserRoleModel{}); err != nil {
		return err
	}
	return db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_coupons_name_lower ON coupons (LOWER(name))").Error
}

func translateError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NewNotFoundError(fmt.Sprintf("%s not found", entity))
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.NewConflictError(fmt.Sprintf("%s already exists", entity))
	default:
		return err
	}
}

func toCouponModel(c *coupon.Coupon) CouponModel {
	return CouponModel{
		ID:          c.ID(),
		Name:        c.Name(),
		Percent:     c.Percent(),
		IsActive:    c.IsActive(),
		Created:     c.CreatedAt(),
		LastUpdated: c.LastUpdated(),
	}
}

func toCouponDomain(m *CouponModel) *coupon.Coupon {
	return coupon.Reconstruct(m.ID, m.Name, m.Percent, m.IsActive, m.Created, m.LastUpdated)
}

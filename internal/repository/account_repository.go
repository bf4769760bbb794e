package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kilat-Pet-Delivery/service-coupon/internal/domain/account"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Name         string    `gorm:"type:varchar(100);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (UserModel) TableName() string { return "users" }

// RoleModel is the GORM model for the roles table.
type RoleModel struct {
	Name string `gorm:"type:varchar(20);primaryKey"`
}

// TableName sets the table name.
func (RoleModel) TableName() string { return "roles" }

// UserRoleModel links a user to a role.
type UserRoleModel struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Role       string    `gorm:"type:varchar(20);primaryKey"`
	AssignedAt time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (UserRoleModel) TableName() string { return "user_roles" }

// GormAccountRepository implements account.AccountStore using GORM.
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository.
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByUsername returns the account with exactly this username.
func (r *GormAccountRepository) FindByUsername(ctx context.Context, username string) (*account.Account, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&model).Error; err != nil {
		return nil, translateError(err, "account")
	}
	return toAccountDomain(&model), nil
}

// ExistsByUsername reports whether the username is taken.
func (r *GormAccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

// Create persists a new account.
func (r *GormAccountRepository) Create(ctx context.Context, a *account.Account) error {
	model := toUserModel(a)
	return translateError(r.db.WithContext(ctx).Create(&model).Error, "account")
}

// Delete removes an account and its role assignments.
func (r *GormAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&UserRoleModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&UserModel{}).Error
	})
}

// EnsureRole creates the role if it does not exist yet.
func (r *GormAccountRepository) EnsureRole(ctx context.Context, role account.Role) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&RoleModel{Name: string(role)}).Error
}

// AssignRole adds role to the account. Assigning a held role is a no-op.
func (r *GormAccountRepository) AssignRole(ctx context.Context, accountID uuid.UUID, role account.Role) error {
	model := UserRoleModel{UserID: accountID, Role: string(role), AssignedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model).Error
}

// RolesOf returns the account's roles in assignment order.
func (r *GormAccountRepository) RolesOf(ctx context.Context, accountID uuid.UUID) ([]account.Role, error) {
	var models []UserRoleModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", accountID).
		Order("assigned_at, role").
		Find(&models).Error; err != nil {
		return nil, err
	}

	roles := make([]account.Role, len(models))
	for i, m := range models {
		roles[i] = account.Role(m.Role)
	}
	return roles, nil
}

func toUserModel(a *account.Account) UserModel {
	return UserModel{
		ID:           a.ID(),
		Username:     a.Username(),
		Name:         a.Name(),
		PasswordHash: a.PasswordHash(),
		CreatedAt:    a.CreatedAt(),
		UpdatedAt:    a.UpdatedAt(),
	}
}

func toAccountDomain(m *UserModel) *account.Account {
	return account.Reconstruct(m.ID, m.Username, m.Name, m.PasswordHash, m.CreatedAt, m.UpdatedAt)
}

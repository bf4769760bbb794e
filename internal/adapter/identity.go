package adapter

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kilat-Pet-Delivery/service-coupon/internal/domain/account"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/domain"
)

// IdentityProvider is the boundary between the auth service and account storage.
// It owns password hashing, the password policy and role bookkeeping.
type IdentityProvider interface {
	// IsUniqueUser reports whether no account uses username. Blank names are never unique.
	IsUniqueUser(ctx context.Context, username string) (bool, error)

	// CreateUser applies the password policy, hashes the password and stores the account.
	CreateUser(ctx context.Context, username, name, password string) (*account.Account, error)

	FindUser(ctx context.Context, username string) (*account.Account, error)
	VerifyPassword(a *account.Account, password string) bool

	// EnsureRoles creates every known role that is missing.
	EnsureRoles(ctx context.Context) error
	AddToRole(ctx context.Context, accountID uuid.UUID, role account.Role) error
	GetRoles(ctx context.Context, accountID uuid.UUID) ([]account.Role, error)

	DeleteUser(ctx context.Context, accountID uuid.UUID) error
}

// BcryptHasher hashes passwords with bcrypt at a configurable cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher. Non-positive cost falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// LocalIdentityProvider implements IdentityProvider on top of an account.AccountStore.
type LocalIdentityProvider struct {
	store  account.AccountStore
	hasher *BcryptHasher
	logger *zap.Logger
}

// NewLocalIdentityProvider creates a new LocalIdentityProvider.
func NewLocalIdentityProvider(store account.AccountStore, hasher *BcryptHasher, logger *zap.Logger) *LocalIdentityProvider {
	return &LocalIdentityProvider{store: store, hasher: hasher, logger: logger}
}

func (p *LocalIdentityProvider) IsUniqueUser(ctx context.Context, username string) (bool, error) {
	if strings.TrimSpace(username) == "" {
		return false, nil
	}
	exists, err := p.store.ExistsByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (p *LocalIdentityProvider) CreateUser(ctx context.Context, username, name, password string) (*account.Account, error) {
	if violations := account.CheckPassword(password); len(violations) > 0 {
		return nil, domain.NewValidationError("password does not meet requirements", violations...)
	}

	hash, err := p.hasher.Hash(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, domain.NewValidationError("Passwords must not exceed 72 bytes.")
	}
	if err != nil {
		return nil, err
	}

	a := account.NewAccount(username, name, hash)
	if err := p.store.Create(ctx, a); err != nil {
		return nil, err
	}

	p.logger.Info("identity created", zap.String("account_id", a.ID().String()))
	return a, nil
}

func (p *LocalIdentityProvider) FindUser(ctx context.Context, username string) (*account.Account, error) {
	return p.store.FindByUsername(ctx, username)
}

func (p *LocalIdentityProvider) VerifyPassword(a *account.Account, password string) bool {
	return p.hasher.Compare(a.PasswordHash(), password) == nil
}

func (p *LocalIdentityProvider) EnsureRoles(ctx context.Context) error {
	for _, role := range account.Roles() {
		if err := p.store.EnsureRole(ctx, role); err != nil {
			return err
		}
	}
	return nil
}

func (p *LocalIdentityProvider) AddToRole(ctx context.Context, accountID uuid.UUID, role account.Role) error {
	return p.store.AssignRole(ctx, accountID, role)
}

func (p *LocalIdentityProvider) GetRoles(ctx context.Context, accountID uuid.UUID) ([]account.Role, error) {
	return p.store.RolesOf(ctx, accountID)
}

func (p *LocalIdentityProvider) DeleteUser(ctx context.Context, accountID uuid.UUID) error {
	if err := p.store.Delete(ctx, accountID); err != nil {
		return err
	}
	p.logger.Warn("identity deleted", zap.String("account_id", accountID.String()))
	return nil
}

package account

import (
	"context"

	"github.com/google/uuid"
)

// AccountStore persists accounts and role assignments.
// FindByUsername is case-sensitive and reports missing rows with an error
// matching domain.ErrNotFound; Create reports a taken username with
// domain.ErrConflict.
type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, a *Account) error
	Delete(ctx context.Context, id uuid.UUID) error

	EnsureRole(ctx context.Context, role Role) error
	AssignRole(ctx context.Context, accountID uuid.UUID, role Role) error
	// RolesOf returns roles in assignment order.
	RolesOf(ctx context.Context, accountID uuid.UUID) ([]Role, error)
}

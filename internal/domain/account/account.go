package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is a named permission set. Each account holds a single role in practice,
// although the store keeps an ordered list.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Roles returns every role that must exist before assignment.
func Roles() []Role {
	return []Role{RoleAdmin, RoleCustomer}
}

// ParseRole validates a role name.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles() {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Account is a registered user. The password hash never leaves the identity layer.
type Account struct {
	id           uuid.UUID
	username     string
	name         string
	passwordHash string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewAccount creates an account with a fresh identity.
func NewAccount(username, name, passwordHash string) *Account {
	now := time.Now().UTC()
	return &Account{
		id:           uuid.New(),
		username:     username,
		name:         name,
		passwordHash: passwordHash,
		createdAt:    now,
		updatedAt:    now,
	}
}

// Reconstruct rebuilds an Account from persistence.
func Reconstruct(id uuid.UUID, username, name, passwordHash string, createdAt, updatedAt time.Time) *Account {
	return &Account{
		id: id, username: username, name: name, passwordHash: passwordHash,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// Getters.
func (a *Account) ID() uuid.UUID        { return a.id }
func (a *Account) Username() string     { return a.username }
func (a *Account) Name() string         { return a.name }
func (a *Account) PasswordHash() string { return a.passwordHash }
func (a *Account) CreatedAt() time.Time { return a.createdAt }
func (a *Account) UpdatedAt() time.Time { return a.updatedAt }

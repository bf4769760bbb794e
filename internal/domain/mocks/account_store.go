package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-coupon/internal/domain/account"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/domain"
)

// MockAccountStore is an in-memory account.AccountStore for tests.
type MockAccountStore struct {
	mu          sync.Mutex
	accounts    map[uuid.UUID]*account.Account
	roles       map[account.Role]bool
	assignments map[uuid.UUID][]account.Role

	FindErr       error
	CreateErr     error
	DeleteErr     error
	EnsureRoleErr error
	AssignErr     error
	RolesErr      error
}

// NewMockAccountStore creates an empty store.
func NewMockAccountStore() *MockAccountStore {
	return &MockAccountStore{
		accounts:    make(map[uuid.UUID]*account.Account),
		roles:       make(map[account.Role]bool),
		assignments: make(map[uuid.UUID][]account.Role),
	}
}

// Count returns the number of stored accounts.
func (m *MockAccountStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts)
}

// HasRole reports whether role has been created.
func (m *MockAccountStore) HasRole(role account.Role) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roles[role]
}

func (m *MockAccountStore) FindByUsername(ctx context.Context, username string) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, a := range m.accounts {
		if a.Username() == username {
			return a, nil
		}
	}
	return nil, domain.NewNotFoundError("account not found")
}

func (m *MockAccountStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	if m.FindErr != nil {
		return false, err
	}
	return false, nil
}

func (m *MockAccountStore) Create(ctx context.Context, a *account.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, existing := range m.accounts {
		if existing.Username() == a.Username() {
			return domain.NewConflictError("duplicate username")
		}
	}
	m.accounts[a.ID()] = a
	return nil
}

func (m *MockAccountStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.accounts, id)
	delete(m.assignments, id)
	return nil
}

func (m *MockAccountStore) EnsureRole(ctx context.Context, role account.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EnsureRoleErr != nil {
		return m.EnsureRoleErr
	}
	m.roles[role] = true
	return nil
}

func (m *MockAccountStore) AssignRole(ctx context.Context, accountID uuid.UUID, role account.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AssignErr != nil {
		return m.AssignErr
	}
	if !m.roles[role] {
		return domain.NewNotFoundError("role not found")
	}
	if _, ok := m.accounts[accountID]; !ok {
		return domain.NewNotFoundError("account not found")
	}
	m.assignments[accountID] = append(m.assignments[accountID], role)
	return nil
}

func (m *MockAccountStore) RolesOf(ctx context.Context, accountID uuid.UUID) ([]account.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RolesErr != nil {
		return nil, m.RolesErr
	}
	return append([]account.Role(nil), m.assignments[accountID]...), nil
}

package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Kilat-Pet-Delivery/service-coupon/internal/domain/coupon"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/domain"
)

// MockCouponRepository is an in-memory coupon.CouponRepository for tests.
// Writes staged in a unit of work are applied on Commit. Setting an *Err field
// makes the matching operation fail.
type MockCouponRepository struct {
	mu      sync.Mutex
	coupons map[int]*coupon.Coupon
	nextID  int

	FindErr   error
	BeginErr  error
	CreateErr error
	UpdateErr error
	DeleteErr error
	CommitErr error

	Commits   int
	Rollbacks int
}

// NewMockCouponRepository creates a repository holding copies of seed.
func NewMockCouponRepository(seed ...*coupon.Coupon) *MockCouponRepository {
	m := &MockCouponRepository{coupons: make(map[int]*coupon.Coupon)}
	for _, c := range seed {
		m.coupons[c.ID()] = clone(c)
		if c.ID() > m.nextID {
			m.nextID = c.ID()
		}
	}
	return m
}

// Count returns the number of committed coupons.
func (m *MockCouponRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.coupons)
}

func (m *MockCouponRepository) FindAll(ctx context.Context) ([]*coupon.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	out := make([]*coupon.Coupon, 0, len(m.coupons))
	for _, c := range m.coupons {
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (m *MockCouponRepository) FindByID(ctx context.Context, id int) (*coupon.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	c, ok := m.coupons[id]
	if !ok {
		return nil, domain.NewNotFoundError("coupon not found")
	}
	return clone(c), nil
}

func (m *MockCouponRepository) FindByName(ctx context.Context, name string) (*coupon.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, c := range m.coupons {
		if strings.EqualFold(c.Name(), name) {
			return clone(c), nil
		}
	}
	return nil, domain.NewNotFoundError("coupon not found")
}

func (m *MockCouponRepository) Begin(ctx context.Context) (coupon.UnitOfWork, error) {
	if m.BeginErr != nil {
		return nil, m.BeginErr
	}
	return &mockCouponUnitOfWork{repo: m}, nil
}

type mockCouponUnitOfWork struct {
	repo   *MockCouponRepository
	staged []func(map[int]*coupon.Coupon) error
	done   bool
}

func (u *mockCouponUnitOfWork) Create(ctx context.Context, c *coupon.Coupon) error {
	if u.repo.CreateErr != nil {
		return u.repo.CreateErr
	}
	u.repo.mu.Lock()
	u.repo.nextID++
	c.AssignID(u.repo.nextID)
	u.repo.mu.Unlock()

	row := clone(c)
	u.staged = append(u.staged, func(rows map[int]*coupon.Coupon) error {
		rows[row.ID()] = row
		return nil
	})
	return nil
}

func (u *mockCouponUnitOfWork) Update(ctx context.Context, c *coupon.Coupon) error {
	if u.repo.UpdateErr != nil {
		return u.repo.UpdateErr
	}
	row := clone(c)
	u.staged = append(u.staged, func(rows map[int]*coupon.Coupon) error {
		if _, ok := rows[row.ID()]; !ok {
			return domain.NewNotFoundError("coupon not found")
		}
		rows[row.ID()] = row
		return nil
	})
	return nil
}

func (u *mockCouponUnitOfWork) Delete(ctx context.Context, id int) error {
	if u.repo.DeleteErr != nil {
		return u.repo.DeleteErr
	}
	u.staged = append(u.staged, func(rows map[int]*coupon.Coupon) error {
		if _, ok := rows[id]; !ok {
			return domain.NewNotFoundError("coupon not found")
		}
		delete(rows, id)
		return nil
	})
	return nil
}

func (u *mockCouponUnitOfWork) Commit() error {
	u.repo.mu.Lock()
	defer u.repo.mu.Unlock()
	u.done = true
	if u.repo.CommitErr != nil {
		return u.repo.CommitErr
	}

	next := make(map[int]*coupon.Coupon, len(u.repo.coupons))
	for id, c := range u.repo.coupons {
		next[id] = c
	}
	for _, apply := range u.staged {
		if err := apply(next); err != nil {
			return err
		}
	}
	seen := make(map[string]bool, len(next))
	for _, c := range next {
		key := strings.ToLower(c.Name())
		if seen[key] {
			return domain.NewConflictError("duplicate coupon name")
		}
		seen[key] = true
	}

	u.repo.coupons = next
	u.repo.Commits++
	return nil
}

func (u *mockCouponUnitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	u.repo.mu.Lock()
	u.repo.Rollbacks++
	u.repo.mu.Unlock()
	return nil
}

func clone(c *coupon.Coupon) *coupon.Coupon {
	return coupon.Reconstruct(c.ID(), c.Name(), c.Percent(), c.IsActive(), c.CreatedAt(), c.LastUpdated())
}

//go:build integration

package main_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kilat-Pet-Delivery/service-coupon/internal/application"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/domain/account"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/events"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/repository"
)

// TestCouponLifecycle drives create, update, delete through the HTTP surface
// against PostgreSQL and checks the published lifecycle events.
func TestCouponLifecycle(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupCouponStack(t, infra.DB, infra.KafkaBrokers, account.RoleAdmin)
	defer stack.Cleanup()
	admin := stack.adminToken(t)

	// Seeded by the migrations.
	status, env := stack.call(t, http.MethodGet, "/api/coupons", "", nil)
	require.Equal(t, http.StatusOK, status)
	var seeded []application.CouponDTO
	require.NoError(t, json.Unmarshal(env.Result, &seeded))
	require.Len(t, seeded, 3)
	assert.Equal(t, "10OFF", seeded[0].Name)

	status, env = stack.call(t, http.MethodPost, "/api/coupons", admin,
		application.CreateCouponRequest{Name: "SAVE10", Percent: 10, IsActive: true})
	require.Equal(t, http.StatusCreated, status)
	var created application.CouponDTO
	require.NoError(t, json.Unmarshal(env.Result, &created))
	assert.NotZero(t, created.ID)
	assert.True(t, created.Created.Equal(created.LastUpdated))

	status, env = stack.call(t, http.MethodPost, "/api/coupons", admin,
		application.CreateCouponRequest{Name: "save10", Percent: 15, IsActive: true})
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, []string{"Coupon with name 'save10' already exists"}, env.ErrorMessages)

	status, env = stack.call(t, http.MethodGet, "/api/coupons/name/Save10", "", nil)
	require.Equal(t, http.StatusOK, status)

	time.Sleep(10 * time.Millisecond)
	status, env = stack.call(t, http.MethodPut, "/api/coupons", admin,
		application.UpdateCouponRequest{ID: created.ID, Name: "SAVE10", Percent: 20, IsActive: true})
	require.Equal(t, http.StatusOK, status)
	var updated application.CouponDTO
	require.NoError(t, json.Unmarshal(env.Result, &updated))
	assert.Equal(t, 20, updated.Percent)
	assert.True(t, updated.LastUpdated.After(updated.Created))

	path := "/api/coupons/" + strconv.Itoa(created.ID)
	status, _ = stack.call(t, http.MethodDelete, path, admin, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, env = stack.call(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, []string{fmt.Sprintf("Coupon with ID %d not found", created.ID)}, env.ErrorMessages)

	subject := strconv.Itoa(created.ID)
	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicCouponEvents, events.CouponCreated, subject, 15*time.Second)
	var payload events.CouponEvent
	require.NoError(t, ce.ParseData(&payload))
	assert.Equal(t, "SAVE10", payload.Name)

	consumeOneEvent(t, infra.KafkaBrokers, events.TopicCouponEvents, events.CouponDeleted, subject, 15*time.Second)
}

// TestConcurrentCreate_SameName checks that the unique index settles a race
// between creates that all pass the existence pre-check.
func TestConcurrentCreate_SameName(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupCouponStack(t, infra.DB, infra.KafkaBrokers, account.RoleAdmin)
	defer stack.Cleanup()
	admin := stack.adminToken(t)

	names := []string{"RACE", "race", "Race", "rAcE", "RACE"}
	statuses := make([]int, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			statuses[i], _ = stack.call(t, http.MethodPost, "/api/coupons", admin,
				application.CreateCouponRequest{Name: name, Percent: 5, IsActive: true})
		}(i, name)
	}
	wg.Wait()

	counts := map[int]int{}
	for _, s := range statuses {
		counts[s]++
	}
	assert.Equal(t, 1, counts[http.StatusCreated])
	assert.Equal(t, len(names)-1, counts[http.StatusConflict])

	var rows int64
	require.NoError(t, infra.DB.Model(&repository.CouponModel{}).Where("LOWER(name) = ?", "race").Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

// TestRegisterAndLogin covers registration, role assignment and token issuance.
func TestRegisterAndLogin(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupCouponStack(t, infra.DB, infra.KafkaBrokers, account.RoleAdmin)
	defer stack.Cleanup()

	registration := application.RegistrationRequest{Username: "alice_1", Name: "Alice", Password: "Secret1"}
	status, env := stack.call(t, http.MethodPost, "/api/auth/register", "", registration)
	require.Equal(t, http.StatusCreated, status)
	var user application.UserDTO
	require.NoError(t, json.Unmarshal(env.Result, &user))

	status, env = stack.call(t, http.MethodPost, "/api/auth/register", "", registration)
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, []string{"Username is already taken"}, env.ErrorMessages)

	status, env = stack.call(t, http.MethodGet, "/api/auth/check-username/alice_1", "", nil)
	require.Equal(t, http.StatusOK, status)
	var availability application.UsernameAvailabilityDTO
	require.NoError(t, json.Unmarshal(env.Result, &availability))
	assert.False(t, availability.Available)

	status, env = stack.call(t, http.MethodPost, "/api/auth/login", "",
		application.LoginRequest{Username: "alice_1", Password: "Secret1"})
	require.Equal(t, http.StatusOK, status)
	var login application.LoginResponseDTO
	require.NoError(t, json.Unmarshal(env.Result, &login))

	claims, err := stack.JWT.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice_1", claims.Username)
	assert.Equal(t, "admin", claims.Role)

	// A registered admin can manage coupons with the issued token.
	status, _ = stack.call(t, http.MethodPost, "/api/coupons", login.Token,
		application.CreateCouponRequest{Name: "ALICE5", Percent: 5, IsActive: true})
	assert.Equal(t, http.StatusCreated, status)

	status, env = stack.call(t, http.MethodPost, "/api/auth/login", "",
		application.LoginRequest{Username: "alice_1", Password: "Wrong12"})
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, []string{"Invalid username or password"}, env.ErrorMessages)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicUserEvents, events.UserRegistered, user.ID.String(), 15*time.Second)
	var registered events.UserRegisteredEvent
	require.NoError(t, ce.ParseData(&registered))
	assert.Equal(t, "alice_1", registered.Username)
}

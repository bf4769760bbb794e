package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-coupon/internal/adapter"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/domain/account"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/events"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/saga"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/auth"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/domain"
)

// RegistrationRequest is the payload for creating an account.
type RegistrationRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the payload for exchanging credentials for a token.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserDTO is the public shape of an account.
type UserDTO struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
}

// LoginResponseDTO carries the authenticated user and their bearer token.
type LoginResponseDTO struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// UsernameAvailabilityDTO answers a username availability query.
type UsernameAvailabilityDTO struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

const invalidCredentials = "Invalid username or password"

// AuthService handles registration, login and username checks.
type AuthService struct {
	identity    adapter.IdentityProvider
	jwtManager  *auth.JWTManager
	publisher   events.Publisher
	metrics     *metrics.Metrics
	defaultRole account.Role
	logger      *zap.Logger
}

// NewAuthService creates a new AuthService. Every new account receives defaultRole.
func NewAuthService(
	identity adapter.IdentityProvider,
	jwtManager *auth.JWTManager,
	publisher events.Publisher,
	m *metrics.Metrics,
	defaultRole account.Role,
	logger *zap.Logger,
) *AuthService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &AuthService{
		identity:    identity,
		jwtManager:  jwtManager,
		publisher:   publisher,
		metrics:     m,
		defaultRole: defaultRole,
		logger:      logger,
	}
}

// CheckUsernameAvailability reports whether username can be registered.
func (s *AuthService) CheckUsernameAvailability(ctx context.Context, username string) (*UsernameAvailabilityDTO, error) {
	if strings.TrimSpace(username) == "" {
		return nil, domain.NewValidationError("Username cannot be empty")
	}

	unique, err := s.identity.IsUniqueUser(ctx, username)
	if err != nil {
		return nil, domain.NewInternalError("An error occurred while checking username availability", err)
	}
	return &UsernameAvailabilityDTO{Username: username, Available: unique}, nil
}

// Register creates an account and assigns the default role.
func (s *AuthService) Register(ctx context.Context, req *RegistrationRequest) (*UserDTO, error) {
	dto, err := s.register(ctx, req)
	s.metrics.ObserveAuth("register", outcome(err))
	return dto, err
}

func (s *AuthService) register(ctx context.Context, req *RegistrationRequest) (*UserDTO, error) {
	if req == nil {
		return nil, domain.NewValidationError("Registration request cannot be null")
	}

	unique, err := s.identity.IsUniqueUser(ctx, req.Username)
	if err != nil {
		return nil, domain.NewInternalError("An error occurred during registration", err)
	}
	if !unique {
		return nil, domain.NewConflictError("Username is already taken")
	}

	var created *account.Account
	registration := saga.New("register", s.logger).
		AddStep(saga.Step{
			Name: "create_account",
			Execute: func(ctx context.Context) error {
				a, err := s.identity.CreateUser(ctx, req.Username, req.Name, req.Password)
				created = a
				return err
			},
			Compensate: func(ctx context.Context) error {
				return s.identity.DeleteUser(ctx, created.ID())
			},
		}).
		AddStep(saga.Step{
			Name:    "ensure_roles",
			Execute: s.identity.EnsureRoles,
		}).
		AddStep(saga.Step{
			Name: "assign_role",
			Execute: func(ctx context.Context) error {
				return s.identity.AddToRole(ctx, created.ID(), s.defaultRole)
			},
		}).
		AddStep(saga.Step{
			Name: "publish_user_registered",
			Execute: func(ctx context.Context) error {
				s.publishRegistered(ctx, created)
				return nil
			},
		})

	if err := registration.Execute(ctx); err != nil {
		cause := errors.Unwrap(err)
		var domErr *domain.DomainError
		switch {
		case errors.Is(cause, domain.ErrConflict):
			return nil, domain.NewConflictError("Username is already taken")
		case errors.As(cause, &domErr) && errors.Is(domErr.Err, domain.ErrValidation):
			return nil, domErr
		}
		return nil, domain.NewInternalError("Failed to create user account", cause)
	}

	s.logger.Info("user registered",
		zap.String("user_id", created.ID().String()),
		zap.String("role", string(s.defaultRole)),
	)
	return toUserDTO(created), nil
}

// Login verifies credentials and issues a signed token.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponseDTO, error) {
	dto, err := s.login(ctx, req)
	s.metrics.ObserveAuth("login", outcome(err))
	return dto, err
}

func (s *AuthService) login(ctx context.Context, req *LoginRequest) (*LoginResponseDTO, error) {
	if req == nil {
		return nil, domain.NewValidationError("Login request cannot be null")
	}

	a, err := s.identity.FindUser(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewUnauthorizedError(invalidCredentials)
		}
		return nil, domain.NewInternalError("An error occurred during login", err)
	}
	if !s.identity.VerifyPassword(a, req.Password) {
		s.logger.Info("login rejected", zap.String("user_id", a.ID().String()))
		return nil, domain.NewUnauthorizedError(invalidCredentials)
	}

	roles, err := s.identity.GetRoles(ctx, a.ID())
	if err != nil {
		return nil, domain.NewInternalError("An error occurred during login", err)
	}
	role := account.RoleCustomer
	if len(roles) > 0 {
		role = roles[0]
	}

	token, err := s.jwtManager.GenerateAccessToken(a.ID(), a.Username(), string(role))
	if err != nil {
		return nil, domain.NewInternalError("An error occurred during login", err)
	}

	return &LoginResponseDTO{User: *toUserDTO(a), Token: token}, nil
}

func (s *AuthService) publishRegistered(ctx context.Context, a *account.Account) {
	event := events.UserRegisteredEvent{
		UserID:     a.ID(),
		Username:   a.Username(),
		Role:       string(s.defaultRole),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Warn("failed to publish registration event",
			zap.String("user_id", a.ID().String()),
			zap.Error(err),
		)
	}
}

func toUserDTO(a *account.Account) *UserDTO {
	return &UserDTO{ID: a.ID(), Username: a.Username(), Name: a.Name()}
}

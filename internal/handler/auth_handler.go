package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-coupon/internal/application"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/validation"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/response"
)

// AuthHandler handles registration, login and username checks.
type AuthHandler struct {
	service *application.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *application.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes registers the public auth routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/check-username/:username", h.CheckUsername)
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	req, err := decodeBody[application.RegistrationRequest](c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req != nil {
		if violations := validation.Registration(req); len(violations) > 0 {
			response.BadRequest(c, violations...)
			return
		}
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	req, err := decodeBody[application.LoginRequest](c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req != nil {
		if violations := validation.Login(req); len(violations) > 0 {
			response.BadRequest(c, violations...)
			return
		}
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CheckUsername handles GET /api/auth/check-username/:username.
func (h *AuthHandler) CheckUsername(c *gin.Context) {
	result, err := h.service.CheckUsernameAvailability(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

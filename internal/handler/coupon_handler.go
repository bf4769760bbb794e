package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-coupon/internal/application"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/validation"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/auth"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/middleware"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/response"
)

// CouponHandler handles HTTP requests for coupon operations.
type CouponHandler struct {
	service *application.CouponService
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(service *application.CouponService) *CouponHandler {
	return &CouponHandler{service: service}
}

// RegisterRoutes registers all coupon routes. Reads are public; writes need the admin role.
func (h *CouponHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	coupons := r.Group("/coupons")
	{
		coupons.GET("", h.ListCoupons)
		coupons.GET("/:id", h.GetCoupon)
		coupons.GET("/name/:name", h.GetCouponByName)
	}

	admin := coupons.Group("", middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.POST("", h.CreateCoupon)
		admin.PUT("", h.UpdateCoupon)
		admin.DELETE("/:id", h.DeleteCoupon)
	}
}

// ListCoupons handles GET /api/coupons.
func (h *CouponHandler) ListCoupons(c *gin.Context) {
	result, err := h.service.ListCoupons(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetCoupon handles GET /api/coupons/:id.
func (h *CouponHandler) GetCoupon(c *gin.Context) {
	id, ok := parseCouponID(c)
	if !ok {
		return
	}

	result, err := h.service.GetCoupon(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetCouponByName handles GET /api/coupons/name/:name.
func (h *CouponHandler) GetCouponByName(c *gin.Context) {
	result, err := h.service.GetCouponByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateCoupon handles POST /api/coupons.
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	req, err := decodeBody[application.CreateCouponRequest](c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req != nil {
		if violations := validation.CreateCoupon(req); len(violations) > 0 {
			response.BadRequest(c, violations...)
			return
		}
	}

	result, err := h.service.CreateCoupon(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateCoupon handles PUT /api/coupons.
func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	req, err := decodeBody[application.UpdateCouponRequest](c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req != nil {
		if violations := validation.UpdateCoupon(req); len(violations) > 0 {
			response.BadRequest(c, violations...)
			return
		}
	}

	result, err := h.service.UpdateCoupon(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteCoupon handles DELETE /api/coupons/:id.
func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	id, ok := parseCouponID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCoupon(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func parseCouponID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Coupon ID must be an integer")
		return 0, false
	}
	return id, true
}

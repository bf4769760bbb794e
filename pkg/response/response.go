package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/domain"
)

// Envelope is the uniform body of every API response.
type Envelope struct {
	IsSuccess     bool        `json:"is_success"`
	Result        interface{} `json:"result,omitempty"`
	StatusCode    int         `json:"status_code"`
	ErrorMessages []string    `json:"error_messages"`
}

// JSON writes an envelope with the given status code.
func JSON(c *gin.Context, status int, result interface{}, errs []string) {
	if errs == nil {
		errs = []string{}
	}
	c.JSON(status, Envelope{
		IsSuccess:     status < http.StatusBadRequest,
		Result:        result,
		StatusCode:    status,
		ErrorMessages: errs,
	})
}

// Success writes a 200 envelope.
func Success(c *gin.Context, result interface{}) {
	JSON(c, http.StatusOK, result, nil)
}

// Created writes a 201 envelope.
func Created(c *gin.Context, result interface{}) {
	JSON(c, http.StatusCreated, result, nil)
}

// NoContent writes a bare 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 envelope with the given messages.
func BadRequest(c *gin.Context, messages ...string) {
	JSON(c, http.StatusBadRequest, nil, messages)
}

// Error converts a service error into an envelope.
func Error(c *gin.Context, err error) {
	JSON(c, domain.StatusCode(err), nil, domain.Messages(err))
}

package handler

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

// decodeBody reads a JSON body into a new T. An empty body or a literal null
// yields a nil request so the service can report the missing payload.
func decodeBody[T any](c *gin.Context) (*T, error) {
	var req *T
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

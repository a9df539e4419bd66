package handlers

import (
	"github.com/gin-gonic/gin"

	"ucmodeler/internal/errs"
	"ucmodeler/internal/responses"
)

// bindJSON decodes the request body into req and writes a Validation error
// when it does not fit.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		responses.Error(c, errs.E(errs.Validation, "decode request", err))
		return false
	}

	return true
}

package middlewares

import (
	"github.com/gin-gonic/gin"

	"ucmodeler/internal/repositories"
	"ucmodeler/internal/responses"
	"ucmodeler/internal/services"
)

const warehouseKey = "warehouse"

// RequireConnection resolves the session's warehouse before the handler
// runs. Sessions without a connection get a Configuration error.
// This middleware should be used after Session.
func RequireConnection(sessionService *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		wh, err := sessionService.Warehouse(c.Request.Context(), SessionState(c))
		if err != nil {
			responses.Error(c, err)
			return
		}

		c.Set(warehouseKey, wh)
		c.Next()
	}
}

// Warehouse returns the executor set by RequireConnection.
func Warehouse(c *gin.Context) *repositories.WarehouseRepository {
	return c.MustGet(warehouseKey).(*repositories.WarehouseRepository)
}

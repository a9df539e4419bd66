package routes

import (
	"github.com/gin-gonic/gin"

	"ucmodeler/internal/handlers"
)

// Handlers groups the feature handlers mounted under /api/v1.
type Handlers struct {
	Session *handlers.SessionHandler
	Schema  *handlers.SchemaHandler
	Table   *handlers.TableHandler
	Design  *handlers.DesignHandler
	Query   *handlers.QueryHandler
}

// RegisterRoutes mounts the API. session attaches the caller's state to every
// API request; requireConnection guards the routes that talk to the warehouse.
func RegisterRoutes(router *gin.Engine, h Handlers, session, requireConnection gin.HandlerFunc) {
	api := router.Group("/api/v1")
	api.Use(session)

	NewSessionRoutes(h.Session).RegisterRoutes(api)
	schema := NewSchemaRoutes(h.Schema).RegisterRoutes(api, requireConnection)
	NewTableRoutes(h.Table).RegisterRoutes(schema)
	NewDesignRoutes(h.Design).RegisterRoutes(api, requireConnection)
	NewQueryRoutes(h.Query).RegisterRoutes(api, requireConnection)
}

package routes

import (
	"github.com/gin-gonic/gin"

	"ucmodeler/internal/handlers"
)

type DesignRoutes struct {
	handler *handlers.DesignHandler
}

func NewDesignRoutes(handler *handlers.DesignHandler) *DesignRoutes {
	return &DesignRoutes{handler: handler}
}

func (r *DesignRoutes) RegisterRoutes(router *gin.RouterGroup, requireConnection gin.HandlerFunc) {
	design := router.Group("/design")
	{
		design.GET("", r.handler.GetDesign)
		design.PUT("", r.handler.ReplaceDesign)
		design.DELETE("", r.handler.ClearDesign)

		design.PUT("/tables/:table", r.handler.UpsertTable)
		design.DELETE("/tables/:table", r.handler.RemoveTable)
		design.POST("/relationships", r.handler.AddRelationship)
		design.DELETE("/relationships/:name", r.handler.RemoveRelationship)

		design.POST("/import", r.handler.Import)
		design.GET("/export", r.handler.Export)
		design.GET("/sql", r.handler.SQL)
		design.GET("/erd", r.handler.ERD)

		// Applying is the only design route that needs the warehouse up front.
		design.POST("/apply", requireConnection, r.handler.Apply)
	}
}

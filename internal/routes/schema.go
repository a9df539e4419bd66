package routes

import (
	"github.com/gin-gonic/gin"

	"ucmodeler/internal/handlers"
)

type SchemaRoutes struct {
	handler *handlers.SchemaHandler
}

func NewSchemaRoutes(handler *handlers.SchemaHandler) *SchemaRoutes {
	return &SchemaRoutes{handler: handler}
}

// RegisterRoutes mounts catalog browsing and returns the per-schema group
// the table routes hang off.
func (r *SchemaRoutes) RegisterRoutes(router *gin.RouterGroup, requireConnection gin.HandlerFunc) *gin.RouterGroup {
	catalogs := router.Group("/catalogs")
	catalogs.Use(requireConnection) // every catalog route runs SQL
	{
		catalogs.GET("", r.handler.ListCatalogs)
		catalogs.GET("/:catalog/schemas", r.handler.ListSchemas)
	}

	schema := catalogs.Group("/:catalog/schemas/:schema")
	{
		schema.GET("/tables", r.handler.ListTables)
		schema.GET("/tables/:table", r.handler.DescribeTable)
		schema.GET("/metadata", r.handler.Metadata)
		schema.GET("/erd", r.handler.ERD)
	}

	return schema
}

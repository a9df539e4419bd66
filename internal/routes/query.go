package routes

import (
	"github.com/gin-gonic/gin"

	"ucmodeler/internal/handlers"
)

type QueryRoutes struct {
	handler *handlers.QueryHandler
}

func NewQueryRoutes(handler *handlers.QueryHandler) *QueryRoutes {
	return &QueryRoutes{handler: handler}
}

func (r *QueryRoutes) RegisterRoutes(router *gin.RouterGroup, requireConnection gin.HandlerFunc) {
	query := router.Group("/query")
	{
		query.POST("", requireConnection, r.handler.ExecuteQuery)
		query.GET("/history", r.handler.GetQueryHistory)
	}
}

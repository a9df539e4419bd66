package routes

import (
	"github.com/gin-gonic/gin"

	"ucmodeler/internal/handlers"
)

type SessionRoutes struct {
	handler *handlers.SessionHandler
}

func NewSessionRoutes(handler *handlers.SessionHandler) *SessionRoutes {
	return &SessionRoutes{handler: handler}
}

func (r *SessionRoutes) RegisterRoutes(router *gin.RouterGroup) {
	session := router.Group("/session")
	{
		session.GET("", r.handler.GetSession)
		session.DELETE("", r.handler.EndSession)
		session.POST("/connect", r.handler.Connect)
		session.PUT("/context", r.handler.SelectContext)
	}
}

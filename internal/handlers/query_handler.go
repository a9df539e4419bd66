package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ucmodeler/internal/middlewares"
	"ucmodeler/internal/models"
	"ucmodeler/internal/responses"
	"ucmodeler/internal/services"
)

type QueryHandler struct {
	queryService *services.QueryService
}

func NewQueryHandler(queryService *services.QueryService) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
	}
}

// ExecuteQuery runs one statement from the query console
func (h *QueryHandler) ExecuteQuery(c *gin.Context) {
	var req models.ExecuteQueryRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.queryService.Execute(c.Request.Context(), middlewares.Warehouse(c), middlewares.SessionState(c), req.Query)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"result":            result,
		"execution_time_ms": result.ExecutionTime,
	}, "Query executed successfully")
}

// GetQueryHistory returns the session's statements, newest first
func (h *QueryHandler) GetQueryHistory(c *gin.Context) {
	history := h.queryService.History(middlewares.SessionState(c))

	responses.Success(c, http.StatusOK, gin.H{"history": history}, "")
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ucmodeler/internal/config"
	"ucmodeler/internal/middlewares"
	"ucmodeler/internal/responses"
	"ucmodeler/internal/services"
)

type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

type contextRequest struct {
	Catalog string `json:"catalog"`
	Schema  string `json:"schema"`
}

// GetSession handles GET /api/v1/session
func (h *SessionHandler) GetSession(c *gin.Context) {
	state := middlewares.SessionState(c)

	responses.Success(c, http.StatusOK, gin.H{
		"session":  state.Summary(),
		"defaults": h.sessionService.Defaults(),
	}, "")
}

// Connect handles POST /api/v1/session/connect
func (h *SessionHandler) Connect(c *gin.Context) {
	var form config.ConnectionForm
	if !bindJSON(c, &form) {
		return
	}

	state := middlewares.SessionState(c)
	if err := h.sessionService.Connect(c.Request.Context(), state, form); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"session": state.Summary()}, "Connected")
}

// SelectContext handles PUT /api/v1/session/context
func (h *SessionHandler) SelectContext(c *gin.Context) {
	var req contextRequest
	if !bindJSON(c, &req) {
		return
	}

	state := middlewares.SessionState(c)
	h.sessionService.SelectContext(state, req.Catalog, req.Schema)

	responses.Success(c, http.StatusOK, gin.H{"session": state.Summary()}, "")
}

// EndSession handles DELETE /api/v1/session
func (h *SessionHandler) EndSession(c *gin.Context) {
	h.sessionService.Disconnect(middlewares.SessionState(c))
	middlewares.EndSession(c)

	responses.Success(c, http.StatusOK, nil, "Session ended")
}

package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ucmodeler/internal/errs"
	"ucmodeler/internal/middlewares"
	"ucmodeler/internal/models"
	"ucmodeler/internal/responses"
	"ucmodeler/internal/services"
)

const maxDesignUpload = 1 << 20

// DesignHandler edits the session's table model. Only import from a catalog
// and apply talk to the warehouse.
type DesignHandler struct {
	designService  *services.DesignService
	erdService     *services.ERDService
	sessionService *services.SessionService
}

func NewDesignHandler(designService *services.DesignService, erdService *services.ERDService, sessionService *services.SessionService) *DesignHandler {
	return &DesignHandler{
		designService:  designService,
		erdService:     erdService,
		sessionService: sessionService,
	}
}

// target returns the catalog and schema from the query string, falling back
// to the session's selection.
func target(c *gin.Context, state *models.SessionState) (string, string) {
	catalog, schema := c.Query("catalog"), c.Query("schema")
	if catalog == "" {
		catalog = state.Catalog
	}
	if schema == "" {
		schema = state.Schema
	}

	return catalog, schema
}

func (h *DesignHandler) GetDesign(c *gin.Context) {
	responses.Success(c, http.StatusOK, gin.H{"design": middlewares.SessionState(c).Design}, "")
}

// ReplaceDesign handles PUT /api/v1/design
func (h *DesignHandler) ReplaceDesign(c *gin.Context) {
	var req models.DesignModel
	if !bindJSON(c, &req) {
		return
	}

	state := middlewares.SessionState(c)
	if err := h.designService.Replace(state, req); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"design": state.Design}, "Design replaced")
}

func (h *DesignHandler) ClearDesign(c *gin.Context) {
	h.designService.Clear(middlewares.SessionState(c))
	responses.Success(c, http.StatusOK, nil, "Design cleared")
}

// UpsertTable handles PUT /api/v1/design/tables/:table
func (h *DesignHandler) UpsertTable(c *gin.Context) {
	var req models.TableDef
	if !bindJSON(c, &req) {
		return
	}
	req.Name = c.Param("table")

	state := middlewares.SessionState(c)
	if err := h.designService.UpsertTable(state, req); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"design": state.Design}, "Table saved")
}

func (h *DesignHandler) RemoveTable(c *gin.Context) {
	state := middlewares.SessionState(c)
	if err := h.designService.RemoveTable(state, c.Param("table")); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"design": state.Design}, "Table removed")
}

// AddRelationship handles POST /api/v1/design/relationships
func (h *DesignHandler) AddRelationship(c *gin.Context) {
	var req models.ForeignKeyDef
	if !bindJSON(c, &req) {
		return
	}

	state := middlewares.SessionState(c)
	fk, err := h.designService.AddRelationship(state, req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusCreated, gin.H{"relationship": fk, "design": state.Design}, "Relationship added")
}

func (h *DesignHandler) RemoveRelationship(c *gin.Context) {
	state := middlewares.SessionState(c)
	if err := h.designService.RemoveRelationship(state, c.Param("name")); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"design": state.Design}, "Relationship removed")
}

// Import handles POST /api/v1/design/import. A YAML body replaces the design
// with an exported model; otherwise the design is read from the catalog and
// schema in the query string or the session.
func (h *DesignHandler) Import(c *gin.Context) {
	state := middlewares.SessionState(c)

	if isYAML(c.ContentType()) {
		data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDesignUpload))
		if err != nil {
			responses.Error(c, errs.E(errs.Validation, "design.Import", err))
			return
		}
		if err := h.designService.ImportYAML(state, data); err != nil {
			responses.Error(c, err)
			return
		}
		responses.Success(c, http.StatusOK, gin.H{"design": state.Design}, "Design imported")
		return
	}

	catalog, schema := target(c, state)
	if catalog == "" || schema == "" {
		responses.Error(c, errs.Newf(errs.Validation, "design.Import", "select a catalog and schema first"))
		return
	}

	wh, err := h.sessionService.Warehouse(c.Request.Context(), state)
	if err != nil {
		responses.Error(c, err)
		return
	}

	if err := h.designService.ImportFromCatalog(c.Request.Context(), wh, state, catalog, schema); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"design": state.Design}, "Design imported")
}

func isYAML(contentType string) bool {
	return strings.Contains(contentType, "yaml")
}

// SQL handles GET /api/v1/design/sql
func (h *DesignHandler) SQL(c *gin.Context) {
	state := middlewares.SessionState(c)
	catalog, schema := target(c, state)

	stmts, err := h.designService.SQL(state, catalog, schema)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"statements": stmts, "script": strings.Join(stmts, ";\n\n") + ";"}, "")
}

// Apply handles POST /api/v1/design/apply. Statements that fail are reported
// and do not stop the run.
func (h *DesignHandler) Apply(c *gin.Context) {
	state := middlewares.SessionState(c)
	catalog, schema := target(c, state)

	report, err := h.designService.Apply(c.Request.Context(), middlewares.Warehouse(c), state, catalog, schema)
	if err != nil {
		responses.Error(c, err)
		return
	}

	message := "Design applied"
	if report.Failed > 0 {
		message = "Design applied with errors"
	}

	responses.Success(c, http.StatusOK, report, message)
}

// ERD handles GET /api/v1/design/erd
func (h *DesignHandler) ERD(c *gin.Context) {
	state := middlewares.SessionState(c)
	catalog, schema := target(c, state)

	g := h.designService.Graph(state, catalog, schema)
	d, err := h.erdService.RenderGraph(c.Request.Context(), &g, c.Query("format"))
	if err != nil {
		responses.Error(c, err)
		return
	}

	writeDiagram(c, d)
}

// Export handles GET /api/v1/design/export
func (h *DesignHandler) Export(c *gin.Context) {
	out, err := h.designService.ExportYAML(middlewares.SessionState(c))
	if err != nil {
		responses.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="design.yaml"`)
	c.Data(http.StatusOK, "application/yaml", out)
}

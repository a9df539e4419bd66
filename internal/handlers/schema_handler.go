package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ucmodeler/internal/middlewares"
	"ucmodeler/internal/render"
	"ucmodeler/internal/responses"
	"ucmodeler/internal/services"
	"ucmodeler/internal/utils"
)

// SchemaHandler serves catalog browsing, schema metadata and diagrams.
type SchemaHandler struct {
	schemaService *services.SchemaService
	erdService    *services.ERDService
}

func NewSchemaHandler(schemaService *services.SchemaService, erdService *services.ERDService) *SchemaHandler {
	return &SchemaHandler{
		schemaService: schemaService,
		erdService:    erdService,
	}
}

// ListCatalogs handles GET /api/v1/catalogs
func (h *SchemaHandler) ListCatalogs(c *gin.Context) {
	names, err := h.schemaService.ListCatalogs(c.Request.Context(), middlewares.Warehouse(c))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"catalogs": names}, "")
}

// ListSchemas handles GET /api/v1/catalogs/:catalog/schemas
func (h *SchemaHandler) ListSchemas(c *gin.Context) {
	names, err := h.schemaService.ListSchemas(c.Request.Context(), middlewares.Warehouse(c), c.Param("catalog"))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"schemas": names}, "")
}

// ListTables handles GET /api/v1/catalogs/:catalog/schemas/:schema/tables
func (h *SchemaHandler) ListTables(c *gin.Context) {
	names, err := h.schemaService.ListTables(c.Request.Context(), middlewares.Warehouse(c), c.Param("catalog"), c.Param("schema"))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"tables": names}, "")
}

// DescribeTable handles GET /api/v1/catalogs/:catalog/schemas/:schema/tables/:table
func (h *SchemaHandler) DescribeTable(c *gin.Context) {
	cols, err := h.schemaService.DescribeTable(c.Request.Context(), middlewares.Warehouse(c),
		c.Param("catalog"), c.Param("schema"), c.Param("table"))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"table": c.Param("table"), "columns": cols}, "")
}

// Metadata handles GET /api/v1/catalogs/:catalog/schemas/:schema/metadata
func (h *SchemaHandler) Metadata(c *gin.Context) {
	meta, err := h.schemaService.FetchMetadata(c.Request.Context(), middlewares.Warehouse(c), c.Param("catalog"), c.Param("schema"))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, meta, "")
}

// ERD handles GET /api/v1/catalogs/:catalog/schemas/:schema/erd
func (h *SchemaHandler) ERD(c *gin.Context) {
	d, err := h.erdService.Render(c.Request.Context(), middlewares.Warehouse(c),
		c.Param("catalog"), c.Param("schema"), c.Query("format"))
	if err != nil {
		responses.Error(c, err)
		return
	}

	writeDiagram(c, d)
}

// writeDiagram sends the artifact itself with ?raw=true, otherwise wraps it
// in the JSON envelope.
func writeDiagram(c *gin.Context, d *render.Diagram) {
	if utils.ParseBool(c.Query("raw")) {
		c.Data(http.StatusOK, d.ContentType, d.Body)
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"renderer":     d.Renderer,
		"content_type": d.ContentType,
		"content":      string(d.Body),
		"dot":          d.DOT,
	}, "")
}

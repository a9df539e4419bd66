package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ucmodeler/internal/middlewares"
	"ucmodeler/internal/models"
	"ucmodeler/internal/responses"
	"ucmodeler/internal/services"
	"ucmodeler/internal/utils"
)

type TableHandler struct {
	tableService   *services.TableService
	sessionService *services.SessionService
}

func NewTableHandler(tableService *services.TableService, sessionService *services.SessionService) *TableHandler {
	return &TableHandler{
		tableService:   tableService,
		sessionService: sessionService,
	}
}

// CreateTable handles POST /api/v1/catalogs/:catalog/schemas/:schema/tables.
// With ?dry_run=true only the statement is returned.
func (h *TableHandler) CreateTable(c *gin.Context) {
	var req models.TableDef
	if !bindJSON(c, &req) {
		return
	}
	req.Catalog, req.Schema = c.Param("catalog"), c.Param("schema")

	if utils.ParseBool(c.Query("dry_run")) {
		stmt, err := services.BuildCreateTable(h.sessionService.Dialect(), req)
		if err != nil {
			responses.Error(c, err)
			return
		}
		responses.Success(c, http.StatusOK, gin.H{"statement": stmt}, "Statement preview")
		return
	}

	stmt, err := h.tableService.CreateTable(c.Request.Context(), middlewares.Warehouse(c), middlewares.SessionState(c), req)
	h.respond(c, stmt, err, http.StatusCreated, "Table created successfully")
}

// DropTable handles DELETE /api/v1/catalogs/:catalog/schemas/:schema/tables/:table
func (h *TableHandler) DropTable(c *gin.Context) {
	stmt, err := h.tableService.DropTable(c.Request.Context(), middlewares.Warehouse(c), middlewares.SessionState(c),
		c.Param("catalog"), c.Param("schema"), c.Param("table"))
	h.respond(c, stmt, err, http.StatusOK, "Table dropped successfully")
}

// AddPrimaryKey handles POST .../tables/:table/primary-key
func (h *TableHandler) AddPrimaryKey(c *gin.Context) {
	var req models.PrimaryKeyDef
	if !bindJSON(c, &req) {
		return
	}
	req.Catalog, req.Schema, req.Table = c.Param("catalog"), c.Param("schema"), c.Param("table")

	stmt, err := h.tableService.AddPrimaryKey(c.Request.Context(), middlewares.Warehouse(c), middlewares.SessionState(c), req)
	h.respond(c, stmt, err, http.StatusOK, "Primary key added")
}

// AddForeignKey handles POST .../tables/:table/foreign-keys. The target
// table defaults to the same catalog and schema.
func (h *TableHandler) AddForeignKey(c *gin.Context) {
	var req models.ForeignKeyDef
	if !bindJSON(c, &req) {
		return
	}
	req.Catalog, req.Schema, req.SourceTable = c.Param("catalog"), c.Param("schema"), c.Param("table")

	stmt, err := h.tableService.AddForeignKey(c.Request.Context(), middlewares.Warehouse(c), middlewares.SessionState(c), req)
	h.respond(c, stmt, err, http.StatusOK, "Foreign key added")
}

// respond reports the statement that was sent alongside a warehouse error.
func (h *TableHandler) respond(c *gin.Context, stmt string, err error, status int, message string) {
	if err != nil && stmt != "" {
		responses.ErrorData(c, err, gin.H{"statement": stmt})
		return
	}
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, status, gin.H{"statement": stmt}, message)
}

package routes

import (
	"github.com/gin-gonic/gin"

	"ucmodeler/internal/handlers"
)

type TableRoutes struct {
	tableHandler *handlers.TableHandler
}

func NewTableRoutes(tableHandler *handlers.TableHandler) *TableRoutes {
	return &TableRoutes{
		tableHandler: tableHandler,
	}
}

// RegisterRoutes mounts DDL under a schema group that already requires a
// connection.
func (r *TableRoutes) RegisterRoutes(schema *gin.RouterGroup) {
	schema.POST("/tables", r.tableHandler.CreateTable)
	schema.DELETE("/tables/:table", r.tableHandler.DropTable)
	schema.POST("/tables/:table/primary-key", r.tableHandler.AddPrimaryKey)
	schema.POST("/tables/:table/foreign-keys", r.tableHandler.AddForeignKey)
}

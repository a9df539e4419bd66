// Package web serves the single page that drives the API.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var static embed.FS

// Register serves the page at / and its assets under /static.
func Register(router *gin.Engine) {
	assets, _ := fs.Sub(static, "static")

	router.GET("/", func(c *gin.Context) {
		c.FileFromFS("/", http.FS(assets))
	})
	router.StaticFS("/static", http.FS(assets))
}

package ginserver

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

//go:embed swagger
var swaggerFS embed.FS

const swaggerDocPath = "/swagger/doc.json"

// registerSwaggerRoutes serves the OpenAPI document with a content ETag and a
// Swagger UI page pointing at it.
func registerSwaggerRoutes(router gin.IRoutes) {
	doc, err := swaggerFS.ReadFile("swagger/openapi.json")
	if err != nil {
		panic("ginserver: embedded openapi document missing")
	}
	page, err := swaggerFS.ReadFile("swagger/index.html")
	if err != nil {
		panic("ginserver: embedded swagger page missing")
	}
	sum := sha256.Sum256(doc)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`
	html := []byte(strings.ReplaceAll(string(page), "{{SPEC_URL}}", swaggerDocPath))

	router.GET(swaggerDocPath, func(c *gin.Context) {
		c.Header("ETag", etag)
		if c.GetHeader("If-None-Match") == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Data(http.StatusOK, "application/json", doc)
	})
	router.GET("/swagger", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", html)
	})
}

// Package web maps HTTP onto the users dispatcher: an HTML page driven by
// form posts, a JSON twin of it and a health check, served with gin.
package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templates embed.FS

// NewRouter wires middleware and routes. logger receives one line per request.
func NewRouter(h *Handler, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), CorrelationID(), RequestLogger(logger))
	r.SetHTMLTemplate(template.Must(template.ParseFS(templates, "templates/*.html")))

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/users")
	})
	r.GET("/healthz", h.Health)

	r.GET("/users", h.Page)
	r.POST("/users", h.Submit)

	api := r.Group("/api")
	api.GET("/users", h.List)
	api.POST("/users", h.SubmitJSON)

	return r
}

package routes

import (
	"fmt"
	"io"
	"net/http"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"waste_tracker/internal/config"
	"waste_tracker/internal/middleware"
	"waste_tracker/internal/storage"
	"waste_tracker/internal/templates"
	"waste_tracker/internal/urls"
)

// SetupRouter builds the engine with every route group installed. Requests
// are logged to logWriter.
func SetupRouter(logWriter io.Writer) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger(
		ginlog.WithWriter(logWriter),
		ginlog.WithUTC(true),
		ginlog.WithSkipPath([]string{"/healthz"}),
	))
	r.Use(middleware.CORS(config.App.CORSOrigins))
	r.Use(middleware.Authenticate())

	tmpl, err := templates.Parse()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	if local, ok := config.Photos.(*storage.LocalStore); ok {
		r.Static(local.PublicURL, local.Dir)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, urls.Path(urls.Login))
	})

	AuthRoutes(r)
	CollectorRoutes(r)
	BillingRoutes(r)
	AdminRoutes(r)

	return r, nil
}

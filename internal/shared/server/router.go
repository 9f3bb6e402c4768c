package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dockeeper-backend/internal/documents"
	"dockeeper-backend/internal/shared/config"
	"dockeeper-backend/internal/shared/metrics"
	"dockeeper-backend/internal/shared/server/middleware"
	"dockeeper-backend/internal/shared/server/respond"
	"dockeeper-backend/internal/users"
)

// Deps carries the wired handlers the router mounts.
type Deps struct {
	Config        config.Config
	Users         *users.Handler
	Documents     *documents.Handler
	LocalFilesDir string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	health := func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"status": "ok"})
	}
	r.GET("/health", health)
	r.GET("/metrics", metrics.Handler())

	if deps.LocalFilesDir != "" {
		r.Static("/files", deps.LocalFilesDir)
	}

	api := r.Group("/api/v1")
	api.GET("/health", health)
	deps.Users.RegisterPublicRoutes(api)

	authed := api.Group("")
	authed.Use(middleware.Auth())
	deps.Users.RegisterRoutes(authed)
	deps.Documents.RegisterRoutes(authed)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

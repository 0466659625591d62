package router

import (
	"github.com/gin-gonic/gin"

	"kycdocs/internal/handler"
	"kycdocs/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	processH *handler.ProcessHandler,
	doctypeH *handler.DoctypeHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	documents := v1.Group("/documents")
	documents.POST("/process", processH.Process)
	documents.DELETE("/:id/source", processH.DeleteSource)

	v1.GET("/doctypes", doctypeH.List)

	return r
}

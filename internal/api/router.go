package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires middleware and all routes. CORS is restricted to the
// configured origins since the widget redirect means the frontend origin is
// known ahead of time.
func NewRouter(app App, corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Health Archetypes API is running!")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	terra := router.Group("/api/terra")
	{
		terra.POST("/initiate-widget", InitiateWidget(app))
		terra.POST("/confirm-auth", ConfirmAuth(app))
		terra.GET("/callback", WidgetCallback(app))
		terra.GET("/data-report/:sessionId", DataReport(app))
		terra.POST("/clear", ClearSession(app))
	}

	archetype := router.Group("/api/archetype")
	{
		archetype.POST("/generate", GenerateArchetype(app))
		archetype.POST("/generate-image", GenerateImage(app))
	}

	return router
}

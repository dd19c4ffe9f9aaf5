package api

import (
	"net/http"

	_ "aforo-worker-go/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (s *Server) setupSwagger() {
	s.router.GET("/api/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"title":       "Aforo Worker API",
			"version":     s.config.Version,
			"description": "Area occupancy counting worker driven by Frigate zone events over MQTT",
			"swagger_ui":  "/docs/index.html",
			"endpoints": gin.H{
				"health":        "/health",
				"worker_info":   "/",
				"areas":         "/areas",
				"access_points": "/access-points",
				"summary":       "/summary",
				"alerts":        "/alerts/stats",
				"config":        "/config",
				"system":        "/system",
			},
			"worker_id": s.config.WorkerID,
			"port":      s.config.Port,
		})
	})

	s.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
}

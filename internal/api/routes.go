package api

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthHandler.WorkerInfo)
	s.router.GET("/health", s.healthHandler.HealthCheck)

	areas := s.router.Group("/areas")
	{
		areas.GET("", s.areaHandler.ListAreas)
		areas.POST("", s.areaHandler.CreateArea)
		areas.GET("/status", s.areaHandler.AreasStatus)
		areas.GET("/:id", s.areaHandler.GetArea)
		areas.PUT("/:id", s.areaHandler.UpdateArea)
		areas.DELETE("/:id", s.areaHandler.DeleteArea)
		areas.GET("/:id/events", s.eventHandler.AreaEvents)
		areas.GET("/:id/measurements", s.eventHandler.AreaMeasurements)
		areas.GET("/:id/access-points", s.areaHandler.ListAccessPoints)
		areas.POST("/:id/access-points", s.areaHandler.CreateAccessPoint)
	}

	accessPoints := s.router.Group("/access-points")
	{
		accessPoints.PUT("/:id", s.areaHandler.UpdateAccessPoint)
		accessPoints.DELETE("/:id", s.areaHandler.DeleteAccessPoint)
	}

	s.router.GET("/summary", s.summaryHandler.Summary)
	s.router.GET("/alerts/stats", s.eventHandler.AlertStats)

	cfg := s.router.Group("/config")
	{
		cfg.GET("", s.configHandler.GetSettings)
		cfg.PUT("", s.configHandler.UpdateSettings)
		cfg.POST("/objects/toggle", s.configHandler.ToggleObject)
		cfg.POST("/reload", s.configHandler.Reload)
		cfg.GET("/connection", s.configHandler.ConnectionStatus)
	}

	system := s.router.Group("/system")
	{
		system.GET("/stats", s.systemHandler.GetStats)
		system.POST("/cleanup", s.systemHandler.RunCleanup)
		system.GET("/cleanup", s.systemHandler.LastCleanup)
	}
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"aforo-worker-go/internal/api/handlers"
	"aforo-worker-go/internal/api/middleware"
	"aforo-worker-go/internal/config"
	"aforo-worker-go/internal/services"
)

type Server struct {
	config *config.Config
	router *gin.Engine
	server *http.Server

	healthHandler  *handlers.HealthHandler
	areaHandler    *handlers.AreaHandler
	eventHandler   *handlers.EventHandler
	summaryHandler *handlers.SummaryHandler
	configHandler  *handlers.ConfigHandler
	systemHandler  *handlers.SystemHandler
}

func NewServer(cfg *config.Config, container *services.ServiceContainer) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	return &Server{
		config:         cfg,
		router:         router,
		healthHandler:  handlers.NewHealthHandler(cfg.WorkerID, cfg.Version),
		areaHandler:    handlers.NewAreaHandler(container.Store),
		eventHandler:   handlers.NewEventHandler(container.Store),
		summaryHandler: handlers.NewSummaryHandler(container.Store),
		configHandler:  handlers.NewConfigHandler(container.Store, container.Frigate),
		systemHandler:  handlers.NewSystemHandler(cfg.WorkerID, container.Store, container.Cleanup),
	}
}

func (s *Server) Setup() error {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.RequestContext())

	s.setupRoutes()

	s.setupSwagger()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
	}

	return nil
}

func (s *Server) Start() error {
	log.Info().Int("port", s.config.Port).Msg("Starting Aforo Worker API")
	return s.server.ListenAndServe()
}

func (s *Server) Stop() error {
	log.Info().Msg("Stopping Aforo Worker API")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

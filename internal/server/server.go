// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/showdeck/showdeck/internal/api"
	"github.com/showdeck/showdeck/internal/config"
	"github.com/showdeck/showdeck/internal/db"
	"github.com/showdeck/showdeck/internal/hub"
	"github.com/showdeck/showdeck/internal/logger"
	"github.com/showdeck/showdeck/internal/middleware"
	"github.com/showdeck/showdeck/internal/player"
	"github.com/showdeck/showdeck/internal/presentation"
	"github.com/showdeck/showdeck/internal/schedule"
)

// Server represents the HTTP server
type Server struct {
	config              *config.Config
	db                  *db.DB
	repos               *db.Repositories
	scheduleService     *schedule.Service
	presentationService *presentation.Service
	queueService        *player.QueueService
	supervisor          *player.Supervisor
	broadcastHub        *hub.Hub
	router              *gin.Engine
	server              *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, database *db.DB) *Server {
	repos := db.NewRepositories(database)
	scheduleService := schedule.NewService(repos)
	presentationService := presentation.NewService(repos)
	queueService := player.NewQueueService(repos)
	supervisor := player.NewSupervisor(cfg.Player, queueService)
	broadcastHub := hub.New(cfg.Hub.WriteTimeout)

	// Every player state change fans out to connected clients.
	supervisor.SetStateListener(func(state player.State) {
		if err := broadcastHub.Broadcast(hub.MessagePlayer, state); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to broadcast player state")
		}
	})

	return &Server{
		config:              cfg,
		db:                  database,
		repos:               repos,
		scheduleService:     scheduleService,
		presentationService: presentationService,
		queueService:        queueService,
		supervisor:          supervisor,
		broadcastHub:        broadcastHub,
	}
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	// Set Gin mode based on log level
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	// Add middleware stack
	s.router.Use(middleware.RequestLogger()) // Custom zerolog request logger
	s.router.Use(gin.Recovery())             // Panic recovery
	s.router.Use(cors.Default())             // CORS support (allows all origins)

	apiGroup := s.router.Group("/api")

	api.SetupHealthRoutes(apiGroup, s.db)
	api.SetupScheduleRoutes(apiGroup, s.scheduleService)
	api.SetupPresentationRoutes(apiGroup, s.presentationService, s.broadcastHub)
	api.SetupPlayerRoutes(apiGroup, s.supervisor, s.queueService)
	api.SetupMediaRoutes(apiGroup, s.repos.MediaFiles)
	api.SetupStateRoutes(apiGroup, s.presentationService, s.supervisor)
	api.SetupWSRoutes(apiGroup, s.broadcastHub)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.setupRouter()

	// A failed player launch is not fatal: the API keeps serving and the
	// supervisor keeps trying to reconnect while the process is alive.
	if err := s.supervisor.Start(context.Background()); err != nil {
		logger.Log.Warn().Err(err).Msg("Media player supervisor failed to start")
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Log.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Msg("Starting HTTP server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	if s.supervisor != nil {
		s.supervisor.Shutdown()
	}

	if s.broadcastHub != nil {
		s.broadcastHub.Close()
	}

	// Check if server was started before attempting shutdown
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}

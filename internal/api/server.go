package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"recommender/internal/api/handlers"
	"recommender/internal/api/middleware"
	"recommender/internal/config"
	"recommender/internal/events"
	"recommender/internal/logbuffer"
	"recommender/internal/logger"
	"recommender/internal/queue"
	"recommender/internal/stacc"
	"recommender/internal/store"
	"recommender/internal/syncer"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, st *store.Store, sink *logbuffer.Sink, client *stacc.Client, publisher queue.Publisher) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Core components
	catcher := events.NewCatcher(publisher, sink, cfg.SiteURL)
	fetcher := stacc.NewFetcher(client, sink, cfg.SiteURL, cfg.RecsTimeout)
	logFlusher := syncer.NewLogFlusher(client, sink, logger, cfg.SyncTimeout)
	catalogSyncer := syncer.NewCatalogSyncer(client, st, sink, logger, cfg.SyncTimeout)

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(catcher, logger)
	recsHandler := handlers.NewRecommendationHandler(fetcher, logger)
	credentialHandler := handlers.NewCredentialHandler(
		st, client, logger,
		cfg.PublicURL+"/sync/logs",
		cfg.PublicURL+"/sync/products",
		cfg.SyncTimeout,
	)
	syncHandler := handlers.NewSyncHandler(catalogSyncer, logFlusher, logger)
	healthHandler := handlers.NewHealthHandler(client, cfg.Version)

	// Routes
	router.GET("/health", healthHandler.Check)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/events/:type", eventHandler.Catch)
		v1.POST("/recommendations", recsHandler.Get)
		v1.POST("/credentials", credentialHandler.Save)
	}

	// Externally-triggered sync endpoints, guarded by the shared-hash check.
	sync := router.Group("/sync")
	sync.Use(middleware.SyncAuth(st, logger))
	{
		sync.GET("/products", syncHandler.Products)
		sync.GET("/logs", syncHandler.Logs)
	}

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// GetRouter exposes the router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

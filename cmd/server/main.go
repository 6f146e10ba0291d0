package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Priscasantos/landagri-b-api/internal/config"
	"github.com/Priscasantos/landagri-b-api/internal/handlers"
	"github.com/Priscasantos/landagri-b-api/internal/logger"
	"github.com/Priscasantos/landagri-b-api/internal/middleware"
	"github.com/Priscasantos/landagri-b-api/internal/services"
	"github.com/Priscasantos/landagri-b-api/internal/snapshot"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting LANDAGRI-B API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"data_dir":    cfg.Data.Dir,
	})

	// Engine: snapshot store + query service
	store := snapshot.NewStore()
	engine := services.NewEngineService(store, log)

	paths := services.CatalogPaths{
		Initiatives: cfg.Data.InitiativesPath(),
		Sensors:     cfg.Data.SensorsPath(),
		Calendar:    cfg.Data.CalendarPath(),
	}

	// Load the catalogs up front so the first query does not pay for it.
	// A failed initial load is not fatal: the server starts unready and a
	// later reload can bring it up once the data is fixed.
	if cfg.Data.LoadOnStart {
		result, err := engine.Reload(context.Background(), paths)
		if err != nil {
			log.Error("Initial catalog load failed, starting unloaded", err, map[string]interface{}{
				"initiatives": paths.Initiatives,
			})
		} else {
			log.Info("Catalogs loaded", map[string]interface{}{
				"snapshot":         result.SnapshotVersion,
				"initiatives":      result.InitiativeCount,
				"sensors":          result.SensorCount,
				"calendar_entries": result.CalendarEntries,
				"rejected":         len(result.Rejected),
			})
		}
	}

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(engine, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Register query API routes
	engineHandler := handlers.NewEngineHandler(engine, paths)

	v1 := router.Group("/api/v1")
	{
		initiatives := v1.Group("/initiatives")
		{
			initiatives.GET("", engineHandler.ListInitiatives)
			initiatives.GET("/:id/temporal-coverage", engineHandler.GetTemporalCoverage)
		}
		v1.GET("/coverage/spatial", engineHandler.GetSpatialCoverage)
		v1.GET("/sensors", engineHandler.ListSensors)
		v1.GET("/sensors/:key", engineHandler.GetSensor)
		v1.GET("/stats/summary", engineHandler.GetSummaryStats)
		v1.POST("/reload", engineHandler.Reload)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}

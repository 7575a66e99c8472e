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
	"go.uber.org/zap"

	"graphmine/internal/retrieval"
	"graphmine/internal/services"
	"graphmine/pkg/config"
	pkgerrors "graphmine/pkg/errors"
	"graphmine/pkg/logger"
)

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting graph retrieval server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	manager := services.NewServiceManager(cfg)
	defer manager.Shutdown()

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		// List registered repositories
		api.GET("/repositories", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"repositories": manager.Registry().PackageNames()})
		})

		// List graphs served by one repository
		api.GET("/repositories/:repo/graphs", func(c *gin.Context) {
			repoPkg := c.Param("repo")
			ctx := c.Request.Context()

			repo, err := manager.Registry().Get(repoPkg)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Repository not found"})
				return
			}

			names, err := repo.GraphNames(ctx)
			if err != nil {
				log.Error("Failed to list graphs", zap.String("repository", repoPkg), zap.Error(err))
				c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to list graphs"})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"repository": repo.Name(),
				"graphs":     names,
			})
		})

		// Citations for one graph
		api.GET("/repositories/:repo/graphs/:name/citations", func(c *gin.Context) {
			repoPkg := c.Param("repo")
			graphName := c.Param("name")
			ctx := c.Request.Context()

			repo, err := manager.Registry().Get(repoPkg)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Repository not found"})
				return
			}

			citations, err := repo.Citations(ctx, repo.StoredGraphName(graphName))
			if err != nil {
				if pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeCatalog) {
					c.JSON(http.StatusNotFound, gin.H{"error": "Graph not found"})
					return
				}
				log.Error("Failed to collect citations", zap.Error(err))
				c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to collect citations"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"citations": citations})
		})

		// Retrieve (download, preprocess, load) one graph
		api.POST("/repositories/:repo/graphs/:name/retrieve", func(c *gin.Context) {
			repoPkg := c.Param("repo")
			graphName := c.Param("name")
			ctx := c.Request.Context()

			var req struct {
				Directed bool `json:"directed"`
				Export   bool `json:"export"`
			}
			// Body is optional; defaults retrieve undirected without export
			_ = c.ShouldBindJSON(&req)

			r := manager.NewRetrieval(repoPkg, graphName,
				retrieval.WithDirected(req.Directed),
				retrieval.WithVerbose(true),
			)

			g, err := r.Retrieve(ctx)
			if err != nil {
				switch {
				case pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeRepository),
					pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeCatalog):
					c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				case pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeDownload):
					log.Error("Download failed", zap.Error(err))
					c.JSON(http.StatusBadGateway, gin.H{"error": "Download failed"})
				default:
					log.Error("Retrieval failed", zap.Error(err))
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Retrieval failed"})
				}
				return
			}

			if req.Export {
				if err := manager.Export(ctx, g); err != nil {
					log.Error("Export failed", zap.String("graph", g.Name()), zap.Error(err))
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Graph retrieved but export failed"})
					return
				}
			}

			c.JSON(http.StatusOK, gin.H{
				"job_id":    g.JobID,
				"graph":     g.Name(),
				"directed":  g.Directed(),
				"nodes":     g.NodeCount(),
				"edges":     g.EdgeCount(),
				"report":    g.Report(),
				"citations": g.Citations,
				"exported":  req.Export,
			})
		})
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}

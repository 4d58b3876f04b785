package main

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinwatch/config"
	"coinwatch/models"
	"coinwatch/routes"
	"coinwatch/scheduler"
	"coinwatch/services/alert"
	"coinwatch/services/mailer"
	"coinwatch/services/pipeline"
	"coinwatch/services/pricefeed"
	"coinwatch/services/store"
	"coinwatch/services/trend"
	"coinwatch/templates"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	log.Println("==============================================")
	log.Println("  Coinwatch - Starting...")
	log.Println("==============================================")

	// Load configuration; a missing SMTP password file is fatal when
	// mail is enabled.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database connection
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	// Run database migrations
	if err := runMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if err := os.MkdirAll(cfg.ArtifactDir, 0755); err != nil {
		log.Fatalf("Failed to create artifact directory: %v", err)
	}

	// Wire up the fetch -> store -> evaluate pipeline
	priceStore := store.NewPriceStore(db)
	userStore := store.NewUserStore(db)
	feedClient := pricefeed.NewClient()
	renderer := trend.NewRenderer(priceStore, cfg.ArtifactDir)
	alertMailer := mailer.NewMailer(cfg.Mail, userStore)
	evaluator := alert.NewEvaluator(priceStore, cfg.Thresholds, renderer, alertMailer)
	priceline := pipeline.New(feedClient, priceStore, evaluator, renderer, cfg.SnapshotPath)

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	tmpl, err := template.ParseFS(templates.TemplateFS, "*.html")
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}
	router.SetHTMLTemplate(tmpl)

	routes.SetupRoutes(router, cfg, userStore, priceline)

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server listening on 0.0.0.0:%s", cfg.Port)
		log.Println("==============================================")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Start background scheduler
	jobScheduler := scheduler.NewScheduler(cfg, priceline)
	jobScheduler.Start()

	gracefulShutdown(server, jobScheduler, db)
}

// runMigrations runs all database migrations
func runMigrations(db *gorm.DB) error {
	if err := models.MigratePriceModels(db); err != nil {
		return err
	}
	return models.MigrateUserModels(db)
}

// requestLogger returns a request logging middleware
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for health checks and static assets to reduce noise
		path := c.Request.URL.Path
		if path == "/health" || len(path) >= 8 && path[:8] == "/static/" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		if c.Writer.Status() >= 400 || duration > 1*time.Second {
			log.Printf("%s %s %d %v", c.Request.Method, path, c.Writer.Status(), duration)
		}
	}
}

// gracefulShutdown handles graceful shutdown of the server
func gracefulShutdown(server *http.Server, jobScheduler *scheduler.Scheduler, db *gorm.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("Received signal %v, shutting down gracefully...", sig)

	// Stop scheduler first so no cycle starts mid-shutdown
	jobScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
		log.Println("Database connection closed")
	}

	log.Println("Server shutdown completed")
}

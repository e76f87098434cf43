package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/lockedin/lockedin-web/pkg/api"
	"github.com/lockedin/lockedin-web/pkg/clients/lockedin"
	"github.com/lockedin/lockedin-web/pkg/config"
	"github.com/lockedin/lockedin-web/pkg/logger"
	"github.com/lockedin/lockedin-web/pkg/metrics"
	"github.com/lockedin/lockedin-web/pkg/middleware"
	"github.com/lockedin/lockedin-web/pkg/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, using the environment")
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize API client and services
	client := lockedin.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, zl)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	controller := services.NewViewController(client, collector, cfg, zl)
	store := services.NewSessionStore(cfg.SessionIdleTTL, time.Now, zl)
	go store.Run(ctx, cfg.SessionSweepInterval)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, zl)
	go limiter.Run(ctx, cfg.SessionSweepInterval)

	gin.SetMode(cfg.GinMode)
	if err := api.RegisterBindings(); err != nil {
		return err
	}
	tmpl, err := api.LoadTemplates()
	if err != nil {
		return err
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger(zl), middleware.SecurityHeaders(), middleware.CORS(cfg.CORSAllowedOrigin))
	router.SetHTMLTemplate(tmpl)

	// Initialize handlers
	handlers := api.NewHandlers(controller, client, zl)

	// Register routes
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.Ready)
	router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	pages := router.Group("/", limiter.Handler(), middleware.Sessions(store, cfg.SessionIdleTTL, cfg.CookieSecure))
	handlers.RegisterPages(pages)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server starting", zap.String("port", cfg.Port), zap.String("backend", cfg.APIBaseURL))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

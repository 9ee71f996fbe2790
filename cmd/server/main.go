// Logwarden - Access-Log Threat Analyzer
//
// Ingests web-server access logs and flags malicious client behavior
// using rule-based pattern and frequency analysis. This entry point
// wires the rule registry, the analysis service, and the HTTP API.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/logwarden/internal/config"
	"github.com/logwarden/internal/domain"
	"github.com/logwarden/internal/handler"
	"github.com/logwarden/internal/logger"
	"github.com/logwarden/internal/rules"
	"github.com/logwarden/internal/service"
)

func main() {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	isDev := os.Getenv("GIN_MODE") != "release"

	zapLogger, err := logger.New(isDev)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting logwarden", zap.Bool("development", isDev))

	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	zapLogger.Info("configuration loaded",
		zap.String("port", cfg.Server.Port),
		zap.String("rules_path", cfg.Detection.RulesPath),
		zap.Int("max_log_size", cfg.Detection.MaxLogSize),
	)

	// Build the rule set: a YAML rule file when configured, otherwise
	// the built-in defaults with env overrides applied.
	ruleSet, err := loadRules(cfg)
	if err != nil {
		zapLogger.Fatal("failed to load rules", zap.Error(err))
	}

	registry, err := rules.NewRegistry(ruleSet)
	if err != nil {
		zapLogger.Fatal("invalid rule configuration", zap.Error(err))
	}
	zapLogger.Info("rule registry loaded", zap.Int("rules", registry.Len()))

	analyzer := service.NewAnalyzer(registry, service.Config{
		MaxLogSize:    cfg.Detection.MaxLogSize,
		MaxLineLength: cfg.Detection.MaxLineLength,
	}, zapLogger)

	analyzeHandler := handler.NewAnalyzeHandler(analyzer, zapLogger)
	rulesHandler := handler.NewRulesHandler(registry, zapLogger)
	healthHandler := handler.NewHealthHandler(zapLogger)
	readyHandler := handler.NewReadyHandler(registry, zapLogger)

	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(handler.RecoveryMiddleware(zapLogger))
	router.Use(handler.RequestIDMiddleware())
	router.Use(handler.LoggingMiddleware(zapLogger))
	router.Use(handler.CORSMiddleware())

	router.GET("/health", healthHandler.Handle)
	router.GET("/ready", readyHandler.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyze", analyzeHandler.Handle)
		v1.GET("/rules", rulesHandler.Handle)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("server stopped")
}

// loadRules resolves the active rule set from configuration.
func loadRules(cfg *config.Config) ([]*rules.Rule, error) {
	if cfg.Detection.RulesPath != "" {
		return rules.LoadFile(cfg.Detection.RulesPath)
	}

	ruleSet := rules.DefaultRules()
	for _, r := range ruleSet {
		if r.Kind != domain.KindBruteForce {
			continue
		}
		r.Threshold = cfg.Detection.BruteForceThreshold
		r.Window = cfg.Detection.BruteForceWindow
	}
	return ruleSet, nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"smart-urban-planner/planner-backend/internal/community"
	"smart-urban-planner/planner-backend/internal/config"
	"smart-urban-planner/planner-backend/internal/environment"
	"smart-urban-planner/planner-backend/internal/environment/upstream"
	"smart-urban-planner/planner-backend/internal/insights"
	"smart-urban-planner/planner-backend/internal/reports"
	"smart-urban-planner/planner-backend/internal/simulations"
	"smart-urban-planner/planner-backend/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		// No logger yet.
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize logger
	logger, err := telemetry.NewLogger(cfg.Logging.Level, cfg.Logging.Format, !cfg.IsProduction())
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	app := newApp(cfg, logger)
	defer app.close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, logger, app)

	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
		IdleTimeout:  cfg.Server.IdleTimeout.Std(),
	}

	go func() {
		logger.Info("Starting server",
			zap.String("addr", srv.Addr),
			zap.String("metrics_provider", cfg.Environment.Provider),
			zap.String("insight_provider", cfg.AI.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// app holds the wired services.
type app struct {
	environment *environment.Handler
	insights    *insights.Handler
	simulations *simulations.Handler
	community   *community.Handler
	reports     *reports.Handler
	cache       *environment.SnapshotCache
}

func newApp(cfg *config.Config, logger *zap.Logger) *app {
	// Environmental metrics
	synthetic := environment.NewSyntheticSource(cfg.Environment.Seed)
	var primary environment.Source
	if cfg.Environment.Provider == "external" {
		httpClient := &http.Client{Timeout: cfg.Environment.Timeout.Std()}
		breaker := upstream.DefaultBreakerSettings()
		primary = environment.NewExternalSource(
			environment.ExternalConfig{
				OpenAQURL:    cfg.Environment.OpenAQURL,
				OpenAQAPIKey: cfg.Environment.OpenAQAPIKey,
				PowerURL:     cfg.Environment.PowerURL,
				SearchRadius: environment.DefaultExternalConfig().SearchRadius,
			},
			upstream.NewClient(httpClient, "openaq", cfg.Environment.UserAgent, breaker),
			upstream.NewClient(httpClient, "nasa-power", cfg.Environment.UserAgent, breaker),
			synthetic,
			logger.Named("environment"),
		)
	}

	var cache *environment.SnapshotCache
	if ttl := cfg.Environment.CacheTTL.Std(); ttl > 0 {
		cache = environment.NewSnapshotCache(ttl)
	}
	envService := environment.NewService(primary, synthetic, cache, cfg.Environment.Timeout.Std(), logger.Named("environment"))

	// Insights
	var source insights.Source
	if cfg.AI.Provider == "openai" {
		llmCfg := insights.LLMConfig{
			APIKey:      cfg.AI.APIKey,
			BaseURL:     cfg.AI.BaseURL,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			MaxTokens:   cfg.AI.MaxTokens,
		}
		source = insights.NewLLMSource(insights.NewOpenAIClient(llmCfg), llmCfg)
	}
	insightService := insights.NewService(source, insights.NewRuleBased(nil), cfg.AI.Timeout.Std(), logger.Named("insights"))

	// Stores
	simService := simulations.NewService(simulations.NewMemoryRepository(), logger.Named("simulations"))
	communityService := community.NewService(community.NewMemoryRepository(), logger.Named("community"))

	// Reports
	reportService := reports.NewService(simService, communityService, logger.Named("reports"))

	return &app{
		environment: environment.NewHandler(envService, logger),
		insights:    insights.NewHandler(insightService, logger),
		simulations: simulations.NewHandler(simService, logger),
		community:   community.NewHandler(communityService, logger),
		reports:     reports.NewHandler(reportService, logger),
		cache:       cache,
	}
}

func (a *app) close() {
	if a.cache != nil {
		a.cache.Stop()
	}
}

func newRouter(cfg *config.Config, logger *zap.Logger, a *app) *gin.Engine {
	router := gin.New()
	router.Use(telemetry.GinLogger(logger), telemetry.GinRecovery(logger))
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))

	api := router.Group("/api/v1")
	{
		a.environment.RegisterRoutes(api)
		a.insights.RegisterRoutes(api)
		a.simulations.RegisterRoutes(api)
		a.community.RegisterRoutes(api)
		a.reports.RegisterRoutes(api)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   "smart-urban-planner",
			"timestamp": time.Now().UTC(),
		})
	})

	// Prometheus
	router.GET("/metrics", telemetry.Handler())

	return router
}

// corsMiddleware allows the configured origins; "*" allows any.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	allowAll := false
	origins := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		origins[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origins[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

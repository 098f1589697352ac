package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof" //nolint:gosec
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/tb0hdan/kmu-curator/pkg/cache"
	"github.com/tb0hdan/kmu-curator/pkg/catalog"
	"github.com/tb0hdan/kmu-curator/pkg/config"
	"github.com/tb0hdan/kmu-curator/pkg/metrics"
	"github.com/tb0hdan/kmu-curator/pkg/moderation"
	"github.com/tb0hdan/kmu-curator/pkg/ranking"
	"github.com/tb0hdan/kmu-curator/pkg/relevance"
	"github.com/tb0hdan/kmu-curator/pkg/server"
	"github.com/tb0hdan/kmu-curator/pkg/storage"
	"github.com/tb0hdan/kmu-curator/pkg/tools"
	"github.com/tb0hdan/kmu-curator/pkg/tools/answercache"
	"github.com/tb0hdan/kmu-curator/pkg/tools/ask"
	"github.com/tb0hdan/kmu-curator/pkg/tools/history"
	"github.com/tb0hdan/kmu-curator/pkg/tools/ingest"
	"github.com/tb0hdan/kmu-curator/pkg/tools/moderate"
)

const (
	ServerName      = "kmu-curator"
	ServiceName     = "KMU AI Tool Curator MCP Server"
	ShutdownTimeout = 10 * time.Second
)

//go:embed VERSION
var Version string

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	// Sanitize version
	version := strings.TrimSpace(Version)
	if cfg.PrintVersion {
		fmt.Printf("%s Version: %s\n", ServiceName, version)
		os.Exit(0)
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger.Debug().Msg("debug mode enabled")
	}

	weights := cfg.Weights()
	if err := weights.Validate(); err != nil {
		logger.Fatal().Msgf("Invalid scoring weights: %v", err)
	}

	impl := &mcp.Implementation{
		Name:    ServerName,
		Version: version,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize storage
	storeCfg := storage.Config{
		DatabasePath: cfg.DatabasePath,
		Debug:        cfg.Debug,
	}
	store, err := storage.NewSQLiteStorage(storeCfg)
	if err != nil {
		logger.Fatal().Msgf("Failed to initialize storage: %v", err)
	}
	logger.Info().Msgf("Database initialized at %s", cfg.DatabasePath)

	// Answers live in SQLite unless Redis is configured.
	var (
		answerStore cache.Store = store
		closers     []io.Closer
	)
	if cfg.RedisAddr != "" {
		redisStore, err := cache.NewRedisStore(cache.RedisConfig{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Fatal().Msgf("Failed to connect to Redis: %v", err)
		}
		answerStore = redisStore
		closers = append(closers, redisStore)
		logger.Info().Msgf("Answer cache backed by Redis at %s", cfg.RedisAddr)
	}

	answers := cache.New(answerStore, logger, m)
	workflow := moderation.NewWorkflow(store, logger, m).InvalidateOnChange(answers)
	responder := ranking.NewResponder(workflow, relevance.NewScorer(weights), answers, logger, m)

	if cfg.Seed {
		cat, err := catalog.Default()
		if err != nil {
			logger.Fatal().Msgf("Failed to load catalog: %v", err)
		}
		ids := cat.Seed(signalCtx, workflow)
		logger.Info().Msgf("Seeded %d of %d catalog entries as pending", len(ids), cat.Len())
	}

	srv := server.NewServer(impl, server.Deps{
		Storage:   store,
		Workflow:  workflow,
		Responder: responder,
		Answers:   answers,
		Metrics:   m,
		Closers:   closers,
	})

	// Create tool instances.
	toolList := []tools.Tool{
		ask.New(logger),
		moderate.New(logger),
		ingest.New(logger),
		answercache.New(logger),
		history.New(logger),
	}

	// Register all tools
	for _, tool := range toolList {
		if err := tool.Register(srv); err != nil {
			logger.Error().Msgf("Failed to register tool: %v", err)
		}
	}
	// Create HTTP handler for MCP server
	// Stateless mode avoids "session not found" errors after server restart
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return &srv.Server
	}, &mcp.StreamableHTTPOptions{
		Stateless: true,
	})

	http.Handle("/mcp", handler)
	http.Handle("/metrics", m.Handler())

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"service": ServiceName,
			"version": version,
			"endpoints": map[string]string{
				"mcp":     "/mcp",
				"metrics": "/metrics",
			},
		})
	})

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info().Msgf("%s starting on address %s", ServiceName, cfg.BindAddr)
	logger.Info().Msgf("MCP endpoint available at: http://%s/mcp", cfg.BindAddr)

	go func() {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Msgf("%s failed to start: %v", ServerName, err)
		}
	}()
	<-signalCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Msgf("HTTP shutdown error: %v", err)
	}
	// Shutdown MCP server
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Msgf("%s shutdown error: %v", ServiceName, err)
	} else {
		logger.Info().Msgf("%s shutdown complete", ServiceName)
	}
}

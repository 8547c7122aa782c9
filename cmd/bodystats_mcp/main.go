// Package main runs the body stats MCP server over stdio (for local assistant use).
// The same MCP server is also mounted on the main backend at /mcp over HTTP,
// so you can use either: stdio (this cmd) or the backend URL (no extra deploy).
package main

import (
	"context"
	"flag"
	"os"

	"github.com/2beens/coachstats/internal/bodystats/analysis"
	bodystatsmcp "github.com/2beens/coachstats/internal/bodystats/mcp"
	"github.com/2beens/coachstats/internal/bodystats/measurements"
	"github.com/2beens/coachstats/internal/bodystats/performance"
	"github.com/2beens/coachstats/internal/bodystats/photos"
	"github.com/2beens/coachstats/internal/cache"
	"github.com/2beens/coachstats/internal/config"
	"github.com/2beens/coachstats/internal/db"
	"github.com/2beens/coachstats/internal/logging"
	"github.com/2beens/coachstats/internal/telemetry/metrics"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// stdout is the MCP stream
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.LogsPath,
		LogToStderr:   true,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
		Environment:   cfg.Environment,
		ServiceName:   "coachstats-mcp",
	})

	ctx := context.Background()
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBPassword:     os.Getenv("COACHSTATS_POSTGRES_PASS"),
		TracingEnabled: false,
	})
	if err != nil {
		log.Fatalf("db pool: %v", err)
	}
	defer dbPool.Close()

	// not scraped, the stdio server has no metrics endpoint
	metricsManager := metrics.NewManager("coachstats", "mcp", prometheus.NewRegistry())

	engine, err := analysis.NewEngine(cfg.Analysis)
	if err != nil {
		log.Fatalf("analysis engine: %v", err)
	}

	measurementsRepo := measurements.NewRepo(dbPool)
	sessionsRepo := performance.NewRepo(dbPool)
	// tools only run dry analyses, so no cache or publisher is needed
	analysisService := analysis.NewService(analysis.NewServiceParams{
		Measurements:   measurementsRepo,
		Sessions:       sessionsRepo,
		History:        analysis.NewHistoryRepo(dbPool),
		Engine:         engine,
		WindowDays:     cfg.Analysis.PerformanceWindowDays,
		MetricsManager: metricsManager,
	})

	server := bodystatsmcp.NewServer(bodystatsmcp.NewContextService(bodystatsmcp.ContextServiceParams{
		Schema:       bodystatsmcp.NewPoolSchemaRepo(dbPool),
		Measurements: measurementsRepo,
		Photos:       photos.NewRepo(dbPool),
		Sessions:     sessionsRepo,
		Analyzer:     analysisService,
		Calculator:   cache.NewCompositionCache(cfg.CompositionCacheSizeMB, metricsManager),
	}))

	log.Infof("bodystats mcp server running on stdio [%s]", cfg.Environment)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("mcp server: %s", err)
	}
}

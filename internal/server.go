package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/coachstats/internal/auth"
	"github.com/2beens/coachstats/internal/bodystats/adaptation"
	"github.com/2beens/coachstats/internal/bodystats/analysis"
	"github.com/2beens/coachstats/internal/bodystats/evolution"
	"github.com/2beens/coachstats/internal/bodystats/handlers"
	bodystatsmcp "github.com/2beens/coachstats/internal/bodystats/mcp"
	"github.com/2beens/coachstats/internal/bodystats/measurements"
	"github.com/2beens/coachstats/internal/bodystats/performance"
	"github.com/2beens/coachstats/internal/bodystats/photos"
	"github.com/2beens/coachstats/internal/cache"
	"github.com/2beens/coachstats/internal/config"
	"github.com/2beens/coachstats/internal/db"
	"github.com/2beens/coachstats/internal/middleware"
	"github.com/2beens/coachstats/internal/telemetry/metrics"
	"github.com/2beens/coachstats/internal/telemetry/tracing"
	"github.com/2beens/coachstats/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string
	mcpSecret         string // shared with MCP clients, MCP is off when empty

	config   *config.Config
	dbPool   *pgxpool.Pool
	polarity evolution.Polarity

	redisClient      *redis.Client
	loginChecker     auth.Checker
	compositionCache *cache.CompositionCache
	// nil when publishing is disabled
	kafkaProducer *analysis.KafkaProducer
	publisher     *analysis.Publisher
	engine        *adaptation.Engine

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	PostgresPassword        string
	MCPSecret               string
	DevAuthToken            string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	} else if params.Config.ApplyDBSchema {
		if err := db.ApplySchema(ctx, dbPool); err != nil {
			return nil, err
		}
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("coachstats", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "coachstats", rdb)
	if err != nil {
		return nil, err
	}

	engine, err := analysis.NewEngine(params.Config.Analysis)
	if err != nil {
		return nil, fmt.Errorf("analysis engine: %w", err)
	}
	polarity, err := evolution.DefaultPolarity().WithOverrides(params.Config.Analysis.Polarity)
	if err != nil {
		return nil, fmt.Errorf("polarity: %w", err)
	}

	topic := params.Config.KafkaWorkoutTopic
	if topic == "" {
		topic = analysis.DefaultWorkoutTopic
	}
	var kafkaProducer *analysis.KafkaProducer
	var publisher *analysis.Publisher
	if params.Config.KafkaPublishDisabled || len(params.Config.KafkaBrokers) == 0 {
		log.Warnln("kafka publishing disabled, workout regeneration requests are dropped")
		publisher = analysis.NewPublisher(analysis.DiscardWriter{}, topic, metricsManager)
	} else {
		kafkaProducer = analysis.NewKafkaProducer(params.Config.KafkaBrokers)
		publisher = analysis.NewPublisher(kafkaProducer, topic, metricsManager)
	}

	var loginChecker auth.Checker = auth.NewLoginChecker(auth.DefaultTTL, rdb)
	if params.DevAuthToken != "" && params.Config.Environment == "development" {
		log.Warnln("using the dev auth token, platform sessions are not checked")
		testChecker := auth.NewLoginTestChecker()
		testChecker.LoggedSessions[params.DevAuthToken] = true
		loginChecker = testChecker
	}

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		polarity:    polarity,
		versionInfo: params.VersionInfo,
		mcpSecret:   params.MCPSecret,

		redisClient:      rdb,
		loginChecker:     loginChecker,
		compositionCache: cache.NewCompositionCache(params.Config.CompositionCacheSizeMB, metricsManager),
		kafkaProducer:    kafkaProducer,
		publisher:        publisher,
		engine:           engine,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	measurementsRepo := measurements.NewRepo(s.dbPool)
	photosRepo := photos.NewRepo(s.dbPool)
	sessionsRepo := performance.NewRepo(s.dbPool)

	analysisService := analysis.NewService(analysis.NewServiceParams{
		Measurements:   measurementsRepo,
		Sessions:       sessionsRepo,
		History:        analysis.NewHistoryRepo(s.dbPool),
		Cache:          cache.NewRecommendationCache(s.redisClient, cache.DefaultRecommendationTTL),
		Publisher:      s.publisher,
		Engine:         s.engine,
		WindowDays:     s.config.Analysis.PerformanceWindowDays,
		MetricsManager: s.metricsManager,
	})

	r.HandleFunc("/", s.handleRoot).Methods("GET")
	r.HandleFunc("/version", s.handleVersion).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	subjectsHandler := handlers.NewSubjectsHandler(measurementsRepo)
	r.HandleFunc("/subjects/{id}", subjectsHandler.HandleUpsert).Methods("PUT", "OPTIONS").Name("upsert-subject")
	r.HandleFunc("/subjects/{id}", subjectsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-subject")

	measurementsHandler := handlers.NewMeasurementsHandler(
		measurementsRepo,
		measurementsRepo,
		s.compositionCache,
		s.metricsManager,
	)
	r.HandleFunc("/composition", measurementsHandler.HandleComposition).Methods("POST", "OPTIONS").Name("composition")
	r.HandleFunc("/subjects/{id}/measurements", measurementsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-measurement")
	r.HandleFunc("/subjects/{id}/measurements", measurementsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-measurements")
	r.HandleFunc("/subjects/{id}/measurements/{mid}", measurementsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-measurement")
	r.HandleFunc("/subjects/{id}/measurements/{mid}", measurementsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-measurement")

	evolutionHandler := handlers.NewEvolutionHandler(measurementsRepo, measurementsRepo, s.polarity)
	r.HandleFunc("/subjects/{id}/evolution", evolutionHandler.HandleEvolution).Methods("GET", "OPTIONS").Name("evolution")

	photosHandler := handlers.NewPhotosHandler(photosRepo)
	r.HandleFunc("/subjects/{id}/photos", photosHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-photo")
	r.HandleFunc("/subjects/{id}/photos/timeline", photosHandler.HandleTimeline).Methods("GET", "OPTIONS").Name("photo-timeline")

	performanceHandler := handlers.NewPerformanceHandler(sessionsRepo, nil)
	r.HandleFunc("/subjects/{id}/sessions", performanceHandler.HandleAddSession).Methods("POST", "OPTIONS").Name("new-session")
	r.HandleFunc("/subjects/{id}/performance", performanceHandler.HandleSummary).Methods("GET", "OPTIONS").Name("performance")
	r.HandleFunc("/exercises/{name}/muscle-group", performanceHandler.HandleSetMuscleGroup).Methods("PUT", "OPTIONS").Name("set-muscle-group")

	// every stored analysis can trigger a program regeneration, hence the per subject limit
	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	analysisHandler := analysis.NewHandler(analysisService)
	analysisRateLimit := middleware.RateLimit(
		reqRateLimiter,
		s.metricsManager,
		func(r *http.Request) string {
			return "analysis::" + mux.Vars(r)["id"]
		},
		s.config.AnalysisRateLimitAllowedPerMin,
	)
	r.Handle("/subjects/{id}/analysis", analysisRateLimit(http.HandlerFunc(analysisHandler.HandleAnalyze))).Methods("POST", "OPTIONS").Name("analyze")
	r.HandleFunc("/subjects/{id}/analysis/latest", analysisHandler.HandleLatest).Methods("GET", "OPTIONS").Name("latest-analysis")
	r.HandleFunc("/subjects/{id}/analysis/history", analysisHandler.HandleHistory).Methods("GET", "OPTIONS").Name("analysis-history")

	if s.config.MCPEnabled && s.mcpSecret != "" {
		mcpServer := bodystatsmcp.NewServer(bodystatsmcp.NewContextService(bodystatsmcp.ContextServiceParams{
			Schema:       bodystatsmcp.NewPoolSchemaRepo(s.dbPool),
			Measurements: measurementsRepo,
			Photos:       photosRepo,
			Sessions:     sessionsRepo,
			Analyzer:     analysisService,
			Calculator:   s.compositionCache,
		}))
		mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return mcpServer
		}, nil)
		r.PathPrefix("/mcp").Handler(mcpHandler)
		log.Debugln("mcp server mounted at /mcp")
	}

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(
		s.mcpSecret,
		s.loginChecker,
	)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "coachstats")
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, s.versionInfo)
}

type healthResponse struct {
	DB    string `json:"db"`
	Redis string `json:"redis"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{DB: "ok", Redis: "ok"}
	status := http.StatusOK
	if err := s.dbPool.Ping(ctx); err != nil {
		log.Errorf("health: db ping: %s", err)
		resp.DB, status = "down", http.StatusServiceUnavailable
	}
	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		log.Errorf("health: redis ping: %s", err)
		resp.Redis, status = "down", http.StatusServiceUnavailable
	}

	if err := pkg.WriteJSON(w, resp, status); err != nil {
		log.Errorf("health: %s", err)
	}
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// stop taking requests first, in-flight analyses may still publish
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.kafkaProducer != nil {
		if err := s.kafkaProducer.Close(); err != nil {
			log.Errorf("failed to close kafka producer: %s", err)
		}
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}

package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"github.com/2beens/wodhub/internal/auth"
	"github.com/2beens/wodhub/internal/catalog"
	"github.com/2beens/wodhub/internal/config"
	"github.com/2beens/wodhub/internal/db"
	"github.com/2beens/wodhub/internal/misc"
	"github.com/2beens/wodhub/internal/notifications"
	"github.com/2beens/wodhub/internal/participants"
	"github.com/2beens/wodhub/internal/programs"
	"github.com/2beens/wodhub/internal/realtime"
	"github.com/2beens/wodhub/internal/records"
	"github.com/2beens/wodhub/internal/telemetry/metrics"
	"github.com/2beens/wodhub/internal/telemetry/tracing"
	"github.com/2beens/wodhub/internal/users"
)

const sessionSweepInterval = 8 * time.Hour

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	authService *auth.Service

	handlers   handlers
	dispatcher *notifications.Dispatcher
	hub        *realtime.Hub
	bus        *realtime.Bus
	background sync.WaitGroup

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	JWTSecret               string
	DBPassword              string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	if params.JWTSecret == "" {
		return nil, errors.New("jwt secret not set")
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     params.DBPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}
	if err := db.Migrate(ctx, dbPool); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.NewRegistry(params.VersionInfo, pgxpoolCollector)
	metricsManager := metrics.NewManager("wodhub", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
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
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "wodhub-service", rdb)
	if err != nil {
		return nil, err
	}

	authService := auth.NewAuthService(cfg.SessionTTL.Duration, params.JWTSecret, rdb)

	catalogService := catalog.NewService(catalog.NewRepo(dbPool), cfg.CatalogCacheSizeMB, cfg.CatalogCacheTTL.Duration)
	if cfg.SeedCatalog {
		seeded, err := catalogService.Seed(ctx)
		if err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		log.Debugf("catalog seeded: %t", seeded)
	}

	hub := realtime.NewHub(metricsManager)
	bus := realtime.NewBus(rdb, realtime.DefaultChannel, hub)
	dispatcher := notifications.NewDispatcher(bus, notifications.DispatcherConfig{
		Workers:     cfg.DispatcherWorkers,
		QueueSize:   cfg.DispatcherQueueSize,
		PushTimeout: cfg.DispatcherPushTimeout.Duration,
	}, metricsManager)
	notificationsService := notifications.NewService(notifications.NewRepo(dbPool), dispatcher)

	participantsRepo := participants.NewRepo(dbPool)

	s := &Server{
		config:      cfg,
		dbPool:      dbPool,
		redisClient: rdb,
		authService: authService,

		handlers: handlers{
			misc: misc.NewHandler(params.VersionInfo, map[string]misc.HealthCheck{
				"postgres": dbPool.Ping,
				"redis": func(ctx context.Context) error {
					return rdb.Ping(ctx).Err()
				},
			}),
			users:   users.NewHandler(users.NewService(users.NewRepo(dbPool), authService)),
			catalog: catalog.NewHandler(catalogService),
			programs: programs.NewHandler(
				programs.NewService(programs.NewRepo(dbPool), notificationsService, metricsManager),
			),
			participants: participants.NewHandler(
				participants.NewService(participantsRepo, notificationsService, metricsManager),
			),
			notifications: notifications.NewHandler(notificationsService),
			records: records.NewHandler(
				records.NewService(records.NewRepo(dbPool), participantsRepo, metricsManager),
			),
			realtime: realtime.NewHandler(hub, authService, cfg.CorsAllowedOrigins),
		},
		dispatcher: dispatcher,
		hub:        hub,
		bus:        bus,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	return s, nil
}

// Serve starts the HTTP servers and the background loops. The loops stop when ctx is cancelled.
func (s *Server) Serve(ctx context.Context, host string, port int) {
	router := newRouter(
		s.handlers,
		s.authService,
		redis_rate.NewLimiter(s.redisClient),
		s.config,
		s.metricsManager,
	)

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      rootHandler(router, s.handlers.realtime),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", otelhttp.NewHandler(
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
		"metrics",
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	s.dispatcher.Start(ctx)

	s.background.Add(2)
	go func() {
		defer s.background.Done()
		if err := s.bus.Run(ctx); err != nil {
			log.Errorf("realtime bus: %s", err)
		}
	}()
	go func() {
		defer s.background.Done()
		s.authService.RunSweeper(ctx, sessionSweepInterval)
	}()

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

// GracefulShutdown expects the context given to Serve to be cancelled already.
func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	var err error
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown http server: %w", shutdownErr))
		}
		log.Warnln("server shut down")
	}

	// hijacked websocket connections are not closed by http.Server.Shutdown
	s.hub.Close()
	log.Trace("realtime clients disconnected ...")

	if dispatcherErr := s.dispatcher.Shutdown(ctx); dispatcherErr != nil {
		err = multierr.Append(err, fmt.Errorf("drain notifications dispatcher: %w", dispatcherErr))
	}
	s.background.Wait()

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if closeErr := s.redisClient.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close redis client: %w", closeErr))
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
		if shutdownErr := s.metricsHttpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown metrics server: %w", shutdownErr))
		}
		log.Warnln("metrics server shut down")
	}

	return err
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

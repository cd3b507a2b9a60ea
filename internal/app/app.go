package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tournament-api/external/firebase"
	"github.com/riskibarqy/tournament-api/internal/config"
	"github.com/riskibarqy/tournament-api/internal/domain/match"
	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
	"github.com/riskibarqy/tournament-api/internal/domain/matchstats"
	"github.com/riskibarqy/tournament-api/internal/domain/player"
	"github.com/riskibarqy/tournament-api/internal/domain/team"
	"github.com/riskibarqy/tournament-api/internal/domain/tournament"
	"github.com/riskibarqy/tournament-api/internal/infrastructure/account/jwtauth"
	"github.com/riskibarqy/tournament-api/internal/infrastructure/realtime"
	"github.com/riskibarqy/tournament-api/internal/infrastructure/realtime/livefeed"
	cacherepo "github.com/riskibarqy/tournament-api/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/tournament-api/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tournament-api/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/tournament-api/internal/interfaces/httpapi"
	"github.com/riskibarqy/tournament-api/internal/observability"
	"github.com/riskibarqy/tournament-api/internal/platform/cache"
	"github.com/riskibarqy/tournament-api/internal/platform/logging"
	"github.com/riskibarqy/tournament-api/internal/platform/resilience"
	"github.com/riskibarqy/tournament-api/internal/usecase"
)

// App owns the HTTP server and everything that must be released on shutdown.
type App struct {
	Server *http.Server

	db         *sqlx.DB
	dispatcher *realtime.Dispatcher
	hub        *livefeed.Hub
	logger     *logging.Logger
}

type repositories struct {
	matches     match.Repository
	events      matchevent.Repository
	stats       matchstats.Repository
	players     player.Repository
	teams       team.Repository
	tournaments tournament.Repository
	tx          usecase.Transactor
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	verifier, err := jwtauth.NewVerifier(jwtauth.Config{
		Secret:   cfg.AuthJWTSecret,
		Issuer:   cfg.AuthJWTIssuer,
		CacheTTL: cfg.AuthCacheTTL,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build jwt verifier: %w", err)
	}

	a := &App{logger: logger}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	repos, err := a.openRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.CacheEnabled {
		repos = withReadCache(repos, cfg.CacheTTL, metrics)
	}

	notifier, err := a.buildNotifier(cfg, metrics)
	if err != nil {
		_ = a.closeDB()
		return nil, err
	}

	locks := &usecase.MatchLocks{}
	matchSvc := usecase.NewMatchService(repos.matches, repos.events, repos.stats, repos.tournaments, repos.tx, locks, notifier, logger)
	statsSvc := usecase.NewMatchStatisticsService(repos.stats, repos.matches, repos.players, repos.teams, repos.tournaments, repos.tx, logger)
	eventSvc := usecase.NewMatchEventService(repos.events, repos.matches, repos.players, repos.teams, statsSvc, matchSvc, repos.tx, locks, notifier, logger)
	configSvc := usecase.NewTournamentConfigurationService(repos.tournaments, repos.teams, repos.tx, logger)

	var liveFeed httpapi.LiveFeed
	if a.hub != nil {
		liveFeed = a.hub
	}
	handler := httpapi.NewHandler(matchSvc, eventSvc, statsSvc, configSvc, liveFeed, logger)

	routerCfg := httpapi.RouterConfig{CORSAllowedOrigins: cfg.CORSAllowedOrigins}
	if metrics != nil {
		routerCfg.Metrics = metrics
		routerCfg.MetricsHandler = metrics.Handler()
	}
	router := httpapi.NewRouter(handler, verifier, logger, routerCfg)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return a, nil
}

func (a *App) openRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		a.logger.Warn("using in-memory storage; data is lost on restart")
		return memoryRepositories(), nil
	case config.StorageDriverPostgres:
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		a.db = db
		if cfg.AppEnv == config.EnvDev {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				_ = a.closeDB()
				return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
			}
		}
		return postgresRepositories(db), nil
	default:
		return repositories{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func memoryRepositories() repositories {
	matches := memory.NewMatchRepository(nil)
	events := memory.NewMatchEventRepository(matches)
	stats := memory.NewMatchStatisticsRepository(matches)
	return repositories{
		matches:     matches,
		events:      events,
		stats:       stats,
		players:     memory.NewPlayerRepository(memory.SeedPlayers()),
		teams:       memory.NewTeamRepository(memory.SeedTeams()),
		tournaments: memory.NewTournamentRepository(memory.SeedTournaments(), memory.SeedConfigurations(), memory.SeedTournamentTeams()),
		tx:          memory.NewTransactor(),
	}
}

func postgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		matches:     postgres.NewMatchRepository(db),
		events:      postgres.NewMatchEventRepository(db),
		stats:       postgres.NewMatchStatisticsRepository(db),
		players:     postgres.NewPlayerRepository(db),
		teams:       postgres.NewTeamRepository(db),
		tournaments: postgres.NewTournamentRepository(db),
		tx:          postgres.NewTransactor(db),
	}
}

// withReadCache fronts the reference-data repositories. Matches, events and
// statistics change on every request and stay uncached.
func withReadCache(repos repositories, ttl time.Duration, metrics *observability.Metrics) repositories {
	players := cache.NewStore(ttl)
	teams := cache.NewStore(ttl)
	tournaments := cache.NewStore(ttl)
	metrics.RegisterCacheStats("players", players.Stats)
	metrics.RegisterCacheStats("teams", teams.Stats)
	metrics.RegisterCacheStats("tournaments", tournaments.Stats)

	repos.players = cacherepo.NewPlayerRepository(repos.players, players)
	repos.teams = cacherepo.NewTeamRepository(repos.teams, teams)
	repos.tournaments = cacherepo.NewTournamentRepository(repos.tournaments, tournaments)
	return repos
}

func (a *App) buildNotifier(cfg config.Config, metrics *observability.Metrics) (*realtime.Dispatcher, error) {
	var sinks []realtime.Sink
	if cfg.FirebaseEnabled {
		client, err := firebase.NewClient(firebase.ClientConfig{
			DatabaseURL: cfg.FirebaseDatabaseURL,
			AuthToken:   cfg.FirebaseAuthToken,
			Timeout:     cfg.FirebaseTimeout,
			Logger:      a.logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FirebaseCircuitEnabled,
				FailureThreshold: cfg.FirebaseCircuitFailureCount,
				OpenTimeout:      cfg.FirebaseCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FirebaseCircuitHalfOpenMaxReq,
				OnStateChange:    a.circuitListener(metrics),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("build firebase client: %w", err)
		}
		sinks = append(sinks, client)
	}
	if cfg.LiveFeedEnabled {
		a.hub = livefeed.NewHub(cfg.CORSAllowedOrigins, a.logger)
		metrics.RegisterGauge("livefeed", "connections", "Open live feed websocket connections.", func() float64 {
			return float64(a.hub.Connections())
		})
		sinks = append(sinks, a.hub)
	}

	var observer realtime.DeliveryObserver
	if metrics != nil {
		observer = metrics
	}
	dispatcher, err := realtime.NewDispatcher(realtime.DispatcherConfig{
		Workers: cfg.RealtimeWorkers,
		Timeout: cfg.RealtimeTimeout,
		Backlog: cfg.RealtimeBacklog,
	}, sinks, observer, a.logger)
	if err != nil {
		return nil, err
	}
	a.dispatcher = dispatcher
	metrics.RegisterGauge("realtime", "busy_workers", "Realtime delivery workers currently running.", func() float64 {
		return float64(dispatcher.Running())
	})

	a.logger.Info("realtime mirror configured", "sinks", len(sinks), "workers", cfg.RealtimeWorkers)
	return dispatcher, nil
}

// circuitListener logs breaker state changes and feeds the circuit gauges.
func (a *App) circuitListener(metrics *observability.Metrics) resilience.StateListener {
	return func(name string, from, to resilience.CircuitState) {
		a.logger.Warn("circuit breaker state changed", "breaker", name, "from", string(from), "to", string(to))
		metrics.ObserveCircuitTransition(name, from, to)
	}
}

// Close drains pending realtime deliveries, then drops websocket clients and
// the database pool. Call it after the HTTP server has shut down.
func (a *App) Close(timeout time.Duration) error {
	var errs []error
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(timeout); err != nil {
			errs = append(errs, err)
		}
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if err := a.closeDB(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeDB() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	if err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

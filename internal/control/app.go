package control

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vietddude/faultline/internal/core/config"
	"github.com/vietddude/faultline/internal/health"
	redisclient "github.com/vietddude/faultline/internal/infra/redis"
	"github.com/vietddude/faultline/internal/infra/sink"
	"github.com/vietddude/faultline/internal/infra/storage"
	"github.com/vietddude/faultline/internal/infra/storage/memory"
	"github.com/vietddude/faultline/internal/infra/storage/postgres"
	"github.com/vietddude/faultline/internal/notify"
	"github.com/vietddude/faultline/internal/resilience"
	"github.com/vietddude/faultline/internal/scenario"
)

// App hosts one engine session together with its diagnostics surfaces.
type App struct {
	cfg          Config
	engine       *resilience.Engine
	session      *scenario.Session
	presenter    *notify.LogPresenter
	archive      storage.ErrorArchive
	forwarder    *sink.Forwarder
	healthServer *health.Server
	grpcServer   *health.GRPCServer
	db           *postgres.DB
	redisClient  *redisclient.Client
	log          *slog.Logger
}

// Config holds the application configuration.
type Config struct {
	Port     int
	GRPCPort int
	Engine   config.EngineConfig
	Regions  []config.RegionConfig
	Redis    redisclient.Config
	Database postgres.Config
	Sink     config.SinkConfig
}

// FromAppConfig maps the file configuration onto the application config.
func FromAppConfig(cfg *config.AppConfig) Config {
	return Config{
		Port:     cfg.Server.Port,
		GRPCPort: cfg.Server.GRPCPort,
		Engine:   cfg.Engine,
		Regions:  cfg.Regions,
		Redis:    cfg.Redis,
		Database: cfg.Database,
		Sink:     cfg.Sink,
	}
}

// NewApp creates an App with all dependencies initialized.
func NewApp(cfg Config) (*App, error) {
	log := slog.Default()

	// 1. Initialize archive storage
	var (
		archive storage.ErrorArchive
		db      *postgres.DB
	)
	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
		archive = postgres.NewArchiveRepo(db)
		log.Info("Using PostgreSQL archive")
	} else {
		archive = memory.NewArchive(1000)
		log.Info("Using memory archive")
	}
	writers := []sink.Writer{sink.ArchiveWriter{Archive: archive}}

	// 2. Initialize Redis stream
	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, error stream disabled", "error", err)
		} else {
			writers = append(writers, redisclient.NewErrorStream(redisClient, cfg.Sink.Stream, cfg.Sink.StreamMax))
		}
	}

	// 3. Initialize engine over the session surface
	session := scenario.NewSession()
	presenter := notify.NewLogPresenter(log)
	engine := resilience.New(resilience.Options{
		Config:    cfg.Engine.EngineSettings(),
		Surface:   session.Surface,
		Presenter: presenter,
		Reinit:    session.Reinit,
		Logger:    log,
	})

	regions := cfg.Regions
	if len(regions) == 0 {
		regions = scenario.DefaultRegions()
	}
	for _, rc := range regions {
		region, err := rc.EngineRegion()
		if err == nil {
			err = engine.RegisterRegion(rc.Name, region)
		}
		if err != nil {
			engine.Close()
			if redisClient != nil {
				_ = redisClient.Close()
			}
			if db != nil {
				_ = db.Close()
			}
			return nil, fmt.Errorf("failed to register region %q: %w", rc.Name, err)
		}
	}

	forwarder := sink.NewForwarder(cfg.Sink.BufferSize, writers...)
	engine.AddGlobalErrorHandler(forwarder.Handle)

	// 4. Initialize health surfaces
	healthServer := health.NewServer(engine, cfg.Port)
	if db != nil {
		healthServer.AddChecker("database", db)
	}
	if redisClient != nil {
		healthServer.AddChecker("redis", redisClient)
	}

	app := &App{
		cfg:          cfg,
		engine:       engine,
		session:      session,
		presenter:    presenter,
		archive:      archive,
		forwarder:    forwarder,
		healthServer: healthServer,
		db:           db,
		redisClient:  redisClient,
		log:          log,
	}
	healthServer.Handle("/report", http.HandlerFunc(app.handleReport))
	healthServer.Handle("/dispatch", http.HandlerFunc(app.handleDispatch))
	healthServer.Handle("/presentation", http.HandlerFunc(app.handlePresentation))

	if cfg.GRPCPort > 0 {
		app.grpcServer = health.NewGRPCServer(cfg.GRPCPort)
		engine.OnEmergencyChange(app.grpcServer.SetEmergency)
	}

	return app, nil
}

// Engine returns the hosted engine.
func (a *App) Engine() *resilience.Engine {
	return a.engine
}

// Archive returns the error archive.
func (a *App) Archive() storage.ErrorArchive {
	return a.archive
}

// Handler returns the HTTP handler.
func (a *App) Handler() http.Handler {
	return a.healthServer.Handler()
}

// Start starts the app and all its components.
func (a *App) Start(ctx context.Context) error {
	a.forwarder.Start(ctx)
	a.engine.Start(ctx)

	go func() {
		if err := a.healthServer.Start(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Health server failed", "error", err)
		}
	}()

	if a.grpcServer != nil {
		go func() {
			if err := a.grpcServer.Serve(); err != nil {
				a.log.Error("gRPC health server failed", "error", err)
			}
		}()
	}

	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}

	a.log.Info("Engine started",
		"port", a.cfg.Port,
		"grpc_port", a.cfg.GRPCPort,
		"regions", len(a.engine.GetErrorStats().Regions),
	)
	return nil
}

// Stop stops the app.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping engine...")

	a.engine.Close()
	a.forwarder.Close()

	if a.grpcServer != nil {
		a.grpcServer.Stop()
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}

	return a.healthServer.Stop(ctx)
}

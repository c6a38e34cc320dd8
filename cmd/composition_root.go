package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"supplychain/internal/adapters/out/broadcast"
	"supplychain/internal/adapters/out/directory"
	"supplychain/internal/adapters/out/ledger/async"
	"supplychain/internal/adapters/out/ledger/chain"
	"supplychain/internal/adapters/out/memory/eventlog"
	"supplychain/internal/adapters/out/memory/orderstore"
	"supplychain/internal/adapters/out/metrics"
	"supplychain/internal/adapters/out/postgres"
	"supplychain/internal/adapters/out/postgres/ledgerrepo"
	"supplychain/internal/core/application/engine"
	"supplychain/internal/core/application/usecases/commands"
	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/services"
	"supplychain/internal/core/ports"
	"supplychain/internal/jobs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// CompositionRoot builds the engine and its adapters from a Config. Nothing
// in the process is a package-level singleton; every dependency is created
// here and handed down.
type CompositionRoot struct {
	cfg      Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Prometheus
	closers  []engine.Closer
}

func NewCompositionRoot(cfg Config, logger *slog.Logger) (*CompositionRoot, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m, err := metrics.NewPrometheus(registry)
	if err != nil {
		return nil, err
	}

	return &CompositionRoot{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  m,
	}, nil
}

// Registry is the gatherer served on /metrics.
func (c *CompositionRoot) Registry() *prometheus.Registry {
	return c.registry
}

// CreateEngine wires the full engine. The returned engine owns every
// resource opened here and releases them on Close.
func (c *CompositionRoot) CreateEngine(ctx context.Context) (*engine.Engine, error) {
	mirror, err := c.createLedgerMirror()
	if err != nil {
		return nil, err
	}

	dir, err := c.createPartyDirectory(ctx)
	if err != nil {
		return nil, err
	}

	hub := broadcast.NewHub(c.cfg.SubscriberBuffer, c.metrics, c.logger)
	c.closers = append(c.closers, engine.CloserFunc(func(context.Context) error {
		hub.Close()
		return nil
	}))

	events := eventlog.NewLog()
	pipeline := commands.NewTransitionPipeline(
		orderstore.NewStore(),
		events,
		hub,
		mirror,
		services.NewTransitionValidator(services.NewCommitmentVerifier()),
		c.metrics,
		c.logger,
	)

	tracker, err := c.createTracker(pipeline, dir)
	if err != nil {
		return nil, err
	}
	job := jobs.NewTrackingJob(tracker, c.cfg.Tracking.TickPeriod, c.logger)

	return engine.New(pipeline, events, hub, jobs.NewJobManager(job, tracker), c.logger, c.closers...), nil
}

func (c *CompositionRoot) createTracker(
	pipeline *commands.TransitionPipeline,
	dir ports.PartyDirectory,
) (*commands.TrackShipmentsCommandHandler, error) {
	origin, err := kernel.NewLocation(c.cfg.Tracking.DefaultOriginLat, c.cfg.Tracking.DefaultOriginLng)
	if err != nil {
		return nil, fmt.Errorf("default origin: %w", err)
	}

	return commands.NewTrackShipmentsCommandHandler(pipeline, dir, commands.TrackingConfig{
		TotalSteps:    c.cfg.Tracking.TotalSteps,
		PaymentDelay:  c.cfg.Tracking.PaymentDelay,
		DefaultOrigin: origin,
	}, c.metrics, c.logger)
}

func (c *CompositionRoot) createLedgerMirror() (ports.LedgerMirror, error) {
	var (
		adapter  ports.LedgerAdapter
		dbCloser engine.Closer
	)

	switch c.cfg.Ledger.Backend {
	case LedgerBackendNone:
		c.logger.Info("ledger mirroring disabled")
		return async.Discard{}, nil
	case LedgerBackendChain:
		adapter = chain.NewLedger()
	case LedgerBackendPostgres:
		db, err := postgres.Open(postgres.DSN(
			c.cfg.Database.Host,
			c.cfg.Database.Port,
			c.cfg.Database.User,
			c.cfg.Database.Password,
			c.cfg.Database.Name,
			c.cfg.Database.SSLMode,
		))
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("postgres handle: %w", err)
		}
		adapter = ledgerrepo.NewGormLedger(db)
		dbCloser = engine.CloserFunc(func(context.Context) error { return sqlDB.Close() })
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", c.cfg.Ledger.Backend)
	}

	mirror := async.NewMirror(adapter, async.Config{
		QueueSize:       c.cfg.Ledger.QueueSize,
		Timeout:         c.cfg.Ledger.Timeout,
		MaxRetries:      c.cfg.Ledger.MaxRetries,
		InitialInterval: async.DefaultConfig().InitialInterval,
	}, c.metrics, c.logger)
	// the mirror drains before the database closes
	c.closers = append(c.closers, mirror)
	if dbCloser != nil {
		c.closers = append(c.closers, dbCloser)
	}

	c.logger.Info("ledger mirroring enabled", "backend", c.cfg.Ledger.Backend)
	return mirror, nil
}

func (c *CompositionRoot) createPartyDirectory(ctx context.Context) (ports.PartyDirectory, error) {
	locations, err := directory.ParseLocations(c.cfg.Directory.PartyLocations)
	if err != nil {
		return nil, fmt.Errorf("PARTY_LOCATIONS: %w", err)
	}
	static := directory.NewStatic(locations)

	if c.cfg.Directory.RedisURL == "" {
		return static, nil
	}

	redisDir, err := directory.NewRedis(c.cfg.Directory.RedisURL)
	if err != nil {
		return nil, err
	}
	if err := redisDir.Ping(ctx); err != nil {
		c.logger.WarnContext(ctx, "party directory unreachable, falling back to static locations", "error", err)
	}
	c.closers = append(c.closers, engine.CloserFunc(func(context.Context) error { return redisDir.Close() }))

	// seeded locations are written through so the shared directory knows them
	for id, loc := range locations {
		if err := redisDir.SetLocation(ctx, id, loc); err != nil {
			c.logger.WarnContext(ctx, "failed to seed party location", "partyID", id, "error", err)
			break
		}
	}

	c.logger.InfoContext(ctx, "party directory backed by redis", "seeded", len(locations))
	return directory.Layered{redisDir, static}, nil
}

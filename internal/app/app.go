// Package app wires configuration into a ready CurriculumService for the
// API server and the CLI.
package app

import (
	"context"
	"errors"

	"curricula/internal/adapter"
	"curricula/internal/cache"
	"curricula/internal/config"
	"curricula/internal/database"
	"curricula/internal/domain"
	"curricula/internal/metrics"
	"curricula/internal/render"
	"curricula/internal/repository"
	"curricula/internal/service"
	"curricula/internal/template"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Options selects the optional parts of the wiring.
type Options struct {
	// Store persists builds in the configured database.
	Store bool
	// Migrate applies the schema after connecting. Ignored without Store.
	Migrate bool
	// Cache uses Redis when an address is configured.
	Cache bool
	// Registerer receives the build metrics. nil disables metrics.
	Registerer prometheus.Registerer
}

// App holds the wired service and the connections behind it.
type App struct {
	Registry *template.Registry
	Service  domain.CurriculumService
	Metrics  *metrics.BuildMetrics
	DB       *sqlx.DB
	Redis    *redis.Client
}

// NewRegistry returns the embedded templates plus any found in
// cfg.Build.TemplateDir. A template in the directory replaces an embedded
// one of the same discipline.
func NewRegistry(cfg *config.Config) (*template.Registry, error) {
	reg, err := template.DefaultRegistry()
	if err != nil {
		return nil, err
	}
	if cfg.Build.TemplateDir != "" {
		if err := reg.LoadDir(cfg.Build.TemplateDir); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// NewRenderers returns the PNG renderers sized from cfg.Render.
func NewRenderers(cfg *config.Config) service.Renderers {
	return service.Renderers{
		Graph:   render.NewGraphRenderer(cfg.Render.GraphWidth, cfg.Render.GraphHeight),
		Heatmap: render.NewHeatmapRenderer(cfg.Render.HeatmapCellSize),
	}
}

// New connects what opts asks for and builds the service. Close must be
// called even when only part of the wiring succeeded.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts Options) (*App, error) {
	a := &App{}

	reg, err := NewRegistry(cfg)
	if err != nil {
		return a, err
	}
	a.Registry = reg

	var (
		repo domain.CurriculumRepository
		tx   domain.TransactionManager
		c    domain.Cache
	)

	if opts.Store {
		db, err := database.Open(ctx, cfg)
		if err != nil {
			return a, err
		}
		a.DB = db
		if opts.Migrate {
			if err := database.MigrateUp(ctx, db); err != nil {
				return a, err
			}
		}
		repo = repository.NewCurriculumDatabaseAdapter(db)
		tx = repository.NewTransactionManagerAdapter(db)
	}

	if opts.Cache && cfg.Redis.Address != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			// The service works without a cache.
			log.Warn("Redis unavailable, continuing without cache",
				zap.String("address", cfg.Redis.Address), zap.Error(err))
		} else {
			a.Redis = client
			c = adapter.NewRedisCacheAdapter(client)
		}
	}

	if opts.Registerer != nil {
		a.Metrics = metrics.New(opts.Registerer)
	}

	a.Service = service.NewCurriculumService(reg, repo, tx, c, a.Metrics, NewRenderers(cfg),
		service.CurriculumServiceOptions{
			OutputDir:   cfg.Build.OutputDir,
			SummaryTTL:  cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.Summary, service.DefaultSummaryTTL),
			MaxParallel: cfg.Build.MaxParallel,
		}, log)
	return a, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

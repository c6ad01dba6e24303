// Package bootstrap assembles the extraction pipeline, record store and
// session store from configuration for both the daemon and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/workorders-tracker/internal/common"
	"github.com/joseph-ayodele/workorders-tracker/internal/export"
	"github.com/joseph-ayodele/workorders-tracker/internal/imaging"
	"github.com/joseph-ayodele/workorders-tracker/internal/llm"
	"github.com/joseph-ayodele/workorders-tracker/internal/llm/gemini"
	"github.com/joseph-ayodele/workorders-tracker/internal/llm/openai"
	"github.com/joseph-ayodele/workorders-tracker/internal/pipeline"
	"github.com/joseph-ayodele/workorders-tracker/internal/rasterize"
	"github.com/joseph-ayodele/workorders-tracker/internal/repository"
	"github.com/joseph-ayodele/workorders-tracker/internal/session"
)

// Options selects which parts New builds. Store-only commands skip the model
// so they run without an API key.
type Options struct {
	Extraction bool
	Sessions   bool
	Migrate    bool
}

type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	Processor *pipeline.Processor
	Gateway   *repository.Gateway
	Sessions  session.Store
	Exporter  *export.Service

	db    *repository.DB
	redis *redis.Client
}

// New wires the application. The record store is enabled only when a DSN is
// configured; a configured store that cannot be reached is an error.
func New(ctx context.Context, cfg *common.Config, opts Options, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger, Exporter: export.NewService(logger)}

	if opts.Extraction {
		model, err := NewModel(cfg.Model, logger)
		if err != nil {
			return nil, err
		}
		app.Processor = NewProcessor(cfg, model, logger)
	}

	if err := app.openStore(ctx, opts.Migrate); err != nil {
		app.Close()
		return nil, err
	}

	if opts.Sessions {
		if err := app.openSessions(ctx); err != nil {
			app.Close()
			return nil, err
		}
	}
	return app, nil
}

// NewModel builds the configured provider's client, paced by cfg.RPS.
func NewModel(cfg common.ModelConfig, logger *slog.Logger) (llm.Model, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var model llm.Model
	switch cfg.Provider {
	case common.ProviderGemini, "":
		model = gemini.NewClient(gemini.Config{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Timeout: cfg.Timeout,
		}, logger)
	case common.ProviderOpenAI:
		model = openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	default:
		return nil, common.InvalidInputf("unknown model provider %q", cfg.Provider)
	}
	logger.Info("llm.model.ready", "provider", cfg.Provider, "rps", cfg.RPS)
	return llm.Paced(model, cfg.RPS, cfg.Burst), nil
}

// NewProcessor builds the batch pipeline around model.
func NewProcessor(cfg *common.Config, model llm.Model, logger *slog.Logger) *pipeline.Processor {
	images := imaging.NewPreparer(cfg.Imaging.MaxDimension, logger)
	pages := rasterize.NewPDFRasterizer(rasterize.Config{
		Pdftoppm: cfg.Imaging.Pdftoppm,
		DPI:      cfg.Imaging.DPI,
		MaxPages: cfg.Imaging.MaxPages,
	}, rasterize.ExecRunner{Logger: logger}, logger)
	return pipeline.NewProcessor(logger, model, images, pages)
}

func (a *App) openStore(ctx context.Context, migrate bool) error {
	if !a.Config.Database.Enabled() {
		a.Gateway = repository.NewGateway(nil)
		a.Logger.Warn("store.disabled", "warning", a.Gateway.Warning())
		return nil
	}

	db, err := repository.Open(ctx, repository.Config{
		DSN:             a.Config.Database.DSN,
		MaxConns:        a.Config.Database.MaxConns,
		MinConns:        a.Config.Database.MinConns,
		MaxConnLifetime: a.Config.Database.MaxConnLifetime,
		MaxConnIdleTime: a.Config.Database.MaxConnIdleTime,
		DialTimeout:     a.Config.Database.DialTimeout,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	a.db = db

	if err := db.HealthCheck(ctx, a.Config.Database.DialTimeout); err != nil {
		return fmt.Errorf("record store health: %w", err)
	}
	if migrate {
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate record store: %w", err)
		}
	}
	a.Gateway = repository.NewGateway(repository.NewWorkOrderRepository(db, a.Logger))
	return nil
}

func (a *App) openSessions(ctx context.Context) error {
	if a.Config.Session.RedisURL == "" {
		a.Sessions = session.NewMemoryStore(a.Config.Session.TTL)
		return nil
	}
	client, err := session.OpenRedis(ctx, a.Config.Session.RedisURL)
	if err != nil {
		return err
	}
	a.redis = client
	a.Sessions = session.NewRedisStore(client, a.Config.Session.TTL, a.Logger)
	a.Logger.Info("session.redis.ready")
	return nil
}

// DB returns the open record store, or nil when it is disabled.
func (a *App) DB() *repository.DB {
	return a.db
}

func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Error("failed to close redis client", "error", err)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

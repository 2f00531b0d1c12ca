package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/formats"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/repository"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/service"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/receipt"
	"github.com/FACorreiaa/statement-normalizer/pkg/config"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool

	Registry *formats.Registry

	// Repositories, nil without a database
	StatementRepo repository.StatementRepository

	// Services
	Parser   *service.Parser
	Receipts *receipt.Extractor
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initRegistry(); err != nil {
		return nil, fmt.Errorf("failed to init format registry: %w", err)
	}

	if cfg.Database.Enabled() {
		if err := deps.initDatabase(ctx); err != nil {
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
		deps.initRepositories()
	}

	deps.initServices()

	logger.Debug("all dependencies initialized successfully")
	return deps, nil
}

// initRegistry merges the optional formats file over the built-in table
func (d *Dependencies) initRegistry() error {
	configs := formats.Builtin()
	if path := d.Config.Formats.File; path != "" {
		merged, err := formats.LoadFile(path, configs)
		if err != nil {
			return err
		}
		configs = merged
		d.Logger.Info("format table loaded", slog.String("file", path), slog.Int("formats", len(configs)))
	}

	registry, err := formats.NewRegistry(configs...)
	if err != nil {
		return err
	}
	d.Registry = registry
	return nil
}

// initDatabase opens the connection pool
func (d *Dependencies) initDatabase(ctx context.Context) error {
	poolCfg, err := pgxpool.ParseConfig(d.Config.Database.DSN())
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = d.Config.Database.MaxConns
	poolCfg.MinConns = d.Config.Database.MinConns
	poolCfg.MaxConnLifetime = d.Config.Database.MaxConnLifetime
	poolCfg.MaxConnIdleTime = d.Config.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	d.Pool = pool

	d.Logger.Info("database connected")
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() {
	d.StatementRepo = repository.NewPostgresStatementRepository(d.Pool)
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() {
	d.Parser = service.NewParser(d.Registry, d.Logger)
	d.Receipts = receipt.NewExtractor()
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Pool != nil {
		d.Pool.Close()
	}
	d.Logger.Debug("cleanup completed")
}

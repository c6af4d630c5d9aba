package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"pokereview/internal/handler"
	"pokereview/internal/platform/config"
	"pokereview/internal/store/memory"
	"pokereview/internal/store/postgres"
)

const connectTimeout = 10 * time.Second

// openStore fills the repository half of a router config. The returned pool
// is nil for the in-memory store.
func openStore(ctx context.Context, cfg config.Database, logger *slog.Logger) (handler.RouterConfig, *sql.DB, error) {
	if cfg.URL == "" {
		logger.Info("using in-memory store")
		s := memory.New()
		return handler.RouterConfig{
			Categories: s.Categories(),
			Countries:  s.Countries(),
			Owners:     s.Owners(),
			Pokemon:    s.Pokemon(),
			Reviews:    s.Reviews(),
			Reviewers:  s.Reviewers(),
			Tx:         s,
			Pinger:     s,
		}, nil, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return handler.RouterConfig{}, nil, err
	}
	if cfg.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return handler.RouterConfig{}, nil, err
		}
		logger.Info("schema applied")
	}
	logger.Info("using postgres store", "max_open_conns", cfg.MaxOpenConns)
	s := postgres.New(db)
	return handler.RouterConfig{
		Categories: s.Categories(),
		Countries:  s.Countries(),
		Owners:     s.Owners(),
		Pokemon:    s.Pokemon(),
		Reviews:    s.Reviews(),
		Reviewers:  s.Reviewers(),
		Tx:         s,
		Pinger:     s,
	}, db, nil
}

func openDB(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, errors.New("database.url is required")
	}
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func (c *cli) migrate(ctx context.Context) error {
	db, err := openDB(ctx, c.cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "schema applied")
	return nil
}

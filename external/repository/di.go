package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/foxseedlab/voicecap/internal/config"
	"github.com/foxseedlab/voicecap/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
)

const databaseInitTimeout = 15 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (repository.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		ctx, cancel := context.WithTimeout(context.Background(), databaseInitTimeout)
		defer cancel()

		if cfg.DatabaseDriver == config.DatabaseDriverSQLite {
			r, err := OpenSQLite(ctx, cfg.DatabaseURL)
			if err != nil {
				return nil, err
			}
			return r, nil
		}
		return openPostgres(ctx, cfg.DatabaseURL)
	})
}

func openPostgres(ctx context.Context, url string) (repository.Repository, error) {
	p, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := RunPostgresMigration(ctx, p); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}
	return NewPostgresRepository(p), nil
}

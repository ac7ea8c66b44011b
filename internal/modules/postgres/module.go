package postgres

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"btc_surveillance/internal/journal"
	"btc_surveillance/internal/modules/config"
	"btc_surveillance/pkg/db"
)

func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (*db.PgTxManager, error) {
				pool, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create pool: %w", err)
				}

				err = pool.Ping(ctx)
				if err != nil {
					return nil, err
				}

				return db.NewPgTxManager(pool), nil
			},
		),
		// Стор позиции + журнала поверх общего tx-менеджера.
		fx.Provide(
			func(tm *db.PgTxManager) journal.Store {
				return journal.NewPgStore(tm)
			},
		),
	)
}

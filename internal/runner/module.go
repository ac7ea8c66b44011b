package runner

import (
	"context"
	"log"

	"go.uber.org/fx"

	"btc_surveillance/internal/modules/config"
	"btc_surveillance/pkg/tracing"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(New),
		fx.Invoke(registerHooks),
	)
}

func registerHooks(lc fx.Lifecycle, sh fx.Shutdowner, cfg *config.Config, r *Runner) {
	runCtx, cancel := context.WithCancel(context.Background())
	var closeTracer func()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			tracing.SetServiceName("btc-surveillance")
			if _, closer, err := tracing.InitTracer(tracing.Config{Host: cfg.Jaeger.Host, Port: cfg.Jaeger.Port}); err != nil {
				// Без трейсинга жить можно, без цикла — нет.
				log.Printf("[TRACING] jaeger недоступен: %v", err)
			} else {
				closeTracer = closer
			}

			if cfg.RunOnce {
				// Разовый прогон для cron/отладки: один цикл и выход.
				go func() {
					if err := r.RunCycle(runCtx); err != nil {
						log.Printf("[CYCLE] ошибка: %v", err)
					}
					_ = sh.Shutdown()
				}()
				return nil
			}
			go r.Start(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			if closeTracer != nil {
				closeTracer()
			}
			return nil
		},
	})
}

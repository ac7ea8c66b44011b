package telegram

import (
	"log"

	"go.uber.org/fx"

	"btc_surveillance/internal/modules/config"
	"btc_surveillance/internal/notify"
)

func Module() fx.Option {
	return fx.Module("telegram",
		// Notifier: если TELEGRAM_* не настроены — пишем в stdout.
		fx.Provide(
			func(cfg *config.Config) notify.Notifier {
				if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
					tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
					if err == nil {
						return tg
					}
					log.Printf("[NOTIFY] Telegram не поднялся (%v), переключаюсь на stdout", err)
				}
				return notify.NewStdout()
			},
		),
	)
}

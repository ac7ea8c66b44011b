package main

import (
	"context"
	"log"

	"btc_surveillance/internal/modules/config"
	"btc_surveillance/internal/modules/market"
	"btc_surveillance/internal/modules/postgres"
	"btc_surveillance/internal/modules/telegram"
	"btc_surveillance/internal/runner"
	"btc_surveillance/pkg/logger"

	"go.uber.org/fx"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	logger.SetServiceName("btc-surveillance")

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		market.Module(),
		telegram.Module(),
		runner.Module(),
	)
	app.Run()
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}
}

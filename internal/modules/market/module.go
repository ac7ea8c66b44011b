package market

import (
	"go.uber.org/fx"

	"btc_surveillance/internal/market"
	"btc_surveillance/internal/runner"
)

func Module() fx.Option {
	return fx.Module("market",
		fx.Provide(
			market.NewClient,
		),
		// Адаптер: *market.Client -> runner.MarketData
		fx.Provide(
			func(c *market.Client) runner.MarketData {
				return c
			},
		),
	)
}

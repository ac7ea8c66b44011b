package indicator

import (
	"github.com/markcheno/go-talib"
)

// Периоды индикаторов стратегии.
const (
	EMAPeriod = 50
	RSIPeriod = 14
	ATRPeriod = 14

	SuperTrendLength = 10
	SuperTrendMult   = 3.0
)

// Тонкие обёртки над go-talib: гарантируем выход той же длины, что и вход,
// и nil при нехватке данных, чтобы вызывающий код не ловил панику на срезах.

func EMA(closes []float64, period int) []float64 {
	if len(closes) < period {
		return nil
	}
	return talib.Ema(closes, period)
}

func RSI(closes []float64, period int) []float64 {
	if len(closes) < period+1 {
		return nil
	}
	return talib.Rsi(closes, period)
}

func ATR(highs, lows, closes []float64, period int) []float64 {
	if len(closes) < period+1 {
		return nil
	}
	return talib.Atr(highs, lows, closes, period)
}

package indicator

import (
	"fmt"
	"math"

	"btc_surveillance/internal/engine"
	"btc_surveillance/internal/models"
)

// Build собирает снапшот индикаторов из явных окон закрытых свечей.
// Для сигнала нужно хотя бы EMAPeriod + SLCandles + 2 четырёхчасовых свечей;
// меньше — ErrInsufficientHistory, это мягкое "нет сигнала на этом цикле".
// Короткая дневная история не ошибка: фильтр просто вернёт DirNone.
func Build(c4h, c1d []models.Candle) (models.IndicatorSnapshot, error) {
	minLen := EMAPeriod + engine.SLCandles + 2
	if len(c4h) < minLen {
		return models.IndicatorSnapshot{}, fmt.Errorf(
			"%w: have %d of %d 4h candles", engine.ErrInsufficientHistory, len(c4h), minLen)
	}

	n := len(c4h)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i, c := range c4h {
		highs[i], lows[i], closes[i] = c.High, c.Low, c.Close
	}

	ema := EMA(closes, EMAPeriod)
	rsi := RSI(closes, RSIPeriod)
	atr := ATR(highs, lows, closes, ATRPeriod)
	if ema == nil || rsi == nil || atr == nil {
		return models.IndicatorSnapshot{}, fmt.Errorf(
			"%w: indicator window shorter than period", engine.ErrInsufficientHistory)
	}

	last := c4h[n-1]
	snap := models.IndicatorSnapshot{
		At:         last.CloseTime,
		DailyDir:   SuperTrendDir(c1d, SuperTrendLength, SuperTrendMult),
		Close4H:    last.Close,
		Low4H:      last.Low,
		EMA50:      ema[n-1],
		RSIPrev:    rsi[n-2],
		RSICurr:    rsi[n-1],
		HasRSIPair: true,
		ATR14:      atr[n-1],
		Last3Lows:  lows[n-engine.SLCandles:],
	}

	// Мусор из апстрима ловим здесь, до движка: стейт позиции не трогаем.
	for _, v := range []float64{snap.Close4H, snap.Low4H, snap.EMA50, snap.RSIPrev, snap.RSICurr, snap.ATR14} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.IndicatorSnapshot{}, fmt.Errorf("%w: NaN/Inf from indicators", engine.ErrInvalidIndicatorData)
		}
	}
	if snap.ATR14 <= 0 {
		return models.IndicatorSnapshot{}, fmt.Errorf("%w: atr=%.6f", engine.ErrInvalidIndicatorData, snap.ATR14)
	}

	return snap, nil
}

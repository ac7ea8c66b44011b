package indicator

import (
	"btc_surveillance/internal/models"
)

// SuperTrendDir — направление SuperTrend(length, mult) на последней закрытой
// свече. Классическая рекурренция: полосы mid ± mult*ATR, верхняя полоса
// может только опускаться, нижняя только подниматься, пока цена их не пробьёт.
// Истории меньше length+2 свечей — направления нет (DirNone), торговли нет.
func SuperTrendDir(candles []models.Candle, length int, mult float64) models.TrendDirection {
	n := len(candles)
	if n < length+2 {
		return models.DirNone
	}

	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i, c := range candles {
		highs[i], lows[i], closes[i] = c.High, c.Low, c.Close
	}

	atr := ATR(highs, lows, closes, length)
	if atr == nil {
		return models.DirNone
	}

	// Первые length значений ATR не определены, начинаем с length.
	start := length
	finalUB := make([]float64, n)
	finalLB := make([]float64, n)
	dir := make([]models.TrendDirection, n)

	for i := start; i < n; i++ {
		mid := (highs[i] + lows[i]) / 2
		ub := mid + mult*atr[i]
		lb := mid - mult*atr[i]

		if i == start {
			finalUB[i], finalLB[i] = ub, lb
			dir[i] = models.DirUp
			continue
		}

		if ub < finalUB[i-1] || closes[i-1] > finalUB[i-1] {
			finalUB[i] = ub
		} else {
			finalUB[i] = finalUB[i-1]
		}
		if lb > finalLB[i-1] || closes[i-1] < finalLB[i-1] {
			finalLB[i] = lb
		} else {
			finalLB[i] = finalLB[i-1]
		}

		switch {
		case closes[i] > finalUB[i]:
			dir[i] = models.DirUp
		case closes[i] < finalLB[i]:
			dir[i] = models.DirDown
		default:
			dir[i] = dir[i-1]
		}
	}

	return dir[n-1]
}

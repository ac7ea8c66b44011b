package engine

import "fmt"

// InitialStop — стартовый стоп: минимум лоёв последних трёх закрытых 4H свечей.
// Ровно три значения, меньше — недостаток истории.
func InitialStop(lows []float64) (float64, error) {
	if len(lows) != SLCandles {
		return 0, fmt.Errorf("%w: need %d lows, got %d", ErrInsufficientHistory, SLCandles, len(lows))
	}
	min := lows[0]
	for _, v := range lows[1:] {
		if v < min {
			min = v
		}
	}
	return min, nil
}

// Trail — пересчёт трейлинг-стопа: close - 3*ATR, но стоп никогда не опускается.
// Монотонность — определяющее свойство всего механизма, как бы ни падала цена.
func Trail(currentStop, close4h, atr14 float64) float64 {
	candidate := close4h - ATRTrailingMult*atr14
	if candidate > currentStop {
		return candidate
	}
	return currentStop
}

// Breached — пробит ли стоп лоем свечи. Проверяется после обновления стопа
// на той же свече.
func Breached(candleLow, currentStop float64) bool {
	return candleLow <= currentStop
}

package engine

// Параметры стратегии. Фиксированы умышленно — это не настройки,
// а определение самой стратегии.
const (
	RSICrossLevel   = 45.0
	ATRTrailingMult = 3.0
	SLCandles       = 3
)

// EntryTriggers — условие входа на последней закрытой 4H свече:
// цена выше EMA50 и RSI пересекает уровень 45 снизу вверх.
// Оба условия должны выполниться на одном и том же цикле.
func EntryTriggers(rsiPrev, rsiCurr, close4h, ema50 float64) bool {
	if close4h <= ema50 {
		return false
	}
	return rsiPrev <= RSICrossLevel && rsiCurr > RSICrossLevel
}

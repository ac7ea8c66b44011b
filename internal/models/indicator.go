package models

import "time"

type TrendDirection int

const (
	DirNone TrendDirection = 0
	DirUp   TrendDirection = 1
	DirDown TrendDirection = -1
)

// IndicatorSnapshot — все производные значения, которые нужны движку
// на момент оценки. Считается заново на каждом цикле по явному окну свечей,
// никакого скрытого состояния между вызовами.
type IndicatorSnapshot struct {
	// Время закрытия последней 4H свечи — "часы" движка.
	At time.Time

	DailyDir TrendDirection

	Close4H float64
	Low4H   float64
	EMA50   float64

	// RSI последних двух закрытых свечей. HasRSIPair = false,
	// если точек RSI меньше двух — вход в этом случае невозможен.
	RSIPrev    float64
	RSICurr    float64
	HasRSIPair bool

	ATR14 float64

	// Лои последних трёх закрытых 4H свечей, по возрастанию времени.
	Last3Lows []float64
}

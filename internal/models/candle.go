package models

import "time"

type Timeframe string

const (
	TF4H Timeframe = "4h"
	TF1D Timeframe = "1d"
)

// Candle — полностью закрытая свеча. Биржа отдаёт свечи по возрастанию времени,
// последний элемент среза — самая свежая ЗАКРЫТАЯ свеча (формирующуюся отбрасываем).
type Candle struct {
	OpenTime  time.Time
	CloseTime time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

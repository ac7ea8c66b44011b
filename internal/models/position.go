package models

import "time"

type PositionStatus string

const (
	PositionOpen   PositionStatus = "OPEN"
	PositionClosed PositionStatus = "CLOSED"
)

// Position — единственный мутабельный стейт движка, живёт между циклами.
// Инвариант: CurrentStop не убывает за время жизни позиции (монотонный трейлинг).
// Одновременно может быть открыта максимум одна позиция по инструменту.
type Position struct {
	ID          int64
	EntryPrice  float64
	InitialStop float64
	CurrentStop float64
	Size        float64
	RiskAmount  float64
	OpenedAt    time.Time
	ClosedAt    time.Time
	Status      PositionStatus
}

func (p *Position) IsOpen() bool {
	return p != nil && p.Status == PositionOpen
}

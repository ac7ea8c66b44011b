package models

import "time"

type SignalStatus string

const (
	SignalOpen     SignalStatus = "OPEN"
	SignalClosedSL SignalStatus = "CLOSED_SL"
)

// SignalRecord — иммутабельный снимок для журнала и уведомлений.
// Пишется при открытии позиции и при её закрытии по трейлинг-стопу.
// Набор полей повторяет колонки торгового журнала.
type SignalRecord struct {
	Date            time.Time    `json:"date"`
	Type            string       `json:"type"` // всегда "Long", шортов нет
	Symbol          string       `json:"symbol"`
	EntryPrice      float64      `json:"entry_price"`
	InitialStop     float64      `json:"sl"`
	CurrentStop     float64      `json:"current_sl"`
	Size            float64      `json:"size"`
	RiskAmount      float64      `json:"risk_amount"`
	TheoreticalLoss float64      `json:"theoretical_loss"`
	Status          SignalStatus `json:"status"`
	// Контекст выхода, заполняется только при закрытии.
	ExitLow float64 `json:"exit_low,omitempty"`
}

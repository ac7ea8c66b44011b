package engine

import (
	"fmt"
	"math"

	"btc_surveillance/internal/models"
)

// Engine — машина состояний NO_POSITION / OPEN для одного инструмента.
// Чистая: на вход текущая позиция и снапшот индикаторов, на выход — новое
// состояние и записи для журнала. Никаких сайд-эффектов, всю персистентность
// делает раннер. Один вызов Evaluate = один атомарный шаг.
type Engine struct {
	symbol       string
	capital      float64
	riskFraction float64
}

// Outcome — результат одного цикла. Position — состояние после шага
// (nil, если позиции не было и нет). При любой ошибке состояние не меняется.
type Outcome struct {
	Position *models.Position
	Opened   *models.SignalRecord
	Closed   *models.SignalRecord

	// Трейлинг подтянул стоп на этом цикле.
	StopMoved bool
	PrevStop  float64
}

func New(symbol string, capital, riskFraction float64) *Engine {
	return &Engine{symbol: symbol, capital: capital, riskFraction: riskFraction}
}

func (e *Engine) Evaluate(pos *models.Position, snap models.IndicatorSnapshot) (Outcome, error) {
	if err := validateSnapshot(snap); err != nil {
		return Outcome{}, err
	}
	if pos.IsOpen() {
		return e.manage(pos, snap)
	}
	return e.maybeOpen(snap)
}

// maybeOpen — переход NO_POSITION -> OPEN, если дневной фильтр и триггер 4H
// сработали на одном цикле. Недостаток истории — это "нет сигнала", не сбой.
func (e *Engine) maybeOpen(snap models.IndicatorSnapshot) (Outcome, error) {
	bullish, err := IsBullishDaily(snap.DailyDir)
	if err != nil {
		return Outcome{}, err
	}
	if !bullish || !snap.HasRSIPair {
		return Outcome{}, nil
	}
	if !EntryTriggers(snap.RSIPrev, snap.RSICurr, snap.Close4H, snap.EMA50) {
		return Outcome{}, nil
	}

	stop, err := InitialStop(snap.Last3Lows)
	if err != nil {
		return Outcome{}, err
	}
	sizing, err := SizePosition(e.capital, e.riskFraction, snap.Close4H, stop)
	if err != nil {
		return Outcome{}, err
	}

	pos := &models.Position{
		EntryPrice:  snap.Close4H,
		InitialStop: stop,
		CurrentStop: stop,
		Size:        sizing.Size,
		RiskAmount:  sizing.RiskAmount,
		OpenedAt:    snap.At,
		Status:      models.PositionOpen,
	}
	rec := e.record(pos, models.SignalOpen, 0)
	rec.TheoreticalLoss = sizing.TheoreticalLoss
	return Outcome{Position: pos, Opened: &rec}, nil
}

// manage — сопровождение открытой позиции. Политика: свеча, на которой
// позиция открылась, не трейлится и не проверяется на пробой — управление
// начинается со следующей закрытой свечи. Порядок внутри цикла фиксирован:
// сначала подтянуть стоп, затем проверить пробой по лою той же свечи.
func (e *Engine) manage(pos *models.Position, snap models.IndicatorSnapshot) (Outcome, error) {
	if !snap.At.After(pos.OpenedAt) {
		return Outcome{Position: pos, PrevStop: pos.CurrentStop}, nil
	}

	next := *pos
	prevStop := next.CurrentStop
	moved := false

	if ns := Trail(next.CurrentStop, snap.Close4H, snap.ATR14); ns > next.CurrentStop {
		next.CurrentStop = ns
		moved = true
	}

	if Breached(snap.Low4H, next.CurrentStop) {
		next.Status = models.PositionClosed
		next.ClosedAt = snap.At
		rec := e.record(&next, models.SignalClosedSL, snap.Low4H)
		return Outcome{Position: &next, Closed: &rec, StopMoved: moved, PrevStop: prevStop}, nil
	}

	return Outcome{Position: &next, StopMoved: moved, PrevStop: prevStop}, nil
}

func (e *Engine) record(pos *models.Position, status models.SignalStatus, exitLow float64) models.SignalRecord {
	return models.SignalRecord{
		Date:            pos.OpenedAt,
		Type:            "Long",
		Symbol:          e.symbol,
		EntryPrice:      pos.EntryPrice,
		InitialStop:     pos.InitialStop,
		CurrentStop:     pos.CurrentStop,
		Size:            pos.Size,
		RiskAmount:      pos.RiskAmount,
		TheoreticalLoss: -pos.RiskAmount,
		Status:          status,
		ExitLow:         exitLow,
	}
}

// validateSnapshot отсекает мусор из апстрима до любых решений:
// NaN/Inf в индикаторах или неположительный ATR — аборт цикла.
func validateSnapshot(snap models.IndicatorSnapshot) error {
	vals := []float64{snap.Close4H, snap.Low4H, snap.EMA50, snap.ATR14}
	if snap.HasRSIPair {
		vals = append(vals, snap.RSIPrev, snap.RSICurr)
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: NaN/Inf in snapshot", ErrInvalidIndicatorData)
		}
	}
	if snap.ATR14 <= 0 {
		return fmt.Errorf("%w: atr=%.6f", ErrInvalidIndicatorData, snap.ATR14)
	}
	for _, v := range snap.Last3Lows {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: NaN/Inf in lows", ErrInvalidIndicatorData)
		}
	}
	return nil
}

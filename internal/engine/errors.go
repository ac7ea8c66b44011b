package engine

import "errors"

// Таксономия ошибок цикла. Раннер решает по ним уровень логирования:
// недостаток истории — обычное "нет сигнала", кривые данные — аборт цикла
// без изменения стейта, недоступность биржи — ретрай на следующем цикле.
var (
	ErrInsufficientHistory  = errors.New("insufficient history")
	ErrInvalidStopPlacement = errors.New("invalid stop placement")
	ErrInvalidIndicatorData = errors.New("invalid indicator data")
	ErrUpstreamUnavailable  = errors.New("upstream data unavailable")
)

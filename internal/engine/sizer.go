package engine

import "fmt"

type Sizing struct {
	Size            float64
	RiskAmount      float64
	TheoreticalLoss float64
}

// SizePosition считает размер позиции от риска на сделку:
// риск = капитал * доля, размер = риск / дистанция до стопа.
// Стоп обязан лежать ниже входа (лонг-only), иначе сигнал бракуется.
// TheoreticalLoss по построению равен -RiskAmount.
func SizePosition(capital, riskFraction, entryPrice, initialStop float64) (Sizing, error) {
	if capital <= 0 || riskFraction <= 0 {
		return Sizing{}, fmt.Errorf("bad risk params: capital=%.2f fraction=%.4f", capital, riskFraction)
	}
	if entryPrice <= initialStop {
		return Sizing{}, fmt.Errorf("%w: entry=%.2f sl=%.2f", ErrInvalidStopPlacement, entryPrice, initialStop)
	}

	risk := capital * riskFraction
	size := risk / (entryPrice - initialStop)
	return Sizing{
		Size:            size,
		RiskAmount:      risk,
		TheoreticalLoss: (initialStop - entryPrice) * size,
	}, nil
}

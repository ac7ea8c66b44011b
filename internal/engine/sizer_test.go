package engine

import (
	"errors"
	"math"
	"testing"
)

func TestSizePosition(t *testing.T) {
	s, err := SizePosition(5000, 0.01, 105, 98)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.RiskAmount != 50 {
		t.Fatalf("want risk 50, got %v", s.RiskAmount)
	}
	wantSize := 50.0 / 7.0
	if math.Abs(s.Size-wantSize) > 1e-9 {
		t.Fatalf("want size %v, got %v", wantSize, s.Size)
	}
}

// Потеря по стопу всегда равна заложенному риску, независимо от цен.
func TestTheoreticalLossEqualsRisk(t *testing.T) {
	cases := []struct {
		capital, fraction, entry, stop float64
	}{
		{5000, 0.01, 105, 98},
		{5000, 0.01, 64321.5, 61000.25},
		{12000, 0.02, 100.5, 99.5},
	}
	for _, c := range cases {
		s, err := SizePosition(c.capital, c.fraction, c.entry, c.stop)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(s.TheoreticalLoss+s.RiskAmount) > 1e-6 {
			t.Fatalf("loss %v != -risk %v (entry=%v stop=%v)",
				s.TheoreticalLoss, s.RiskAmount, c.entry, c.stop)
		}
	}
}

func TestSizePositionRejectsStopAboveEntry(t *testing.T) {
	if _, err := SizePosition(5000, 0.01, 98, 105); !errors.Is(err, ErrInvalidStopPlacement) {
		t.Fatalf("want ErrInvalidStopPlacement, got %v", err)
	}
	// Равенство тоже брак: нулевая дистанция до стопа.
	if _, err := SizePosition(5000, 0.01, 100, 100); !errors.Is(err, ErrInvalidStopPlacement) {
		t.Fatalf("want ErrInvalidStopPlacement, got %v", err)
	}
}

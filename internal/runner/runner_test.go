package runner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"btc_surveillance/internal/engine"
	"btc_surveillance/internal/indicator"
	"btc_surveillance/internal/market"
	"btc_surveillance/internal/models"
	"btc_surveillance/internal/modules/config"
)

type fakeMarket struct {
	c4h []models.Candle
	c1d []models.Candle
	err error
}

func (f *fakeMarket) Candles(_ context.Context, _ string, tf models.Timeframe, _ int) ([]models.Candle, error) {
	if f.err != nil {
		return nil, f.err
	}
	if tf == models.TF1D {
		return f.c1d, nil
	}
	return f.c4h, nil
}

func (f *fakeMarket) StreamClosedCandles(context.Context, string, models.Timeframe) <-chan market.Tick {
	ch := make(chan market.Tick)
	close(ch)
	return ch
}

type fakeStore struct {
	pos       *models.Position
	commits   int
	committed []models.SignalRecord
	commitErr error
}

func (f *fakeStore) LoadOpenPosition(context.Context) (*models.Position, error) {
	return f.pos, nil
}

func (f *fakeStore) CommitCycle(_ context.Context, pos *models.Position, recs []models.SignalRecord) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits++
	f.pos = pos
	f.committed = append(f.committed, recs...)
	return nil
}

type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) Send(msg string)               { f.sent = append(f.sent, msg) }
func (f *fakeNotifier) Sendf(format string, a ...any) { f.Send(fmt.Sprintf(format, a...)) }

func testConfig() *config.Config {
	cfg := &config.Config{
		Symbol:        "BTCUSDT",
		DisplaySymbol: "BTC/USDT",
		Capital:       5000,
		RiskPct:       1.0,
		Lookback4H:    120,
		Lookback1D:    250,
		CycleInterval: 4 * time.Hour,
	}
	return cfg
}

// Свечи, на которых индикаторы дают сигнал на вход: рост 4H над EMA,
// RSI выныривает из просадки, дневка бычья.
func signalCandles() ([]models.Candle, []models.Candle) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	closes := make([]float64, 120)
	price := 100.0
	for i := range closes {
		switch {
		case i < 100:
			price += 0.4 // плавный рост, держит цену над EMA
		case i < 118:
			price -= 0.9 // просадка, RSI уходит глубоко под 45
		case i == 118:
			price += 4.0 // первый отскок, RSI ещё под 45
		default:
			price += 8.0 // пробойная свеча: RSI уже над 45, цена над EMA
		}
		closes[i] = price
	}
	c4h := make([]models.Candle, len(closes))
	for i, c := range closes {
		c4h[i] = models.Candle{
			OpenTime:  t0.Add(time.Duration(i) * 4 * time.Hour),
			CloseTime: t0.Add(time.Duration(i+1) * 4 * time.Hour),
			Open:      c, High: c + 1, Low: c - 1, Close: c, Volume: 1,
		}
	}

	c1d := make([]models.Candle, 60)
	for i := range c1d {
		p := 100 + float64(i)*2
		c1d[i] = models.Candle{
			OpenTime:  t0.Add(time.Duration(i) * 24 * time.Hour),
			CloseTime: t0.Add(time.Duration(i+1) * 24 * time.Hour),
			Open:      p, High: p + 1, Low: p - 1, Close: p, Volume: 1,
		}
	}
	return c4h, c1d
}

func TestRunCycleUpstreamFailureLeavesStateAlone(t *testing.T) {
	mx := &fakeMarket{err: fmt.Errorf("%w: binance down", engine.ErrUpstreamUnavailable)}
	st := &fakeStore{}
	n := &fakeNotifier{}
	r := New(testConfig(), mx, st, n)

	err := r.RunCycle(context.Background())
	if !errors.Is(err, engine.ErrUpstreamUnavailable) {
		t.Fatalf("want ErrUpstreamUnavailable, got %v", err)
	}
	if st.commits != 0 {
		t.Fatal("must not commit on upstream failure")
	}
	if len(n.sent) != 0 {
		t.Fatal("must not notify on upstream failure")
	}
}

func TestRunCycleInsufficientHistoryIsNotAFailure(t *testing.T) {
	mx := &fakeMarket{c4h: nil, c1d: nil}
	st := &fakeStore{}
	r := New(testConfig(), mx, st, &fakeNotifier{})

	if err := r.RunCycle(context.Background()); err != nil {
		t.Fatalf("short history must be swallowed, got %v", err)
	}
	if st.commits != 0 {
		t.Fatal("must not commit")
	}
}

func TestRunCycleOpensAndNotifies(t *testing.T) {
	c4h, c1d := signalCandles()
	mx := &fakeMarket{c4h: c4h, c1d: c1d}
	st := &fakeStore{}
	n := &fakeNotifier{}
	r := New(testConfig(), mx, st, n)

	if err := r.RunCycle(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.commits != 1 {
		t.Fatalf("want 1 commit, got %d", st.commits)
	}
	if !st.pos.IsOpen() {
		t.Fatalf("want open position, got %+v", st.pos)
	}
	if len(st.committed) != 1 || st.committed[0].Status != models.SignalOpen {
		t.Fatalf("want one OPEN record, got %+v", st.committed)
	}
	if len(n.sent) != 1 {
		t.Fatalf("want one notification, got %d", len(n.sent))
	}
}

func TestRunCycleCommitFailureSuppressesNotification(t *testing.T) {
	c4h, c1d := signalCandles()
	mx := &fakeMarket{c4h: c4h, c1d: c1d}
	st := &fakeStore{commitErr: errors.New("pg down")}
	n := &fakeNotifier{}
	r := New(testConfig(), mx, st, n)

	if err := r.RunCycle(context.Background()); err == nil {
		t.Fatal("want commit error")
	}
	if len(n.sent) != 0 {
		t.Fatal("notification without durable state is a lie")
	}
}

func TestRunCycleSmallTrailCommitsSilently(t *testing.T) {
	c4h, c1d := signalCandles()
	last := c4h[len(c4h)-1]

	// Стоп чуть ниже кандидата close-3*ATR: подтяжка будет меньше 0.5%.
	snap, err := indicator.Build(c4h, c1d)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	candidate := snap.Close4H - engine.ATRTrailingMult*snap.ATR14
	stop := candidate * 0.999
	pos := &models.Position{
		ID:          1,
		EntryPrice:  last.Close - 5,
		InitialStop: stop - 1,
		CurrentStop: stop,
		Size:        1,
		RiskAmount:  50,
		OpenedAt:    last.CloseTime.Add(-8 * time.Hour),
		Status:      models.PositionOpen,
	}

	mx := &fakeMarket{c4h: c4h, c1d: c1d}
	st := &fakeStore{pos: pos}
	n := &fakeNotifier{}
	r := New(testConfig(), mx, st, n)

	if err := r.RunCycle(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.commits != 1 {
		t.Fatalf("trail must be committed, got %d commits", st.commits)
	}
	if st.pos.CurrentStop < stop {
		t.Fatalf("stop must not drop: %v -> %v", stop, st.pos.CurrentStop)
	}
	if len(n.sent) != 0 {
		t.Fatalf("sub-threshold trail must not notify: %v", n.sent)
	}
}

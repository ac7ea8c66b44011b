package runner

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"

	"btc_surveillance/internal/engine"
	"btc_surveillance/internal/indicator"
	"btc_surveillance/internal/journal"
	"btc_surveillance/internal/market"
	"btc_surveillance/internal/models"
	"btc_surveillance/internal/modules/config"
	"btc_surveillance/internal/notify"
)

// Порог для уведомления о подтяжке стопа: меньше 0.5% — пишем молча в базу.
const trailNotifyPct = 0.005

// MarketData — что раннеру нужно от биржи.
type MarketData interface {
	Candles(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.Candle, error)
	StreamClosedCandles(ctx context.Context, symbol string, tf models.Timeframe) <-chan market.Tick
}

// Runner гоняет цикл оценки: закрытая 4H свеча из WebSocket (или страховочный
// таймер) -> загрузить позицию -> свечи -> индикаторы -> движок -> коммит ->
// уведомления. Циклы сериализованы мьютексом: параллельные подтяжки стопа
// могли бы потерять обновление и сломать монотонность.
type Runner struct {
	cfg   *config.Config
	mx    MarketData
	eng   *engine.Engine
	store journal.Store
	n     notify.Notifier

	mu sync.Mutex

	healthMu  sync.Mutex
	cycles    int
	failures  int
	lastRunAt time.Time
}

func New(cfg *config.Config, mx MarketData, store journal.Store, n notify.Notifier) *Runner {
	return &Runner{
		cfg:   cfg,
		mx:    mx,
		eng:   engine.New(cfg.DisplaySymbol, cfg.Capital, cfg.RiskFraction()),
		store: store,
		n:     n,
	}
}

func (r *Runner) Start(ctx context.Context) {
	log.Printf("[RUNNER] ▶️ Старт наблюдения %s (4H), интервал %s", r.cfg.DisplaySymbol, r.cfg.CycleInterval)
	go r.healthLoop(ctx)

	// Первый прогон сразу — не ждать четыре часа после рестарта.
	if err := r.RunCycle(ctx); err != nil {
		log.Printf("[CYCLE] ошибка (повтор на следующем цикле): %v", err)
	}

	stream := r.mx.StreamClosedCandles(ctx, r.cfg.Symbol, models.TF4H)
	ticker := time.NewTicker(r.cfg.CycleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case tick, ok := <-stream:
			if !ok {
				return
			}
			log.Printf("[TICK] %s закрылась 4H свеча close=%.2f", tick.Symbol, tick.Candle.Close)
			if err := r.RunCycle(ctx); err != nil {
				log.Printf("[CYCLE] ошибка (повтор на следующем цикле): %v", err)
			}
		case <-ticker.C:
			if err := r.RunCycle(ctx); err != nil {
				log.Printf("[CYCLE] ошибка (повтор на следующем цикле): %v", err)
			}
		}
	}
}

// RunCycle — одна итерация, всё или ничего. Любая ошибка до коммита оставляет
// стейт нетронутым, шедулер просто запустит следующий цикл.
func (r *Runner) RunCycle(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := opentracing.StartSpan("evaluation_cycle")
	defer span.Finish()
	ctx = opentracing.ContextWithSpan(ctx, span)

	r.markRun()

	out, err := r.evaluate(ctx)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrInsufficientHistory):
			// Обычное "нет сигнала", не сбой.
			log.Printf("[CYCLE] недостаточно истории: %v", err)
			return nil
		case errors.Is(err, engine.ErrInvalidStopPlacement):
			log.Printf("[CYCLE] ⚠️ сигнал забракован: %v", err)
			return nil
		default:
			span.SetTag("error", true)
			r.markFailure()
			return err
		}
	}

	span.SetTag("opened", out.Opened != nil)
	span.SetTag("closed", out.Closed != nil)
	span.SetTag("stop_moved", out.StopMoved)

	r.report(out)
	return nil
}

func (r *Runner) evaluate(ctx context.Context) (engine.Outcome, error) {
	pos, err := r.store.LoadOpenPosition(ctx)
	if err != nil {
		return engine.Outcome{}, err
	}

	c4h, err := r.mx.Candles(ctx, r.cfg.Symbol, models.TF4H, r.cfg.Lookback4H)
	if err != nil {
		return engine.Outcome{}, err
	}
	c1d, err := r.mx.Candles(ctx, r.cfg.Symbol, models.TF1D, r.cfg.Lookback1D)
	if err != nil {
		return engine.Outcome{}, err
	}

	snap, err := indicator.Build(c4h, c1d)
	if err != nil {
		return engine.Outcome{}, err
	}

	out, err := r.eng.Evaluate(pos, snap)
	if err != nil {
		return engine.Outcome{}, err
	}

	// Коммитим только когда есть что коммитить.
	if out.Opened != nil || out.Closed != nil || out.StopMoved {
		var recs []models.SignalRecord
		if out.Opened != nil {
			recs = append(recs, *out.Opened)
		}
		if out.Closed != nil {
			recs = append(recs, *out.Closed)
		}
		if err := r.store.CommitCycle(ctx, out.Position, recs); err != nil {
			return engine.Outcome{}, err
		}
	}
	return out, nil
}

// report — уведомления после успешного коммита. Сугубо best-effort:
// нотифайер сам глотает ошибки доставки.
func (r *Runner) report(out engine.Outcome) {
	switch {
	case out.Opened != nil:
		log.Printf("[SIGNAL] LONG %s @ %.2f SL=%.2f size=%.8f",
			r.cfg.DisplaySymbol, out.Opened.EntryPrice, out.Opened.InitialStop, out.Opened.Size)
		r.n.Send(notify.OpenMessage(*out.Opened))

	case out.Closed != nil:
		log.Printf("[EXIT] %s low=%.2f <= SL=%.2f",
			r.cfg.DisplaySymbol, out.Closed.ExitLow, out.Closed.CurrentStop)
		r.n.Send(notify.CloseMessage(*out.Closed))

	case out.StopMoved:
		newStop := out.Position.CurrentStop
		log.Printf("[TRAIL] %s SL %.2f -> %.2f", r.cfg.DisplaySymbol, out.PrevStop, newStop)
		if out.PrevStop > 0 && (newStop-out.PrevStop)/out.PrevStop > trailNotifyPct {
			r.n.Send(notify.TrailMessage(r.cfg.DisplaySymbol, out.PrevStop, newStop, out.Position.EntryPrice))
		}

	default:
		log.Printf("[CYCLE] без изменений (%s)", r.cfg.DisplaySymbol)
	}
}

func (r *Runner) markRun() {
	r.healthMu.Lock()
	r.cycles++
	r.lastRunAt = time.Now()
	r.healthMu.Unlock()
}

func (r *Runner) markFailure() {
	r.healthMu.Lock()
	r.failures++
	r.healthMu.Unlock()
}

func (r *Runner) healthLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.healthMu.Lock()
			cycles, failures, last := r.cycles, r.failures, r.lastRunAt
			r.healthMu.Unlock()
			log.Printf("[HEALTH] cycles=%d failures=%d lastRun=%s", cycles, failures, last.Format(time.RFC3339))
		}
	}
}

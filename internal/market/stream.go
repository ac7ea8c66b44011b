package market

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"btc_surveillance/internal/models"
)

// Tick — закрытая свеча из WebSocket-потока.
type Tick struct {
	Symbol    string
	Timeframe models.Timeframe
	Candle    models.Candle
}

type klineEvent struct {
	EventType string `json:"e"`
	Kline     struct {
		OpenTime  int64  `json:"t"`
		CloseTime int64  `json:"T"`
		Interval  string `json:"i"`
		Open      string `json:"o"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Close     string `json:"c"`
		Volume    string `json:"v"`
		Closed    bool   `json:"x"`
	} `json:"k"`
}

// StreamClosedCandles — поток ЗАКРЫТЫХ свечей по таймфрейму.
// Держит соединение с реконнектом, наружу уходят только бары с x=true.
// Канал закрывается по ctx.
func (c *Client) StreamClosedCandles(ctx context.Context, symbol string, tf models.Timeframe) <-chan Tick {
	out := make(chan Tick)
	go func() {
		defer close(out)
		for {
			if err := c.streamOnce(ctx, symbol, tf, out); err != nil {
				log.Printf("[WS] %s %s: %v — реконнект через 5s", symbol, tf, err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
	}()
	return out
}

func (c *Client) streamOnce(ctx context.Context, symbol string, tf models.Timeframe, out chan<- Tick) error {
	url := fmt.Sprintf("%s/ws/%s@kline_%s", c.wsURL, strings.ToLower(symbol), tf)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	// Разрываем блокирующий Read при отмене контекста.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		var ev klineEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if ev.EventType != "kline" || !ev.Kline.Closed {
			continue
		}

		candle, err := candleFromEvent(ev)
		if err != nil {
			log.Printf("[WS] битая свеча %s: %v", symbol, err)
			continue
		}
		select {
		case out <- Tick{Symbol: symbol, Timeframe: tf, Candle: candle}:
		case <-ctx.Done():
			return nil
		}
	}
}

func candleFromEvent(ev klineEvent) (models.Candle, error) {
	var vals [5]float64
	for i, s := range []string{ev.Kline.Open, ev.Kline.High, ev.Kline.Low, ev.Kline.Close, ev.Kline.Volume} {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, err
		}
		vals[i] = f
	}
	return models.Candle{
		OpenTime:  time.UnixMilli(ev.Kline.OpenTime).UTC(),
		CloseTime: time.UnixMilli(ev.Kline.CloseTime).UTC(),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

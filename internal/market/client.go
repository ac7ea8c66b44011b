package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"btc_surveillance/internal/engine"
	"btc_surveillance/internal/models"
)

// Client — публичный REST Binance (spot). Только чтение, никаких ключей.
type Client struct {
	http    *http.Client
	baseURL string
	wsURL   string
}

func NewClient() *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://api.binance.com",
		wsURL:   "wss://stream.binance.com:9443",
	}
}

// Candles возвращает закрытые свечи по возрастанию времени.
// Binance всегда присылает последней текущую, ещё формирующуюся свечу —
// отбрасываем её: движок принимает решения только по закрытым барам.
func (c *Client) Candles(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.Candle, error) {
	url := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&limit=%d", c.baseURL, symbol, tf, limit+1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	rb, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: http %d: %s", engine.ErrUpstreamUnavailable, resp.StatusCode, string(rb))
	}

	// Формат kline: [openTime, "o","h","l","c","v", closeTime, ...]
	var raw [][]any
	if err := json.Unmarshal(rb, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode klines: %v", engine.ErrUpstreamUnavailable, err)
	}

	now := time.Now()
	out := make([]models.Candle, 0, len(raw))
	for _, k := range raw {
		candle, err := parseKline(k)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", engine.ErrInvalidIndicatorData, err)
		}
		if candle.CloseTime.After(now) {
			continue // формирующаяся свеча
		}
		out = append(out, candle)
	}
	return out, nil
}

func parseKline(k []any) (models.Candle, error) {
	if len(k) < 7 {
		return models.Candle{}, fmt.Errorf("kline has %d fields", len(k))
	}
	openMs, ok := k[0].(float64)
	if !ok {
		return models.Candle{}, fmt.Errorf("bad open time %v", k[0])
	}
	closeMs, ok := k[6].(float64)
	if !ok {
		return models.Candle{}, fmt.Errorf("bad close time %v", k[6])
	}

	var vals [5]float64
	for i := 1; i <= 5; i++ {
		s, ok := k[i].(string)
		if !ok {
			return models.Candle{}, fmt.Errorf("kline field %d is not a string", i)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("kline field %d: %v", i, err)
		}
		vals[i-1] = f
	}

	return models.Candle{
		OpenTime:  time.UnixMilli(int64(openMs)).UTC(),
		CloseTime: time.UnixMilli(int64(closeMs)).UTC(),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

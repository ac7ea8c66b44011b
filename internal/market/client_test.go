package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"btc_surveillance/internal/engine"
	"btc_surveillance/internal/models"
)

func kline(openTime, closeTime time.Time, o, h, l, c, v float64) string {
	return fmt.Sprintf(`[%d,"%f","%f","%f","%f","%f",%d,"0",0,"0","0","0"]`,
		openTime.UnixMilli(), o, h, l, c, v, closeTime.UnixMilli())
}

func TestCandlesDropsFormingCandle(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Hour)
	closed := kline(now.Add(-8*time.Hour), now.Add(-4*time.Hour), 100, 110, 95, 105, 10)
	forming := kline(now, now.Add(4*time.Hour), 105, 106, 104, 105.5, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("unexpected symbol %s", got)
		}
		fmt.Fprintf(w, "[%s,%s]", closed, forming)
	}))
	defer srv.Close()

	c := NewClient()
	c.baseURL = srv.URL

	candles, err := c.Candles(context.Background(), "BTCUSDT", models.TF4H, 120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 1 {
		t.Fatalf("forming candle must be dropped, got %d candles", len(candles))
	}
	got := candles[0]
	if got.Close != 105 || got.Low != 95 {
		t.Fatalf("bad candle: %+v", got)
	}
	if !got.CloseTime.Equal(now.Add(-4 * time.Hour)) {
		t.Fatalf("bad close time: %v", got.CloseTime)
	}
}

func TestCandlesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	}))
	defer srv.Close()

	c := NewClient()
	c.baseURL = srv.URL

	_, err := c.Candles(context.Background(), "BTCUSDT", models.TF4H, 120)
	if !errors.Is(err, engine.ErrUpstreamUnavailable) {
		t.Fatalf("want ErrUpstreamUnavailable, got %v", err)
	}
}

func TestCandlesGarbagePayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[[1,"not-a-number","1","1","1","1",2,"0"]]`)
	}))
	defer srv.Close()

	c := NewClient()
	c.baseURL = srv.URL

	_, err := c.Candles(context.Background(), "BTCUSDT", models.TF4H, 120)
	if !errors.Is(err, engine.ErrInvalidIndicatorData) {
		t.Fatalf("want ErrInvalidIndicatorData, got %v", err)
	}
}

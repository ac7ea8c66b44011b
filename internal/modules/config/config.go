package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	chatIDTelegramENV = "TELEGRAM_CHAT_ID"
	databaseDSN       = "DATABASE_DSN"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB string `yaml:"db_dsn"`

	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	// Инструмент: Symbol — как его знает Binance, DisplaySymbol — как
	// показываем в журнале и уведомлениях.
	Symbol        string `yaml:"symbol"`
	DisplaySymbol string `yaml:"display_symbol"`

	// Риск: сколько от депозита готовы потерять по СТОПУ.
	Capital float64 `yaml:"capital"`  // депозит в USDT
	RiskPct float64 `yaml:"risk_pct"` // например 1.0 => 1% депозита

	// Сколько свечей тянем для индикаторов.
	Lookback4H int `yaml:"lookback_4h"`
	Lookback1D int `yaml:"lookback_1d"`

	// Страховочный таймер на случай молчащего WebSocket.
	// Задаётся только через CYCLE_INTERVAL: yaml.v2 не умеет time.Duration.
	CycleInterval time.Duration `yaml:"-"`

	// Одна итерация и выход — для ручной проверки (RUN_ONCE=1).
	RunOnce bool
}

// RiskFraction — доля депозита на сделку (RiskPct задаётся в процентах).
func (c *Config) RiskFraction() float64 { return c.RiskPct / 100.0 }

func NewConfig() (*Config, error) {

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		log.Fatalf("Failed to open config file: %v", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		Symbol:        "BTCUSDT",
		DisplaySymbol: "BTC/USDT",
		Capital:       floatFromEnv("CAPITAL", 5000),
		RiskPct:       floatFromEnv("RISK_PCT", 1.0),
		Lookback4H:    intFromEnv("LOOKBACK_4H", 120),
		Lookback1D:    intFromEnv("LOOKBACK_1D", 250),
		CycleInterval: durationFromEnv("CYCLE_INTERVAL", "4h"),
		RunOnce:       boolFromEnv("RUN_ONCE", false),
	}
	err = decoder.Decode(&config)
	if err != nil {
		log.Fatalf("Failed to decode config file: %v", err)
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}
	if v := os.Getenv(chatIDTelegramENV); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Telegram.ChatID = id
		}
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	return &config, nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "1" || v == "true" || v == "TRUE" {
			return true
		}
		if v == "0" || v == "false" || v == "FALSE" {
			return false
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}

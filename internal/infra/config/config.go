package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                string
	HTTPAddr           string
	StoreMode          string
	MongoURI           string
	MongoDB            string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration

	Currency                 string
	ServiceFeePercent        int
	TaxPercent               int
	DefaultCommissionPercent int
	ShortTermRateThreshold   int64
	DefaultMinNights         int

	VoucherMinPercent int
	VoucherMaxPercent int
	VoucherMinFixed   int64
	VoucherMaxFixed   int64
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		StoreMode:        strings.ToLower(getEnv("STORE_MODE", "memory")),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "staybook"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		Currency:         getEnv("CURRENCY", "USD"),
	}
	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	poll, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.OutboxPollInterval = poll

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	if cfg.ServiceFeePercent, err = parsePercentEnv("SERVICE_FEE_PERCENT", 12); err != nil {
		return Config{}, err
	}
	if cfg.TaxPercent, err = parsePercentEnv("TAX_PERCENT", 8); err != nil {
		return Config{}, err
	}
	if cfg.DefaultCommissionPercent, err = parsePercentEnv("DEFAULT_COMMISSION_PERCENT", 15); err != nil {
		return Config{}, err
	}
	if cfg.ShortTermRateThreshold, err = parseInt64Env("SHORT_TERM_RATE_THRESHOLD", 150); err != nil {
		return Config{}, err
	}
	if cfg.DefaultMinNights, err = parseIntEnv("DEFAULT_MIN_NIGHTS", 1); err != nil {
		return Config{}, err
	}
	if cfg.VoucherMinPercent, err = parsePercentEnv("VOUCHER_MIN_PERCENT", 1); err != nil {
		return Config{}, err
	}
	if cfg.VoucherMaxPercent, err = parsePercentEnv("VOUCHER_MAX_PERCENT", 100); err != nil {
		return Config{}, err
	}
	if cfg.VoucherMinFixed, err = parseInt64Env("VOUCHER_MIN_FIXED", 1); err != nil {
		return Config{}, err
	}
	if cfg.VoucherMaxFixed, err = parseInt64Env("VOUCHER_MAX_FIXED", 10000); err != nil {
		return Config{}, err
	}

	switch cfg.StoreMode {
	case "memory":
	case "mongo":
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when STORE_MODE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("invalid STORE_MODE %q: want memory or mongo", cfg.StoreMode)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}

func parseInt64Env(key string, def int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}

func parsePercentEnv(key string, def int) (int, error) {
	n, err := parseIntEnv(key, def)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 100 {
		return 0, fmt.Errorf("%s must be between 0 and 100, got %d", key, n)
	}
	return n, nil
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures process-level configuration. Empty backend URLs select the
// in-memory implementations so the server runs without external services in
// development and tests.
type Config struct {
	Addr       string
	AdminToken string
	EventID    string

	PostgresDSN string

	Redis RedisConfig

	RabbitURL           string
	NotifyQueue         string
	DeliveryStatusQueue string

	KafkaBrokers []string
	AuditTopic   string

	VenueFeedPath string

	ShutdownTimeout time.Duration
}

// RedisConfig captures Redis connection tuning for the venue counter store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
// A .env file in the working directory is honored when present.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		Addr:        getEnv("BMMHUB_ADDR", ":8080"),
		AdminToken:  getEnv("BMMHUB_ADMIN_TOKEN", ""),
		EventID:     getEnv("BMMHUB_EVENT_ID", "bmm-2026"),
		PostgresDSN: getEnv("BMMHUB_POSTGRES_DSN", ""),
		Redis: RedisConfig{
			URL:          getEnv("BMMHUB_REDIS_URL", ""),
			PoolSize:     getEnvInt("BMMHUB_REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("BMMHUB_REDIS_MIN_IDLE", 2),
			DialTimeout:  getEnvDuration("BMMHUB_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("BMMHUB_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("BMMHUB_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		RabbitURL:           getEnv("BMMHUB_RABBIT_URL", ""),
		NotifyQueue:         getEnv("BMMHUB_NOTIFY_QUEUE", "bmm.notifications"),
		DeliveryStatusQueue: getEnv("BMMHUB_DELIVERY_STATUS_QUEUE", "bmm.delivery-status"),
		KafkaBrokers:        splitList(getEnv("BMMHUB_KAFKA_BROKERS", "")),
		AuditTopic:          getEnv("BMMHUB_AUDIT_TOPIC", "bmm.audit"),
		VenueFeedPath:       getEnv("BMMHUB_VENUE_FEED", ""),
		ShutdownTimeout:     getEnvDuration("BMMHUB_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

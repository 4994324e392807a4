package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	API    APIConfig
	Query  QueryConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
	// BasePath is where the dashboard and its static assets are mounted.
	// Always starts and ends with "/".
	BasePath string
	Timezone string
}

// APIConfig holds the upstream trading API configuration
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// QueryConfig controls the dashboard query cache. RenderWait bounds how long a
// page render waits for queries to settle.
type QueryConfig struct {
	Retry      int
	StaleTime  time.Duration
	RenderWait time.Duration
}

// RedisConfig holds Redis configuration. An empty Host disables the shared cache store.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// KafkaConfig holds Kafka/Redpanda configuration. No brokers disables the listener.
type KafkaConfig struct {
	Brokers       []string
	TradesTopic   string
	ConsumerGroup string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from environment variables, after loading .env if present
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:     getEnv("SERVER_PORT", "8081"),
			Host:     getEnv("SERVER_HOST", "0.0.0.0"),
			BasePath: NormalizeBasePath(getEnv("BASE_PATH", getEnv("VITE_BASE_PATH", "/"))),
			Timezone: getEnv("DISPLAY_TIMEZONE", "Local"),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", getEnv("VITE_API_BASE_URL", "http://localhost:8000/api")), "/"),
			Timeout: getDuration("API_TIMEOUT", 30*time.Second),
		},
		Query: QueryConfig{
			Retry:      getInt("QUERY_RETRY", 3),
			StaleTime:  getDuration("QUERY_STALE_TIME", 0),
			RenderWait: getDuration("QUERY_RENDER_WAIT", 10*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
			CacheTTL: getDuration("REDIS_CACHE_TTL", time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:       parseBrokers(getEnv("KAFKA_BROKERS", "")),
			TradesTopic:   getEnv("KAFKA_TRADES_TOPIC", "trading.orders"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "stock-trader-dashboard"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getBool("LOG_PRETTY", false),
		},
	}
}

// Enabled reports whether a Redis host was configured
func (r *RedisConfig) Enabled() bool {
	return r.Host != ""
}

// Address returns the Redis address in host:port format
func (r *RedisConfig) Address() string {
	return r.Host + ":" + r.Port
}

// Enabled reports whether any Kafka brokers were configured
func (k *KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Location resolves the display timezone, falling back to time.Local
func (s *ServerConfig) Location() *time.Location {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// NormalizeBasePath makes sure the path has a leading and trailing slash
func NormalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// parseBrokers splits a comma-separated broker list
func parseBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

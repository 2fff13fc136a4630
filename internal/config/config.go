package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Backends de almacenamiento soportados.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongoDB  = "mongodb"
	BackendRedis    = "redis"
)

type Config struct {
	StorageBackend     string
	SQLitePath         string
	DatabaseURL        string
	MongoURI           string
	MongoDatabase      string
	RedisAddr          string
	ClickHouseAddr     string
	ClickHouseDatabase string
	UseKafka           bool
	KafkaBrokers       []string
	KafkaTopic         string
	SeedFile           string
	HTTPPort           string
	QueryTimeout       time.Duration
	MetricsEnabled     bool
	LogLevel           string
}

func LoadConfig() *Config {
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	getBool := func(key string, fallback bool) bool {
		b, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
		if err != nil {
			return fallback
		}
		return b
	}

	timeout, err := time.ParseDuration(getEnv("QUERY_TIMEOUT", "5s"))
	if err != nil || timeout <= 0 {
		timeout = 5 * time.Second
	}

	kafkaBrokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")

	return &Config{
		StorageBackend:     strings.ToLower(getEnv("STORAGE_BACKEND", BackendSQLite)),
		SQLitePath:         getEnv("SQLITE_PATH", "./metamood_tracks.db"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:      getEnv("MONGO_DATABASE", "metamood"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "metamood"),
		UseKafka:           getBool("USE_KAFKA", false),
		KafkaBrokers:       kafkaBrokers,
		KafkaTopic:         getEnv("KAFKA_TOPIC", "track-events"),
		SeedFile:           getEnv("SEED_FILE", ""),
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		QueryTimeout:       timeout,
		MetricsEnabled:     getBool("METRICS_ENABLED", true),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

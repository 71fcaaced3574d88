// Package config loads and validates application configuration from YAML
// files with environment-variable overrides. It provides typed structs for
// every subsystem (Server, Corpus, Crawler, Ranking, Search, Postgres,
// Kafka, Redis, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Crawler   CrawlerConfig   `yaml:"crawler"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Search    SearchConfig    `yaml:"search"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings for the search service.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// CorpusConfig selects where the search service loads its pages from.
// Backend is either "fs" (datasets/<name>/Words + Links files) or
// "postgres" (the pages table written by the crawler or datasetd).
type CorpusConfig struct {
	Backend string `yaml:"backend"`
	DataDir string `yaml:"dataDir"`
	Dataset string `yaml:"dataset"`
}

// CrawlerConfig controls the wiki scraper: politeness rate, HTTP timeout,
// and the base URL pages are fetched from.
type CrawlerConfig struct {
	BaseURL        string        `yaml:"baseUrl"`
	RequestsPerSec float64       `yaml:"requestsPerSec"`
	Burst          int           `yaml:"burst"`
	HTTPTimeout    time.Duration `yaml:"httpTimeout"`
}

// RankingConfig controls the authority solver and signal blending. The
// weights are configurable so ranking experiments do not require a rebuild.
type RankingConfig struct {
	Damping         float64 `yaml:"damping"`
	Iterations      int     `yaml:"iterations"`
	LocationWeight  float64 `yaml:"locationWeight"`
	AuthorityWeight float64 `yaml:"authorityWeight"`
}

// SearchConfig controls query execution limits.
type SearchConfig struct {
	MaxResults int `yaml:"maxResults"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	PageCrawled string `yaml:"pageCrawled"`
	QueryEvents string `yaml:"queryEvents"`
}

// RedisConfig holds Redis connection and query-cache parameters.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// AnalyticsConfig controls the query-event collector.
type AnalyticsConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"bufferSize"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-
// variable overrides. It returns a Config populated with sensible defaults
// for any missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// defaultConfig returns a Config with defaults suitable for local
// development against the Electric_guitar reference dataset.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Corpus: CorpusConfig{
			Backend: "fs",
			DataDir: "datasets",
			Dataset: "Electric_guitar",
		},
		Crawler: CrawlerConfig{
			BaseURL:        "https://en.wikipedia.org",
			RequestsPerSec: 5,
			Burst:          10,
			HTTPTimeout:    30 * time.Second,
		},
		Ranking: RankingConfig{
			Damping:         0.85,
			Iterations:      20,
			LocationWeight:  0.8,
			AuthorityWeight: 0.5,
		},
		Search: SearchConfig{
			MaxResults: 5,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "wikirank",
			User:            "wikirank",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "wikirank-group",
			Topics: KafkaTopics{
				PageCrawled: "page-crawled",
				QueryEvents: "query-events",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Analytics: AnalyticsConfig{
			Enabled:    false,
			BufferSize: 10000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads WR_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WR_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("WR_CORPUS_BACKEND"); v != "" {
		cfg.Corpus.Backend = v
	}
	if v := os.Getenv("WR_CORPUS_DATADIR"); v != "" {
		cfg.Corpus.DataDir = v
	}
	if v := os.Getenv("WR_CORPUS_DATASET"); v != "" {
		cfg.Corpus.Dataset = v
	}
	if v := os.Getenv("WR_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("WR_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("WR_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("WR_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("WR_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("WR_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("WR_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("WR_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("WR_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("WR_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WR_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

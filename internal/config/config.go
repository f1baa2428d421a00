package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const EnvProduction = "production"

type Config struct {
	AppEnv   string `env:"APP_ENV" env-default:"development"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	// host:port del collector OTLP/HTTP; vacío no exporta
	TracingEndpoint string `env:"TRACING_ENDPOINT"`
	HTTPPort string `env:"HTTP_PORT" env-default:"3001"`

	DatabaseURL string `env:"DATABASE_URL" env-required:"true"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" env-default:"10"`

	RedisAddr string        `env:"REDIS_ADDR"`
	CacheTTL  time.Duration `env:"CACHE_TTL" env-default:"5m"`

	// log | kafka | mongo | sqlite | memory
	EventSink           string   `env:"EVENT_SINK" env-default:"log"`
	EventProducer       string   `env:"EVENT_PRODUCER" env-default:"docsearch-api"`
	KafkaBrokers        []string `env:"KAFKA_BROKERS" env-separator:"," env-default:"localhost:9092"`
	KafkaTopic          string   `env:"KAFKA_TOPIC" env-default:"document-events"`
	KafkaConsumerGroup  string   `env:"KAFKA_CONSUMER_GROUP"`
	MongoURI            string   `env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	MongoDatabase       string   `env:"MONGO_DATABASE" env-default:"docsearch"`
	SQLitePath          string   `env:"SQLITE_PATH" env-default:"./docsearch_events.db"`
	SinkBreakerFailures uint32   `env:"SINK_BREAKER_FAILURES" env-default:"5"`

	ClickHouseAddr     string `env:"CLICKHOUSE_ADDR"`
	ClickHouseDatabase string `env:"CLICKHOUSE_DATABASE" env-default:"default"`

	PublisherEnabled  bool          `env:"PUBLISHER_ENABLED" env-default:"true"`
	PublisherInterval time.Duration `env:"PUBLISHER_INTERVAL" env-default:"1s"`
	PublisherBatch    int           `env:"PUBLISHER_BATCH" env-default:"10"`
	IndexerInterval   time.Duration `env:"INDEXER_INTERVAL" env-default:"2s"`
	IndexerBatch      int           `env:"INDEXER_BATCH" env-default:"10"`
	RelayMaxBackoff   time.Duration `env:"RELAY_MAX_BACKOFF" env-default:"30s"`
}

// LoadConfig lee un .env opcional y después el entorno del proceso.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	switch cfg.EventSink {
	case "log", "kafka", "mongo", "sqlite", "memory":
	default:
		return nil, fmt.Errorf("unknown EVENT_SINK %q", cfg.EventSink)
	}
	if cfg.PublisherBatch < 1 || cfg.IndexerBatch < 1 {
		return nil, fmt.Errorf("batch sizes must be positive")
	}
	if cfg.PublisherInterval <= 0 || cfg.IndexerInterval <= 0 || cfg.RelayMaxBackoff <= 0 {
		return nil, fmt.Errorf("loop intervals and RELAY_MAX_BACKOFF must be positive")
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

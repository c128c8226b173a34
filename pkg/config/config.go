package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures the full runtime configuration for the thumbflow worker.
type Config struct {
	App       AppConfig
	Admin     AdminConfig
	Kafka     KafkaConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Thumbnail ThumbnailConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"thumbflow-worker"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	Version     string `env:"APP_VERSION" envDefault:"0.1.0"`
	LogLevel    string `env:"APP_LOG_LEVEL" envDefault:"info"`
}

type AdminConfig struct {
	Addr         string        `env:"ADMIN_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"ADMIN_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout time.Duration `env:"ADMIN_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout  time.Duration `env:"ADMIN_IDLE_TIMEOUT" envDefault:"120s"`
}

type KafkaConfig struct {
	Brokers          []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	UploadsTopic     string        `env:"KAFKA_UPLOADS_TOPIC" envDefault:"thumbflow.uploads"`
	GroupID          string        `env:"KAFKA_GROUP_ID" envDefault:"thumbflow-worker"`
	CompletionTopic  string        `env:"KAFKA_COMPLETION_TOPIC"`
	Retries          int           `env:"KAFKA_RETRIES" envDefault:"3"`
	CompressionCodec string        `env:"KAFKA_COMPRESSION_CODEC" envDefault:"snappy"`
	BatchSize        int           `env:"KAFKA_BATCH_SIZE" envDefault:"100"`
	BatchTimeout     time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"1s"`
	MaxWait          time.Duration `env:"KAFKA_MAX_WAIT" envDefault:"1s"`
	MinBytes         int           `env:"KAFKA_MIN_BYTES" envDefault:"1"`
	MaxBytes         int           `env:"KAFKA_MAX_BYTES" envDefault:"10485760"`
}

type StorageConfig struct {
	Provider        string `env:"STORAGE_PROVIDER" envDefault:"minio"`
	Endpoint        string `env:"STORAGE_ENDPOINT" envDefault:"localhost:9000"`
	Region          string `env:"STORAGE_REGION" envDefault:"us-east-1"`
	AccessKey       string `env:"STORAGE_ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey       string `env:"STORAGE_SECRET_KEY" envDefault:"minioadmin"`
	UseSSL          bool   `env:"STORAGE_USE_SSL" envDefault:"false"`
	ThumbnailBucket string `env:"THUMBNAIL_BUCKET,notEmpty"`
}

type DatabaseConfig struct {
	DSN           string `env:"DATABASE_URL,notEmpty"`
	MetadataTable string `env:"METADATA_TABLE,notEmpty"`
}

type ThumbnailConfig struct {
	MaxWidth  int    `env:"THUMBNAIL_MAX_WIDTH" envDefault:"100"`
	MaxHeight int    `env:"THUMBNAIL_MAX_HEIGHT" envDefault:"100"`
	Quality   int    `env:"THUMBNAIL_JPEG_QUALITY" envDefault:"85"`
	KeyPrefix string `env:"THUMBNAIL_KEY_PREFIX" envDefault:"thumbnails/"`
}

type TracingConfig struct {
	Endpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	Insecure     bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	SampleRatio  float64 `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1.0"`
	ResourceAttr string  `env:"OTEL_RESOURCE_ATTRIBUTES" envDefault:"service.namespace=thumbflow"`
}

// Load parses environment variables into Config. Required values without a
// default (destination bucket, metadata table, database DSN) fail the load,
// so a misconfigured worker never accepts an event.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

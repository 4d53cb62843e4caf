package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"docsense-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// APIKey, when set, is required as a bearer token on every request
	// except /health.
	APIKey string `envconfig:"API_KEY"`

	SentryDSN string `envconfig:"SENTRY_DSN"`

	// Chunking
	ChunkMaxChars int `envconfig:"CHUNK_MAX_CHARS" default:"1000"`
	ChunkOverlap  int `envconfig:"CHUNK_OVERLAP" default:"150"`
	ChunkMaxCount int `envconfig:"CHUNK_MAX_COUNT" default:"100"`

	// Batch jobs
	JobWorkers       int `envconfig:"JOB_WORKERS" default:"4"`
	JobRatePerMinute int `envconfig:"JOB_RATE_PER_MINUTE" default:"60"`
	JobRetryAttempts int `envconfig:"JOB_RETRY_ATTEMPTS" default:"5"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOCSENSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

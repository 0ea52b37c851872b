package config

import (
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
	Worker   *workerConfig
	Artifact *artifactConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"hypertune"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string `envconfig:"HYPERTUNE_ADDRESS" default:":3443"`
	MetricsAddress  string `envconfig:"HYPERTUNE_METRICS_ADDRESS" default:":8080"`
	BaseUrl         string `envconfig:"HYPERTUNE_BASE_URL" default:"http://localhost:3443"`
	LogLevel        string `envconfig:"HYPERTUNE_LOG_LEVEL" default:"info"`
	MigrationFolder string `envconfig:"HYPERTUNE_MIGRATIONS_FOLDER" default:""`
}

type workerConfig struct {
	ID              string `envconfig:"HYPERTUNE_WORKER_ID" default:""`
	PollInterval    int    `envconfig:"HYPERTUNE_WORKER_POLL_INTERVAL_SECONDS" default:"10"`
	FinalizeRetries int    `envconfig:"HYPERTUNE_WORKER_FINALIZE_RETRIES" default:"1"`
}

type artifactConfig struct {
	Endpoint  string `envconfig:"HYPERTUNE_S3_ENDPOINT" default:""`
	AccessKey string `envconfig:"HYPERTUNE_S3_ACCESS_KEY" default:""`
	SecretKey string `envconfig:"HYPERTUNE_S3_SECRET_KEY" default:""`
	Bucket    string `envconfig:"HYPERTUNE_S3_BUCKET" default:"hypertune-datasets"`
	UseSSL    bool   `envconfig:"HYPERTUNE_S3_USE_SSL" default:"false"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a configuration backed by an in-memory sqlite store.
// Used by tests, which must not depend on the environment.
func NewDefault() *Config {
	return &Config{
		Database: &dbConfig{Type: "sqlite", Name: ":memory:"},
		Service:  &svcConfig{Address: ":3443", MetricsAddress: ":8080", LogLevel: "info"},
		Worker:   &workerConfig{PollInterval: 10, FinalizeRetries: 1},
		Artifact: &artifactConfig{Bucket: "hypertune-datasets"},
	}
}

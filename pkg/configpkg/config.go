// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config stores all configuration of the application.
//
// The values are read by viper fron a config file or environement variables.
type Config struct {
	Environement          string        `mapstructure:"GO_ENV"`
	StoreDriver           string        `mapstructure:"STORE_DRIVER"`
	DBDriver              string        `mapstructure:"DB_DRIVER"`
	DBSource              string        `mapstructure:"DB_SOURCE"`
	DataServerAddress     string        `mapstructure:"DATA_SERVER_ADDRESS"`
	BusinessServerAddress string        `mapstructure:"BUSINESS_SERVER_ADDRESS"`
	DataServiceURL        string        `mapstructure:"DATA_SERVICE_URL"`
	StoreTimeout          time.Duration `mapstructure:"STORE_TIMEOUT"`
	UpstreamTimeout       time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`
	UpstreamMaxRetries    uint64        `mapstructure:"UPSTREAM_MAX_RETRIES"`
	UpstreamBackoff       time.Duration `mapstructure:"UPSTREAM_BACKOFF"`
	AuditQueueSize        int           `mapstructure:"AUDIT_QUEUE_SIZE"`
	AuditWorkers          int           `mapstructure:"AUDIT_WORKERS"`
	AuditActor            string        `mapstructure:"AUDIT_ACTOR"`
	AuditMaxRetries       uint64        `mapstructure:"AUDIT_MAX_RETRIES"`
	AuditBackoff          time.Duration `mapstructure:"AUDIT_BACKOFF"`
	KafkaBrokers          string        `mapstructure:"KAFKA_BROKERS"`
	KafkaTransactionTopic string        `mapstructure:"KAFKA_TRANSACTION_TOPIC"`
	KafkaAuditTopic       string        `mapstructure:"KAFKA_AUDIT_TOPIC"`
	ShutdownTimeout       time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var defaults = map[string]any{
	"GO_ENV":                  "production",
	"STORE_DRIVER":            StorePostgres,
	"DB_DRIVER":               "postgres",
	"DB_SOURCE":               "",
	"DATA_SERVER_ADDRESS":     "0.0.0.0:8081",
	"BUSINESS_SERVER_ADDRESS": "0.0.0.0:8080",
	"DATA_SERVICE_URL":        "http://localhost:8081",
	"STORE_TIMEOUT":           5 * time.Second,
	"UPSTREAM_TIMEOUT":        3 * time.Second,
	"UPSTREAM_MAX_RETRIES":    3,
	"UPSTREAM_BACKOFF":        100 * time.Millisecond,
	"AUDIT_QUEUE_SIZE":        1024,
	"AUDIT_WORKERS":           2,
	"AUDIT_ACTOR":             "Admin",
	"AUDIT_MAX_RETRIES":       5,
	"AUDIT_BACKOFF":           200 * time.Millisecond,
	"KAFKA_BROKERS":           "",
	"KAFKA_TRANSACTION_TOPIC": "transaction_completed",
	"KAFKA_AUDIT_TOPIC":       "audit_entries",
	"SHUTDOWN_TIMEOUT":        10 * time.Second,
}

// Load read configuration from file or environment variables.
//
// A missing app.env is not an error: defaults and the environment are used instead.
// Variables from an optional .env.local in the same directory are exported first.
func Load(path string) (Config, error) {
	var c Config

	local := filepath.Join(path, ".env.local")
	if _, err := os.Stat(local); err == nil {
		if err := godotenv.Load(local); err != nil {
			return c, err
		}
	}

	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, err
		}
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}

// Brokers returns the configured kafka brokers.
func (c Config) Brokers() []string {
	var brokers []string

	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return brokers
}

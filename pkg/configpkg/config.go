// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported snapshot store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
	DriverFile     = "file"
)

// Config stores all configuration of the application.
//
// The values are read by viper fron a config file or environement variables.
type Config struct {
	DBDriver         string        `mapstructure:"DB_DRIVER"`
	DBSource         string        `mapstructure:"DB_SOURCE"`
	ServerAddress    string        `mapstructure:"SERVER_ADDRESS"`
	Environement     string        `mapstructure:"GO_ENV"`
	SnapshotInterval time.Duration `mapstructure:"SNAPSHOT_INTERVAL"`
	KafkaBrokers     string        `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic       string        `mapstructure:"KAFKA_TOPIC"`
}

// Brokers returns the comma separated KafkaBrokers as a list.
func (c Config) Brokers() []string {
	var out []string

	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}

	return out
}

// Load read configuration from file or environment variables.
//
// A .env file next to app.env, when present, is loaded into the process
// environment first so local overrides win over app.env.
func Load(path string) (Config, error) {
	var c Config

	err := godotenv.Load(filepath.Join(path, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, err
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("DB_DRIVER", DriverFile)
	v.SetDefault("DB_SOURCE", "./ledger-snapshot.yaml")
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("SNAPSHOT_INTERVAL", time.Minute)
	v.SetDefault("GO_ENV", "production")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "market_transactions")

	v.AutomaticEnv()

	err = v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}

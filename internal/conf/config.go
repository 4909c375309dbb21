// Package conf loads abbc3-migrate settings from config.yaml, ABBC3_*
// environment variables and command-line flags.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/vse/abbc3-migrate/internal/errors"
	"github.com/vse/abbc3-migrate/internal/logger"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Settings contains all configuration options
type Settings struct {
	Debug bool // true to enable debug mode

	Database  DatabaseSettings
	BBCode    BBCodeSettings
	Logging   logger.LoggingConfig
	Telemetry TelemetrySettings
	Metrics   MetricsSettings
	Lock      LockSettings
}

// DatabaseSettings selects and configures the forum database
type DatabaseSettings struct {
	Driver      string        // sqlite, mysql or postgres
	TablePrefix string        // table prefix of the forum install, e.g. phpbb_
	SlowQuery   time.Duration // queries slower than this are logged as warnings, 0 disables

	SQLite   SQLiteSettings
	MySQL    MySQLSettings
	Postgres PostgresSettings
}

// SQLiteSettings contains settings for the SQLite database
type SQLiteSettings struct {
	Path string // path to the database file
}

// MySQLSettings contains settings for the MySQL database
type MySQLSettings struct {
	Username string
	Password string
	Host     string
	Port     string
	Database string
}

// PostgresSettings contains settings for the PostgreSQL database
type PostgresSettings struct {
	Username string
	Password string
	Host     string
	Port     string
	Database string
	SSLMode  string // disable, require, verify-ca, verify-full
}

// BBCodeSettings bounds the ids assigned to seeded tags. Ids are allocated in
// (CoreReserved, IDCeiling].
type BBCodeSettings struct {
	CoreReserved int // highest id reserved for built-in tags
	IDCeiling    int // highest id a custom tag may take
}

// TelemetrySettings configures Sentry error reporting
type TelemetrySettings struct {
	Enabled     bool
	DSN         string
	Environment string
}

// MetricsSettings configures the Prometheus Pushgateway target for run metrics
type MetricsSettings struct {
	Pushgateway string // push URL, empty disables pushing
	Job         string
}

// LockSettings configures the exclusive run lock
type LockSettings struct {
	Enabled bool
	TTL     time.Duration
	Redis   RedisSettings
}

// RedisSettings contains the Redis connection used for the run lock
type RedisSettings struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads configFile (or config.yaml from the default search paths when
// empty), applies environment overrides and validates the result.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(configFile); err != nil {
		return nil, errors.New(fmt.Errorf("error initializing viper: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error validating settings: %w", err)).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper sets defaults, environment bindings and reads the config file.
// A missing config.yaml on the search path is not an error.
func initViper(configFile string) error {
	setDefaultConfig()

	if err := bindEnvVars(); err != nil {
		return err
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		return nil
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	for _, path := range GetDefaultConfigPaths() {
		viper.AddConfigPath(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml
func GetDefaultConfigPaths() []string {
	paths := []string{"."}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "abbc3-migrate"))
	}
	return paths
}

// GetSettings returns the settings from the last successful Load
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

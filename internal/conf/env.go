// env.go - Environment variable configuration and validation
package conf

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "ABBC3_DEBUG", validateEnvBool},

		// Database
		{"database.driver", "ABBC3_DB_DRIVER", validateEnvDriver},
		{"database.tableprefix", "ABBC3_DB_TABLEPREFIX", validateEnvTablePrefix},
		{"database.sqlite.path", "ABBC3_DB_SQLITE_PATH", nil},
		{"database.mysql.host", "ABBC3_DB_MYSQL_HOST", nil},
		{"database.mysql.port", "ABBC3_DB_MYSQL_PORT", validateEnvPort},
		{"database.mysql.username", "ABBC3_DB_MYSQL_USERNAME", nil},
		{"database.mysql.password", "ABBC3_DB_MYSQL_PASSWORD", nil},
		{"database.mysql.database", "ABBC3_DB_MYSQL_DATABASE", nil},
		{"database.postgres.host", "ABBC3_DB_POSTGRES_HOST", nil},
		{"database.postgres.port", "ABBC3_DB_POSTGRES_PORT", validateEnvPort},
		{"database.postgres.username", "ABBC3_DB_POSTGRES_USERNAME", nil},
		{"database.postgres.password", "ABBC3_DB_POSTGRES_PASSWORD", nil},
		{"database.postgres.database", "ABBC3_DB_POSTGRES_DATABASE", nil},
		{"database.postgres.sslmode", "ABBC3_DB_POSTGRES_SSLMODE", validateEnvSSLMode},

		// BBCode id range
		{"bbcode.corereserved", "ABBC3_BBCODE_CORERESERVED", validateEnvNonNegativeInt},
		{"bbcode.idceiling", "ABBC3_BBCODE_IDCEILING", validateEnvPositiveInt},

		// Logging
		{"logging.defaultlevel", "ABBC3_LOG_LEVEL", validateEnvLogLevel},
		{"logging.console.level", "ABBC3_LOG_CONSOLE_LEVEL", validateEnvLogLevel},

		// Telemetry and metrics
		{"telemetry.enabled", "ABBC3_TELEMETRY_ENABLED", validateEnvBool},
		{"telemetry.dsn", "ABBC3_SENTRY_DSN", validateEnvURL},
		{"metrics.pushgateway", "ABBC3_PUSHGATEWAY_URL", validateEnvURL},

		// Run lock
		{"lock.enabled", "ABBC3_LOCK_ENABLED", validateEnvBool},
		{"lock.redis.addr", "ABBC3_REDIS_ADDR", nil},
		{"lock.redis.password", "ABBC3_REDIS_PASSWORD", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, redactEnvValue(binding.EnvVar, envValue), err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// redactEnvValue hides values of secret-bearing variables in messages
func redactEnvValue(envVar, value string) string {
	if strings.Contains(envVar, "PASSWORD") || strings.Contains(envVar, "DSN") {
		return "[REDACTED]"
	}
	return value
}

// Environment variable validation functions

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f", value)
	}
	return nil
}

func validateEnvDriver(value string) error {
	if !slices.Contains(validDrivers, value) {
		return fmt.Errorf("must be one of: %s", strings.Join(validDrivers, ", "))
	}
	return nil
}

func validateEnvTablePrefix(value string) error {
	if !tablePrefixPattern.MatchString(value) {
		return fmt.Errorf("table prefix may only contain lowercase letters, digits and underscores")
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validateEnvSSLMode(value string) error {
	if !slices.Contains(validSSLModes, value) {
		return fmt.Errorf("must be one of: %s", strings.Join(validSSLModes, ", "))
	}
	return nil
}

func validateEnvNonNegativeInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer: %w", err)
	}
	if n < 0 {
		return fmt.Errorf("must be non-negative, got %d", n)
	}
	return nil
}

func validateEnvPositiveInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer: %w", err)
	}
	if n < 1 {
		return fmt.Errorf("must be positive, got %d", n)
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	if !slices.Contains(validLogLevels, value) {
		return fmt.Errorf("must be one of: %s", strings.Join(validLogLevels, ", "))
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("URL must include scheme and host")
	}
	return nil
}

// conf/validate.go

package conf

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	validDrivers   = []string{DriverSQLite, DriverMySQL, DriverPostgres}
	validSSLModes  = []string{"disable", "require", "verify-ca", "verify-full"}
	validLogLevels = []string{"trace", "debug", "info", "warn", "error"}

	tablePrefixPattern = regexp.MustCompile(`^[a-z0-9_]*$`)
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateDatabaseSettings(&settings.Database); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateBBCodeSettings(&settings.BBCode); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateLoggingSettings(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateTelemetrySettings(&settings.Telemetry); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateLockSettings(&settings.Lock); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateDatabaseSettings(settings *DatabaseSettings) error {
	var errs []string

	if !tablePrefixPattern.MatchString(settings.TablePrefix) {
		errs = append(errs, fmt.Sprintf("invalid table prefix %q: only lowercase letters, digits and underscores are allowed", settings.TablePrefix))
	}
	if settings.SlowQuery < 0 {
		errs = append(errs, "slow query threshold must not be negative")
	}

	switch settings.Driver {
	case DriverSQLite:
		if settings.SQLite.Path == "" {
			errs = append(errs, "sqlite path must be set")
		}
	case DriverMySQL:
		if settings.MySQL.Host == "" || settings.MySQL.Database == "" {
			errs = append(errs, "mysql host and database must be set")
		}
	case DriverPostgres:
		if settings.Postgres.Host == "" || settings.Postgres.Database == "" {
			errs = append(errs, "postgres host and database must be set")
		}
		if settings.Postgres.SSLMode != "" && !slices.Contains(validSSLModes, settings.Postgres.SSLMode) {
			errs = append(errs, fmt.Sprintf("invalid postgres sslmode %q", settings.Postgres.SSLMode))
		}
	default:
		errs = append(errs, fmt.Sprintf("unsupported database driver %q, must be one of: %s", settings.Driver, strings.Join(validDrivers, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("database settings: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateBBCodeSettings(settings *BBCodeSettings) error {
	if settings.CoreReserved < 0 {
		return fmt.Errorf("bbcode settings: corereserved must be non-negative, got %d", settings.CoreReserved)
	}
	if settings.IDCeiling <= settings.CoreReserved {
		return fmt.Errorf("bbcode settings: idceiling (%d) must be greater than corereserved (%d)", settings.IDCeiling, settings.CoreReserved)
	}
	return nil
}

func validateLoggingSettings(settings *Settings) error {
	levels := []string{settings.Logging.DefaultLevel}
	if settings.Logging.Console != nil {
		levels = append(levels, settings.Logging.Console.Level)
	}
	if settings.Logging.FileOutput != nil {
		levels = append(levels, settings.Logging.FileOutput.Level)
	}
	for module, level := range settings.Logging.ModuleLevels {
		if !slices.Contains(validLogLevels, level) {
			return fmt.Errorf("logging settings: invalid level %q for module %s", level, module)
		}
	}
	for _, level := range levels {
		if level != "" && !slices.Contains(validLogLevels, level) {
			return fmt.Errorf("logging settings: invalid level %q, must be one of: %s", level, strings.Join(validLogLevels, ", "))
		}
	}
	return nil
}

func validateTelemetrySettings(settings *TelemetrySettings) error {
	if settings.Enabled && settings.DSN == "" {
		return fmt.Errorf("telemetry settings: dsn must be set when telemetry is enabled")
	}
	return nil
}

func validateLockSettings(settings *LockSettings) error {
	if !settings.Enabled {
		return nil
	}
	if settings.Redis.Addr == "" {
		return fmt.Errorf("lock settings: redis addr must be set when the lock is enabled")
	}
	if settings.TTL <= 0 {
		return fmt.Errorf("lock settings: ttl must be positive")
	}
	return nil
}

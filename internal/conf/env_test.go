package conf

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvValidators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		validate func(string) error
		value    string
		wantErr  bool
	}{
		{"bool true", validateEnvBool, "true", false},
		{"bool with spaces", validateEnvBool, " 1 ", false},
		{"bool yes", validateEnvBool, "yes", true},
		{"driver sqlite", validateEnvDriver, "sqlite", false},
		{"driver postgres", validateEnvDriver, "postgres", false},
		{"driver oracle", validateEnvDriver, "oracle", true},
		{"prefix phpbb_", validateEnvTablePrefix, "phpbb_", false},
		{"prefix empty", validateEnvTablePrefix, "", false},
		{"prefix with dash", validateEnvTablePrefix, "php-bb", true},
		{"prefix uppercase", validateEnvTablePrefix, "PHPBB_", true},
		{"port 3306", validateEnvPort, "3306", false},
		{"port zero", validateEnvPort, "0", true},
		{"port too large", validateEnvPort, "70000", true},
		{"port text", validateEnvPort, "mysql", true},
		{"sslmode require", validateEnvSSLMode, "require", false},
		{"sslmode bogus", validateEnvSSLMode, "maybe", true},
		{"core reserved zero", validateEnvNonNegativeInt, "0", false},
		{"core reserved negative", validateEnvNonNegativeInt, "-1", true},
		{"ceiling positive", validateEnvPositiveInt, "1511", false},
		{"ceiling zero", validateEnvPositiveInt, "0", true},
		{"log level trace", validateEnvLogLevel, "trace", false},
		{"log level verbose", validateEnvLogLevel, "verbose", true},
		{"url ok", validateEnvURL, "http://pushgateway:9091", false},
		{"url without scheme", validateEnvURL, "pushgateway:9091/x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.validate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBindEnvVarsReportsInvalidValues(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("ABBC3_DB_DRIVER", "oracle")
	t.Setenv("ABBC3_DB_MYSQL_PASSWORD", "hunter2")

	err := bindEnvVars()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ABBC3_DB_DRIVER")
	assert.NotContains(t, err.Error(), "hunter2")
}

func TestRedactEnvValue(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "[REDACTED]", redactEnvValue("ABBC3_REDIS_PASSWORD", "secret"))
	assert.Equal(t, "[REDACTED]", redactEnvValue("ABBC3_SENTRY_DSN", "https://k@sentry.io/1"))
	assert.Equal(t, "mysql", redactEnvValue("ABBC3_DB_DRIVER", "mysql"))
}

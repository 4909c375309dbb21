// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// phpBB 3.1 limits: NUM_CORE_BBCODES and BBCODE_LIMIT
const (
	DefaultCoreReserved = 12
	DefaultIDCeiling    = 1511
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("database.driver", DriverSQLite)
	viper.SetDefault("database.tableprefix", "phpbb_")
	viper.SetDefault("database.slowquery", 200*time.Millisecond)
	viper.SetDefault("database.sqlite.path", "forum.db")
	viper.SetDefault("database.mysql.host", "localhost")
	viper.SetDefault("database.mysql.port", "3306")
	viper.SetDefault("database.mysql.username", "")
	viper.SetDefault("database.mysql.password", "")
	viper.SetDefault("database.mysql.database", "phpbb")
	viper.SetDefault("database.postgres.host", "localhost")
	viper.SetDefault("database.postgres.port", "5432")
	viper.SetDefault("database.postgres.username", "")
	viper.SetDefault("database.postgres.password", "")
	viper.SetDefault("database.postgres.database", "phpbb")
	viper.SetDefault("database.postgres.sslmode", "disable")

	viper.SetDefault("bbcode.corereserved", DefaultCoreReserved)
	viper.SetDefault("bbcode.idceiling", DefaultIDCeiling)

	viper.SetDefault("logging.defaultlevel", "info")
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", true)
	viper.SetDefault("logging.console.level", "info")
	viper.SetDefault("logging.fileoutput.enabled", false)
	viper.SetDefault("logging.fileoutput.path", "logs/abbc3-migrate.log")
	viper.SetDefault("logging.fileoutput.level", "debug")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.dsn", "")
	viper.SetDefault("telemetry.environment", "production")

	viper.SetDefault("metrics.pushgateway", "")
	viper.SetDefault("metrics.job", "abbc3_migrate")

	viper.SetDefault("lock.enabled", false)
	viper.SetDefault("lock.ttl", 2*time.Minute)
	viper.SetDefault("lock.redis.addr", "localhost:6379")
	viper.SetDefault("lock.redis.password", "")
	viper.SetDefault("lock.redis.db", 0)
	viper.SetDefault("lock.redis.key", "abbc3-migrate:lock")
}

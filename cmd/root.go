package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vse/abbc3-migrate/cmd/list"
	"github.com/vse/abbc3-migrate/cmd/migrate"
	"github.com/vse/abbc3-migrate/cmd/preview"
	"github.com/vse/abbc3-migrate/cmd/status"
	"github.com/vse/abbc3-migrate/cmd/version"
	"github.com/vse/abbc3-migrate/internal/buildinfo"
	"github.com/vse/abbc3-migrate/internal/conf"
	"github.com/vse/abbc3-migrate/internal/logger"
	"github.com/vse/abbc3-migrate/internal/telemetry"
)

const telemetryFlushTimeout = 2 * time.Second

// RootCommand creates and returns the root command. settings is filled in
// before any subcommand that needs configuration runs.
func RootCommand(build *buildinfo.Context) *cobra.Command {
	settings := &conf.Settings{}
	var configFile string

	rootCmd := &cobra.Command{
		Use:           buildinfo.AppName,
		Short:         "Install the Advanced BBCode Box 3 tags into a phpBB database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := setupFlags(rootCmd, &configFile); err != nil {
		logger.Global().Module("main").Warn("flag binding failed", logger.Error(err))
	}

	versionCmd := version.Command(build)
	previewCmd := preview.Command()

	rootCmd.AddCommand(
		migrate.Command(settings),
		status.Command(settings),
		list.Command(settings),
		previewCmd,
		versionCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// version and preview work without a database
		if cmd.Name() == versionCmd.Name() || cmd.Name() == previewCmd.Name() {
			return nil
		}
		cmd.SetContext(logger.WithTraceID(cmd.Context(), logger.NewTraceID()))
		return initialize(settings, configFile, build)
	}

	return rootCmd
}

// Execute runs the root command and flushes telemetry and logs before returning.
func Execute(rootCmd *cobra.Command) error {
	err := rootCmd.Execute()
	if err != nil {
		logger.Global().Module("main").Error("command failed", logger.Error(err))
	}
	telemetry.Flush(telemetryFlushTimeout)
	if closeErr := logger.Global().Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// initialize loads settings, configures logging and optional telemetry.
func initialize(settings *conf.Settings, configFile string, build *buildinfo.Context) error {
	loaded, err := conf.Load(configFile)
	if err != nil {
		return err
	}
	*settings = *loaded

	if settings.Debug {
		settings.Logging.DefaultLevel = "debug"
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = "debug"
		}
	}

	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(central)

	if _, err := telemetry.Init(&settings.Telemetry, build, central.Module("telemetry")); err != nil {
		return err
	}
	return nil
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, configFile *string) error {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(configFile, "config", "c", "", "Path to config.yaml")
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.String("driver", conf.DriverSQLite, "Database driver: sqlite, mysql or postgres")
	flags.String("sqlite-path", "forum.db", "Path to the SQLite forum database")
	flags.String("table-prefix", "phpbb_", "Forum table prefix")

	bindings := map[string]string{
		"debug":                "debug",
		"database.driver":      "driver",
		"database.sqlite.path": "sqlite-path",
		"database.tableprefix": "table-prefix",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}
	return nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vse/abbc3-migrate/cmd"
	"github.com/vse/abbc3-migrate/internal/buildinfo"
)

// Set with -ldflags "-X main.version=... -X main.buildDate=..."
var (
	version   string
	buildDate string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := cmd.RootCommand(buildinfo.NewContext(version, buildDate))
	rootCmd.SetContext(ctx)

	err := cmd.Execute(rootCmd)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

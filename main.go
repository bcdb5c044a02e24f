package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mediagrab/mediagrab/cmd"
	"github.com/mediagrab/mediagrab/pkg/environment"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/spf13/afero"
)

func main() {
	fs := afero.NewOsFs()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := logging.GetLogger()

	env, err := environment.NewEnvironment(fs)
	if err != nil {
		logger.Error("Failed to set up environment", "error", err)
		os.Exit(1)
	}

	setupSignalHandler(cancel, logger)

	rootCmd := cmd.NewRootCommand(fs, ctx, env, logger)
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// setupSignalHandler cancels the root context on SIGINT/SIGTERM so
// in-flight downloads and servers shut down gracefully.
func setupSignalHandler(cancelFunc context.CancelFunc, logger *logging.Logger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigs
		logger.Debug("Received signal, initiating shutdown...", "signal", sig)
		cancelFunc()
	}()
}

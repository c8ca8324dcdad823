package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cookbook/internal/config"
	logpkg "github.com/kailas-cloud/cookbook/internal/logger"
	"github.com/kailas-cloud/cookbook/internal/version"
)

// app is the state shared by all subcommands once the root pre-run finishes.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
}

func main() {
	// Interrupts cancel in-flight loads and index commands.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var configPath string

	root := &cobra.Command{
		Use:           "cookbook",
		Short:         "Recipe browser with ingredient similarity search",
		Version:       version.String(),
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// .env is optional
			_ = godotenv.Load()
			return a.init(configPath)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "",
		"path to a YAML config file (default: config/<ENV>.yaml)")

	root.AddCommand(
		newServeCmd(a),
		newIndexCmd(a),
		newLoadCmd(a),
	)
	return root
}

func (a *app) init(configPath string) error {
	a.env = config.GetEnv()

	var err error
	if configPath != "" {
		a.cfg, err = config.LoadFile(configPath)
	} else {
		a.cfg, err = config.Load(a.env)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a.logger, err = logpkg.NewLogger(a.env, a.cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/taberneiros/internal/app"
	"github.com/cory-johannsen/taberneiros/internal/chat"
	"github.com/cory-johannsen/taberneiros/internal/config"
	"github.com/cory-johannsen/taberneiros/internal/observability"
)

// errFailed is returned after the engine has already reported the failure.
var errFailed = errors.New("operação falhou")

var (
	configPath string
	assumeYes  bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "taverna",
	Short:         "Motor de regras do Clube dos Taberneiros",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// A missing .env is normal outside development.
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = observability.NewLoggerFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/dev.yaml", "arquivo de configuração")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "responder sim a todas as confirmações")
}

// withApp assembles the engine, runs fn and settles pending recomputations
// before closing.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var confirmer chat.Confirmer = chat.StaticConfirmer(true)
	if !assumeYes {
		confirmer = chat.NewPromptConfirmer(os.Stdin, cmd.OutOrStdout())
	}
	a, err := app.New(ctx, cfg, logger, app.Options{Confirmer: confirmer})
	if err != nil {
		return err
	}
	runErr := fn(ctx, a)
	if err := a.Settle(ctx); err != nil {
		logger.Warn("settling updates", zap.Error(err))
	}
	return errors.Join(runErr, a.Close())
}

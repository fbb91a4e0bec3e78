package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/taberneiros/internal/app"
	"github.com/cory-johannsen/taberneiros/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Executa o motor até receber SIGINT/SIGTERM",
	Long: `Mantém a fila de atualizações e, quando habilitada, a sessão do
Discord ativas até o processo ser interrompido.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			lc := server.NewLifecycle(logger)
			for name, svc := range a.Services() {
				lc.Add(name, svc)
			}
			return lc.Run(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

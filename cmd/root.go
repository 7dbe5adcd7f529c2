package cmd

import (
	"context"
	"os"

	"github.com/carousell/ct-go/pkg/logger"
	"github.com/spf13/cobra"

	"github.com/nguyentranbao-ct/message-core/internal/app"
	"github.com/nguyentranbao-ct/message-core/internal/server"
)

var rootCmd = &cobra.Command{
	Use:           "message-core",
	Short:         "Conversation message store and HTTP API",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		app.Invoke(
			server.StartServer,
		).Run()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply message indexes and document migrations, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.Invoke()
		if err := a.Start(cmd.Context()); err != nil {
			return err
		}
		return a.Stop(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.MustNamed("cmd").Errorw("command failed", "error", err)
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nutrilog/core/internal/applog"
	"github.com/nutrilog/core/internal/ops"
	"github.com/nutrilog/core/internal/rpcio"
	"github.com/nutrilog/core/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the stdio RPC transport of spec.md §6",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		log := applog.New(cfg.LogLevel, os.Stderr)

		s, err := store.Open(cfg.DataPath)
		if err != nil {
			return fmt.Errorf("opening store at %s: %w", cfg.DataPath, err)
		}
		defer s.Close()

		log.Info("nutrilog serving on stdio", "data_path", cfg.DataPath)
		surface := ops.New(s, log)
		server := rpcio.New(surface, log)
		return server.Serve(cmd.Context(), os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

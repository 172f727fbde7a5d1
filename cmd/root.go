// Package cmd implements the CLI surface of spec.md §6: one Cobra
// subcommand per Operation Surface verb (§4.5), plus `serve` for the
// stdio RPC transport. Execute() wraps error printing and exit-code
// selection around a root command carrying persistent flags and a
// store-opening helper, generalized to resolve --config/env through
// the viper config layer of SPEC_FULL.md §3.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nutrilog/core/internal/applog"
	"github.com/nutrilog/core/internal/config"
	"github.com/nutrilog/core/internal/ops"
	"github.com/nutrilog/core/internal/store"
)

var (
	dataPath   string
	logLevel   string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "nutrilog",
	Short: "Nutrition computation and integrity core",
}

// Execute runs the command tree, printing a fatal error and exiting
// with spec.md §6's exit code 1 on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data-path", "", "path to the store's SQLite file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "trace|debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a config file")
}

// loadConfig resolves spec.md §6's configuration from flags,
// NUTRILOG_-prefixed environment variables, and an optional config
// file, in that order of override.
func loadConfig() (*config.Config, error) {
	v := viper.New()
	if dataPath != "" {
		v.Set("data_path", dataPath)
	}
	if logLevel != "" {
		v.Set("log_level", logLevel)
	}
	return config.Load(v, configFile)
}

// openSurface wires the Graph Store, Cascade Engine, and logger into
// an Operation Surface for a single CLI invocation. The caller is
// responsible for closing the returned store.
func openSurface() (*ops.Surface, *store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log := applog.New(cfg.LogLevel, os.Stderr)

	s, err := store.Open(cfg.DataPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store at %s: %w", cfg.DataPath, err)
	}
	return ops.New(s, log), s, nil
}

// runVerb opens a Surface, calls fn, prints the JSON result to
// stdout, and closes the store — the shape every leaf subcommand's
// RunE follows.
func runVerb(fn func(*ops.Surface) (any, error)) error {
	surface, s, err := openSurface()
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := fn(surface)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// runVerbSummary behaves like runVerb but additionally prints a
// human-readable cascade summary to stderr once the JSON result is on
// stdout, using go-humanize to comma-format the recalculation counts
// for `batch finish` and `recalculate-all` — the two verbs whose
// counts can run into the thousands on a large store.
func runVerbSummary(fn func(*ops.Surface) (any, ops.CascadeCounts, error)) error {
	surface, s, err := openSurface()
	if err != nil {
		return err
	}
	defer s.Close()

	result, counts, err := fn(surface)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "recalculated %s recipe(s), %s day(s)\n",
		humanize.Comma(int64(counts.RecipesRecalculated)), humanize.Comma(int64(counts.DaysRecalculated)))
	return nil
}

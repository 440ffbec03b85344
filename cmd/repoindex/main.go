// Command repoindex maintains a searchable hybrid index over a repository:
// scanning with content-addressed change detection, incremental embedding,
// and fused vector + lexical retrieval.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nodeeeeee/idea-producer/internal/config"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	cfgPath string
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "repoindex",
		Short:         "Incremental repository index with hybrid retrieval",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newScanCmd(),
		newUpdateCmd(),
		newSearchCmd(),
		newStatusCmd(),
		newPruneCmd(),
		newServeCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger. Logs go to stderr;
// stdout is reserved for command output (and the MCP protocol in serve).
func setup() (config.Config, *slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, logger, err
	}
	return cfg, logger, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("repoindex %s (built %s)\n", version, buildTime)
		},
	}
}

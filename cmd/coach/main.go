package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/config"
	logpkg "github.com/kailas-cloud/coach/internal/logger"
	"github.com/kailas-cloud/coach/internal/version"
)

var (
	env    string
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "coach",
	Short:         "coach - knowledge base tutoring service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return setup()
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "config environment (default: $ENV or local)")
	rootCmd.AddCommand(serveCmd, contextCmd, importCmd, warmCmd, versionCmd)
}

// setup loads .env, the YAML config and the logger shared by every command.
func setup() error {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	if env == "" {
		env = config.GetEnv()
	}

	var err error
	cfg, err = config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err = logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

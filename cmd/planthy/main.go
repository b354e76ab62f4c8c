// Command planthy diagnoses plant problems from a photo and a question
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bububa/planthy/app"
	"github.com/bububa/planthy/config"
)

var (
	// Global flags
	configPath string
	verbose    bool
	timeout    time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "planthy",
	Short: "Plant health assistant",
	Long: `planthy analyzes a plant photo with a multimodal model, searches the web for
care advice and answers your question in markdown.

Example:
  planthy diagnose --image tomato.jpeg --query "What's wrong with my tomato plant?"`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		if logger, err = newLogger(cfg.Log, verbose); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func newLogger(c config.LogConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// commandContext is cancelled on SIGINT/SIGTERM and after --timeout when set
func commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func loadServices(ctx context.Context) (*app.Services, error) {
	return app.NewServices(ctx, cfg, logger)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $"+config.EnvConfigPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Operation timeout for one-shot commands (0 disables)")

	diagnoseCmd.Flags().StringP("image", "i", "", "Plant image path (required)")
	diagnoseCmd.Flags().StringP("query", "q", "", "Question about the plant (required)")
	diagnoseCmd.Flags().Bool("raw", false, "Print the answer as plain markdown")
	diagnoseCmd.MarkFlagRequired("image")
	diagnoseCmd.MarkFlagRequired("query")

	analyzeCmd.Flags().StringP("image", "i", "", "Plant image path (required)")
	analyzeCmd.MarkFlagRequired("image")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(searchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/novelstudio/nai-gateway/internal/infrastructure/logger"
)

var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nai-cli",
	Short: "NovelAI image generation from the command line",
	Long: `nai-cli compiles and runs NovelAI image generations using the same
pipeline as the nai-gateway service.

Examples:
  # Generate from a params file
  nai-cli generate -f params.yaml --out ./images

  # Inspect the request body without calling NovelAI
  nai-cli compile -f params.yaml

  # List supported models
  nai-cli models`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(modelsCmd)

	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
}

func newLogger(cmd *cobra.Command) (zerolog.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	return logger.NewWithWriter(os.Stderr, level, "console")
}

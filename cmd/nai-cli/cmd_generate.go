package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/novelstudio/nai-gateway/internal/app"
	"github.com/novelstudio/nai-gateway/internal/config"
	"github.com/novelstudio/nai-gateway/internal/domain/imagegen"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate images and write them as PNG files",
	Long: `Generate runs one NovelAI generation. The token is read from --token or
the NAI_TOKEN environment variable and is never written anywhere.`,
	RunE: runGenerate,
}

func init() {
	addParamFlags(generateCmd)
	generateCmd.Flags().String("token", "", "NovelAI persistent API token (default: $NAI_TOKEN)")
	generateCmd.Flags().StringP("out", "o", ".", "Output directory")
	generateCmd.Flags().String("prefix", "nai", "Output file name prefix")
	generateCmd.Flags().String("format", "", "Response format: stream or zip (default: $NAI_RESPONSE_FORMAT)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}

	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token = os.Getenv("NAI_TOKEN")
	}
	if token == "" {
		return fmt.Errorf("no token: pass --token or set NAI_TOKEN")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if format, _ := cmd.Flags().GetString("format"); format != "" {
		cfg.NovelAI.ResponseFormat = format
		if !cfg.Streaming() && format != config.ResponseFormatZip {
			return fmt.Errorf("unknown response format %q", format)
		}
	}

	params, err := paramsFromFlags(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := app.NewImageService(cfg, log).Generate(ctx, params, token)
	if err != nil {
		if ce, ok := imagegen.AsClassified(err); ok {
			return fmt.Errorf("%s (%s)", ce.PublicMessage(), ce.Kind)
		}
		return err
	}

	outDir, _ := cmd.Flags().GetString("out")
	prefix, _ := cmd.Flags().GetString("prefix")
	paths, err := writeImages(outDir, prefix, result)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

// writeImages stores images as <prefix>_<seed>_<n><ext>, with the extension
// taken from the sniffed content type, and returns the paths.
func writeImages(dir, prefix string, result *imagegen.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	paths := make([]string, 0, len(result.Images))
	for i, img := range result.Images {
		path := filepath.Join(dir, fmt.Sprintf("%s_%d_%d%s", prefix, result.Seed, i+1, img.Extension()))
		if err := os.WriteFile(path, img, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

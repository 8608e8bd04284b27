package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/novelstudio/nai-gateway/internal/domain/imagegen"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Print the request body NovelAI would receive",
	RunE:  runCompile,
}

func init() {
	addParamFlags(compileCmd)
	compileCmd.Flags().Bool("stream", true, "Include the msgpack stream marker")
}

func runCompile(cmd *cobra.Command, args []string) error {
	params, err := paramsFromFlags(cmd)
	if err != nil {
		return err
	}
	if err := imagegen.NewValidator().Validate(context.Background(), params); err != nil {
		return err
	}

	var opts []imagegen.CompilerOption
	if stream, _ := cmd.Flags().GetBool("stream"); stream {
		opts = append(opts, imagegen.WithStreamFormat(imagegen.StreamFormatMsgpack))
	}
	req := imagegen.NewCompiler(imagegen.NewRandomSeedSource(), opts...).Compile(params)

	out, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Params file (YAML or JSON)")
	cmd.Flags().StringP("prompt", "p", "", "Prompt (overrides the file)")
	cmd.Flags().StringP("model", "m", "", "Model id (overrides the file)")
	cmd.Flags().Uint32("seed", 0, "Seed (0 picks a random one)")
}

func paramsFromFlags(cmd *cobra.Command) (imagegen.Params, error) {
	file, _ := cmd.Flags().GetString("file")
	params, err := loadParams(file)
	if err != nil {
		return imagegen.Params{}, err
	}
	if prompt, _ := cmd.Flags().GetString("prompt"); prompt != "" {
		params.Prompt = prompt
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		params.Model = imagegen.Model(model)
	}
	if cmd.Flags().Changed("seed") {
		params.Seed, _ = cmd.Flags().GetUint32("seed")
	}
	return params, nil
}

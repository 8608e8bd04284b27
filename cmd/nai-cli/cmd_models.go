package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/novelstudio/nai-gateway/internal/domain/imagegen"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List supported models and samplers",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tFAMILY\tLABEL")
		for _, m := range imagegen.Models {
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Family, m.Label)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "SAMPLER\tLABEL")
		for _, s := range imagegen.Samplers {
			fmt.Fprintf(w, "%s\t%s\n", s.ID, s.Label)
		}
		return w.Flush()
	},
}

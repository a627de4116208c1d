package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scandocs/scandoc/internal/ocr"
)

// enginesCmd lists the OCR backends and their availability.
var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List OCR engines and their availability",
	Long: `List the OCR engines this build knows about and whether their backends are
usable on this system. When no engine is selected explicitly, the first
available one in preference order is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		available := make(map[string]bool)
		for _, name := range ocr.Available() {
			available[name] = true
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Engines:")
		for _, name := range ocr.Registered() {
			status := "unavailable"
			if available[name] {
				status = "available"
			}
			fmt.Fprintf(out, "  %-18s %s\n", name, status)
		}
		fmt.Fprintf(out, "\nPreference order: %s\n", strings.Join(ocr.DefaultPreference, " > "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enginesCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check corpus integrity against its manifest",
	Long: `Validate recomputes checksums for every payload file of a structured
corpus and diffs them against the persisted manifest, reporting each
mismatch, missing entry, and unexpected extra file. For a legacy corpus it
verifies that every paper has a readable metadata record.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("quiet", false, "suppress the per-problem listing")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	report, err := store.Validate()
	if err != nil {
		return err
	}

	if report.OK() {
		fmt.Println("Corpus is valid.")
		return nil
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	if !quiet {
		for _, p := range report.Problems {
			switch {
			case p.Expected != "" && p.Actual != "":
				fmt.Fprintf(os.Stderr, "%-10s %s (expected %s, got %s)\n", p.Kind, p.Path, p.Expected, p.Actual)
			default:
				fmt.Fprintf(os.Stderr, "%-10s %s\n", p.Kind, p.Path)
			}
		}
	}
	return fmt.Errorf("corpus is not valid: %d problem(s)", len(report.Problems))
}

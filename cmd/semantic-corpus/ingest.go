package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/semantic-corpus/internal/ingest"
	"github.com/pdiddy/semantic-corpus/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <source-dir>",
	Short: "Bulk-import a pygetpapers output directory",
	Long: `Ingest imports every per-article folder under a pygetpapers output
directory (Europe PMC shape: PMC*/eupmc_result.json plus fulltext files)
into a structured corpus. Already-present papers are skipped by default;
per-item failures are reported at the end without stopping the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("prefix", ingest.DefaultIDPrefix, "prefix for corpus paper IDs")
	ingestCmd.Flags().Bool("overwrite", false, "replace already-present papers instead of skipping them")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	prefix, _ := cmd.Flags().GetString("prefix")
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	cfg := types.IngestionConfig{IDPrefix: prefix, OnDuplicate: types.DuplicateSkip}
	if overwrite {
		cfg.OnDuplicate = types.DuplicateOverwrite
	}

	result, err := ingest.Ingest(args[0], store, cfg, os.Stdout)
	if err != nil {
		return err
	}

	if runErr := result.Err(); runErr != nil {
		var partial *ingest.PartialIngestionError
		if errors.As(runErr, &partial) {
			for _, f := range partial.Failures {
				fmt.Fprintf(os.Stderr, "  %s: %v\n", f.Folder, f.Err)
			}
		}
		return runErr
	}
	return nil
}

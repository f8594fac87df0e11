package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/semantic-corpus/internal/corpus"
	"github.com/pdiddy/semantic-corpus/internal/index"
	"github.com/pdiddy/semantic-corpus/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build and query the derived full-text index",
	Long: `Index maintains a SQLite full-text index over the metadata records of a
structured corpus, stored under data/indices/. The index is derived data:
it can be rebuilt from the records at any time, and the search subcommand
never consults it.`,
}

// --- build subcommand ---

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Refresh the index from the metadata records",
	RunE:  runIndexBuild,
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	store, ix, err := openIndex(cmd)
	if err != nil {
		return err
	}

	summary, err := ix.Build(context.Background(), os.Stdout)
	closeErr := ix.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}

	// The database lives under the payload tree; refresh the manifest so
	// the bag stays valid.
	if err := store.UpdateManifest(); err != nil {
		return err
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d record(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var indexQueryCmd = &cobra.Command{
	Use:   "query <terms>",
	Short: "Run a ranked full-text query over titles and abstracts",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexQuery,
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	_, ix, err := openIndex(cmd)
	if err != nil {
		return err
	}
	defer ix.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	matches, err := ix.Query(context.Background(), args[0], limit)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	for _, m := range matches {
		fmt.Printf("%s\t%s\n", m.ID, m.Title)
	}
	return nil
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the indexed records to YAML or JSON",
	RunE:  runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	store, ix, err := openIndex(cmd)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml", "":
		err = ix.ExportYAML(context.Background())
	case "json":
		err = ix.ExportJSON(context.Background())
	default:
		err = fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	closeErr := ix.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}

	if err := store.UpdateManifest(); err != nil {
		return err
	}
	fmt.Printf("Exported to data/indices/export.%s\n", formatExt(format))
	return nil
}

func formatExt(format string) string {
	if format == "json" {
		return "json"
	}
	return "yaml"
}

// --- shared helpers ---

func openIndex(cmd *cobra.Command) (*corpus.Store, *index.Index, error) {
	store, err := openStore(cmd)
	if err != nil {
		return nil, nil, err
	}

	maxResults, _ := cmd.Flags().GetInt("max-results")
	ix, err := index.Open(store, types.IndexConfig{MaxResults: maxResults})
	if err != nil {
		return nil, nil, err
	}
	return store, ix, nil
}

func init() {
	indexCmd.PersistentFlags().Int("max-results", 20, "default maximum number of query results")

	indexQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexQueryCmd)
	indexCmd.AddCommand(indexExportCmd)

	rootCmd.AddCommand(indexCmd)
}

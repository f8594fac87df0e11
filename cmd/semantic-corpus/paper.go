package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// --- get ---

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a paper's metadata record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		rec, err := store.GetPaperMetadata(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

// --- list ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the paper IDs in the corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		ids, err := store.ListPapers()
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		fmt.Fprintf(os.Stderr, "%d paper(s)\n", len(ids))
		return nil
	},
}

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search paper records by field substring",
	Long: `Search scans every metadata record and prints the IDs whose field
contains the query, case-insensitively. This is a full scan of the corpus;
use the index subcommand for ranked full-text search over large corpora.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		field, _ := cmd.Flags().GetString("field")
		ids, err := store.SearchPapers(args[0], field)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().String("field", "title", "field to search: title, abstract, or an extra field name")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
}

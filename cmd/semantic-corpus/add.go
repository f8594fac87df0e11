package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/semantic-corpus/internal/corpus"
	"github.com/pdiddy/semantic-corpus/internal/layout"
	"github.com/pdiddy/semantic-corpus/pkg/types"
)

var addCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add or replace a paper record",
	Long: `Add writes a metadata record for the given paper ID and optionally copies
payload files into the corpus. An existing record with the same ID is
replaced unless --no-overwrite is set.

Payload files are given as kind=path pairs, e.g. --file pdf=paper.pdf.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().String("title", "", "paper title")
	addCmd.Flags().String("abstract", "", "paper abstract")
	addCmd.Flags().StringSlice("author", nil, "author name (repeatable, in order)")
	addCmd.Flags().String("doi", "", "Digital Object Identifier")
	addCmd.Flags().String("date", "", "publication date (YYYY-MM-DD)")
	addCmd.Flags().StringSlice("file", nil, "payload file as kind=path (kind: pdf, xml, html)")
	addCmd.Flags().Bool("no-overwrite", false, "fail if the ID already exists")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	abstract, _ := cmd.Flags().GetString("abstract")
	authors, _ := cmd.Flags().GetStringSlice("author")
	doi, _ := cmd.Flags().GetString("doi")
	date, _ := cmd.Flags().GetString("date")
	fileSpecs, _ := cmd.Flags().GetStringSlice("file")
	noOverwrite, _ := cmd.Flags().GetBool("no-overwrite")

	rec := types.PaperRecord{
		ID:              args[0],
		Title:           title,
		Abstract:        abstract,
		Authors:         authors,
		DOI:             doi,
		PublicationDate: date,
	}

	files, err := parseFileSpecs(fileSpecs)
	if err != nil {
		return err
	}

	opts := corpus.AddOptions{NoOverwrite: noOverwrite}
	if err := store.AddPaper(rec, files, opts); err != nil {
		return err
	}

	fmt.Printf("Added %s (%d payload file(s))\n", rec.ID, len(files))
	return nil
}

func parseFileSpecs(specs []string) ([]corpus.PayloadFile, error) {
	var files []corpus.PayloadFile
	for _, spec := range specs {
		kindStr, path, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("malformed --file %q: use kind=path", spec)
		}
		kind, err := layout.ParseKind(kindStr)
		if err != nil {
			return nil, err
		}
		files = append(files, corpus.PayloadFile{Kind: kind, SourcePath: path})
	}
	return files, nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/semantic-corpus/internal/corpus"
	"github.com/pdiddy/semantic-corpus/internal/layout"
	"github.com/pdiddy/semantic-corpus/pkg/types"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new corpus directory skeleton",
	Long: `Create builds the directory skeleton for a new corpus at the --corpus
path. Structured mode lays out a BagIt-style tree with bag descriptor files
and an initial checksum manifest; legacy mode creates a bare papers/
directory.`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().String("mode", "structured", "corpus layout: structured or legacy")
	createCmd.Flags().String("org", "", "Source-Organization for bag-info.txt")
	createCmd.Flags().String("contact-name", "", "Contact-Name for bag-info.txt")
	createCmd.Flags().String("contact-email", "", "Contact-Email for bag-info.txt")
	createCmd.Flags().String("description", "", "External-Description for bag-info.txt")

	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	modeStr, _ := cmd.Flags().GetString("mode")
	mode, err := layout.ParseMode(modeStr)
	if err != nil {
		return err
	}

	org, _ := cmd.Flags().GetString("org")
	contactName, _ := cmd.Flags().GetString("contact-name")
	contactEmail, _ := cmd.Flags().GetString("contact-email")
	description, _ := cmd.Flags().GetString("description")

	info := types.BagDescriptor{
		SourceOrganization: org,
		ContactName:        contactName,
		ContactEmail:       contactEmail,
		Description:        description,
	}

	store, err := corpus.Create(corpusRoot(cmd), mode, info)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s corpus at %s\n", store.Mode(), store.Root())
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the semantic-corpus CLI: creation and
// management of personal scientific corpora as integrity-checked file trees.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/semantic-corpus/internal/corpus"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the semantic-corpus CLI.
var rootCmd = &cobra.Command{
	Use:   "semantic-corpus",
	Short: "Manage personal corpora of scientific papers",
	Long: `semantic-corpus manages collections of scientific paper records and their
payload files as structured, checksum-manifested file trees (BagIt-style) or
as simpler legacy per-paper folders.

Each store operation is a subcommand: create, add, get, list, search, stats,
validate, info, ingest, and index.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./semantic-corpus.yaml or ~/.config/semantic-corpus/config.yaml)")
	rootCmd.PersistentFlags().String("corpus", "", "corpus root directory")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("semantic-corpus")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "semantic-corpus"))
		}
	}

	viper.SetEnvPrefix("SEMANTIC_CORPUS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// corpusRoot resolves the corpus root from the flag, config file, or the
// current directory, in that order.
func corpusRoot(cmd *cobra.Command) string {
	root, _ := cmd.Flags().GetString("corpus")
	if root == "" {
		root = viper.GetString("corpus")
	}
	if root == "" {
		root = "."
	}
	return root
}

// openStore opens the corpus named by the --corpus flag.
func openStore(cmd *cobra.Command) (*corpus.Store, error) {
	return corpus.Open(corpusRoot(cmd))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

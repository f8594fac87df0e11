package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the bag descriptor metadata (bag-info.txt)",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		info, err := store.BagInfo()
		if err != nil {
			return err
		}
		if len(info) == 0 {
			fmt.Println("No bag metadata.")
			return nil
		}

		keys := make([]string, 0, len(info))
		for k := range info {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s: %s\n", k, info[k])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

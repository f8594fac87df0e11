package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print corpus statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		stats, err := store.Statistics()
		if err != nil {
			return err
		}

		fmt.Printf("Mode:          %s\n", store.Mode())
		fmt.Printf("Papers:        %d\n", stats.TotalPapers)
		fmt.Printf("Payload size:  %.2f MB (%d bytes)\n",
			float64(stats.PayloadBytes)/(1024*1024), stats.PayloadBytes)
		fmt.Printf("Created:       %s\n", stats.Created.Format(time.RFC3339))
		fmt.Printf("Last updated:  %s\n", stats.LastUpdated.Format(time.RFC3339))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

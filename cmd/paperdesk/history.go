// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded searches, most recent first",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.SearchHistory()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No search history.")
		return nil
	}
	for _, e := range entries {
		when := time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04")
		src := e.Source
		if src == "" {
			src = "all"
		}
		fmt.Printf("%s  %-8s  %s\n", when, src, e.Query)
	}
	return nil
}

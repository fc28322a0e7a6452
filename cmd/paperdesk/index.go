// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperdesk/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Query the local full-text index",
}

var indexQueryCmd = &cobra.Command{
	Use:   "query <terms>",
	Short: "Search indexed paper text",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexQuery,
}

var indexCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of indexed papers",
	RunE:  runIndexCount,
}

func init() {
	indexQueryCmd.Flags().Int("limit", 0, "maximum number of snippets (default from config)")

	indexCmd.AddCommand(indexQueryCmd)
	indexCmd.AddCommand(indexCountCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	ix, err := index.Open(cfg.Index)
	if err != nil {
		return err
	}
	defer ix.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	snippets, err := ix.Query(context.Background(), args[0], limit)
	if err != nil {
		return err
	}
	if len(snippets) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, s := range snippets {
		fmt.Printf("%-25s  %s\n    %s\n", s.PaperID, s.Title, s.Excerpt)
	}
	return nil
}

func runIndexCount(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	ix, err := index.Open(cfg.Index)
	if err != nil {
		return err
	}
	defer ix.Close()

	n, err := ix.Count(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("%d papers indexed\n", n)
	return nil
}

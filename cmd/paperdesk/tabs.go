// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <identifier>",
	Short: "Open a paper as a viewer tab",
	Long: `Open records the paper in the open-papers list. Re-opening a paper
moves it to most-recently-opened; when the list is full the least recently
opened tab is evicted.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

var closeCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Close a viewer tab",
	Args:  cobra.ExactArgs(1),
	RunE:  runClose,
}

var tabsCmd = &cobra.Command{
	Use:   "tabs",
	Short: "List open papers, oldest first",
	RunE:  runTabs,
}

func init() {
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(tabsCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	paper, err := resolvePaper(context.Background(), st, cfg, args[0])
	if err != nil {
		return err
	}

	if err := st.AddToOpen(*paper); err != nil {
		return err
	}
	fmt.Printf("opened: %s (%s)\n", paper.ID, paper.Title)
	return nil
}

func runClose(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.RemoveFromOpen(args[0]); err != nil {
		return err
	}
	fmt.Printf("closed: %s\n", args[0])
	return nil
}

func runTabs(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	open, err := st.OpenList()
	if err != nil {
		return err
	}
	if len(open) == 0 {
		fmt.Println("No open papers.")
		return nil
	}
	for _, op := range open {
		opened := time.UnixMilli(op.OpenedAt).Format("2006-01-02 15:04")
		fmt.Printf("%-25s  %s  %s\n", op.ID, opened, op.Title)
	}
	return nil
}

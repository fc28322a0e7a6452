// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the app data document as JSON",
	Long: `Export writes the whole document (starred papers, open tabs, search
history, view state, cached results) as portable JSON to the given file,
or to stdout when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the app data document from an exported JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset the app data document to a fresh default",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(clearCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := st.Export()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		fmt.Println(data)
		return nil
	}
	if err := os.WriteFile(args[0], []byte(data), 0o644); err != nil {
		return fmt.Errorf("writing export to %s: %w", args[0], err)
	}
	fmt.Printf("exported to %s\n", args[0])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading import file %s: %w", args[0], err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Import(string(data)); err != nil {
		return err
	}
	fmt.Printf("imported %s\n", args[0])
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Clear(); err != nil {
		return err
	}
	fmt.Println("cleared")
	return nil
}

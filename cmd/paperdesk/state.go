// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperdesk/pkg/types"
)

var viewStateCmd = &cobra.Command{
	Use:   "view-state",
	Short: "Get or set the saved PDF view state for a paper",
}

var viewStateGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print the saved view state for a paper",
	Args:  cobra.ExactArgs(1),
	RunE:  runViewStateGet,
}

var viewStateSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Save the view state for a paper",
	Long: `Set overwrites the paper's saved view state wholesale; unspecified
flags fall back to their defaults rather than merging with the stored
values.`,
	Args: cobra.ExactArgs(1),
	RunE: runViewStateSet,
}

func init() {
	viewStateSetCmd.Flags().Float64("scale", 1.0, "zoom scale")
	viewStateSetCmd.Flags().Int("page", 1, "current page")
	viewStateSetCmd.Flags().Float64("scroll", 0, "scroll position")

	viewStateCmd.AddCommand(viewStateGetCmd)
	viewStateCmd.AddCommand(viewStateSetCmd)
	rootCmd.AddCommand(viewStateCmd)
}

func runViewStateGet(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	state, err := st.PDFViewState(args[0])
	if err != nil {
		return err
	}
	if state == nil {
		fmt.Printf("No view state for %s.\n", args[0])
		return nil
	}
	fmt.Printf("scale=%g page=%d scroll=%g\n", state.Scale, state.CurrentPage, state.ScrollPosition)
	return nil
}

func runViewStateSet(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	scale, _ := cmd.Flags().GetFloat64("scale")
	page, _ := cmd.Flags().GetInt("page")
	scroll, _ := cmd.Flags().GetFloat64("scroll")

	state := types.PDFViewState{
		Scale:          scale,
		CurrentPage:    page,
		ScrollPosition: scroll,
	}
	if err := st.SavePDFViewState(args[0], state); err != nil {
		return err
	}
	fmt.Printf("saved view state for %s\n", args[0])
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperdesk/internal/apperr"
	"github.com/pdiddy/paperdesk/internal/source"
	"github.com/pdiddy/paperdesk/internal/store"
	"github.com/pdiddy/paperdesk/pkg/types"
)

var starCmd = &cobra.Command{
	Use:   "star <identifier>",
	Short: "Star a paper by arXiv ID or DOI",
	Long: `Star bookmarks a paper. The identifier is an arXiv ID (2301.07041,
arXiv:2301.07041v2) or a DOI (10.1101/...). Papers already cached locally
are starred without a network call; otherwise the owning source is queried.
Starring a starred paper is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: runStar,
}

var unstarCmd = &cobra.Command{
	Use:   "unstar <id>",
	Short: "Remove a paper from the starred list",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnstar,
}

var starredCmd = &cobra.Command{
	Use:   "starred",
	Short: "List starred papers",
	RunE:  runStarred,
}

func init() {
	rootCmd.AddCommand(starCmd)
	rootCmd.AddCommand(unstarCmd)
	rootCmd.AddCommand(starredCmd)
}

func runStar(cmd *cobra.Command, args []string) error {
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

	if err := st.Star(*paper); err != nil {
		return err
	}
	fmt.Printf("starred: %s (%s)\n", paper.ID, paper.Title)
	return nil
}

func runUnstar(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Unstar(args[0]); err != nil {
		return err
	}
	fmt.Printf("unstarred: %s\n", args[0])
	return nil
}

func runStarred(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	papers, err := st.Starred()
	if err != nil {
		return err
	}
	if len(papers) == 0 {
		fmt.Println("No starred papers.")
		return nil
	}
	for _, p := range papers {
		fmt.Printf("%-25s  %-8s  %s\n", p.ID, p.Source, p.Title)
	}
	return nil
}

// resolvePaper finds the paper for a bare identifier: the local store first,
// then the source that owns the identifier form.
func resolvePaper(ctx context.Context, st *store.Store, cfg types.AppConfig, identifier string) (*types.Paper, error) {
	const op = "resolve.paper"

	tag, normalized := source.Identify(identifier)

	if paper, err := st.FindPaper(normalized); err != nil {
		return nil, err
	} else if paper != nil {
		return paper, nil
	}

	if tag == "" {
		return nil, apperr.Newf(apperr.KindValidation, op,
			"unrecognized identifier %q (want an arXiv ID or a DOI)", identifier)
	}

	src, err := source.For(tag, cfg.Search, httpClient(cfg.Search), time.Now, os.Stderr)
	if err != nil {
		return nil, err
	}

	var paper *types.Paper
	switch tag {
	case types.SourceArxiv:
		paper, err = src.GetByID(ctx, normalized)
	default:
		paper, err = src.GetByDOI(ctx, normalized)
	}
	if err != nil {
		return nil, err
	}
	if paper == nil {
		return nil, apperr.Newf(apperr.KindNotFound, op, "paper %q not found on %s", normalized, tag)
	}
	return paper, nil
}

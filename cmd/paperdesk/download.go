// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperdesk/internal/download"
	"github.com/pdiddy/paperdesk/internal/index"
	"github.com/pdiddy/paperdesk/internal/pdftext"
	"github.com/pdiddy/paperdesk/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download <identifier>",
	Short: "Download a paper's PDF",
	Long: `Download fetches the paper's PDF into the papers directory, writes a
YAML metadata sidecar, and records the local path on every copy of the
paper in the store. With --index the extracted text is added to the local
full-text index.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().Bool("index", false, "extract text and add the paper to the full-text index")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg := appConfig()
	ctx := context.Background()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	paper, err := resolvePaper(ctx, st, cfg, args[0])
	if err != nil {
		return err
	}

	dl := &download.HTTPDownloader{
		Client:    &http.Client{Timeout: cfg.Download.Timeout},
		UserAgent: cfg.Download.UserAgent,
	}
	localPath, err := download.FetchPaper(ctx, dl, st, *paper, cfg.Download, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", localPath)

	if doIndex, _ := cmd.Flags().GetBool("index"); doIndex {
		return indexDownloaded(ctx, cfg, *paper, localPath)
	}
	return nil
}

func indexDownloaded(ctx context.Context, cfg types.AppConfig, paper types.Paper, localPath string) error {
	body, err := pdftext.Extract(localPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: extracting text: %v\n", err)
		body = ""
	}

	ix, err := index.Open(cfg.Index)
	if err != nil {
		return err
	}
	defer ix.Close()

	local := paper.WithLocalPath(localPath)
	if err := ix.IndexPaper(ctx, local, body); err != nil {
		return err
	}
	fmt.Printf("indexed: %s\n", local.ID)
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download fetches paper PDFs to local files and records the local
// path back into the paper store so every list referencing the paper stays
// consistent.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperdesk/internal/apperr"
	"github.com/pdiddy/paperdesk/internal/httputil"
	"github.com/pdiddy/paperdesk/pkg/types"
)

const (
	rawDir      = "raw"
	metadataDir = "metadata"
)

// Downloader is the collaborator that fetches a URL to a local path. The
// production implementation is HTTPDownloader; tests inject fakes.
type Downloader interface {
	Download(ctx context.Context, url, destPath string) error
}

// LocalPathRecorder is the slice of the paper store a download needs.
type LocalPathRecorder interface {
	UpdateLocalPath(id, path string) error
}

// HTTPDownloader downloads over HTTP to a temporary file and renames into
// place on success, so a failed transfer never leaves a partial PDF at the
// destination.
type HTTPDownloader struct {
	Client    *http.Client
	UserAgent string
}

// Download fetches url into destPath.
func (d *HTTPDownloader) Download(ctx context.Context, url, destPath string) error {
	const op = "download.fetch"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, op, err)
	}
	req.Header.Set("User-Agent", d.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return httputil.ClassifyTransport(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperr.API(op, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, op, err)
	}
	tmpPath := tmp.Name()

	_, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return apperr.Wrap(apperr.KindNetwork, op, copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return apperr.Wrap(apperr.KindStorage, op, closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return apperr.Wrap(apperr.KindStorage, op, err)
	}
	return nil
}

// FetchPaper downloads the paper's PDF into cfg.PapersDir/raw/, writes a
// YAML metadata sidecar, and records the local path in the store. An
// already-downloaded paper is skipped. Returns the local path.
func FetchPaper(ctx context.Context, dl Downloader, rec LocalPathRecorder, paper types.Paper, cfg types.DownloadConfig, w io.Writer) (string, error) {
	const op = "download.paper"

	if w == nil {
		w = io.Discard
	}
	if paper.PDFURL == "" {
		return "", apperr.Newf(apperr.KindValidation, op, "paper %s has no PDF URL", paper.ID)
	}

	slug := Slug(paper.ID)
	destPath := filepath.Join(cfg.PapersDir, rawDir, slug+".pdf")
	metaPath := filepath.Join(cfg.PapersDir, metadataDir, slug+".yaml")

	if _, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already downloaded)\n", slug)
		if err := rec.UpdateLocalPath(paper.ID, destPath); err != nil {
			return "", err
		}
		return destPath, nil
	}

	for _, dir := range []string{
		filepath.Join(cfg.PapersDir, rawDir),
		filepath.Join(cfg.PapersDir, metadataDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", apperr.Wrap(apperr.KindStorage, op, err)
		}
	}

	fmt.Fprintf(w, "downloading: %s (%s)\n", slug, paper.Source)
	if err := dl.Download(ctx, paper.PDFURL, destPath); err != nil {
		return "", err
	}

	local := paper.WithLocalPath(destPath)
	if err := writeMetadata(local, metaPath); err != nil {
		fmt.Fprintf(w, "warning: writing metadata for %s: %v\n", slug, err)
	}

	if err := rec.UpdateLocalPath(paper.ID, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

// Slug returns a filesystem-safe filename stem for a paper id. bioRxiv ids
// are DOIs containing slashes.
func Slug(id string) string {
	return strings.NewReplacer("/", "-", ":", "-").Replace(id)
}

// writeMetadata writes the paper record next to the PDF as YAML.
func writeMetadata(paper types.Paper, path string) error {
	data, err := yaml.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadMetadata reads a paper record written by FetchPaper.
func ReadMetadata(path string) (*types.Paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var paper types.Paper
	if err := yaml.Unmarshal(data, &paper); err != nil {
		return nil, err
	}
	return &paper, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search coordinates the source adapters for a single logical
// search: fan-out, merge, deduplication, and ordering.
package search

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/pdiddy/paperdesk/internal/apperr"
	"github.com/pdiddy/paperdesk/internal/source"
	"github.com/pdiddy/paperdesk/pkg/types"
)

// Repository is the slice of the paper store the orchestrator needs for
// optional result persistence.
type Repository interface {
	SavePapers(papers []types.Paper) error
}

// Output holds the merged search result.
type Output struct {
	// Papers is deduplicated and sorted by display date descending.
	Papers []types.Paper

	// TotalCount is the number of papers after dedup, before offset/limit.
	TotalCount int

	// Sources lists the sources that returned results.
	Sources []types.PaperSource

	// SourceErrors records per-source failures absorbed by the search.
	SourceErrors []string

	// DupsRemoved counts entries collapsed by identity dedup.
	DupsRemoved int
}

// Execute fans the criteria out to all given sources concurrently and
// merges their results. Partial failure is tolerated: the search succeeds
// if at least one source succeeds, with the other failures recorded in
// SourceErrors and logged to w. Only when every source fails does the call
// fail, with a combined summary.
//
// When repo is non-nil the deduplicated results are written to it in one
// batch; a persistence failure is logged and never fails the search.
func Execute(ctx context.Context, criteria types.SearchCriteria, sources []source.Source, repo Repository, w io.Writer) (Output, error) {
	if w == nil {
		w = io.Discard
	}
	if len(sources) == 0 {
		return Output{}, apperr.New(apperr.KindConfiguration, "search.execute", "no sources to query")
	}

	// Per-source calls run concurrently with no mutual ordering; results
	// land in request order so an earlier-listed source wins dedup ties.
	results := make([][]types.Paper, len(sources))
	errs := make([]error, len(sources))

	var wg sync.WaitGroup
	for i, s := range sources {
		wg.Add(1)
		go func(i int, s source.Source) {
			defer wg.Done()
			results[i], errs[i] = s.Search(ctx, criteria)
		}(i, s)
	}
	wg.Wait()

	var all []types.Paper
	var out Output
	for i, s := range sources {
		if errs[i] != nil {
			msg := fmt.Sprintf("%s: %v", s.Name(), errs[i])
			out.SourceErrors = append(out.SourceErrors, msg)
			fmt.Fprintf(w, "warning: source %s failed: %v\n", s.Name(), errs[i])
			continue
		}
		if len(results[i]) > 0 {
			out.Sources = append(out.Sources, s.Name())
		}
		all = append(all, results[i]...)
	}

	if len(out.SourceErrors) == len(sources) {
		return Output{}, apperr.Newf(apperr.KindAPI, "search.execute",
			"all sources failed: %s", strings.Join(out.SourceErrors, "; "))
	}

	deduped, removed := deduplicate(all)
	out.DupsRemoved = removed
	out.TotalCount = len(deduped)

	// Stable sort keeps the requested source order as the tie-break for
	// equal dates.
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].DisplayDate().After(deduped[j].DisplayDate())
	})

	if repo != nil {
		if err := repo.SavePapers(deduped); err != nil {
			fmt.Fprintf(w, "warning: saving search results: %v\n", err)
		}
	}

	// Offset and limit apply here and only here; adapters return rows from
	// position 0 of their result sets.
	out.Papers = page(deduped, criteria.Offset, criteria.Limit)
	return out, nil
}

// deduplicate collapses papers sharing the same identity (DOI if present,
// else source-scoped id), keeping the first-seen instance. Conflicting
// metadata is not merged.
func deduplicate(papers []types.Paper) ([]types.Paper, int) {
	seen := make(map[string]struct{}, len(papers))
	deduped := make([]types.Paper, 0, len(papers))
	removed := 0

	for _, p := range papers {
		key := p.Identity()
		if _, ok := seen[key]; ok {
			removed++
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, p)
	}
	return deduped, removed
}

func page(papers []types.Paper, offset, limit int) []types.Paper {
	if offset > 0 {
		if offset >= len(papers) {
			return []types.Paper{}
		}
		papers = papers[offset:]
	}
	if limit > 0 && len(papers) > limit {
		papers = papers[:limit]
	}
	return papers
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/paperdesk/internal/apperr"
	"github.com/pdiddy/paperdesk/internal/source"
	"github.com/pdiddy/paperdesk/pkg/types"
)

// --- mock source ---

type mockSource struct {
	name    types.PaperSource
	results []types.Paper
	err     error
}

func (m *mockSource) Name() types.PaperSource { return m.name }

func (m *mockSource) Search(_ context.Context, _ types.SearchCriteria) ([]types.Paper, error) {
	return m.results, m.err
}

func (m *mockSource) GetByID(_ context.Context, _ string) (*types.Paper, error) {
	return nil, nil
}

func (m *mockSource) GetByDOI(_ context.Context, _ string) (*types.Paper, error) {
	return nil, nil
}

type mockRepo struct {
	saved []types.Paper
	err   error
}

func (m *mockRepo) SavePapers(papers []types.Paper) error {
	m.saved = papers
	return m.err
}

func paperAt(id string, date time.Time) types.Paper {
	return types.Paper{
		ID:            id,
		Title:         "Paper " + id,
		Authors:       []types.Author{{Name: "Smith"}},
		PublishedDate: date,
		PDFURL:        "https://example.org/" + id,
		Source:        types.SourceArxiv,
	}
}

// --- orchestration ---

func TestExecuteNoSources(t *testing.T) {
	var buf bytes.Buffer
	_, err := Execute(context.Background(), types.SearchCriteria{}, nil, nil, &buf)
	if err == nil || apperr.KindOf(err) != apperr.KindConfiguration {
		t.Errorf("expected configuration error, got: %v", err)
	}
}

func TestExecuteContinuesAfterSourceFailure(t *testing.T) {
	failing := &mockSource{name: types.SourceBiorxiv, err: fmt.Errorf("network error")}
	working := &mockSource{
		name:    types.SourceArxiv,
		results: []types.Paper{paperAt("2301.07041", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC))},
	}

	var buf bytes.Buffer
	out, err := Execute(context.Background(), types.SearchCriteria{Query: "test"},
		[]source.Source{working, failing}, nil, &buf)
	if err != nil {
		t.Fatalf("Execute should not fail entirely: %v", err)
	}
	if len(out.Papers) != 1 {
		t.Errorf("len(Papers) = %d, want 1", len(out.Papers))
	}
	if len(out.SourceErrors) != 1 {
		t.Errorf("len(SourceErrors) = %d, want 1", len(out.SourceErrors))
	}
	if !strings.Contains(buf.String(), "warning:") {
		t.Error("output should contain warning about failed source")
	}
}

func TestExecuteAllSourcesFail(t *testing.T) {
	s1 := &mockSource{name: types.SourceArxiv, err: fmt.Errorf("boom")}
	s2 := &mockSource{name: types.SourceBiorxiv, err: fmt.Errorf("bang")}

	var buf bytes.Buffer
	_, err := Execute(context.Background(), types.SearchCriteria{Query: "test"},
		[]source.Source{s1, s2}, nil, &buf)
	if err == nil {
		t.Fatal("expected error when every source fails")
	}
	if apperr.KindOf(err) != apperr.KindAPI {
		t.Errorf("KindOf(err) = %q, want api", apperr.KindOf(err))
	}
	// The combined summary names each failure.
	if !strings.Contains(err.Error(), "boom") || !strings.Contains(err.Error(), "bang") {
		t.Errorf("combined error should name both failures: %v", err)
	}
}

func TestExecuteDedupByDOI(t *testing.T) {
	// Same paper surfaced by both sources under different source-scoped ids
	// but the same DOI; the earlier-listed source wins.
	arxivCopy := paperAt("2301.07041", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC))
	arxivCopy.DOI = "10.1101/2023.01.15.524096"

	biorxivCopy := types.Paper{
		ID:            "10.1101/2023.01.15.524096",
		Title:         "Same Paper, Other Source",
		Authors:       []types.Author{{Name: "Smith"}},
		PublishedDate: time.Date(2023, 1, 14, 0, 0, 0, 0, time.UTC),
		PDFURL:        "https://www.biorxiv.org/x.pdf",
		Source:        types.SourceBiorxiv,
		DOI:           "10.1101/2023.01.15.524096",
	}

	s1 := &mockSource{name: types.SourceArxiv, results: []types.Paper{arxivCopy}}
	s2 := &mockSource{name: types.SourceBiorxiv, results: []types.Paper{biorxivCopy}}

	var buf bytes.Buffer
	out, err := Execute(context.Background(), types.SearchCriteria{Query: "test"},
		[]source.Source{s1, s2}, nil, &buf)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.DupsRemoved != 1 {
		t.Errorf("DupsRemoved = %d, want 1", out.DupsRemoved)
	}
	if len(out.Papers) != 1 {
		t.Fatalf("len(Papers) = %d, want 1", len(out.Papers))
	}
	// First seen wins: metadata is not merged.
	if out.Papers[0].Source != types.SourceArxiv {
		t.Errorf("surviving paper Source = %q, want arxiv", out.Papers[0].Source)
	}
	if out.Papers[0].Title != arxivCopy.Title {
		t.Errorf("surviving paper Title = %q, want first-seen title", out.Papers[0].Title)
	}
}

func TestExecuteSortsByDisplayDateDescending(t *testing.T) {
	updated := time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)
	older := paperAt("old", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := paperAt("new", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	revised := paperAt("revised", time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC))
	revised.UpdatedDate = &updated

	s := &mockSource{name: types.SourceArxiv, results: []types.Paper{older, newer, revised}}

	var buf bytes.Buffer
	out, err := Execute(context.Background(), types.SearchCriteria{Query: "test"},
		[]source.Source{s}, nil, &buf)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	wantOrder := []string{"revised", "new", "old"}
	for i, want := range wantOrder {
		if out.Papers[i].ID != want {
			t.Errorf("Papers[%d].ID = %q, want %q", i, out.Papers[i].ID, want)
		}
	}
}

func TestExecuteOffsetAndLimit(t *testing.T) {
	var papers []types.Paper
	for i := 0; i < 7; i++ {
		papers = append(papers, paperAt(fmt.Sprintf("id-%d", i),
			time.Date(2023, 1, 7-i, 0, 0, 0, 0, time.UTC)))
	}
	s := &mockSource{name: types.SourceArxiv, results: papers}

	var buf bytes.Buffer
	out, err := Execute(context.Background(),
		types.SearchCriteria{Query: "test", Offset: 1, Limit: 5},
		[]source.Source{s}, nil, &buf)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.TotalCount != 7 {
		t.Errorf("TotalCount = %d, want 7 (pre-page count)", out.TotalCount)
	}
	if len(out.Papers) != 5 {
		t.Fatalf("len(Papers) = %d, want 5", len(out.Papers))
	}
	if out.Papers[0].ID != "id-1" {
		t.Errorf("Papers[0].ID = %q, want id-1 after offset", out.Papers[0].ID)
	}
}

// pagingSource honors the adapter contract for paging: it returns rows from
// position 0 covering Offset+Limit, leaving the offset to the orchestrator.
type pagingSource struct {
	mockSource
}

func (p *pagingSource) Search(_ context.Context, c types.SearchCriteria) ([]types.Paper, error) {
	want := c.Offset + c.Limit
	if want <= 0 || want > len(p.results) {
		want = len(p.results)
	}
	return p.results[:want], nil
}

func TestExecutePagesMergedListOnce(t *testing.T) {
	// End-to-end paging over a contract-faithful source: the offset must be
	// applied exactly once, by the orchestrator. A window in the middle of
	// the result set comes back whole, not shrunk by double-skipping.
	var papers []types.Paper
	for i := 0; i < 7; i++ {
		papers = append(papers, paperAt(fmt.Sprintf("id-%d", i),
			time.Date(2023, 1, 7-i, 0, 0, 0, 0, time.UTC)))
	}
	s := &pagingSource{mockSource{name: types.SourceArxiv, results: papers}}

	var buf bytes.Buffer
	out, err := Execute(context.Background(),
		types.SearchCriteria{Query: "test", Offset: 2, Limit: 3},
		[]source.Source{s}, nil, &buf)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out.Papers) != 3 {
		t.Fatalf("len(Papers) = %d, want 3", len(out.Papers))
	}
	for i, want := range []string{"id-2", "id-3", "id-4"} {
		if out.Papers[i].ID != want {
			t.Errorf("Papers[%d].ID = %q, want %q", i, out.Papers[i].ID, want)
		}
	}
}

func TestExecuteOffsetPastEnd(t *testing.T) {
	s := &mockSource{
		name:    types.SourceArxiv,
		results: []types.Paper{paperAt("only", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))},
	}

	var buf bytes.Buffer
	out, err := Execute(context.Background(),
		types.SearchCriteria{Query: "test", Offset: 10},
		[]source.Source{s}, nil, &buf)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out.Papers) != 0 {
		t.Errorf("len(Papers) = %d, want 0", len(out.Papers))
	}
}

func TestExecuteSavesResults(t *testing.T) {
	s := &mockSource{
		name:    types.SourceArxiv,
		results: []types.Paper{paperAt("2301.07041", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC))},
	}
	repo := &mockRepo{}

	var buf bytes.Buffer
	_, err := Execute(context.Background(), types.SearchCriteria{Query: "test"},
		[]source.Source{s}, repo, &buf)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(repo.saved) != 1 {
		t.Errorf("len(saved) = %d, want 1", len(repo.saved))
	}
}

func TestExecuteSaveFailureIsNotFatal(t *testing.T) {
	s := &mockSource{
		name:    types.SourceArxiv,
		results: []types.Paper{paperAt("2301.07041", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC))},
	}
	repo := &mockRepo{err: fmt.Errorf("disk full")}

	var buf bytes.Buffer
	out, err := Execute(context.Background(), types.SearchCriteria{Query: "test"},
		[]source.Source{s}, repo, &buf)
	if err != nil {
		t.Fatalf("Execute should succeed despite save failure: %v", err)
	}
	if len(out.Papers) != 1 {
		t.Errorf("len(Papers) = %d, want 1", len(out.Papers))
	}
	if !strings.Contains(buf.String(), "warning: saving search results") {
		t.Error("output should contain save-failure warning")
	}
}

// --- output formatting ---

func TestFormatTable(t *testing.T) {
	out := Output{
		Papers: []types.Paper{
			paperAt("2301.07041", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)),
			paperAt("2301.99999", time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)),
		},
		TotalCount:  2,
		DupsRemoved: 1,
	}

	var buf bytes.Buffer
	FormatTable(out, &buf)
	s := buf.String()

	if !strings.Contains(s, "Paper 2301.07041") {
		t.Error("table should contain the first paper title")
	}
	if !strings.Contains(s, "1 duplicates removed") {
		t.Error("table should mention duplicates removed")
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Output{}, &buf)
	if !strings.Contains(buf.String(), "No results") {
		t.Error("empty output should say 'No results'")
	}
}

func TestFormatJSON(t *testing.T) {
	out := Output{
		Papers: []types.Paper{paperAt("2301.07041", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC))},
	}

	var buf bytes.Buffer
	if err := FormatJSON(out, &buf); err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}

	var parsed []types.Paper
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(parsed) != 1 || parsed[0].ID != "2301.07041" {
		t.Errorf("parsed = %+v", parsed)
	}
}

// --- dedup unit ---

func TestDeduplicateKeepsFirstSeen(t *testing.T) {
	papers := []types.Paper{
		{ID: "a", DOI: "10.1/x", Title: "First"},
		{ID: "b", DOI: "10.1/x", Title: "Second"},
		{ID: "c", Title: "Third"},
	}
	deduped, removed := deduplicate(papers)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(deduped) != 2 {
		t.Fatalf("len(deduped) = %d, want 2", len(deduped))
	}
	if deduped[0].Title != "First" {
		t.Errorf("deduped[0].Title = %q, want first-seen instance", deduped[0].Title)
	}
}

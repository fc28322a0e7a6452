// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"
	"time"
)

// The JSON field names are an interoperability contract with previously
// saved documents; this test pins them.
func TestDocumentFieldNames(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := NewAppDataDocument(now)
	doc.StarredPapers = []Paper{{
		ID:            "2301.07041",
		Title:         "A Paper",
		Authors:       []Author{{Name: "Smith"}},
		PublishedDate: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		PDFURL:        "https://arxiv.org/pdf/2301.07041",
		Source:        SourceArxiv,
	}}
	doc.OpenPapers = []OpenPaper{{
		Paper:    doc.StarredPapers[0],
		OpenedAt: now.UnixMilli(),
	}}
	doc.SearchHistory = []SearchHistoryEntry{{Query: "attention", Source: "arxiv", Timestamp: now.UnixMilli()}}
	doc.PDFViewState["2301.07041"] = PDFViewState{Scale: 1.5, CurrentPage: 3, ScrollPosition: 0.25}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	for _, key := range []string{"version", "starredPapers", "openPapers", "searchHistory", "pdfViewState", "lastUpdated"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("document missing top-level field %q", key)
		}
	}

	var papers []map[string]json.RawMessage
	if err := json.Unmarshal(raw["starredPapers"], &papers); err != nil {
		t.Fatalf("parsing starredPapers: %v", err)
	}
	for _, key := range []string{"id", "title", "authors", "abstract", "publishedDate", "categories", "pdfUrl", "source"} {
		if _, ok := papers[0][key]; !ok {
			t.Errorf("paper missing field %q", key)
		}
	}

	var open []map[string]json.RawMessage
	if err := json.Unmarshal(raw["openPapers"], &open); err != nil {
		t.Fatalf("parsing openPapers: %v", err)
	}
	// Embedded paper fields flatten into the same object as openedAt.
	for _, key := range []string{"id", "openedAt"} {
		if _, ok := open[0][key]; !ok {
			t.Errorf("open paper missing field %q", key)
		}
	}

	var states map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw["pdfViewState"], &states); err != nil {
		t.Fatalf("parsing pdfViewState: %v", err)
	}
	for _, key := range []string{"scale", "currentPage", "scrollPosition"} {
		if _, ok := states["2301.07041"][key]; !ok {
			t.Errorf("view state missing field %q", key)
		}
	}
}

// Documents written before cachedPapers existed must load cleanly.
func TestDocumentOlderSchemaLoads(t *testing.T) {
	older := `{
		"version": "1",
		"starredPapers": [],
		"openPapers": [],
		"searchHistory": [],
		"pdfViewState": {},
		"lastUpdated": 1700000000000
	}`

	var doc AppDataDocument
	if err := json.Unmarshal([]byte(older), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc.Version != "1" {
		t.Errorf("Version = %q", doc.Version)
	}
	if doc.CachedPapers != nil {
		t.Errorf("CachedPapers = %v, want nil for older documents", doc.CachedPapers)
	}
}

func TestDocumentCloneIsDeep(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	updated := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	doc := NewAppDataDocument(now)
	doc.StarredPapers = []Paper{{
		ID:          "2301.07041",
		Title:       "A Paper",
		Authors:     []Author{{Name: "Smith"}},
		Categories:  []string{"cs.LG"},
		UpdatedDate: &updated,
	}}
	doc.PDFViewState["2301.07041"] = PDFViewState{Scale: 1.0}

	clone := doc.Clone()
	clone.StarredPapers[0].Authors[0].Name = "Changed"
	clone.StarredPapers[0].Categories[0] = "changed"
	*clone.StarredPapers[0].UpdatedDate = now
	clone.PDFViewState["2301.07041"] = PDFViewState{Scale: 2.0}

	if doc.StarredPapers[0].Authors[0].Name != "Smith" {
		t.Error("clone shares authors slice with original")
	}
	if doc.StarredPapers[0].Categories[0] != "cs.LG" {
		t.Error("clone shares categories slice with original")
	}
	if !doc.StarredPapers[0].UpdatedDate.Equal(updated) {
		t.Error("clone shares UpdatedDate pointer with original")
	}
	if doc.PDFViewState["2301.07041"].Scale != 1.0 {
		t.Error("clone shares view-state map with original")
	}
}

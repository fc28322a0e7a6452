// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DocumentVersion is the schema version written into new documents.
const DocumentVersion = "1"

// OpenPaper is a paper currently open as a viewer tab. The embedded Paper
// fields flatten into the same JSON object, with openedAt added.
type OpenPaper struct {
	Paper

	// OpenedAt is the Unix-millisecond timestamp of the most recent open.
	OpenedAt int64 `json:"openedAt" yaml:"opened_at"`
}

// PDFViewState records the per-paper viewing position. It is overwritten
// wholesale on each save; there is no partial merge.
type PDFViewState struct {
	Scale          float64 `json:"scale" yaml:"scale"`
	CurrentPage    int     `json:"currentPage" yaml:"current_page"`
	ScrollPosition float64 `json:"scrollPosition" yaml:"scroll_position"`
}

// SearchHistoryEntry is one recorded search, deduplicated by (query, source)
// with the newer entry replacing the older and moving to the front.
type SearchHistoryEntry struct {
	Query     string `json:"query" yaml:"query"`
	Source    string `json:"source" yaml:"source"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
}

// AppDataDocument is the single persisted root object owned by the paper
// store. Every mutation reads, modifies, and rewrites the whole document.
//
// The JSON field names below are an interoperability contract with
// previously saved data and must not change. CachedPapers is an additive
// field: documents written before it existed load with an empty list.
type AppDataDocument struct {
	Version       string                  `json:"version"`
	StarredPapers []Paper                 `json:"starredPapers"`
	OpenPapers    []OpenPaper             `json:"openPapers"`
	SearchHistory []SearchHistoryEntry    `json:"searchHistory"`
	PDFViewState  map[string]PDFViewState `json:"pdfViewState"`
	CachedPapers  []Paper                 `json:"cachedPapers,omitempty"`
	LastUpdated   int64                   `json:"lastUpdated"`
}

// NewAppDataDocument returns a fresh default document stamped with now.
func NewAppDataDocument(now time.Time) *AppDataDocument {
	return &AppDataDocument{
		Version:       DocumentVersion,
		StarredPapers: []Paper{},
		OpenPapers:    []OpenPaper{},
		SearchHistory: []SearchHistoryEntry{},
		PDFViewState:  map[string]PDFViewState{},
		LastUpdated:   now.UnixMilli(),
	}
}

// Clone returns a deep copy of the document. The store mutates only clones
// so a failed write never corrupts the in-memory cache.
func (d *AppDataDocument) Clone() *AppDataDocument {
	c := &AppDataDocument{
		Version:       d.Version,
		StarredPapers: clonePapers(d.StarredPapers),
		OpenPapers:    make([]OpenPaper, len(d.OpenPapers)),
		SearchHistory: make([]SearchHistoryEntry, len(d.SearchHistory)),
		PDFViewState:  make(map[string]PDFViewState, len(d.PDFViewState)),
		CachedPapers:  clonePapers(d.CachedPapers),
		LastUpdated:   d.LastUpdated,
	}
	for i, op := range d.OpenPapers {
		c.OpenPapers[i] = OpenPaper{Paper: clonePaper(op.Paper), OpenedAt: op.OpenedAt}
	}
	copy(c.SearchHistory, d.SearchHistory)
	for k, v := range d.PDFViewState {
		c.PDFViewState[k] = v
	}
	return c
}

func clonePapers(papers []Paper) []Paper {
	out := make([]Paper, len(papers))
	for i, p := range papers {
		out[i] = clonePaper(p)
	}
	return out
}

func clonePaper(p Paper) Paper {
	c := p
	c.Authors = append([]Author(nil), p.Authors...)
	c.Categories = append([]string(nil), p.Categories...)
	if p.UpdatedDate != nil {
		t := *p.UpdatedDate
		c.UpdatedDate = &t
	}
	return c
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for paperdesk: papers,
// search criteria, the persisted application document, and configuration.
package types

import (
	"fmt"
	"time"
)

// PaperSource identifies the external provider of a paper.
type PaperSource string

const (
	SourceArxiv   PaperSource = "arxiv"
	SourceBiorxiv PaperSource = "biorxiv"
)

// KnownSources lists every supported source in default query order.
// Earlier sources win dedup ties.
var KnownSources = []PaperSource{SourceArxiv, SourceBiorxiv}

// Author is one paper author.
type Author struct {
	Name        string `json:"name" yaml:"name"`
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
}

// Paper is an immutable value describing one academic paper. Instances are
// constructed by a source adapter from a raw API response and never mutated
// in place; a download produces a new copy via WithLocalPath.
//
// JSON field names are part of the persisted-document contract and must not
// change (see AppDataDocument).
type Paper struct {
	// ID is the source-scoped identifier (arXiv ID or bioRxiv DOI).
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []Author `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract or summary.
	Abstract string `json:"abstract" yaml:"abstract"`

	// PublishedDate is the first publication or preprint date.
	PublishedDate time.Time `json:"publishedDate" yaml:"published_date"`

	// UpdatedDate is the most recent revision date, if the source reports one.
	UpdatedDate *time.Time `json:"updatedDate,omitempty" yaml:"updated_date,omitempty"`

	// Categories holds the source's subject tags (e.g. "cs.LG", "neuroscience").
	Categories []string `json:"categories" yaml:"categories"`

	// PDFURL is the canonical download location for the full text.
	PDFURL string `json:"pdfUrl" yaml:"pdf_url"`

	// Source identifies which provider returned this paper.
	Source PaperSource `json:"source" yaml:"source"`

	// DOI is the Digital Object Identifier, if known.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Comments carries submitter notes (e.g. "10 pages, 3 figures").
	Comments string `json:"comments,omitempty" yaml:"comments,omitempty"`

	// JournalRef is the journal reference once published.
	JournalRef string `json:"journalRef,omitempty" yaml:"journal_ref,omitempty"`

	// LocalPath is the local filesystem path of the downloaded PDF, set once
	// the paper has been fetched.
	LocalPath string `json:"localPath,omitempty" yaml:"local_path,omitempty"`
}

// Identity returns the deduplication key: the DOI when present, otherwise
// the source-scoped ID. Two papers with the same identity are the same
// logical paper regardless of source-specific fields.
func (p Paper) Identity() string {
	if p.DOI != "" {
		return p.DOI
	}
	return p.ID
}

// DisplayDate returns the date used for result ordering: the updated date
// when present, otherwise the published date.
func (p Paper) DisplayDate() time.Time {
	if p.UpdatedDate != nil && !p.UpdatedDate.IsZero() {
		return *p.UpdatedDate
	}
	return p.PublishedDate
}

// WithLocalPath returns a copy of the paper with LocalPath set.
func (p Paper) WithLocalPath(path string) Paper {
	p.LocalPath = path
	return p
}

// Validate reports whether the paper satisfies the minimum contract a
// source adapter must produce. Adapters skip entries that fail validation
// rather than aborting a whole batch.
func (p Paper) Validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("paper has empty id")
	case p.Title == "":
		return fmt.Errorf("paper %s has empty title", p.ID)
	case len(p.Authors) == 0:
		return fmt.Errorf("paper %s has no authors", p.ID)
	case p.PDFURL == "":
		return fmt.Errorf("paper %s has no PDF URL", p.ID)
	}
	return nil
}

// AuthorNames returns the author names without affiliations.
func (p Paper) AuthorNames() []string {
	names := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		names = append(names, a.Name)
	}
	return names
}

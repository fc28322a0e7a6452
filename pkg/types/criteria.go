// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SearchCriteria holds the query input for a paper search. No field is
// individually required: an empty criteria means "match all" within a
// source's default window (bioRxiv defaults to a trailing 30-day window,
// arXiv is unrestricted).
type SearchCriteria struct {
	// Query is a free-text term matched against any field the source supports.
	Query string `json:"query,omitempty" yaml:"query,omitempty"`

	// Author restricts results to papers by the named author.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Title restricts results to papers whose title matches.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Categories restricts results to any of the listed subject tags
	// (OR-combined, then AND-ed with the other fields).
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// StartDate and EndDate bound the publication date range.
	StartDate time.Time `json:"startDate,omitempty" yaml:"start_date,omitempty"`
	EndDate   time.Time `json:"endDate,omitempty" yaml:"end_date,omitempty"`

	// Limit caps the number of results; Offset skips leading results.
	Limit  int `json:"limit,omitempty" yaml:"limit,omitempty"`
	Offset int `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// IsEmpty reports whether the criteria contains no searchable terms.
func (c SearchCriteria) IsEmpty() bool {
	return c.Query == "" && c.Author == "" && c.Title == "" &&
		len(c.Categories) == 0 && c.StartDate.IsZero() && c.EndDate.IsZero()
}

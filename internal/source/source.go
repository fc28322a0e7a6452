// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source translates generic search criteria into provider-native
// queries and normalizes heterogeneous responses into Paper values. One
// adapter exists per provider (arXiv, bioRxiv) behind a common capability
// interface; a factory resolves a source tag to its implementation.
package source

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paperdesk/internal/apperr"
	"github.com/pdiddy/paperdesk/pkg/types"
)

// Source is the capability interface a paper provider implements. Search
// never panics across the boundary: transport and parse failures come back
// as tagged errors (see internal/apperr) carrying the operation name and,
// for API failures, the status code.
type Source interface {
	Name() types.PaperSource

	// Search returns the papers matching criteria, from the start of the
	// result set. Adapters never apply criteria.Offset themselves; they
	// fetch enough rows to cover Offset+Limit and leave paging over the
	// merged list to the orchestrator. A malformed entry in a batch
	// response is skipped and logged, not fatal.
	Search(ctx context.Context, criteria types.SearchCriteria) ([]types.Paper, error)

	// GetByID looks a paper up by its source-scoped id. Absent papers
	// return (nil, nil). Sources without id lookup return a validation
	// failure.
	GetByID(ctx context.Context, id string) (*types.Paper, error)

	// GetByDOI looks a paper up by DOI, with the same contract as GetByID.
	GetByDOI(ctx context.Context, doi string) (*types.Paper, error)
}

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxResults = 20
	defaultRate       = 3.0
)

// For resolves a source tag to its adapter. Unknown tags are a validation
// failure.
func For(tag types.PaperSource, cfg types.SearchConfig, client *http.Client, now func() time.Time, warn io.Writer) (Source, error) {
	switch tag {
	case types.SourceArxiv:
		return NewArxiv(cfg, client, warn), nil
	case types.SourceBiorxiv:
		return NewBiorxiv(cfg, client, now, warn), nil
	default:
		return nil, apperr.Newf(apperr.KindValidation, "source.for", "unknown source %q", tag)
	}
}

// Resolve returns adapters for the requested tags, preserving request
// order. An empty tag list resolves to every source enabled in cfg, in
// types.KnownSources order.
func Resolve(tags []types.PaperSource, cfg types.SearchConfig, client *http.Client, now func() time.Time, warn io.Writer) ([]Source, error) {
	if len(tags) == 0 {
		for _, tag := range types.KnownSources {
			if tag == types.SourceArxiv && !cfg.EnableArxiv {
				continue
			}
			if tag == types.SourceBiorxiv && !cfg.EnableBiorxiv {
				continue
			}
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return nil, apperr.New(apperr.KindConfiguration, "source.resolve", "no sources enabled")
	}

	sources := make([]Source, 0, len(tags))
	for _, tag := range tags {
		s, err := For(tag, cfg, client, now, warn)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, nil
}

// newLimiter builds the per-adapter request limiter.
func newLimiter(cfg types.SearchConfig) *rate.Limiter {
	r := cfg.RatePerSecond
	if r <= 0 {
		r = defaultRate
	}
	return rate.NewLimiter(rate.Limit(r), 1)
}

func httpClientOrDefault(client *http.Client, cfg types.SearchConfig) *http.Client {
	if client != nil {
		return client
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// arxivIDPattern matches arXiv IDs: "2301.07041", "arXiv:2301.07041v2".
var arxivIDPattern = regexp.MustCompile(`^(?:arXiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)

// doiPattern matches DOIs: "10.1101/2023.01.15.524096".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/[^\s]+$`)

// Identify classifies a bare identifier into the source that can resolve it
// directly: arXiv IDs resolve on arXiv, DOIs on bioRxiv. The normalized
// form strips an optional "arXiv:" prefix. Unrecognized identifiers return
// an empty source.
func Identify(identifier string) (types.PaperSource, string) {
	if m := arxivIDPattern.FindStringSubmatch(identifier); m != nil {
		return types.SourceArxiv, m[1]
	}
	if doiPattern.MatchString(identifier) {
		return types.SourceBiorxiv, identifier
	}
	return "", identifier
}

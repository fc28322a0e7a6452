// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paperdesk/internal/apperr"
	"github.com/pdiddy/paperdesk/internal/httputil"
	"github.com/pdiddy/paperdesk/pkg/types"
)

// Base URLs for the arXiv API. Declared as vars so tests can substitute an
// httptest server.
var (
	arxivAPIBase = "https://export.arxiv.org/api/query"
	arxivPDFBase = "https://arxiv.org/pdf/"
)

// Arxiv queries the arXiv query API and normalizes its Atom responses.
type Arxiv struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     types.SearchConfig
	warn    io.Writer
}

// NewArxiv returns the arXiv adapter. A nil client gets a default with the
// configured timeout; warn receives skipped-entry notices.
func NewArxiv(cfg types.SearchConfig, client *http.Client, warn io.Writer) *Arxiv {
	if warn == nil {
		warn = io.Discard
	}
	return &Arxiv{
		client:  httpClientOrDefault(client, cfg),
		limiter: newLimiter(cfg),
		cfg:     cfg,
		warn:    warn,
	}
}

// Name returns the source tag.
func (a *Arxiv) Name() types.PaperSource { return types.SourceArxiv }

// Search queries the arXiv API sorted by submission date descending.
func (a *Arxiv) Search(ctx context.Context, criteria types.SearchCriteria) ([]types.Paper, error) {
	const op = "arxiv.search"

	q := buildArxivQuery(criteria)
	if q == "" {
		// arXiv has no bare match-all query form; a full-range submittedDate
		// filter is the documented way to match every submission.
		q = "submittedDate:[000001010000+TO+999912310000]"
	}

	limit := criteria.Limit
	if limit <= 0 {
		limit = a.cfg.MaxResults
	}
	if limit <= 0 {
		limit = defaultMaxResults
	}
	// Offset paging happens once, in the orchestrator over the merged list;
	// fetch enough rows from position 0 to cover it.
	fetch := limit + criteria.Offset

	url := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		arxivAPIBase, q, fetch)

	feed, err := a.fetchFeed(ctx, op, url)
	if err != nil {
		return nil, err
	}

	papers := make([]types.Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		p, mapErr := mapArxivEntry(entry)
		if mapErr != nil {
			fmt.Fprintf(a.warn, "warning: skipping arXiv entry: %v\n", mapErr)
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// GetByID looks a paper up through the id_list parameter. Returns (nil, nil)
// when arXiv has no entry for the id.
func (a *Arxiv) GetByID(ctx context.Context, id string) (*types.Paper, error) {
	const op = "arxiv.get_by_id"

	if id == "" {
		return nil, apperr.New(apperr.KindValidation, op, "empty id")
	}

	url := fmt.Sprintf("%s?id_list=%s&max_results=1", arxivAPIBase, id)
	feed, err := a.fetchFeed(ctx, op, url)
	if err != nil {
		return nil, err
	}
	if len(feed.Entries) == 0 {
		return nil, nil
	}

	p, err := mapArxivEntry(feed.Entries[0])
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAPI, op, err)
	}
	return &p, nil
}

// GetByDOI is not supported by the arXiv API.
func (a *Arxiv) GetByDOI(ctx context.Context, doi string) (*types.Paper, error) {
	return nil, apperr.New(apperr.KindValidation, "arxiv.get_by_doi", "arXiv does not support DOI lookup")
}

func (a *Arxiv) fetchFeed(ctx context.Context, op, url string) (*arxivFeed, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, httputil.ClassifyTransport(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, op, err)
	}
	req.Header.Set("User-Agent", a.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.client, req, 0)
	if err != nil {
		return nil, httputil.ClassifyTransport(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.API(op, resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, apperr.Wrap(apperr.KindAPI, op, fmt.Errorf("parsing arXiv response: %w", err))
	}
	return &feed, nil
}

// buildArxivQuery constructs the search_query parameter: free text matches
// any field, title and author map to field-scoped terms, categories combine
// with OR, and all supplied fields combine with AND. A date range maps to a
// submittedDate range filter.
func buildArxivQuery(c types.SearchCriteria) string {
	var parts []string

	if c.Query != "" {
		parts = append(parts, "all:"+joinTerms(c.Query))
	}
	if c.Title != "" {
		parts = append(parts, "ti:"+joinTerms(c.Title))
	}
	if c.Author != "" {
		parts = append(parts, "au:"+joinTerms(c.Author))
	}
	if len(c.Categories) > 0 {
		cats := make([]string, 0, len(c.Categories))
		for _, cat := range c.Categories {
			cats = append(cats, "cat:"+cat)
		}
		clause := strings.Join(cats, "+OR+")
		if len(cats) > 1 {
			clause = "%28" + clause + "%29"
		}
		parts = append(parts, clause)
	}
	if !c.StartDate.IsZero() || !c.EndDate.IsZero() {
		parts = append(parts, "submittedDate:["+arxivDateStamp(c.StartDate, "00000101")+
			"+TO+"+arxivDateStamp(c.EndDate, "99991231")+"]")
	}

	return strings.Join(parts, "+AND+")
}

func joinTerms(s string) string {
	return strings.Join(strings.Fields(s), "+")
}

func arxivDateStamp(t time.Time, fallback string) string {
	if t.IsZero() {
		return fallback + "0000"
	}
	return t.Format("20060102") + "0000"
}

// arXiv Atom feed XML structures. The doi, comment, and journal_ref fields
// live in the arXiv namespace.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Updated    string          `xml:"updated"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
	Links      []arxivLink     `xml:"link"`
	DOI        string          `xml:"http://arxiv.org/schemas/atom doi"`
	Comment    string          `xml:"http://arxiv.org/schemas/atom comment"`
	JournalRef string          `xml:"http://arxiv.org/schemas/atom journal_ref"`
}

type arxivAuthor struct {
	Name        string `xml:"name"`
	Affiliation string `xml:"http://arxiv.org/schemas/atom affiliation"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

// mapArxivEntry converts one Atom entry into a Paper. It is pure and
// unit-testable independent of the network call.
func mapArxivEntry(entry arxivEntry) (types.Paper, error) {
	id := extractArxivID(entry.ID)
	if id == "" {
		return types.Paper{}, fmt.Errorf("entry %q has no arXiv id", entry.ID)
	}

	p := types.Paper{
		ID:         id,
		Title:      collapseWhitespace(entry.Title),
		Abstract:   strings.TrimSpace(entry.Summary),
		Source:     types.SourceArxiv,
		DOI:        strings.TrimSpace(entry.DOI),
		Comments:   strings.TrimSpace(entry.Comment),
		JournalRef: strings.TrimSpace(entry.JournalRef),
	}

	for _, a := range entry.Authors {
		p.Authors = append(p.Authors, types.Author{
			Name:        strings.TrimSpace(a.Name),
			Affiliation: strings.TrimSpace(a.Affiliation),
		})
	}

	for _, c := range entry.Categories {
		if c.Term != "" {
			p.Categories = append(p.Categories, c.Term)
		}
	}

	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		p.PublishedDate = t
	}
	if t, err := time.Parse(time.RFC3339, entry.Updated); err == nil && !t.Equal(p.PublishedDate) {
		p.UpdatedDate = &t
	}

	// Use the explicit PDF link when the feed carries one, otherwise derive
	// the canonical URL from the id.
	for _, l := range entry.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			p.PDFURL = l.Href
			break
		}
	}
	if p.PDFURL == "" {
		p.PDFURL = arxivPDFBase + id
	}

	if err := p.Validate(); err != nil {
		return types.Paper{}, err
	}
	return p, nil
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

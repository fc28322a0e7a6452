// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paperdesk/internal/apperr"
	"github.com/pdiddy/paperdesk/internal/httputil"
	"github.com/pdiddy/paperdesk/pkg/types"
)

// biorxivAPIBase is the bioRxiv details endpoint. Declared as a var so
// tests can substitute an httptest server.
var biorxivAPIBase = "https://api.biorxiv.org/details/biorxiv"

const (
	defaultBiorxivWindowDays = 30
	biorxivPageSize          = 100
	biorxivMaxPages          = 10
)

// Biorxiv queries the bioRxiv details API. The API only supports
// date-range and DOI-scoped fetches, so free-text, title, author, and
// category filtering happens client-side over a date-bounded window.
type Biorxiv struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     types.SearchConfig
	now     func() time.Time
	warn    io.Writer
}

// NewBiorxiv returns the bioRxiv adapter. now supplies "today" for the
// default trailing window; a nil now uses time.Now.
func NewBiorxiv(cfg types.SearchConfig, client *http.Client, now func() time.Time, warn io.Writer) *Biorxiv {
	if now == nil {
		now = time.Now
	}
	if warn == nil {
		warn = io.Discard
	}
	return &Biorxiv{
		client:  httpClientOrDefault(client, cfg),
		limiter: newLimiter(cfg),
		cfg:     cfg,
		now:     now,
		warn:    warn,
	}
}

// Name returns the source tag.
func (b *Biorxiv) Name() types.PaperSource { return types.SourceBiorxiv }

// Search fetches a date-bounded window and filters it client-side. Without
// an explicit date range the window is the trailing 30 days ending today.
func (b *Biorxiv) Search(ctx context.Context, criteria types.SearchCriteria) ([]types.Paper, error) {
	const op = "biorxiv.search"

	start, end := b.window(criteria)

	limit := criteria.Limit
	if limit <= 0 {
		limit = b.cfg.MaxResults
	}
	if limit <= 0 {
		limit = defaultMaxResults
	}
	want := criteria.Offset + limit

	var matched []types.Paper
	cursor := 0
	for page := 0; page < biorxivMaxPages; page++ {
		url := fmt.Sprintf("%s/%s/%s/%d", biorxivAPIBase,
			start.Format("2006-01-02"), end.Format("2006-01-02"), cursor)

		body, err := b.fetch(ctx, op, url)
		if err != nil {
			return nil, err
		}

		for _, rec := range body.Collection {
			p, mapErr := mapBiorxivRecord(rec)
			if mapErr != nil {
				fmt.Fprintf(b.warn, "warning: skipping bioRxiv record: %v\n", mapErr)
				continue
			}
			if matchesCriteria(p, criteria) {
				matched = append(matched, p)
			}
		}

		if len(matched) >= want || len(body.Collection) < biorxivPageSize {
			break
		}
		cursor += len(body.Collection)
	}

	// Offset paging happens once, in the orchestrator over the merged list;
	// return rows from position 0, enough to cover it.
	if len(matched) > want {
		matched = matched[:want]
	}
	return matched, nil
}

// GetByID is not supported: bioRxiv papers are addressed by DOI.
func (b *Biorxiv) GetByID(ctx context.Context, id string) (*types.Paper, error) {
	return nil, apperr.New(apperr.KindValidation, "biorxiv.get_by_id", "bioRxiv does not support id lookup, use DOI")
}

// GetByDOI fetches the DOI-scoped endpoint. Returns (nil, nil) when bioRxiv
// has no record for the DOI. When multiple versions exist the most recent
// one wins.
func (b *Biorxiv) GetByDOI(ctx context.Context, doi string) (*types.Paper, error) {
	const op = "biorxiv.get_by_doi"

	if doi == "" {
		return nil, apperr.New(apperr.KindValidation, op, "empty doi")
	}

	body, err := b.fetch(ctx, op, biorxivAPIBase+"/"+doi)
	if err != nil {
		return nil, err
	}
	if len(body.Collection) == 0 {
		return nil, nil
	}

	p, err := mapBiorxivRecord(body.Collection[len(body.Collection)-1])
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAPI, op, err)
	}
	return &p, nil
}

// window returns the queried date range, defaulting to the trailing
// configured window ending today.
func (b *Biorxiv) window(criteria types.SearchCriteria) (start, end time.Time) {
	days := b.cfg.BiorxivWindowDays
	if days <= 0 {
		days = defaultBiorxivWindowDays
	}

	end = criteria.EndDate
	if end.IsZero() {
		end = b.now()
	}
	start = criteria.StartDate
	if start.IsZero() {
		start = end.AddDate(0, 0, -days)
	}
	return start, end
}

func (b *Biorxiv) fetch(ctx context.Context, op, url string) (*biorxivResponse, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, httputil.ClassifyTransport(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, op, err)
	}
	req.Header.Set("User-Agent", b.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.client, req, 0)
	if err != nil {
		return nil, httputil.ClassifyTransport(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.API(op, resp.StatusCode)
	}

	var body biorxivResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperr.Wrap(apperr.KindAPI, op, fmt.Errorf("parsing bioRxiv response: %w", err))
	}
	return &body, nil
}

// bioRxiv API JSON structures.
type biorxivResponse struct {
	Collection []biorxivRecord `json:"collection"`
}

type biorxivRecord struct {
	DOI                  string `json:"doi"`
	Title                string `json:"title"`
	Authors              string `json:"authors"`
	AuthorCorresponding  string `json:"author_corresponding"`
	CorrespondingInst    string `json:"author_corresponding_institution"`
	Date                 string `json:"date"`
	Version              string `json:"version"`
	Category             string `json:"category"`
	Abstract             string `json:"abstract"`
	Published            string `json:"published"`
}

// mapBiorxivRecord converts one collection record into a Paper. It is pure
// and unit-testable independent of the network call.
func mapBiorxivRecord(rec biorxivRecord) (types.Paper, error) {
	if rec.DOI == "" {
		return types.Paper{}, fmt.Errorf("record %q has no doi", rec.Title)
	}

	p := types.Paper{
		ID:       rec.DOI,
		Title:    collapseWhitespace(rec.Title),
		Abstract: strings.TrimSpace(rec.Abstract),
		Source:   types.SourceBiorxiv,
		DOI:      rec.DOI,
		// Canonical full-text URL derived from DOI and version; the details
		// API carries no explicit PDF link.
		PDFURL: fmt.Sprintf("https://www.biorxiv.org/content/%sv%s.full.pdf", rec.DOI, versionOrDefault(rec.Version)),
	}

	if rec.Category != "" {
		p.Categories = []string{rec.Category}
	}

	// Authors come as a single semicolon-separated string. The
	// corresponding author's institution is the only affiliation the API
	// reports.
	for _, name := range strings.Split(rec.Authors, ";") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		author := types.Author{Name: name}
		if name == strings.TrimSpace(rec.AuthorCorresponding) {
			author.Affiliation = strings.TrimSpace(rec.CorrespondingInst)
		}
		p.Authors = append(p.Authors, author)
	}

	if t, err := time.Parse("2006-01-02", rec.Date); err == nil {
		p.PublishedDate = t
	}

	if err := p.Validate(); err != nil {
		return types.Paper{}, err
	}
	return p, nil
}

func versionOrDefault(v string) string {
	if v == "" {
		return "1"
	}
	return v
}

// matchesCriteria applies the client-side equivalent of the server-side
// filtering other sources support: free text matches any field, title and
// author match their fields, categories OR-combine, and all supplied
// fields AND together. Date bounds are already applied by the fetch window.
func matchesCriteria(p types.Paper, c types.SearchCriteria) bool {
	if c.Query != "" && !anyFieldContains(p, c.Query) {
		return false
	}
	if c.Title != "" && !containsFold(p.Title, c.Title) {
		return false
	}
	if c.Author != "" {
		found := false
		for _, a := range p.Authors {
			if containsFold(a.Name, c.Author) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(c.Categories) > 0 {
		found := false
		for _, want := range c.Categories {
			for _, have := range p.Categories {
				if strings.EqualFold(want, have) {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func anyFieldContains(p types.Paper, term string) bool {
	if containsFold(p.Title, term) || containsFold(p.Abstract, term) {
		return true
	}
	for _, a := range p.Authors {
		if containsFold(a.Name, term) {
			return true
		}
	}
	for _, cat := range p.Categories {
		if containsFold(cat, term) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists starred papers, open tabs, search history, and
// per-paper PDF view state in a single JSON document. Every mutation loads
// the document (from cache when fresh), applies the change in memory, and
// rewrites the whole file. Mutations are serialized through a FIFO queue so
// two concurrent writers can never clobber each other's change.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/pdiddy/paperdesk/internal/apperr"
	"github.com/pdiddy/paperdesk/pkg/types"
)

const (
	defaultCacheTTL         = 5 * time.Minute
	defaultOpenPapersCap    = 50
	defaultSearchHistoryCap = 100
	defaultCachedPapersCap  = 200
	defaultMaxDocumentBytes = 5 << 20
	queueBuffer             = 64
)

// errNoChange signals that a mutation was an idempotent no-op; the document
// is not rewritten.
var errNoChange = errors.New("no change")

// Store owns the AppDataDocument's on-disk representation and its
// in-memory cache. No other component writes the backing file.
type Store struct {
	fs    FileSystem
	path  string
	cfg   types.StoreConfig
	now   func() time.Time
	warn  io.Writer
	queue *taskQueue

	mu       sync.RWMutex
	cache    *types.AppDataDocument
	cachedAt time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithFileSystem substitutes the file-system collaborator (tests inject an
// in-memory fake).
func WithFileSystem(fs FileSystem) Option {
	return func(s *Store) { s.fs = fs }
}

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithWarnWriter directs self-heal and advisory notices to w.
func WithWarnWriter(w io.Writer) Option {
	return func(s *Store) { s.warn = w }
}

// New opens the store over cfg.DataFile and starts the mutation queue.
// The backing file is created lazily on first access.
func New(cfg types.StoreConfig, opts ...Option) (*Store, error) {
	if cfg.DataFile == "" {
		return nil, apperr.New(apperr.KindConfiguration, "store.new", "data file path is empty")
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.OpenPapersCap <= 0 {
		cfg.OpenPapersCap = defaultOpenPapersCap
	}
	if cfg.SearchHistoryCap <= 0 {
		cfg.SearchHistoryCap = defaultSearchHistoryCap
	}
	if cfg.CachedPapersCap <= 0 {
		cfg.CachedPapersCap = defaultCachedPapersCap
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = defaultMaxDocumentBytes
	}

	s := &Store{
		fs:   OSFileSystem{},
		path: cfg.DataFile,
		cfg:  cfg,
		now:  time.Now,
		warn: io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "store.new", err)
	}

	s.queue = newTaskQueue(queueBuffer)
	return s, nil
}

// Close drains the mutation queue and stops accepting operations. Queued
// writes run to completion; nothing is abandoned mid-flight.
func (s *Store) Close() {
	s.queue.Close()
}

// --- starred papers ---

// Star adds the paper to the starred list. Starring an already-starred
// paper is a no-op.
func (s *Store) Star(paper types.Paper) error {
	return s.mutate(func(doc *types.AppDataDocument) error {
		for _, p := range doc.StarredPapers {
			if p.ID == paper.ID {
				return errNoChange
			}
		}
		doc.StarredPapers = append(doc.StarredPapers, paper)
		return nil
	})
}

// Unstar removes the paper by id. Removing an absent paper is a no-op.
func (s *Store) Unstar(id string) error {
	return s.mutate(func(doc *types.AppDataDocument) error {
		for i, p := range doc.StarredPapers {
			if p.ID == id {
				doc.StarredPapers = append(doc.StarredPapers[:i], doc.StarredPapers[i+1:]...)
				return nil
			}
		}
		return errNoChange
	})
}

// Starred returns the starred list.
func (s *Store) Starred() ([]types.Paper, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.StarredPapers, nil
}

// --- open papers (viewer tabs) ---

// AddToOpen records the paper as open. Re-adding an open paper moves it to
// most-recently-opened. When the list exceeds its cap the least recently
// opened entry is evicted. The list is kept oldest-first.
func (s *Store) AddToOpen(paper types.Paper) error {
	return s.mutate(func(doc *types.AppDataDocument) error {
		for i, op := range doc.OpenPapers {
			if op.ID == paper.ID {
				doc.OpenPapers = append(doc.OpenPapers[:i], doc.OpenPapers[i+1:]...)
				break
			}
		}
		doc.OpenPapers = append(doc.OpenPapers, types.OpenPaper{
			Paper:    paper,
			OpenedAt: s.now().UnixMilli(),
		})
		if over := len(doc.OpenPapers) - s.cfg.OpenPapersCap; over > 0 {
			doc.OpenPapers = doc.OpenPapers[over:]
		}
		return nil
	})
}

// RemoveFromOpen closes the tab for id. Absent ids are a no-op.
func (s *Store) RemoveFromOpen(id string) error {
	return s.mutate(func(doc *types.AppDataDocument) error {
		for i, op := range doc.OpenPapers {
			if op.ID == id {
				doc.OpenPapers = append(doc.OpenPapers[:i], doc.OpenPapers[i+1:]...)
				return nil
			}
		}
		return errNoChange
	})
}

// OpenList returns the open papers, oldest-first.
func (s *Store) OpenList() ([]types.OpenPaper, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.OpenPapers, nil
}

// --- downloads ---

// UpdateLocalPath records the downloaded PDF path on every copy of the
// paper: the starred, open, and cached lists hold independent Paper values,
// so a single download must be reflected in each.
func (s *Store) UpdateLocalPath(id, path string) error {
	return s.mutate(func(doc *types.AppDataDocument) error {
		changed := false
		for i, p := range doc.StarredPapers {
			if p.ID == id {
				doc.StarredPapers[i] = p.WithLocalPath(path)
				changed = true
			}
		}
		for i, op := range doc.OpenPapers {
			if op.ID == id {
				doc.OpenPapers[i].Paper = op.Paper.WithLocalPath(path)
				changed = true
			}
		}
		for i, p := range doc.CachedPapers {
			if p.ID == id {
				doc.CachedPapers[i] = p.WithLocalPath(path)
				changed = true
			}
		}
		if !changed {
			return errNoChange
		}
		return nil
	})
}

// --- PDF view state ---

// SavePDFViewState overwrites the view state for the paper wholesale;
// there is no partial merge.
func (s *Store) SavePDFViewState(id string, state types.PDFViewState) error {
	return s.mutate(func(doc *types.AppDataDocument) error {
		doc.PDFViewState[id] = state
		return nil
	})
}

// PDFViewState returns the saved view state for id, or nil when none exists.
func (s *Store) PDFViewState(id string) (*types.PDFViewState, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	if state, ok := doc.PDFViewState[id]; ok {
		return &state, nil
	}
	return nil, nil
}

// --- search history ---

// AddToSearchHistory records a search. Entries are deduplicated by
// (query, source): a repeat moves to the front with a fresh timestamp. The
// list is most-recent-first and capped.
func (s *Store) AddToSearchHistory(query, sourceTag string) error {
	if query == "" {
		return nil
	}
	return s.mutate(func(doc *types.AppDataDocument) error {
		for i, e := range doc.SearchHistory {
			if e.Query == query && e.Source == sourceTag {
				doc.SearchHistory = append(doc.SearchHistory[:i], doc.SearchHistory[i+1:]...)
				break
			}
		}
		entry := types.SearchHistoryEntry{
			Query:     query,
			Source:    sourceTag,
			Timestamp: s.now().UnixMilli(),
		}
		doc.SearchHistory = append([]types.SearchHistoryEntry{entry}, doc.SearchHistory...)
		if len(doc.SearchHistory) > s.cfg.SearchHistoryCap {
			doc.SearchHistory = doc.SearchHistory[:s.cfg.SearchHistoryCap]
		}
		return nil
	})
}

// SearchHistory returns the recorded searches, most recent first.
func (s *Store) SearchHistory() ([]types.SearchHistoryEntry, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.SearchHistory, nil
}

// --- cached search results ---

// SavePapers stores a deduplicated result batch in the cached-papers list.
// Incoming papers replace cached entries with the same identity and move to
// the front; the list is capped with the oldest entries dropped.
func (s *Store) SavePapers(papers []types.Paper) error {
	if len(papers) == 0 {
		return nil
	}
	return s.mutate(func(doc *types.AppDataDocument) error {
		incoming := make(map[string]struct{}, len(papers))
		for _, p := range papers {
			incoming[p.Identity()] = struct{}{}
		}
		merged := make([]types.Paper, 0, len(papers)+len(doc.CachedPapers))
		merged = append(merged, papers...)
		for _, p := range doc.CachedPapers {
			if _, ok := incoming[p.Identity()]; !ok {
				merged = append(merged, p)
			}
		}
		if len(merged) > s.cfg.CachedPapersCap {
			merged = merged[:s.cfg.CachedPapersCap]
		}
		doc.CachedPapers = merged
		return nil
	})
}

// CachedPapers returns the cached search results, newest batch first.
func (s *Store) CachedPapers() ([]types.Paper, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.CachedPapers, nil
}

// FindPaper looks a paper up by id across every list, checking the starred,
// open, and cached lists in that order.
func (s *Store) FindPaper(id string) (*types.Paper, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, p := range doc.StarredPapers {
		if p.ID == id {
			return &p, nil
		}
	}
	for _, op := range doc.OpenPapers {
		if op.ID == id {
			return &op.Paper, nil
		}
	}
	for _, p := range doc.CachedPapers {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

// --- export / import ---

// Export serializes the whole document to portable JSON text.
func (s *Store) Export() (string, error) {
	doc, err := s.load()
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", apperr.Wrap(apperr.KindStorage, "store.export", err)
	}
	return string(data), nil
}

// Import replaces the document with a previously exported one. Validation
// is minimal: the version and starredPapers fields must be present.
func (s *Store) Import(data string) error {
	const op = "store.import"

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return apperr.Wrap(apperr.KindValidation, op, err)
	}
	if _, ok := raw["version"]; !ok {
		return apperr.New(apperr.KindValidation, op, "missing version field")
	}
	if _, ok := raw["starredPapers"]; !ok {
		return apperr.New(apperr.KindValidation, op, "missing starredPapers field")
	}

	var doc types.AppDataDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return apperr.Wrap(apperr.KindValidation, op, err)
	}
	normalize(&doc)

	return s.mutate(func(current *types.AppDataDocument) error {
		*current = *doc.Clone()
		return nil
	})
}

// Clear resets the store to a fresh default document.
func (s *Store) Clear() error {
	return s.mutate(func(doc *types.AppDataDocument) error {
		*doc = *types.NewAppDataDocument(s.now())
		return nil
	})
}

// --- internals ---

// mutate queues a read-modify-write cycle: load the document (cache short-
// circuits the disk read when fresh), apply fn, stamp lastUpdated, write
// the whole document back, and refresh the cache. A failure leaves the
// queue intact for subsequent operations.
func (s *Store) mutate(fn func(*types.AppDataDocument) error) error {
	return s.queue.Submit(func() error {
		doc, err := s.load()
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			if errors.Is(err, errNoChange) {
				return nil
			}
			return err
		}
		doc.LastUpdated = s.now().UnixMilli()
		return s.persist(doc)
	})
}

// load returns a private copy of the current document, served from the
// in-memory cache when it is inside the freshness window. A missing,
// empty, or unparseable backing file is self-healed into a fresh default
// document in memory; healing never touches the file or the cache. Only
// genuine I/O failures surface as errors.
func (s *Store) load() (*types.AppDataDocument, error) {
	const op = "store.load"

	s.mu.RLock()
	if s.cache != nil && s.now().Sub(s.cachedAt) < s.cfg.CacheTTL {
		doc := s.cache.Clone()
		s.mu.RUnlock()
		return doc, nil
	}
	s.mu.RUnlock()

	if !s.fs.Exists(s.path) {
		return s.selfHeal("backing file missing")
	}

	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, op, err)
	}
	if len(data) == 0 {
		return s.selfHeal("backing file empty")
	}

	var doc types.AppDataDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return s.selfHeal(fmt.Sprintf("backing file corrupt: %v", err))
	}
	if doc.Version == "" {
		return s.selfHeal("backing file has no version")
	}
	normalize(&doc)

	s.refreshCache(&doc)
	return doc.Clone(), nil
}

// selfHeal substitutes a fresh default document in memory. It never writes:
// all writes go through the mutation queue, so a read that healed on the
// side could race a queued mutation and clobber it. The next successful
// mutation persists the healed state. Corruption alone never surfaces as a
// fatal error to the caller.
func (s *Store) selfHeal(reason string) (*types.AppDataDocument, error) {
	fmt.Fprintf(s.warn, "warning: %s, using default document\n", reason)
	return types.NewAppDataDocument(s.now()), nil
}

// persist writes the whole document and refreshes the cache, enforcing the
// serialized size bound. An oversized document is a storage error, never a
// silent truncation.
func (s *Store) persist(doc *types.AppDataDocument) error {
	const op = "store.persist"

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, op, err)
	}
	if len(data) > s.cfg.MaxDocumentBytes {
		return apperr.Newf(apperr.KindStorage, op,
			"document size %d exceeds limit %d", len(data), s.cfg.MaxDocumentBytes)
	}
	if err := s.fs.WriteFile(s.path, data, 0o644); err != nil {
		return apperr.Wrap(apperr.KindStorage, op, err)
	}

	s.refreshCache(doc)
	return nil
}

func (s *Store) refreshCache(doc *types.AppDataDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A slow read can finish after a queued mutation persisted a newer
	// document; never let it roll the cache back.
	if s.cache != nil && s.cache.LastUpdated > doc.LastUpdated {
		return
	}
	s.cache = doc.Clone()
	s.cachedAt = s.now()
}

// normalize replaces nil collections with empty ones so older or partial
// documents behave like fresh ones.
func normalize(doc *types.AppDataDocument) {
	if doc.StarredPapers == nil {
		doc.StarredPapers = []types.Paper{}
	}
	if doc.OpenPapers == nil {
		doc.OpenPapers = []types.OpenPaper{}
	}
	if doc.SearchHistory == nil {
		doc.SearchHistory = []types.SearchHistoryEntry{}
	}
	if doc.PDFViewState == nil {
		doc.PDFViewState = map[string]types.PDFViewState{}
	}
}

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperdesk/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the source adapters and the search
// orchestrator.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the default maximum number of results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EnableArxiv controls whether the arXiv source is queried.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableBiorxiv controls whether the bioRxiv source is queried.
	EnableBiorxiv bool `json:"enable_biorxiv" yaml:"enable_biorxiv"`

	// RatePerSecond caps outgoing requests per source (default 3).
	RatePerSecond float64 `json:"rate_per_second" yaml:"rate_per_second"`

	// BiorxivWindowDays is the trailing window queried when the criteria
	// has no date range (default 30).
	BiorxivWindowDays int `json:"biorxiv_window_days" yaml:"biorxiv_window_days"`
}

// StoreConfig holds settings for the paper store.
type StoreConfig struct {
	// DataFile is the path of the JSON document backing the store.
	DataFile string `json:"data_file" yaml:"data_file"`

	// CacheTTL is the in-memory cache freshness window (default 5m).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// OpenPapersCap bounds the open-paper list; exceeding it evicts the
	// least recently opened entry (default 50).
	OpenPapersCap int `json:"open_papers_cap" yaml:"open_papers_cap"`

	// SearchHistoryCap bounds the search history list (default 100).
	SearchHistoryCap int `json:"search_history_cap" yaml:"search_history_cap"`

	// CachedPapersCap bounds the cached search-result list (default 200).
	CachedPapersCap int `json:"cached_papers_cap" yaml:"cached_papers_cap"`

	// MaxDocumentBytes bounds the serialized document size; exceeding it is
	// a storage error, never a silent truncation (default 5 MiB).
	MaxDocumentBytes int `json:"max_document_bytes" yaml:"max_document_bytes"`
}

// DownloadConfig holds settings for PDF downloads.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// PapersDir is the base directory for papers (contains raw/, metadata/).
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`
}

// IndexConfig holds settings for the local full-text index.
type IndexConfig struct {
	// IndexDir is the directory holding the SQLite index database.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// AssistConfig holds settings for the chat-assistant collaborator.
type AssistConfig struct {
	// Model is the completion model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the completion provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxSnippets bounds the number of index snippets included in the
	// assistant context (default 8).
	MaxSnippets int `json:"max_snippets" yaml:"max_snippets"`
}

// AppConfig groups all component configurations.
type AppConfig struct {
	Search   SearchConfig   `json:"search" yaml:"search"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Download DownloadConfig `json:"download" yaml:"download"`
	Index    IndexConfig    `json:"index" yaml:"index"`
	Assist   AssistConfig   `json:"assist" yaml:"assist"`
}

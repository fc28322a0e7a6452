// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/paperdesk/internal/store"
	"github.com/pdiddy/paperdesk/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "paperdesk/0.1"
)

// appConfig assembles the component configurations from viper with
// built-in defaults.
func appConfig() types.AppConfig {
	viper.SetDefault("search.timeout", defaultTimeout)
	viper.SetDefault("search.user_agent", defaultUserAgent)
	viper.SetDefault("search.max_results", 20)
	viper.SetDefault("search.enable_arxiv", true)
	viper.SetDefault("search.enable_biorxiv", true)
	viper.SetDefault("search.rate_per_second", 3.0)
	viper.SetDefault("search.biorxiv_window_days", 30)
	viper.SetDefault("store.data_file", "data/appdata.json")
	viper.SetDefault("store.cache_ttl", 5*time.Minute)
	viper.SetDefault("store.open_papers_cap", 50)
	viper.SetDefault("store.search_history_cap", 100)
	viper.SetDefault("download.papers_dir", "papers")
	viper.SetDefault("index.index_dir", "data/index")
	viper.SetDefault("index.max_results", 20)
	viper.SetDefault("assist.max_snippets", 8)

	return types.AppConfig{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			MaxResults:        viper.GetInt("search.max_results"),
			EnableArxiv:       viper.GetBool("search.enable_arxiv"),
			EnableBiorxiv:     viper.GetBool("search.enable_biorxiv"),
			RatePerSecond:     viper.GetFloat64("search.rate_per_second"),
			BiorxivWindowDays: viper.GetInt("search.biorxiv_window_days"),
		},
		Store: types.StoreConfig{
			DataFile:         viper.GetString("store.data_file"),
			CacheTTL:         viper.GetDuration("store.cache_ttl"),
			OpenPapersCap:    viper.GetInt("store.open_papers_cap"),
			SearchHistoryCap: viper.GetInt("store.search_history_cap"),
		},
		Download: types.DownloadConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			PapersDir: viper.GetString("download.papers_dir"),
		},
		Index: types.IndexConfig{
			IndexDir:   viper.GetString("index.index_dir"),
			MaxResults: viper.GetInt("index.max_results"),
		},
		Assist: types.AssistConfig{
			Model:       viper.GetString("assist.model"),
			APIKey:      viper.GetString("assist.api_key"),
			MaxSnippets: viper.GetInt("assist.max_snippets"),
		},
	}
}

// openStore opens the paper store from the app config.
func openStore(cfg types.AppConfig) (*store.Store, error) {
	return store.New(cfg.Store)
}

// httpClient returns a client with the configured timeout.
func httpClient(cfg types.SearchConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

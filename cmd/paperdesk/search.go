// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperdesk/internal/search"
	"github.com/pdiddy/paperdesk/internal/source"
	"github.com/pdiddy/paperdesk/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search arXiv and bioRxiv for papers",
	Long: `Search queries the configured sources for papers matching free text or
structured parameters. Results are deduplicated across sources (DOI first,
then id) and sorted by display date descending. Sources failing individually
degrade the result instead of aborting it.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "free-text term matched against any field")
	searchCmd.Flags().String("author", "", "filter by author name")
	searchCmd.Flags().String("title", "", "filter by title")
	searchCmd.Flags().String("categories", "", "filter by categories (comma-separated, OR-combined)")
	searchCmd.Flags().String("from", "", "publication date range start (YYYY-MM-DD)")
	searchCmd.Flags().String("to", "", "publication date range end (YYYY-MM-DD)")
	searchCmd.Flags().Int("limit", 0, "maximum number of results")
	searchCmd.Flags().Int("offset", 0, "number of leading results to skip")
	searchCmd.Flags().String("sources", "", "sources to query (comma-separated: arxiv,biorxiv; default all enabled)")
	searchCmd.Flags().Bool("save", false, "cache results in the paper store")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	criteria, err := criteriaFromFlags(cmd)
	if err != nil {
		return err
	}

	var tags []types.PaperSource
	if raw, _ := cmd.Flags().GetString("sources"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			tags = append(tags, types.PaperSource(strings.TrimSpace(t)))
		}
	}

	sources, err := source.Resolve(tags, cfg.Search, httpClient(cfg.Search), time.Now, os.Stderr)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	var repo search.Repository
	if save, _ := cmd.Flags().GetBool("save"); save {
		repo = st
	}

	out, err := search.Execute(context.Background(), criteria, sources, repo, os.Stderr)
	if err != nil {
		return err
	}

	// Record the search regardless of result count; repeats move to the
	// front of the history.
	sourceTag := ""
	if len(tags) == 1 {
		sourceTag = string(tags[0])
	}
	if histErr := st.AddToSearchHistory(criteria.Query, sourceTag); histErr != nil {
		fmt.Fprintf(os.Stderr, "warning: recording search history: %v\n", histErr)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return search.FormatJSON(out, os.Stdout)
	}
	search.FormatTable(out, os.Stdout)
	return nil
}

func criteriaFromFlags(cmd *cobra.Command) (types.SearchCriteria, error) {
	var c types.SearchCriteria
	c.Query, _ = cmd.Flags().GetString("query")
	c.Author, _ = cmd.Flags().GetString("author")
	c.Title, _ = cmd.Flags().GetString("title")
	c.Limit, _ = cmd.Flags().GetInt("limit")
	c.Offset, _ = cmd.Flags().GetInt("offset")

	if raw, _ := cmd.Flags().GetString("categories"); raw != "" {
		for _, cat := range strings.Split(raw, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				c.Categories = append(c.Categories, cat)
			}
		}
	}

	var err error
	if c.StartDate, err = parseDateFlag(cmd, "from"); err != nil {
		return c, err
	}
	if c.EndDate, err = parseDateFlag(cmd, "to"); err != nil {
		return c, err
	}
	return c, nil
}

func parseDateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s date %q (want YYYY-MM-DD)", name, raw)
	}
	return t, nil
}

package collab

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"leadscout/internal/domain"
)

const defaultSearchEndpoint = "https://serpapi.com/search"

// SearchConfig configures the web-search client.
type SearchConfig struct {
	APIKey     string
	Endpoint   string
	MaxResults int
	MockMode   bool
	HTTP       Config
}

// SearchClient executes web searches through SerpAPI and filters the hits
// down to profile URLs. It implements pipeline.Searcher.
type SearchClient struct {
	cfg    SearchConfig
	client *client
	logger *slog.Logger
}

// NewSearchClient creates a SearchClient.
func NewSearchClient(cfg SearchConfig, logger *slog.Logger) *SearchClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultSearchEndpoint
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 100
	}
	return &SearchClient{
		cfg:    cfg,
		client: newClient(cfg.HTTP, logger),
		logger: logger,
	}
}

type serpResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

// Search runs one query and returns the profile-URL shaped results. Company
// pages are skipped; profile URLs buried in snippets are recovered.
func (s *SearchClient) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if s.cfg.MockMode {
		s.logger.Info("Using mock search results", slog.String("query", query))
		return mockSearchResults(query), nil
	}

	s.logger.Info("Executing search", slog.String("query", query))

	params := url.Values{}
	params.Set("api_key", s.cfg.APIKey)
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(s.cfg.MaxResults))
	params.Set("gl", "us")
	params.Set("hl", "en")
	params.Set("no_cache", "true")

	var resp serpResponse
	if err := s.client.getJSON(ctx, s.cfg.Endpoint, params, nil, &resp); err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	var results []domain.SearchResult
	for _, r := range resp.OrganicResults {
		if strings.Contains(r.Link, "linkedin.com/company/") {
			continue
		}

		if domain.ValidProfileURL(r.Link) {
			results = append(results, domain.SearchResult{
				Title:   r.Title,
				URL:     r.Link,
				Snippet: r.Snippet,
			})
			continue
		}

		// The link itself is not a profile; the snippet sometimes carries one.
		if match := domain.ExtractProfileURL(r.Snippet); match != "" {
			results = append(results, domain.SearchResult{
				Title:   r.Title,
				URL:     "https://" + strings.TrimPrefix(strings.TrimPrefix(match, "https://"), "http://"),
				Snippet: r.Snippet,
			})
		}
	}

	s.logger.Info("Search completed",
		slog.String("query", query),
		slog.Int("profile_urls", len(results)),
	)
	return results, nil
}

// mockSearchResults fabricates deterministic profile URLs so the pipeline can
// run end to end without a search API key. The slug is derived from the query
// so the same query always yields the same profiles.
func mockSearchResults(query string) []domain.SearchResult {
	h := fnv.New32a()
	h.Write([]byte(query))
	seed := h.Sum32()

	results := make([]domain.SearchResult, 0, 3)
	for i := 0; i < 3; i++ {
		slug := fmt.Sprintf("mock-lead-%08x-%d", seed, i)
		results = append(results, domain.SearchResult{
			Title:   fmt.Sprintf("Mock Lead %d", i+1),
			URL:     "https://www.linkedin.com/in/" + slug,
			Snippet: fmt.Sprintf("Mock result %d for %q", i+1, query),
		})
	}
	return results
}

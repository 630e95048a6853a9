package collab

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchClient_Search(t *testing.T) {
	var gotQuery, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("api_key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"organic_results": [
				{"title": "Jane Doe - Director", "link": "https://www.linkedin.com/in/jane-doe-12345", "snippet": "Director at Acme"},
				{"title": "Acme Corp", "link": "https://www.linkedin.com/company/acme-corp/", "snippet": "Company page"},
				{"title": "Acme leadership", "link": "https://example.com/acme-team", "snippet": "John Smith linkedin.com/in/john-smith-987 leads the team"},
				{"title": "Press release", "link": "https://example.com/news", "snippet": "Nothing useful here"}
			]
		}`))
	}))
	defer server.Close()

	client := NewSearchClient(SearchConfig{
		APIKey:   "serp-key",
		Endpoint: server.URL,
		HTTP:     Config{RetryAttempts: 1, RatePerSecond: 1000, RateBurst: 1000},
	}, testLogger())

	results, err := client.Search(context.Background(), "acme director germany")
	require.NoError(t, err)

	assert.Equal(t, "acme director germany", gotQuery)
	assert.Equal(t, "serp-key", gotKey)

	// Company page and the plain news link are dropped; the snippet-embedded
	// profile URL is recovered.
	require.Len(t, results, 2)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe-12345", results[0].URL)
	assert.Equal(t, "https://linkedin.com/in/john-smith-987", results[1].URL)
	assert.Equal(t, "Jane Doe - Director", results[0].Title)
}

func TestSearchClient_Search_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exhausted", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewSearchClient(SearchConfig{
		APIKey:   "serp-key",
		Endpoint: server.URL,
		HTTP: Config{
			RetryAttempts:  2,
			RetryBaseDelay: time.Millisecond,
			RatePerSecond:  1000,
			RateBurst:      1000,
		},
	}, testLogger())

	_, err := client.Search(context.Background(), "acme director")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search request failed")
}

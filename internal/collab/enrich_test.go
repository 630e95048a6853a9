package collab

import (
	"context"
	"testing"

	"leadscout/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichClient_MockMode(t *testing.T) {
	client := NewEnrichClient(EnrichConfig{MockMode: true}, testLogger())

	t.Run("company profile from url slug", func(t *testing.T) {
		cc, err := client.CompanyProfile(context.Background(), "https://www.linkedin.com/company/acme-corp/")
		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", cc.Name)
		assert.Equal(t, "https://www.linkedin.com/company/acme-corp/", cc.URL)
	})

	t.Run("profile payload carries an ongoing role at the hinted company", func(t *testing.T) {
		payload, err := client.EnrichProfile(context.Background(), "https://linkedin.com/in/mock-lead-1", "Acme Corp")
		require.NoError(t, err)

		require.Len(t, payload.Experiences, 2)
		current := payload.Experiences[0]
		assert.Equal(t, "Acme Corp", current.Company)
		assert.Nil(t, current.EndsAt)
		assert.NotEmpty(t, payload.Raw)
		assert.Contains(t, payload.Headline, "Acme Corp")
	})

	t.Run("empty company hint gets a placeholder", func(t *testing.T) {
		payload, err := client.EnrichProfile(context.Background(), "https://linkedin.com/in/mock-lead-2", "")
		require.NoError(t, err)
		assert.Equal(t, "Mock Company", payload.Experiences[0].Company)
	})
}

func TestSearchClient_MockMode(t *testing.T) {
	client := NewSearchClient(SearchConfig{MockMode: true}, testLogger())

	first, err := client.Search(context.Background(), "acme director germany")
	require.NoError(t, err)
	require.Len(t, first, 3)
	for _, r := range first {
		assert.True(t, domain.ValidProfileURL(r.URL), r.URL)
	}

	// Same query, same profiles.
	second, err := client.Search(context.Background(), "acme director germany")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A different query yields different profiles.
	other, err := client.Search(context.Background(), "globex manager france")
	require.NoError(t, err)
	assert.NotEqual(t, first[0].URL, other[0].URL)
}

func TestSheetsClient_MockMode(t *testing.T) {
	client := NewSheetsClient(SheetsConfig{SpreadsheetID: "sheet-id", MockMode: true}, testLogger())

	profiles := []domain.Profile{{ID: "p1"}, {ID: "p2"}}
	n, err := client.ExportProfiles(context.Background(), profiles, "Leads_ops_20240301")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	url, err := client.SheetURL(context.Background(), "Leads_ops_20240301")
	require.NoError(t, err)
	assert.Contains(t, url, "sheet-id")

	_, err = client.SheetURL(context.Background(), "never-created")
	assert.Error(t, err)
}

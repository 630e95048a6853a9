package collab

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"leadscout/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractJSONArray(t *testing.T) {
	t.Run("array wrapped in prose", func(t *testing.T) {
		content := `Here are the queries you asked for:
[{"company": "Acme", "country": "Germany", "query": "acme director"}]
Let me know if you need more.`
		raw, err := extractJSONArray(content)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"company": "Acme", "country": "Germany", "query": "acme director"}]`, string(raw))
	})

	t.Run("bare array", func(t *testing.T) {
		raw, err := extractJSONArray(`[1, 2, 3]`)
		require.NoError(t, err)
		assert.Equal(t, `[1, 2, 3]`, string(raw))
	})

	t.Run("no array", func(t *testing.T) {
		_, err := extractJSONArray(`I could not generate any queries.`)
		assert.Error(t, err)
	})

	t.Run("unclosed array", func(t *testing.T) {
		_, err := extractJSONArray(`[{"company": "Acme"`)
		assert.Error(t, err)
	})
}

func TestBindCompanyURLs(t *testing.T) {
	contexts := []domain.CompanyContext{
		{URL: "https://www.linkedin.com/company/acme-corp/", Name: "Acme Corp"},
		{URL: "https://www.linkedin.com/company/globex/", Name: "Globex"},
	}

	t.Run("binds by containment either way", func(t *testing.T) {
		strategies := []domain.SearchStrategy{
			{Company: "Acme", Country: "Germany", Query: "q1"},
			{Company: "Globex Corporation", Country: "France", Query: "q2"},
		}
		out := bindCompanyURLs(strategies, contexts, testLogger())
		require.Len(t, out, 2)
		assert.Equal(t, "https://www.linkedin.com/company/acme-corp/", out[0].CompanyURL)
		assert.Equal(t, "https://www.linkedin.com/company/globex/", out[1].CompanyURL)
	})

	t.Run("drops unmatchable companies", func(t *testing.T) {
		strategies := []domain.SearchStrategy{
			{Company: "Initech", Country: "Germany", Query: "q1"},
		}
		out := bindCompanyURLs(strategies, contexts, testLogger())
		assert.Empty(t, out)
	})

	t.Run("drops incomplete entries", func(t *testing.T) {
		strategies := []domain.SearchStrategy{
			{Company: "", Country: "Germany", Query: "q1"},
			{Company: "Acme", Country: "", Query: "q2"},
			{Company: "Acme", Country: "Germany", Query: ""},
		}
		out := bindCompanyURLs(strategies, contexts, testLogger())
		assert.Empty(t, out)
	})
}

func TestMockStrategies(t *testing.T) {
	job := &domain.Job{
		Countries:        []string{"Germany", "France"},
		EmploymentFilter: "current",
	}
	contexts := []domain.CompanyContext{
		{URL: "https://www.linkedin.com/company/acme-corp/", Name: "Acme Corp"},
		{URL: "https://www.linkedin.com/company/globex/"}, // no name, falls back to slug
	}

	out := mockStrategies(job, contexts)

	// 2 companies x 2 countries x 2 titles
	require.Len(t, out, 8)
	for _, s := range out {
		assert.NotEmpty(t, s.Company)
		assert.NotEmpty(t, s.CompanyURL)
		assert.NotEmpty(t, s.Country)
		assert.Contains(t, s.Query, s.Company)
		assert.Contains(t, s.Query, s.Country)
	}
	assert.Equal(t, "Globex", out[4].Company)
}

func TestGenerateStrategies_MockMode(t *testing.T) {
	gen := NewQueryGenerator(QueryGenConfig{MockMode: true}, testLogger())

	job := &domain.Job{
		Countries:        []string{"Germany"},
		EmploymentFilter: "current",
	}
	contexts := []domain.CompanyContext{
		{URL: "https://www.linkedin.com/company/acme-corp/", Name: "Acme Corp"},
	}

	out, err := gen.GenerateStrategies(context.Background(), job, contexts)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Acme Corp", out[0].Company)
}

func TestBuildPrompt(t *testing.T) {
	job := &domain.Job{
		Countries:        []string{"Germany", "France"},
		EmploymentFilter: "past",
		CampaignGoal:     "expand into DACH",
	}
	contexts := []domain.CompanyContext{
		{Name: "Acme Corp", Industry: "Software", Specialities: []string{"cloud", "infra"}},
	}

	prompt := buildPrompt(job, contexts)

	assert.Contains(t, prompt, "previously worked at")
	assert.Contains(t, prompt, "at least 10 years")
	assert.Contains(t, prompt, "Acme Corp")
	assert.Contains(t, prompt, "Germany, France")
	assert.Contains(t, prompt, "expand into DACH")
	assert.Contains(t, prompt, "JSON array")
}

package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"leadscout/internal/domain"
	"leadscout/internal/pipeline"
)

const defaultChatEndpoint = "https://api.openai.com/v1/chat/completions"

// QueryGenConfig configures the search-strategy generator.
type QueryGenConfig struct {
	APIKey   string
	Model    string
	Endpoint string
	MockMode bool
	HTTP     Config
}

// QueryGenerator generates search strategies with a chat-completion model.
// It implements pipeline.QueryGenerator.
type QueryGenerator struct {
	cfg    QueryGenConfig
	client *client
	logger *slog.Logger
}

// NewQueryGenerator creates a QueryGenerator.
func NewQueryGenerator(cfg QueryGenConfig, logger *slog.Logger) *QueryGenerator {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultChatEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4"
	}
	return &QueryGenerator{
		cfg:    cfg,
		client: newClient(cfg.HTTP, logger),
		logger: logger,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateStrategies produces search queries for each company/country pair.
// The model may return fewer strategies than requested; coverage is not
// validated here.
func (g *QueryGenerator) GenerateStrategies(ctx context.Context, job *domain.Job, contexts []domain.CompanyContext) ([]domain.SearchStrategy, error) {
	if g.cfg.MockMode {
		g.logger.Info("Using mock search strategies")
		return mockStrategies(job, contexts), nil
	}

	prompt := buildPrompt(job, contexts)

	req := chatRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a search optimization expert specializing in finding professional profiles. Generate optimized web search queries for the given criteria.",
			},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.5,
		MaxTokens:   2000,
	}

	headers := map[string]string{"Authorization": "Bearer " + g.cfg.APIKey}

	var resp chatResponse
	if err := g.client.postJSON(ctx, g.cfg.Endpoint, headers, req, &resp); err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	raw, err := extractJSONArray(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	var parsed []domain.SearchStrategy
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse strategies: %w", err)
	}

	strategies := bindCompanyURLs(parsed, contexts, g.logger)
	g.logger.Info("Generated search strategies", slog.Int("count", len(strategies)))
	return strategies, nil
}

// extractJSONArray pulls the JSON array out of a model response that may be
// wrapped in explanatory text.
func extractJSONArray(content string) (json.RawMessage, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in model response")
	}
	return json.RawMessage(content[start : end+1]), nil
}

// bindCompanyURLs maps generated company names back to the target company
// URLs by loose bidirectional containment, dropping entries that are
// incomplete or unmatchable.
func bindCompanyURLs(strategies []domain.SearchStrategy, contexts []domain.CompanyContext, logger *slog.Logger) []domain.SearchStrategy {
	out := make([]domain.SearchStrategy, 0, len(strategies))
	for _, s := range strategies {
		if s.Company == "" || s.Country == "" || s.Query == "" {
			continue
		}

		var companyURL string
		for _, cc := range contexts {
			name := strings.ToLower(cc.Name)
			got := strings.ToLower(s.Company)
			if name != "" && (strings.Contains(name, got) || strings.Contains(got, name)) {
				companyURL = cc.URL
				break
			}
		}
		if companyURL == "" {
			logger.Warn("Could not match generated company to a target URL", slog.String("company", s.Company))
			continue
		}
		s.CompanyURL = companyURL
		out = append(out, s)
	}
	return out
}

func buildPrompt(job *domain.Job, contexts []domain.CompanyContext) string {
	statusText := map[string]string{
		"current": "currently working at",
		"past":    "previously worked at (within the last 5 years)",
		"all":     "currently working at or previously worked at (within the last 5 years)",
	}[job.EmploymentFilter]
	if statusText == "" {
		statusText = "working at"
	}

	experienceText := map[string]string{
		"current": "with 6-10 years or more of total professional experience",
		"past":    "with at least 10 years of total professional experience",
		"all":     "with appropriate experience (current: 6-10+ years, former: 10+ years)",
	}[job.EmploymentFilter]
	if experienceText == "" {
		experienceText = "with significant experience"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate optimal search queries for finding professionals who are %s the following companies:\n", statusText)
	for _, cc := range contexts {
		fmt.Fprintf(&b, "\nCompany: %s\n", cc.Name)
		if cc.Industry != "" {
			fmt.Fprintf(&b, "Industry: %s\n", cc.Industry)
		}
		if cc.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", cc.Description)
		}
		if len(cc.Specialities) > 0 {
			fmt.Fprintf(&b, "Specialties: %s\n", strings.Join(cc.Specialities, ", "))
		}
	}
	fmt.Fprintf(&b, "\nTarget professionals %s and at the level of partner, director, manager, CXO, owner, or vice president.\n", experienceText)
	fmt.Fprintf(&b, "For each company, create search queries for the following countries: %s.\n", strings.Join(job.Countries, ", "))
	if job.CampaignGoal != "" {
		fmt.Fprintf(&b, "The campaign goal is: %s\n", job.CampaignGoal)
	}
	b.WriteString(`
Format your response as a valid JSON array with objects containing:
1. "company": The company name
2. "country": The target country
3. "query": The optimized search query

Focus on queries that surface public profile URLs. Each query should include the company name, profile-site terms, relevant title keywords, and location information. Generate at least 2 unique queries per company-country combination.`)
	return b.String()
}

// mockStrategies fabricates deterministic strategies for local development
// and tests: two per company-country pair.
func mockStrategies(job *domain.Job, contexts []domain.CompanyContext) []domain.SearchStrategy {
	titles := []string{"Director", "Manager"}
	var out []domain.SearchStrategy
	for _, cc := range contexts {
		name := cc.Name
		if name == "" {
			name = pipeline.CompanyNameFromURL(cc.URL)
		}
		for _, country := range job.Countries {
			for _, title := range titles {
				out = append(out, domain.SearchStrategy{
					Company:    name,
					CompanyURL: cc.URL,
					Country:    country,
					Query:      fmt.Sprintf("site:linkedin.com/in/ %s %s %s profile", name, title, country),
				})
			}
		}
	}
	return out
}

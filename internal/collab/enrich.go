package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"leadscout/internal/domain"
	"leadscout/internal/pipeline"
)

const (
	defaultPersonEndpoint  = "https://nubela.co/proxycurl/api/v2/linkedin"
	defaultCompanyEndpoint = "https://nubela.co/proxycurl/api/linkedin/company"
)

// EnrichConfig configures the profile-enrichment client.
type EnrichConfig struct {
	APIKey          string
	PersonEndpoint  string
	CompanyEndpoint string
	MockMode        bool
	HTTP            Config
}

// EnrichClient resolves person and company profiles through the Proxycurl
// API. It implements pipeline.Enricher.
type EnrichClient struct {
	cfg    EnrichConfig
	client *client
	logger *slog.Logger
}

// NewEnrichClient creates an EnrichClient.
func NewEnrichClient(cfg EnrichConfig, logger *slog.Logger) *EnrichClient {
	if cfg.PersonEndpoint == "" {
		cfg.PersonEndpoint = defaultPersonEndpoint
	}
	if cfg.CompanyEndpoint == "" {
		cfg.CompanyEndpoint = defaultCompanyEndpoint
	}
	return &EnrichClient{
		cfg:    cfg,
		client: newClient(cfg.HTTP, logger),
		logger: logger,
	}
}

func (e *EnrichClient) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + e.cfg.APIKey}
}

// CompanyProfile fetches a company page and reduces it to the context fields
// query generation cares about.
func (e *EnrichClient) CompanyProfile(ctx context.Context, companyURL string) (*domain.CompanyContext, error) {
	if e.cfg.MockMode {
		e.logger.Info("Using mock company profile", slog.String("company_url", companyURL))
		return &domain.CompanyContext{
			URL:      companyURL,
			Name:     pipeline.CompanyNameFromURL(companyURL),
			Industry: "Software Development",
		}, nil
	}

	e.logger.Info("Fetching company profile", slog.String("company_url", companyURL))

	params := url.Values{}
	params.Set("url", companyURL)
	params.Set("use_cache", "if-present")
	params.Set("fallback_to_cache", "on-error")

	var payload struct {
		Name         string   `json:"name"`
		Industry     string   `json:"industry"`
		Description  string   `json:"description"`
		Specialities []string `json:"specialities"`
	}
	if err := e.client.getJSON(ctx, e.cfg.CompanyEndpoint, params, e.headers(), &payload); err != nil {
		return nil, fmt.Errorf("company enrichment failed: %w", err)
	}

	return &domain.CompanyContext{
		URL:          companyURL,
		Name:         payload.Name,
		Industry:     payload.Industry,
		Description:  payload.Description,
		Specialities: payload.Specialities,
	}, nil
}

// EnrichProfile fetches a person profile. The raw provider response is kept
// on the payload for storage and export.
func (e *EnrichClient) EnrichProfile(ctx context.Context, profileURL, companyHint string) (*domain.ProfilePayload, error) {
	if e.cfg.MockMode {
		e.logger.Info("Using mock profile payload", slog.String("profile_url", profileURL))
		return mockProfilePayload(profileURL, companyHint)
	}

	e.logger.Info("Enriching profile",
		slog.String("profile_url", profileURL),
		slog.String("company_hint", companyHint),
	)

	params := url.Values{}
	params.Set("linkedin_profile_url", profileURL)
	params.Set("use_cache", "if-present")
	params.Set("fallback_to_cache", "on-error")
	params.Set("skills", "include")
	params.Set("experiences", "include")
	params.Set("education", "include")

	var raw json.RawMessage
	if err := e.client.getJSON(ctx, e.cfg.PersonEndpoint, params, e.headers(), &raw); err != nil {
		return nil, fmt.Errorf("profile enrichment failed: %w", err)
	}

	var payload domain.ProfilePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse enrichment payload: %w", err)
	}
	payload.Raw = raw
	return &payload, nil
}

// mockProfilePayload fabricates a profile that passes the current-employee
// eligibility rules: an ongoing senior role at the hinted company plus an
// earlier role, eight years of tenure in total.
func mockProfilePayload(profileURL, companyHint string) (*domain.ProfilePayload, error) {
	if companyHint == "" {
		companyHint = "Mock Company"
	}
	now := time.Now().UTC()

	payload := domain.ProfilePayload{
		FullName: "Mock Lead",
		Headline: fmt.Sprintf("Director at %s", companyHint),
		Country:  "United States",
		Industry: "Software Development",
		Experiences: []domain.Experience{
			{
				Company:  companyHint,
				Title:    "Director",
				StartsAt: &domain.YearMonth{Year: now.Year() - 5, Month: int(now.Month())},
			},
			{
				Company:  "Previous Ventures",
				Title:    "Manager",
				StartsAt: &domain.YearMonth{Year: now.Year() - 8, Month: int(now.Month())},
				EndsAt:   &domain.YearMonth{Year: now.Year() - 5, Month: int(now.Month())},
			},
		},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build mock payload: %w", err)
	}
	payload.Raw = raw
	return &payload, nil
}

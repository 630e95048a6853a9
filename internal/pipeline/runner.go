package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"leadscout/internal/domain"

	"github.com/google/uuid"
)

// RunDiscovery drives a job from submitted through search and enrichment to
// awaiting_selection. Per-query and per-URL failures are recorded on the unit
// and never fail the job; an orchestration failure transitions the job to
// failed with one best-effort terminal write and is returned to the caller.
func (r *Runner) RunDiscovery(ctx context.Context, jobID string) error {
	logger := r.logger.With(slog.String("job_id", jobID))
	logger.Info("Starting job discovery")

	if err := r.store.UpdateJobStatus(ctx, jobID, domain.JobStatusProcessing); err != nil {
		return fmt.Errorf("failed to mark job processing: %w", err)
	}

	job, err := r.store.GetJob(ctx, jobID)
	if err != nil {
		r.failJob(ctx, logger, jobID)
		return fmt.Errorf("failed to load job: %w", err)
	}

	// Company context improves query generation but is optional: a failed
	// company lookup degrades to the name parsed from the URL.
	logger.Info("Resolving company context", slog.Int("companies", len(job.CompanyURLs)))
	contexts := r.resolveCompanyContexts(ctx, logger, job)

	logger.Info("Generating search strategies")
	strategies, err := r.queryGen.GenerateStrategies(ctx, job, contexts)
	if err != nil {
		r.failJob(ctx, logger, jobID)
		return fmt.Errorf("query generation failed: %w", err)
	}

	queries := make([]*domain.SearchQuery, 0, len(strategies))
	for _, s := range strategies {
		queries = append(queries, &domain.SearchQuery{
			ID:         uuid.New().String(),
			JobID:      jobID,
			Query:      s.Query,
			Company:    s.Company,
			CompanyURL: s.CompanyURL,
			Country:    s.Country,
			Status:     domain.QueryStatusPending,
		})
	}

	logger.Info("Storing search queries", slog.Int("count", len(queries)))
	if err := r.store.InsertSearchQueries(ctx, queries); err != nil {
		r.failJob(ctx, logger, jobID)
		return fmt.Errorf("failed to store search queries: %w", err)
	}

	queryIDs := make([]string, len(queries))
	for i, q := range queries {
		queryIDs[i] = q.ID
	}

	r.runSearchPool(ctx, logger, queryIDs)

	logger.Info("Enriching discovered profiles")
	if err := r.enrichAll(ctx, logger, job); err != nil {
		r.failJob(ctx, logger, jobID)
		return fmt.Errorf("enrichment phase failed: %w", err)
	}

	logger.Info("Discovery completed, awaiting title selection")
	if err := r.store.UpdateJobStatus(ctx, jobID, domain.JobStatusAwaitingSelection); err != nil {
		r.failJob(ctx, logger, jobID)
		return fmt.Errorf("failed to mark job awaiting selection: %w", err)
	}
	return nil
}

// resolveCompanyContexts enriches each target company, falling back to the
// slug from the company URL when the lookup fails.
func (r *Runner) resolveCompanyContexts(ctx context.Context, logger *slog.Logger, job *domain.Job) []domain.CompanyContext {
	contexts := make([]domain.CompanyContext, 0, len(job.CompanyURLs))
	for _, companyURL := range job.CompanyURLs {
		cc, err := r.enricher.CompanyProfile(ctx, companyURL)
		if err != nil {
			logger.Warn("Company enrichment failed, using URL slug",
				slog.String("company_url", companyURL),
				slog.String("error", err.Error()),
			)
			contexts = append(contexts, domain.CompanyContext{
				URL:  companyURL,
				Name: CompanyNameFromURL(companyURL),
			})
			continue
		}
		cc.URL = companyURL
		contexts = append(contexts, *cc)
	}
	return contexts
}

// failJob performs the single best-effort terminal status write.
func (r *Runner) failJob(ctx context.Context, logger *slog.Logger, jobID string) {
	if err := r.store.UpdateJobStatus(ctx, jobID, domain.JobStatusFailed); err != nil {
		logger.Error("Failed to record job failure", slog.String("error", err.Error()))
	}
}

// CompanyNameFromURL derives a readable company name from a company page URL,
// e.g. "https://www.linkedin.com/company/acme-corp/" → "Acme Corp".
func CompanyNameFromURL(companyURL string) string {
	slug := companyURL
	if _, after, found := strings.Cut(companyURL, "company/"); found {
		slug = after
	}
	slug = strings.Trim(slug, "/")
	if i := strings.IndexByte(slug, '/'); i >= 0 {
		slug = slug[:i]
	}
	words := strings.Split(strings.ReplaceAll(slug, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

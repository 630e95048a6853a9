package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"leadscout/internal/domain"
	"leadscout/shared/postgresql"

	"github.com/jmoiron/sqlx"
)

// Storage handles all database operations for the API and worker services.
// It implements pipeline.Store.
type Storage struct {
	db     *sqlx.DB
	pg     *postgresql.Client
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		db:     pg.GetDB(),
		pg:     pg,
		logger: logger,
	}
}

// Health reports whether the database connection is usable.
func (s *Storage) Health(ctx context.Context) error {
	return s.pg.HealthCheck(ctx)
}

// CreateJob inserts a new job in submitted state.
func (s *Storage) CreateJob(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (
			job_id, user_email, campaign_goal, company_urls, countries,
			employment_filter, decision_level, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.UserEmail,
		job.CampaignGoal,
		job.CompanyURLs,
		job.Countries,
		job.EmploymentFilter,
		job.DecisionLevel,
		job.Status,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (s *Storage) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	var job domain.Job
	query := `
		SELECT job_id, user_email, campaign_goal, company_urls, countries,
		       employment_filter, decision_level, status, created_at, updated_at
		FROM jobs
		WHERE job_id = $1
	`
	if err := s.db.GetContext(ctx, &job, query, jobID); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// UpdateJobStatus persists a lifecycle transition. Each transition is the
// only externally observable progress signal, so it is written immediately.
func (s *Storage) UpdateJobStatus(ctx context.Context, jobID string, status domain.JobStatus) error {
	query := `UPDATE jobs SET status = $1, updated_at = NOW() WHERE job_id = $2`
	if _, err := s.db.ExecContext(ctx, query, status, jobID); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	s.logger.Info("Job status updated",
		slog.String("job_id", jobID),
		slog.String("status", string(status)),
	)
	return nil
}

// JobFilter narrows a job listing.
type JobFilter struct {
	UserEmail string
	Status    string
	PageSize  int
	Cursor    *JobCursor
}

// JobCursor is a (created_at, job_id) keyset pagination cursor.
type JobCursor struct {
	CreatedAt time.Time
	JobID     string
}

// ListJobs lists jobs newest first with keyset pagination. One extra row is
// fetched so the caller can tell whether more results exist.
func (s *Storage) ListJobs(ctx context.Context, filter JobFilter) ([]domain.Job, error) {
	query := `
		SELECT job_id, user_email, campaign_goal, company_urls, countries,
		       employment_filter, decision_level, status, created_at, updated_at
		FROM jobs
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if filter.UserEmail != "" {
		query += fmt.Sprintf(" AND user_email = $%d", argIdx)
		args = append(args, filter.UserEmail)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, job_id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.JobID)
		argIdx += 2
	}

	query += " ORDER BY created_at DESC, job_id DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var jobs []domain.Job
	if err := s.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// InsertSearchQueries stores the generated queries in bulk at job start.
func (s *Storage) InsertSearchQueries(ctx context.Context, queries []*domain.SearchQuery) error {
	if len(queries) == 0 {
		return nil
	}
	query := `
		INSERT INTO search_queries (
			query_id, job_id, query, company, company_url, country, status, results_count
		) VALUES (
			:query_id, :job_id, :query, :company, :company_url, :country, :status, :results_count
		)
	`
	if _, err := s.db.NamedExecContext(ctx, query, queries); err != nil {
		return fmt.Errorf("failed to insert search queries: %w", err)
	}
	s.logger.Info("Stored search queries", slog.Int("count", len(queries)))
	return nil
}

// GetSearchQuery retrieves a search query by ID.
func (s *Storage) GetSearchQuery(ctx context.Context, queryID string) (*domain.SearchQuery, error) {
	var q domain.SearchQuery
	query := `
		SELECT query_id, job_id, query, company, company_url, country, status, results_count, created_at
		FROM search_queries
		WHERE query_id = $1
	`
	if err := s.db.GetContext(ctx, &q, query, queryID); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrQueryNotFound
		}
		return nil, fmt.Errorf("failed to get search query: %w", err)
	}
	return &q, nil
}

// UpdateSearchQuery records the single mutation a query ever receives.
func (s *Storage) UpdateSearchQuery(ctx context.Context, queryID string, status domain.QueryStatus, resultsCount int) error {
	query := `UPDATE search_queries SET status = $1, results_count = $2 WHERE query_id = $3`
	if _, err := s.db.ExecContext(ctx, query, status, resultsCount, queryID); err != nil {
		return fmt.Errorf("failed to update search query: %w", err)
	}
	return nil
}

// URLExists reports whether a profile URL is already stored for the job. The
// check is advisory: a race between check and insert yields at worst a
// duplicate row for the same job.
func (s *Storage) URLExists(ctx context.Context, jobID, profileURL string) (bool, error) {
	var count int
	query := `SELECT COUNT(1) FROM discovered_urls WHERE job_id = $1 AND profile_url = $2`
	if err := s.db.GetContext(ctx, &count, query, jobID, profileURL); err != nil {
		return false, fmt.Errorf("failed to check URL existence: %w", err)
	}
	return count > 0, nil
}

// InsertDiscoveredURL stores a newly discovered profile URL.
func (s *Storage) InsertDiscoveredURL(ctx context.Context, url *domain.DiscoveredURL) error {
	query := `
		INSERT INTO discovered_urls (
			url_id, job_id, profile_url, company, country, search_snippet, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		url.ID, url.JobID, url.ProfileURL, url.Company, url.Country, url.SearchSnippet, url.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert discovered URL: %w", err)
	}
	return nil
}

// ListDiscoveredURLs returns all discovered URLs for a job in discovery order.
func (s *Storage) ListDiscoveredURLs(ctx context.Context, jobID string) ([]domain.DiscoveredURL, error) {
	var urls []domain.DiscoveredURL
	query := `
		SELECT url_id, job_id, profile_url, company, country, search_snippet, status, created_at
		FROM discovered_urls
		WHERE job_id = $1
		ORDER BY created_at ASC
	`
	if err := s.db.SelectContext(ctx, &urls, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to list discovered URLs: %w", err)
	}
	return urls, nil
}

// UpdateURLStatus advances a discovered URL's status.
func (s *Storage) UpdateURLStatus(ctx context.Context, urlID string, status domain.URLStatus) error {
	query := `UPDATE discovered_urls SET status = $1 WHERE url_id = $2`
	if _, err := s.db.ExecContext(ctx, query, status, urlID); err != nil {
		return fmt.Errorf("failed to update URL status: %w", err)
	}
	return nil
}

// InsertProfile stores an enriched profile. Profiles are immutable once
// written.
func (s *Storage) InsertProfile(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (
			profile_id, job_id, profile_url, profile_data, job_title,
			company_title, company, country, experience_years, meets_criteria
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		profile.ID,
		profile.JobID,
		profile.ProfileURL,
		[]byte(profile.ProfileData),
		profile.JobTitle,
		profile.CompanyTitle,
		profile.Company,
		profile.Country,
		profile.ExperienceYears,
		profile.MeetsCriteria,
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// TitleCounts aggregates eligible profiles by (company, title), joined with
// the operator's current selection flags.
func (s *Storage) TitleCounts(ctx context.Context, jobID string) ([]domain.TitleCount, error) {
	var counts []domain.TitleCount
	query := `
		SELECT p.company,
		       p.job_title AS title,
		       COUNT(*) AS count,
		       COALESCE(BOOL_OR(ts.selected), FALSE) AS selected
		FROM profiles p
		LEFT JOIN title_selections ts
		       ON ts.job_id = p.job_id
		      AND ts.company = p.company
		      AND ts.title = p.job_title
		WHERE p.job_id = $1
		  AND p.meets_criteria = TRUE
		  AND p.job_title IS NOT NULL
		GROUP BY p.company, p.job_title
		ORDER BY count DESC, p.company, p.job_title
	`
	if err := s.db.SelectContext(ctx, &counts, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to aggregate titles: %w", err)
	}
	return counts, nil
}

// ReplaceTitleSelections fully replaces the selection set for a job inside a
// transaction. Selections are never merged.
func (s *Storage) ReplaceTitleSelections(ctx context.Context, jobID string, titles []domain.TitleCount) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM title_selections WHERE job_id = $1`, jobID); err != nil {
		return fmt.Errorf("failed to clear title selections: %w", err)
	}

	insert := `
		INSERT INTO title_selections (job_id, company, title, count, selected)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, t := range titles {
		if _, err := tx.ExecContext(ctx, insert, jobID, t.Company, t.Title, t.Count, t.Selected); err != nil {
			return fmt.Errorf("failed to insert title selection: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit title selections: %w", err)
	}
	s.logger.Info("Title selections replaced",
		slog.String("job_id", jobID),
		slog.Int("count", len(titles)),
	)
	return nil
}

// SelectedProfiles returns the eligible profiles whose (company, title) pair
// the operator flagged for export.
func (s *Storage) SelectedProfiles(ctx context.Context, jobID string) ([]domain.Profile, error) {
	var profiles []domain.Profile
	query := `
		SELECT p.profile_id, p.job_id, p.profile_url, p.profile_data, p.job_title,
		       p.company_title, p.company, p.country, p.experience_years,
		       p.meets_criteria, p.created_at
		FROM profiles p
		JOIN title_selections ts
		  ON ts.job_id = p.job_id
		 AND ts.company = p.company
		 AND ts.title = p.job_title
		WHERE p.job_id = $1
		  AND ts.selected = TRUE
		  AND p.meets_criteria = TRUE
	`
	if err := s.db.SelectContext(ctx, &profiles, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to get selected profiles: %w", err)
	}
	return profiles, nil
}

// CreateExport records a new export attempt.
func (s *Storage) CreateExport(ctx context.Context, export *domain.Export) error {
	query := `
		INSERT INTO exports (export_id, job_id, status, profiles_exported)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.db.ExecContext(ctx, query, export.ID, export.JobID, export.Status, export.ProfilesExported); err != nil {
		return fmt.Errorf("failed to create export: %w", err)
	}
	return nil
}

// CompleteExport marks an export attempt successful.
func (s *Storage) CompleteExport(ctx context.Context, exportID, sheetURL string, profilesExported int, completedAt time.Time) error {
	query := `
		UPDATE exports
		SET status = $1, sheet_url = NULLIF($2, ''), profiles_exported = $3, completed_at = $4
		WHERE export_id = $5
	`
	if _, err := s.db.ExecContext(ctx, query, domain.ExportStatusCompleted, sheetURL, profilesExported, completedAt, exportID); err != nil {
		return fmt.Errorf("failed to complete export: %w", err)
	}
	return nil
}

// FailExport marks an export attempt failed.
func (s *Storage) FailExport(ctx context.Context, exportID string, completedAt time.Time) error {
	query := `UPDATE exports SET status = $1, completed_at = $2 WHERE export_id = $3`
	if _, err := s.db.ExecContext(ctx, query, domain.ExportStatusFailed, completedAt, exportID); err != nil {
		return fmt.Errorf("failed to fail export: %w", err)
	}
	return nil
}

// LatestExport returns the most recent export record for a job.
func (s *Storage) LatestExport(ctx context.Context, jobID string) (*domain.Export, error) {
	var export domain.Export
	query := `
		SELECT export_id, job_id, sheet_url, status, profiles_exported, created_at, completed_at
		FROM exports
		WHERE job_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	if err := s.db.GetContext(ctx, &export, query, jobID); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrExportNotFound
		}
		return nil, fmt.Errorf("failed to get export: %w", err)
	}
	return &export, nil
}

// GetProgress returns per-job pipeline progress counters.
func (s *Storage) GetProgress(ctx context.Context, jobID string) (*domain.ProgressStats, error) {
	var stats domain.ProgressStats
	query := `
		SELECT
			(SELECT COUNT(1) FROM search_queries WHERE job_id = $1 AND status <> 'pending') AS searches_completed,
			(SELECT COUNT(1) FROM search_queries WHERE job_id = $1)                          AS searches_total,
			(SELECT COUNT(1) FROM discovered_urls WHERE job_id = $1)                         AS profiles_discovered,
			(SELECT COUNT(1) FROM profiles WHERE job_id = $1)                                AS profiles_enriched
	`
	if err := s.db.GetContext(ctx, &stats, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to get job progress: %w", err)
	}
	return &stats, nil
}

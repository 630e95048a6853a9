package pipeline

import (
	"context"
	"database/sql"
	"log/slog"

	"leadscout/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// enrichAll processes the job's discovered URLs in fixed-size batches. URLs
// within a batch are enriched concurrently; batches run strictly one after
// another, so the batch size bounds in-flight enrichment calls.
func (r *Runner) enrichAll(ctx context.Context, logger *slog.Logger, job *domain.Job) error {
	urls, err := r.store.ListDiscoveredURLs(ctx, job.ID)
	if err != nil {
		return err
	}

	total := len(urls)
	processed := 0

	for start := 0; start < total; start += r.batchSize {
		end := start + r.batchSize
		if end > total {
			end = total
		}
		batch := urls[start:end]

		g, gctx := errgroup.WithContext(ctx)
		for i := range batch {
			url := batch[i]
			g.Go(func() error {
				r.enrichOne(gctx, logger, job, url)
				return nil
			})
		}
		// enrichOne never returns an error; Wait is the batch join barrier.
		_ = g.Wait()

		processed += len(batch)
		logger.Info("Enriched batch", slog.Int("processed", processed), slog.Int("total", total))
	}
	return nil
}

// enrichOne enriches a single URL, classifies the result, and records the
// outcome on the URL's status. Every failure path is contained here so one
// bad profile cannot abort the batch or the job.
func (r *Runner) enrichOne(ctx context.Context, logger *slog.Logger, job *domain.Job, url domain.DiscoveredURL) {
	if err := r.store.UpdateURLStatus(ctx, url.ID, domain.URLStatusProcessing); err != nil {
		logger.Error("Failed to mark URL processing", slog.String("url_id", url.ID), slog.String("error", err.Error()))
		return
	}

	payload, err := r.enricher.EnrichProfile(ctx, url.ProfileURL, url.Company)
	if err != nil {
		logger.Warn("Profile enrichment failed",
			slog.String("profile_url", url.ProfileURL),
			slog.String("error", err.Error()),
		)
		r.markURL(ctx, logger, url.ID, domain.URLStatusFailed)
		return
	}

	filter := job.Filter()
	now := r.now()

	var title string
	if filter == domain.FilterCurrent {
		title = ExtractCurrentTitle(payload)
	} else {
		title = ExtractTitleAtCompany(payload, url.Company, filter, now)
	}

	years := ExperienceYears(payload.Experiences, now)
	eligible := Evaluate(payload, filter, url.Company, title, now)

	profile := &domain.Profile{
		ID:              uuid.New().String(),
		JobID:           job.ID,
		ProfileURL:      url.ProfileURL,
		ProfileData:     payload.Raw,
		Company:         url.Company,
		Country:         url.Country,
		ExperienceYears: years,
		MeetsCriteria:   eligible,
	}
	if title != "" {
		profile.JobTitle = sql.NullString{String: title, Valid: true}
		profile.CompanyTitle = sql.NullString{String: title, Valid: true}
	}

	if err := r.store.InsertProfile(ctx, profile); err != nil {
		logger.Error("Failed to store profile",
			slog.String("profile_url", url.ProfileURL),
			slog.String("error", err.Error()),
		)
		r.markURL(ctx, logger, url.ID, domain.URLStatusError)
		return
	}

	r.markURL(ctx, logger, url.ID, domain.URLStatusCompleted)
}

func (r *Runner) markURL(ctx context.Context, logger *slog.Logger, urlID string, status domain.URLStatus) {
	if err := r.store.UpdateURLStatus(ctx, urlID, status); err != nil {
		logger.Error("Failed to update URL status",
			slog.String("url_id", urlID),
			slog.String("status", string(status)),
			slog.String("error", err.Error()),
		)
	}
}

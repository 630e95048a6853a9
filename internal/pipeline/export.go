package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"leadscout/internal/domain"

	"github.com/google/uuid"
)

// RunExport runs the export gate after the operator's title selection: it
// collects the profiles matching selected titles and hands them to the
// spreadsheet backend. Zero selected profiles is a successful export. Any
// failure records the export as failed, best effort, and the job as failed.
func (r *Runner) RunExport(ctx context.Context, jobID string) error {
	logger := r.logger.With(slog.String("job_id", jobID))
	logger.Info("Starting export")

	if err := r.store.UpdateJobStatus(ctx, jobID, domain.JobStatusExporting); err != nil {
		return fmt.Errorf("failed to mark job exporting: %w", err)
	}

	job, err := r.store.GetJob(ctx, jobID)
	if err != nil {
		r.failJob(ctx, logger, jobID)
		return fmt.Errorf("failed to load job: %w", err)
	}

	export := &domain.Export{
		ID:     uuid.New().String(),
		JobID:  jobID,
		Status: domain.ExportStatusPending,
	}
	if err := r.store.CreateExport(ctx, export); err != nil {
		r.failJob(ctx, logger, jobID)
		return fmt.Errorf("failed to create export record: %w", err)
	}

	profiles, err := r.store.SelectedProfiles(ctx, jobID)
	if err != nil {
		r.failExport(ctx, logger, jobID, export.ID)
		return fmt.Errorf("failed to load selected profiles: %w", err)
	}

	if len(profiles) == 0 {
		logger.Warn("No profiles selected for export")
		if err := r.store.CompleteExport(ctx, export.ID, "", 0, r.now()); err != nil {
			r.failJob(ctx, logger, jobID)
			return fmt.Errorf("failed to complete empty export: %w", err)
		}
		if err := r.store.UpdateJobStatus(ctx, jobID, domain.JobStatusCompleted); err != nil {
			return fmt.Errorf("failed to mark job completed: %w", err)
		}
		return nil
	}

	sheetName := sheetNameFor(job, r.now().Format("20060102_1504"))
	logger.Info("Exporting profiles",
		slog.Int("count", len(profiles)),
		slog.String("sheet", sheetName),
	)

	exported, err := r.exporter.ExportProfiles(ctx, profiles, sheetName)
	if err != nil {
		r.failExport(ctx, logger, jobID, export.ID)
		return fmt.Errorf("spreadsheet export failed: %w", err)
	}

	sheetURL, err := r.exporter.SheetURL(ctx, sheetName)
	if err != nil {
		logger.Warn("Could not resolve sheet URL", slog.String("error", err.Error()))
		sheetURL = ""
	}

	if err := r.store.CompleteExport(ctx, export.ID, sheetURL, exported, r.now()); err != nil {
		r.failJob(ctx, logger, jobID)
		return fmt.Errorf("failed to record export completion: %w", err)
	}
	if err := r.store.UpdateJobStatus(ctx, jobID, domain.JobStatusCompleted); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}

	logger.Info("Export completed", slog.Int("profiles_exported", exported))
	return nil
}

// failExport records the export failure best effort; the job-level failure
// transition proceeds even if the export record cannot be written.
func (r *Runner) failExport(ctx context.Context, logger *slog.Logger, jobID, exportID string) {
	if err := r.store.FailExport(ctx, exportID, r.now()); err != nil {
		logger.Error("Failed to record export failure", slog.String("error", err.Error()))
	}
	r.failJob(ctx, logger, jobID)
}

func sheetNameFor(job *domain.Job, stamp string) string {
	user, _, _ := strings.Cut(job.UserEmail, "@")
	return fmt.Sprintf("Leads_%s_%s", user, stamp)
}

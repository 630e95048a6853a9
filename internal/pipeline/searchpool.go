package pipeline

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"

	"leadscout/internal/domain"

	"github.com/google/uuid"
)

// runSearchPool drains the pending queries with a fixed-size worker pool.
// The queue carries one sentinel per worker after the real work, so each
// worker exits exactly once and wg.Wait is a true join barrier rather than a
// sleep.
func (r *Runner) runSearchPool(ctx context.Context, logger *slog.Logger, queryIDs []string) {
	if len(queryIDs) == 0 {
		return
	}

	workers := r.maxSearch
	if len(queryIDs) < workers {
		workers = len(queryIDs)
	}

	logger.Info("Starting search workers", slog.Int("workers", workers), slog.Int("queries", len(queryIDs)))

	queue := make(chan string, len(queryIDs)+workers)
	for _, id := range queryIDs {
		queue <- id
	}
	for i := 0; i < workers; i++ {
		queue <- "" // sentinel
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerNum int) {
			defer wg.Done()
			r.searchWorker(ctx, logger.With(slog.Int("worker", workerNum)), queue)
		}(i)
	}
	wg.Wait()

	logger.Info("Search workers completed")
}

// searchWorker pops query IDs until it sees a sentinel. A failed search marks
// the query error and the worker moves on; it never crashes the pool.
func (r *Runner) searchWorker(ctx context.Context, logger *slog.Logger, queue <-chan string) {
	for queryID := range queue {
		if queryID == "" {
			logger.Debug("Search worker received exit signal")
			return
		}
		if err := r.processQuery(ctx, logger, queryID); err != nil {
			logger.Error("Search query failed",
				slog.String("query_id", queryID),
				slog.String("error", err.Error()),
			)
			if uerr := r.store.UpdateSearchQuery(ctx, queryID, domain.QueryStatusError, 0); uerr != nil {
				logger.Error("Failed to mark query error",
					slog.String("query_id", queryID),
					slog.String("error", uerr.Error()),
				)
			}
		}
	}
}

// processQuery executes one search and stores the novel profile URLs it
// yields.
func (r *Runner) processQuery(ctx context.Context, logger *slog.Logger, queryID string) error {
	query, err := r.store.GetSearchQuery(ctx, queryID)
	if err != nil {
		return err
	}

	logger.Info("Processing search query", slog.String("query", query.Query))

	results, err := r.searcher.Search(ctx, query.Query)
	if err != nil {
		return err
	}

	discovered := 0
	for _, result := range results {
		if !domain.ValidProfileURL(result.URL) {
			continue
		}

		exists, err := r.store.URLExists(ctx, query.JobID, result.URL)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		url := &domain.DiscoveredURL{
			ID:         uuid.New().String(),
			JobID:      query.JobID,
			ProfileURL: result.URL,
			Company:    query.Company,
			Country:    query.Country,
			Status:     domain.URLStatusDiscovered,
		}
		if result.Snippet != "" {
			url.SearchSnippet = sql.NullString{String: result.Snippet, Valid: true}
		}
		if err := r.store.InsertDiscoveredURL(ctx, url); err != nil {
			return err
		}
		discovered++
	}

	logger.Info("Search query completed", slog.Int("discovered", discovered))
	return r.store.UpdateSearchQuery(ctx, queryID, domain.QueryStatusCompleted, discovered)
}

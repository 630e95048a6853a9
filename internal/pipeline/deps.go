package pipeline

import (
	"context"
	"log/slog"
	"time"

	"leadscout/internal/domain"
)

// Store is the persistence contract the pipeline needs. Every write is scoped
// to a single entity keyed by its identity, so concurrent workers never hold
// locks.
type Store interface {
	GetJob(ctx context.Context, jobID string) (*domain.Job, error)
	UpdateJobStatus(ctx context.Context, jobID string, status domain.JobStatus) error

	InsertSearchQueries(ctx context.Context, queries []*domain.SearchQuery) error
	GetSearchQuery(ctx context.Context, queryID string) (*domain.SearchQuery, error)
	UpdateSearchQuery(ctx context.Context, queryID string, status domain.QueryStatus, resultsCount int) error

	URLExists(ctx context.Context, jobID, profileURL string) (bool, error)
	InsertDiscoveredURL(ctx context.Context, url *domain.DiscoveredURL) error
	ListDiscoveredURLs(ctx context.Context, jobID string) ([]domain.DiscoveredURL, error)
	UpdateURLStatus(ctx context.Context, urlID string, status domain.URLStatus) error

	InsertProfile(ctx context.Context, profile *domain.Profile) error
	SelectedProfiles(ctx context.Context, jobID string) ([]domain.Profile, error)

	CreateExport(ctx context.Context, export *domain.Export) error
	CompleteExport(ctx context.Context, exportID, sheetURL string, profilesExported int, completedAt time.Time) error
	FailExport(ctx context.Context, exportID string, completedAt time.Time) error
}

// QueryGenerator produces search strategies for the job's targeting
// parameters. It may return fewer strategies than requested; coverage is not
// validated here.
type QueryGenerator interface {
	GenerateStrategies(ctx context.Context, job *domain.Job, contexts []domain.CompanyContext) ([]domain.SearchStrategy, error)
}

// Searcher executes one web search. Transport retries are the searcher's own
// concern; a returned error is terminal for the query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}

// Enricher resolves company and person profiles from the enrichment provider.
type Enricher interface {
	CompanyProfile(ctx context.Context, companyURL string) (*domain.CompanyContext, error)
	EnrichProfile(ctx context.Context, profileURL, companyHint string) (*domain.ProfilePayload, error)
}

// Exporter hands selected profiles to the spreadsheet backend.
type Exporter interface {
	ExportProfiles(ctx context.Context, profiles []domain.Profile, sheetName string) (int, error)
	SheetURL(ctx context.Context, sheetName string) (string, error)
}

const (
	defaultMaxSearchWorkers = 5
	defaultEnrichBatchSize  = 10
)

// Deps carries the collaborator handles and tuning knobs for a Runner.
// Everything is explicit so tests can substitute collaborators freely.
type Deps struct {
	Logger    *slog.Logger
	Store     Store
	QueryGen  QueryGenerator
	Searcher  Searcher
	Enricher  Enricher
	Exporter  Exporter
	MaxSearch int
	BatchSize int
	Now       func() time.Time
}

// Runner drives a job through its lifecycle: discovery (query generation,
// search fan-out, enrichment) and export.
type Runner struct {
	logger    *slog.Logger
	store     Store
	queryGen  QueryGenerator
	searcher  Searcher
	enricher  Enricher
	exporter  Exporter
	maxSearch int
	batchSize int
	now       func() time.Time
}

// NewRunner creates a Runner, applying defaults for unset knobs.
func NewRunner(deps Deps) *Runner {
	r := &Runner{
		logger:    deps.Logger,
		store:     deps.Store,
		queryGen:  deps.QueryGen,
		searcher:  deps.Searcher,
		enricher:  deps.Enricher,
		exporter:  deps.Exporter,
		maxSearch: deps.MaxSearch,
		batchSize: deps.BatchSize,
		now:       deps.Now,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.maxSearch <= 0 {
		r.maxSearch = defaultMaxSearchWorkers
	}
	if r.batchSize <= 0 {
		r.batchSize = defaultEnrichBatchSize
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

package domain

import (
	"database/sql"
	"encoding/json"
	"time"
)

// QueryStatus is the lifecycle of a generated search query. Each query is
// mutated exactly once, by the search worker that processes it.
type QueryStatus string

const (
	QueryStatusPending   QueryStatus = "pending"
	QueryStatusCompleted QueryStatus = "completed"
	QueryStatusError     QueryStatus = "error"
)

// SearchQuery is one generated web search, bound to a company/country pair.
type SearchQuery struct {
	ID           string      `db:"query_id"`
	JobID        string      `db:"job_id"`
	Query        string      `db:"query"`
	Company      string      `db:"company"`
	CompanyURL   string      `db:"company_url"`
	Country      string      `db:"country"`
	Status       QueryStatus `db:"status"`
	ResultsCount int         `db:"results_count"`
	CreatedAt    time.Time   `db:"created_at"`
}

// URLStatus tracks a discovered profile URL through enrichment. A URL never
// transitions backward.
type URLStatus string

const (
	URLStatusDiscovered URLStatus = "discovered"
	URLStatusProcessing URLStatus = "processing"
	URLStatusCompleted  URLStatus = "completed"
	URLStatusFailed     URLStatus = "failed"
	URLStatusError      URLStatus = "error"
)

// DiscoveredURL is a candidate profile URL found by a search worker.
// At most one row exists per (job, profile URL); the check is advisory, so a
// lost race produces a harmless duplicate row, never cross-job leakage.
type DiscoveredURL struct {
	ID            string         `db:"url_id"`
	JobID         string         `db:"job_id"`
	ProfileURL    string         `db:"profile_url"`
	Company       string         `db:"company"`
	Country       string         `db:"country"`
	SearchSnippet sql.NullString `db:"search_snippet"`
	Status        URLStatus      `db:"status"`
	CreatedAt     time.Time      `db:"created_at"`
}

// Profile is an enriched candidate. Created once per successfully enriched
// URL; immutable thereafter. MeetsCriteria is evaluated exactly once, at
// enrichment time.
type Profile struct {
	ID              string          `db:"profile_id"`
	JobID           string          `db:"job_id"`
	ProfileURL      string          `db:"profile_url"`
	ProfileData     json.RawMessage `db:"profile_data"`
	JobTitle        sql.NullString  `db:"job_title"`
	CompanyTitle    sql.NullString  `db:"company_title"`
	Company         string          `db:"company"`
	Country         string          `db:"country"`
	ExperienceYears float64         `db:"experience_years"`
	MeetsCriteria   bool            `db:"meets_criteria"`
	CreatedAt       time.Time       `db:"created_at"`
}

// TitleCount aggregates eligible profiles sharing a (company, title) pair,
// with the operator's export-inclusion flag.
type TitleCount struct {
	Company  string `db:"company" json:"company"`
	Title    string `db:"title" json:"title"`
	Count    int    `db:"count" json:"count"`
	Selected bool   `db:"selected" json:"selected"`
}

// ExportStatus is the lifecycle of one export attempt.
type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "pending"
	ExportStatusCompleted ExportStatus = "completed"
	ExportStatusFailed    ExportStatus = "failed"
)

// Export records one export attempt. History is retained; status reads return
// the most recent record.
type Export struct {
	ID               string         `db:"export_id"`
	JobID            string         `db:"job_id"`
	SheetURL         sql.NullString `db:"sheet_url"`
	Status           ExportStatus   `db:"status"`
	ProfilesExported int            `db:"profiles_exported"`
	CreatedAt        time.Time      `db:"created_at"`
	CompletedAt      sql.NullTime   `db:"completed_at"`
}

// Task names for queue messages consumed by the worker service.
const (
	TaskDiscover = "discover"
	TaskExport   = "export"
)

// TaskMessage is the queue message that hands a job to the worker service.
type TaskMessage struct {
	JobID string `json:"job_id"`
	Task  string `json:"task"`
}

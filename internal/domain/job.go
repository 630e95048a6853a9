package domain

import (
	"time"

	"github.com/lib/pq"
)

// JobStatus is the lifecycle state of a lead-discovery job. Transitions are
// monotonic through submitted → processing → awaiting_selection → exporting →
// completed; failed is reachable from any non-terminal state.
type JobStatus string

const (
	JobStatusSubmitted         JobStatus = "submitted"
	JobStatusProcessing        JobStatus = "processing"
	JobStatusAwaitingSelection JobStatus = "awaiting_selection"
	JobStatusExporting         JobStatus = "exporting"
	JobStatusCompleted         JobStatus = "completed"
	JobStatusFailed            JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// EmploymentFilter selects which employment relationship with the target
// company a candidate must have.
type EmploymentFilter string

const (
	FilterCurrent EmploymentFilter = "current"
	FilterPast    EmploymentFilter = "past"
	FilterAll     EmploymentFilter = "all"
)

func (f EmploymentFilter) Valid() bool {
	switch f {
	case FilterCurrent, FilterPast, FilterAll:
		return true
	}
	return false
}

// Job is one end-to-end lead-discovery request with fixed targeting parameters.
type Job struct {
	ID               string         `db:"job_id"`
	UserEmail        string         `db:"user_email"`
	CampaignGoal     string         `db:"campaign_goal"`
	CompanyURLs      pq.StringArray `db:"company_urls"`
	Countries        pq.StringArray `db:"countries"`
	EmploymentFilter string         `db:"employment_filter"`
	DecisionLevel    string         `db:"decision_level"`
	Status           JobStatus      `db:"status"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// Filter returns the typed employment filter.
func (j *Job) Filter() EmploymentFilter {
	return EmploymentFilter(j.EmploymentFilter)
}

// ProgressStats summarizes pipeline progress for a job.
type ProgressStats struct {
	SearchesCompleted  int `db:"searches_completed" json:"searches_completed"`
	SearchesTotal      int `db:"searches_total" json:"searches_total"`
	ProfilesDiscovered int `db:"profiles_discovered" json:"profiles_discovered"`
	ProfilesEnriched   int `db:"profiles_enriched" json:"profiles_enriched"`
}

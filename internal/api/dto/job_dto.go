package dto

// CreateJobRequest is the body of POST /api/v1/jobs.
type CreateJobRequest struct {
	UserEmail        string   `json:"user_email" binding:"required,email"`
	CampaignGoal     string   `json:"campaign_goal"`
	CompanyURLs      []string `json:"company_urls" binding:"required,min=1"`
	Countries        []string `json:"countries" binding:"required,min=1"`
	EmploymentFilter string   `json:"employment_filter" binding:"required"`
	DecisionLevel    string   `json:"decision_level"`
}

type ListJobsRequest struct {
	UserEmail string `form:"user_email"`
	Status    string `form:"status"`
	PageSize  int    `form:"page_size"`
	Cursor    string `form:"cursor"`
}

type ListJobsResponse struct {
	Jobs       []JobDTO `json:"jobs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

type JobDTO struct {
	JobID            string `json:"job_id"`
	UserEmail        string `json:"user_email"`
	CampaignGoal     string `json:"campaign_goal"`
	CompanyURLs      []string `json:"company_urls"`
	Countries        []string `json:"countries"`
	EmploymentFilter string `json:"employment_filter"`
	DecisionLevel    string `json:"decision_level"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// JobDetailResponse is the body of GET /api/v1/jobs/:job_id.
type JobDetailResponse struct {
	JobDTO
	Progress ProgressDTO `json:"progress"`
}

type ProgressDTO struct {
	SearchesCompleted  int `json:"searches_completed"`
	SearchesTotal      int `json:"searches_total"`
	ProfilesDiscovered int `json:"profiles_discovered"`
	ProfilesEnriched   int `json:"profiles_enriched"`
}

// TitleCountDTO is one aggregated (company, title) row.
type TitleCountDTO struct {
	Company  string `json:"company" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
}

type TitleCountsResponse struct {
	JobID  string          `json:"job_id"`
	Titles []TitleCountDTO `json:"titles"`
}

// SelectTitlesRequest is the body of POST /api/v1/titles/:job_id. The
// submitted set fully replaces any previous selection.
type SelectTitlesRequest struct {
	Titles []TitleCountDTO `json:"titles" binding:"required"`
}

// ExportResponse is the body of GET /api/v1/exports/:job_id.
type ExportResponse struct {
	JobID            string `json:"job_id"`
	Status           string `json:"status"`
	SheetURL         string `json:"sheet_url,omitempty"`
	ProfilesExported int    `json:"profiles_exported"`
	CreatedAt        string `json:"created_at,omitempty"`
	CompletedAt      string `json:"completed_at,omitempty"`
}

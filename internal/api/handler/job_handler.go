package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"leadscout/internal/api/dto"
	"leadscout/internal/domain"
	"leadscout/internal/storage"
	"leadscout/shared/rabbitmq"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateJob handles POST /api/v1/jobs
// Accepts a lead-discovery request, persists it in submitted state, and hands
// it to the worker service through the queue.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	if !domain.EmploymentFilter(req.EmploymentFilter).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "employment_filter must be one of: current, past, all",
		})
		return
	}

	now := time.Now()
	job := domain.Job{
		ID:               uuid.New().String(),
		UserEmail:        req.UserEmail,
		CampaignGoal:     req.CampaignGoal,
		CompanyURLs:      req.CompanyURLs,
		Countries:        req.Countries,
		EmploymentFilter: req.EmploymentFilter,
		DecisionLevel:    req.DecisionLevel,
		Status:           domain.JobStatusSubmitted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := h.storage.CreateJob(c.Request.Context(), &job); err != nil {
		h.logger.Error("Failed to create job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create job",
		})
		return
	}

	if err := publishTask(c, h.rabbitClient, job.ID, domain.TaskDiscover); err != nil {
		// The job row exists but never reached the queue. Mark it failed so
		// it does not sit in submitted forever.
		h.logger.Error("Failed to publish discovery task",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		_ = h.storage.UpdateJobStatus(c.Request.Context(), job.ID, domain.JobStatusFailed)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to enqueue job",
		})
		return
	}

	h.logger.Info("Job created",
		slog.String("job_id", job.ID),
		slog.Int("companies", len(job.CompanyURLs)),
		slog.Int("countries", len(job.Countries)),
	)

	c.JSON(http.StatusAccepted, jobToDTO(&job))
}

// GetJob handles GET /api/v1/jobs/:job_id
// Returns the job with its pipeline progress counters.
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID := c.Param("job_id")

	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id must be a valid UUID",
		})
		return
	}

	job, err := h.storage.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Job not found",
			})
			return
		}
		h.logger.Error("Failed to get job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get job",
		})
		return
	}

	progress, err := h.storage.GetProgress(c.Request.Context(), jobID)
	if err != nil {
		h.logger.Error("Failed to get job progress", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get job",
		})
		return
	}

	c.JSON(http.StatusOK, dto.JobDetailResponse{
		JobDTO: jobToDTO(job),
		Progress: dto.ProgressDTO{
			SearchesCompleted:  progress.SearchesCompleted,
			SearchesTotal:      progress.SearchesTotal,
			ProfilesDiscovered: progress.ProfilesDiscovered,
			ProfilesEnriched:   progress.ProfilesEnriched,
		},
	})
}

// ListJobs handles GET /api/v1/jobs
// Lists jobs newest first with keyset pagination.
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		h.logger.Error("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	filter := storage.JobFilter{
		UserEmail: req.UserEmail,
		Status:    req.Status,
		PageSize:  req.PageSize,
		Cursor:    cursor,
	}

	jobs, err := h.storage.ListJobs(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list jobs",
		})
		return
	}

	hasMore := len(jobs) > req.PageSize
	if hasMore {
		jobs = jobs[:req.PageSize]
	}

	jobResponse := make([]dto.JobDTO, len(jobs))
	for i := range jobs {
		jobResponse[i] = jobToDTO(&jobs[i])
	}

	var nextCursor string
	if hasMore {
		lastJob := jobs[len(jobs)-1]
		cursorObj := storage.JobCursor{
			CreatedAt: lastJob.CreatedAt,
			JobID:     lastJob.ID,
		}
		nextCursor, err = EncodeJobCursor(&cursorObj)
		if err != nil {
			h.logger.Error("Failed to encode next cursor", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to encode next cursor",
			})
			return
		}
	}

	c.JSON(http.StatusOK, dto.ListJobsResponse{
		Jobs:       jobResponse,
		NextCursor: nextCursor,
	})
}

// publishTask hands a job to the worker service through the queue.
func publishTask(c *gin.Context, rabbit *rabbitmq.Client, jobID, task string) error {
	msg := domain.TaskMessage{JobID: jobID, Task: task}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return rabbit.PublishWithRetry(c.Request.Context(), body, "application/json")
}

func jobToDTO(job *domain.Job) dto.JobDTO {
	return dto.JobDTO{
		JobID:            job.ID,
		UserEmail:        job.UserEmail,
		CampaignGoal:     job.CampaignGoal,
		CompanyURLs:      job.CompanyURLs,
		Countries:        job.Countries,
		EmploymentFilter: job.EmploymentFilter,
		DecisionLevel:    job.DecisionLevel,
		Status:           string(job.Status),
		CreatedAt:        job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        job.UpdatedAt.Format(time.RFC3339),
	}
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"leadscout/internal/api/dto"
	"leadscout/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetTitles handles GET /api/v1/titles/:job_id
// Returns eligible profiles aggregated by (company, title) with the current
// selection flags.
func (h *TitleHandler) GetTitles(c *gin.Context) {
	jobID := c.Param("job_id")

	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id must be a valid UUID",
		})
		return
	}

	if _, err := h.storage.GetJob(c.Request.Context(), jobID); err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Job not found",
			})
			return
		}
		h.logger.Error("Failed to get job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get titles",
		})
		return
	}

	counts, err := h.storage.TitleCounts(c.Request.Context(), jobID)
	if err != nil {
		h.logger.Error("Failed to aggregate titles", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get titles",
		})
		return
	}

	titles := make([]dto.TitleCountDTO, len(counts))
	for i, t := range counts {
		titles[i] = dto.TitleCountDTO{
			Company:  t.Company,
			Title:    t.Title,
			Count:    t.Count,
			Selected: t.Selected,
		}
	}

	c.JSON(http.StatusOK, dto.TitleCountsResponse{
		JobID:  jobID,
		Titles: titles,
	})
}

// SelectTitles handles POST /api/v1/titles/:job_id
// Replaces the selection set for the job and enqueues the export task. The
// submitted set fully replaces any previous selection.
func (h *TitleHandler) SelectTitles(c *gin.Context) {
	jobID := c.Param("job_id")

	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id must be a valid UUID",
		})
		return
	}

	var req dto.SelectTitlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
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
			"error": "Failed to select titles",
		})
		return
	}

	if job.Status != domain.JobStatusAwaitingSelection {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Job is not awaiting title selection",
			"status": string(job.Status),
		})
		return
	}

	titles := make([]domain.TitleCount, len(req.Titles))
	for i, t := range req.Titles {
		titles[i] = domain.TitleCount{
			Company:  t.Company,
			Title:    t.Title,
			Count:    t.Count,
			Selected: t.Selected,
		}
	}

	if err := h.storage.ReplaceTitleSelections(c.Request.Context(), jobID, titles); err != nil {
		h.logger.Error("Failed to replace title selections", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to select titles",
		})
		return
	}

	if err := publishTask(c, h.rabbitClient, jobID, domain.TaskExport); err != nil {
		h.logger.Error("Failed to publish export task",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to enqueue export",
		})
		return
	}

	h.logger.Info("Title selections submitted",
		slog.String("job_id", jobID),
		slog.Int("titles", len(titles)),
	)

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": jobID,
		"status": "export_queued",
	})
}

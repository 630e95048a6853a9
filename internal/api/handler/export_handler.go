package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"leadscout/internal/api/dto"
	"leadscout/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetExport handles GET /api/v1/exports/:job_id
// Returns the most recent export attempt for the job, or not_started when no
// export has been attempted yet.
func (h *ExportHandler) GetExport(c *gin.Context) {
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
			"error": "Failed to get export status",
		})
		return
	}

	export, err := h.storage.LatestExport(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrExportNotFound) {
			c.JSON(http.StatusOK, dto.ExportResponse{
				JobID:  jobID,
				Status: "not_started",
			})
			return
		}
		h.logger.Error("Failed to get export", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get export status",
		})
		return
	}

	resp := dto.ExportResponse{
		JobID:            jobID,
		Status:           string(export.Status),
		SheetURL:         export.SheetURL.String,
		ProfilesExported: export.ProfilesExported,
		CreatedAt:        export.CreatedAt.Format(time.RFC3339),
	}
	if export.CompletedAt.Valid {
		resp.CompletedAt = export.CompletedAt.Time.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, resp)
}

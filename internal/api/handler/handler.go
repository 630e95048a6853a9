package handler

import (
	"log/slog"

	"leadscout/internal/storage"
	"leadscout/shared/rabbitmq"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger       *slog.Logger
	Storage      *storage.Storage
	RabbitClient *rabbitmq.Client
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger       *slog.Logger
	storage      *storage.Storage
	rabbitClient *rabbitmq.Client
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:       deps.Logger,
		storage:      deps.Storage,
		rabbitClient: deps.RabbitClient,
	}
}

// TitleHandler handles title aggregation and selection requests
type TitleHandler struct {
	logger       *slog.Logger
	storage      *storage.Storage
	rabbitClient *rabbitmq.Client
}

// NewTitleHandler creates a new TitleHandler instance
func NewTitleHandler(deps *Dependencies) *TitleHandler {
	return &TitleHandler{
		logger:       deps.Logger,
		storage:      deps.Storage,
		rabbitClient: deps.RabbitClient,
	}
}

// ExportHandler handles export status requests
type ExportHandler struct {
	logger  *slog.Logger
	storage *storage.Storage
}

// NewExportHandler creates a new ExportHandler instance
func NewExportHandler(deps *Dependencies) *ExportHandler {
	return &ExportHandler{
		logger:  deps.Logger,
		storage: deps.Storage,
	}
}

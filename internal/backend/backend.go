package backend

import (
	"context"

	"github.com/slok/jobwatch/internal/model"
)

// Submitter sends typed requests to backend operations.
type Submitter interface {
	// Submit sends one request and returns how the backend accepted it.
	Submit(ctx context.Context, op model.Operation, body model.Body) (*model.Submission, error)
}

// StatusQuerier knows how to observe backend tasks.
type StatusQuerier interface {
	// GetTask returns the current state of a task.
	GetTask(ctx context.Context, taskID string) (*model.Task, error)
}

// Backend is the full job backend API.
type Backend interface {
	Submitter
	StatusQuerier
}

//go:generate mockery --case underscore --output backendmock --outpkg backendmock --name Backend --structname MockBackend

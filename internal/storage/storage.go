package storage

import (
	"context"

	"github.com/slok/jobwatch/internal/model"
)

// Repository is the interface for the submissions journal.
type Repository interface {
	CreateRecord(ctx context.Context, r model.Record) error
	UpdateRecord(ctx context.Context, r model.Record) error
	GetRecord(ctx context.Context, id string) (*model.Record, error)
	// ListRecords returns the records newest first.
	ListRecords(ctx context.Context, filter model.RecordFilter) ([]model.Record, error)
}

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name Repository --structname MockRepository

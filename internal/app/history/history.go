package history

import (
	"context"
	"fmt"

	"github.com/slok/jobwatch/internal/log"
	"github.com/slok/jobwatch/internal/model"
	"github.com/slok/jobwatch/internal/storage"
)

// ServiceConfig is the configuration for the history service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.History"})
	return nil
}

// Service lists the journaled submissions.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new history service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request contains the parameters for listing the history.
type Request struct {
	OperationFilter *model.Operation
	StatusFilter    *model.TaskStatus
	// Limit is the maximum number of records, zero returns all of them.
	Limit int
}

func (r Request) validate() error {
	if r.OperationFilter != nil {
		if _, err := model.SpecFor(*r.OperationFilter); err != nil {
			return err
		}
	}
	if r.StatusFilter != nil && !r.StatusFilter.Known() {
		return fmt.Errorf("unknown status %q: %w", *r.StatusFilter, model.ErrNotValid)
	}
	if r.Limit < 0 {
		return fmt.Errorf("limit can't be negative: %w", model.ErrNotValid)
	}
	return nil
}

// Run returns the journal records newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Record, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	records, err := s.repo.ListRecords(ctx, model.RecordFilter{
		Operation: req.OperationFilter,
		Status:    req.StatusFilter,
		Limit:     req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("could not list records: %w", err)
	}

	s.logger.Debugf("Listed %d records", len(records))
	return records, nil
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/slok/jobwatch/internal/log"
	"github.com/slok/jobwatch/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	records map[string]model.Record
	mu      sync.RWMutex
	logger  log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		records: make(map[string]model.Record),
		logger:  cfg.Logger,
	}, nil
}

// CreateRecord stores a new record.
func (r *Repository) CreateRecord(ctx context.Context, rec model.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("record id is required: %w", model.ErrNotValid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[rec.ID]; ok {
		return fmt.Errorf("record %s: %w", rec.ID, model.ErrAlreadyExists)
	}

	r.records[rec.ID] = copyRecord(rec)
	r.logger.Debugf("Created record in repository: %s", rec.ID)

	return nil
}

// UpdateRecord replaces an existing record.
func (r *Repository) UpdateRecord(ctx context.Context, rec model.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[rec.ID]; !ok {
		return fmt.Errorf("record %s: %w", rec.ID, model.ErrNotFound)
	}

	r.records[rec.ID] = copyRecord(rec)
	r.logger.Debugf("Updated record in repository: %s", rec.ID)

	return nil
}

// GetRecord retrieves a record by ID.
func (r *Repository) GetRecord(ctx context.Context, id string) (*model.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, model.ErrNotFound)
	}

	recCopy := copyRecord(rec)
	return &recCopy, nil
}

// ListRecords returns the records newest first.
func (r *Repository) ListRecords(ctx context.Context, filter model.RecordFilter) ([]model.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []model.Record
	for _, rec := range r.records {
		if filter.Operation != nil && rec.Operation != *filter.Operation {
			continue
		}
		if filter.Status != nil && rec.Status != *filter.Status {
			continue
		}
		records = append(records, copyRecord(rec))
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].SubmittedAt.Equal(records[j].SubmittedAt) {
			return records[i].SubmittedAt.After(records[j].SubmittedAt)
		}
		return records[i].ID > records[j].ID
	})

	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}

	return records, nil
}

func copyRecord(rec model.Record) model.Record {
	if rec.Result != nil {
		rec.Result = append([]byte(nil), rec.Result...)
	}
	if rec.ResolvedAt != nil {
		t := *rec.ResolvedAt
		rec.ResolvedAt = &t
	}
	return rec
}

package memory_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/jobwatch/internal/log"
	"github.com/slok/jobwatch/internal/model"
	"github.com/slok/jobwatch/internal/storage/memory"
)

func TestRepositoryRecordLifecycle(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	ctx := context.Background()
	repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: log.Noop})
	require.NoError(err)

	now := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	rec := model.Record{ID: "01", Operation: model.OperationGenerate, Prompt: "hi", TaskID: "t1", Status: model.TaskStatusPending, SubmittedAt: now}

	require.NoError(repo.CreateRecord(ctx, rec))
	assert.ErrorIs(repo.CreateRecord(ctx, rec), model.ErrAlreadyExists)
	assert.ErrorIs(repo.CreateRecord(ctx, model.Record{}), model.ErrNotValid)

	rec.Status = model.TaskStatusCompleted
	rec.Result = json.RawMessage(`{"text":"hello"}`)
	rec.ResolvedAt = &now
	require.NoError(repo.UpdateRecord(ctx, rec))

	got, err := repo.GetRecord(ctx, "01")
	require.NoError(err)
	assert.Equal(rec, *got)

	// Returned records are copies.
	got.Result[0] = 'X'
	again, err := repo.GetRecord(ctx, "01")
	require.NoError(err)
	assert.Equal(rec.Result, again.Result)

	_, err = repo.GetRecord(ctx, "missing")
	assert.ErrorIs(err, model.ErrNotFound)
	assert.ErrorIs(repo.UpdateRecord(ctx, model.Record{ID: "missing"}), model.ErrNotFound)
}

func TestRepositoryListRecords(t *testing.T) {
	base := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	chat := model.OperationChat
	completed := model.TaskStatusCompleted

	tests := map[string]struct {
		filter model.RecordFilter
		expIDs []string
	}{
		"Without filter all the records should be listed newest first.": {
			expIDs: []string{"03", "02", "01"},
		},
		"Filtering by operation and status should combine both.": {
			filter: model.RecordFilter{Operation: &chat, Status: &completed},
			expIDs: []string{"03"},
		},
		"Limit should cut the newest records.": {
			filter: model.RecordFilter{Limit: 1},
			expIDs: []string{"03"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			ctx := context.Background()
			repo, err := memory.NewRepository(memory.RepositoryConfig{})
			require.NoError(err)

			records := []model.Record{
				{ID: "01", Operation: model.OperationChat, Status: model.TaskStatusPending, SubmittedAt: base},
				{ID: "02", Operation: model.OperationGenerate, Status: model.TaskStatusCompleted, SubmittedAt: base},
				{ID: "03", Operation: model.OperationChat, Status: model.TaskStatusCompleted, SubmittedAt: base.Add(time.Second)},
			}
			for _, r := range records {
				require.NoError(repo.CreateRecord(ctx, r))
			}

			got, err := repo.ListRecords(ctx, test.filter)
			require.NoError(err)

			var gotIDs []string
			for _, r := range got {
				gotIDs = append(gotIDs, r.ID)
			}
			assert.Equal(test.expIDs, gotIDs)
		})
	}
}

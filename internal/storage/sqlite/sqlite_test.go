package sqlite_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/jobwatch/internal/log"
	"github.com/slok/jobwatch/internal/model"
	"github.com/slok/jobwatch/internal/storage/sqlite"
)

func newTestRepository(t *testing.T) *sqlite.Repository {
	t.Helper()

	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "journal", "jobwatch.db"),
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo
}

func recordFixture(id string, op model.Operation, submittedAt time.Time) model.Record {
	return model.Record{
		ID:          id,
		Operation:   op,
		Prompt:      "draw a cat",
		TaskID:      "task-" + id,
		Status:      model.TaskStatusPending,
		SubmittedAt: submittedAt,
	}
}

func TestNewRepository(t *testing.T) {
	_, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{})
	assert.Error(t, err)
}

func TestRepositoryRecordLifecycle(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	ctx := context.Background()
	repo := newTestRepository(t)
	submittedAt := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

	rec := recordFixture("01", model.OperationMultimodal, submittedAt)
	require.NoError(repo.CreateRecord(ctx, rec))

	// Duplicated.
	err := repo.CreateRecord(ctx, rec)
	assert.ErrorIs(err, model.ErrAlreadyExists)

	got, err := repo.GetRecord(ctx, "01")
	require.NoError(err)
	assert.Equal(rec, *got)

	resolvedAt := submittedAt.Add(6 * time.Second)
	rec.Status = model.TaskStatusCompleted
	rec.Result = json.RawMessage(`{"caption":"a cat"}`)
	rec.ResolvedAt = &resolvedAt
	require.NoError(repo.UpdateRecord(ctx, rec))

	got, err = repo.GetRecord(ctx, "01")
	require.NoError(err)
	assert.Equal(rec, *got)

	_, err = repo.GetRecord(ctx, "missing")
	assert.ErrorIs(err, model.ErrNotFound)

	err = repo.UpdateRecord(ctx, recordFixture("missing", model.OperationChat, submittedAt))
	assert.ErrorIs(err, model.ErrNotFound)
}

func TestRepositoryListRecords(t *testing.T) {
	base := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	chat := model.OperationChat
	failed := model.TaskStatusFailed

	tests := map[string]struct {
		filter model.RecordFilter
		expIDs []string
	}{
		"Without filter all the records should be listed newest first.": {
			expIDs: []string{"04", "03", "02", "01"},
		},
		"Filtering by operation should only return that operation.": {
			filter: model.RecordFilter{Operation: &chat},
			expIDs: []string{"04", "02"},
		},
		"Filtering by status should only return that status.": {
			filter: model.RecordFilter{Status: &failed},
			expIDs: []string{"03"},
		},
		"Limit should cut the newest records.": {
			filter: model.RecordFilter{Limit: 2},
			expIDs: []string{"04", "03"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			ctx := context.Background()
			repo := newTestRepository(t)

			r1 := recordFixture("01", model.OperationGenerate, base)
			r2 := recordFixture("02", model.OperationChat, base.Add(time.Second))
			r3 := recordFixture("03", model.OperationSummarize, base.Add(time.Second))
			r3.Status = model.TaskStatusFailed
			r3.Error = "no data to summarize"
			r4 := recordFixture("04", model.OperationChat, base.Add(time.Minute))
			for _, r := range []model.Record{r1, r2, r3, r4} {
				require.NoError(repo.CreateRecord(ctx, r))
			}

			records, err := repo.ListRecords(ctx, test.filter)
			require.NoError(err)

			var gotIDs []string
			for _, r := range records {
				gotIDs = append(gotIDs, r.ID)
			}
			assert.Equal(test.expIDs, gotIDs)
		})
	}
}

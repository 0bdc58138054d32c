package lib_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/jobwatch/internal/backend/fake"
	"github.com/slok/jobwatch/pkg/lib"
)

func newTestClient(t *testing.T, cfg lib.Config) *lib.Client {
	t.Helper()

	if cfg.BackendURL == "" {
		b, err := fake.NewBackend(fake.BackendConfig{PendingPolls: -1})
		require.NoError(t, err)
		srv := httptest.NewServer(fake.NewHandler(b, nil))
		t.Cleanup(srv.Close)
		cfg.BackendURL = srv.URL
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 5 * time.Millisecond
	}

	client, err := lib.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClientSubmit(t *testing.T) {
	tests := map[string]struct {
		opts       lib.SubmitOpts
		expErr     bool
		expSuccess bool
		expText    string
	}{
		"A multimodal job should encode the image.": {
			opts: lib.SubmitOpts{
				Operation: lib.OperationMultimodal,
				Prompt:    "a cat",
				Image:     strings.NewReader("cat-bytes"),
			},
			expSuccess: true,
			expText:    "{\n  \"caption\": \"a cat\",\n  \"image_bytes\": 9\n}",
		},
		"A multimodal job without image should fail without a task.": {
			opts: lib.SubmitOpts{
				Operation: lib.OperationMultimodal,
				Prompt:    "a cat",
			},
			expText: "Error: missing input: encoding failed",
		},
		"A too long steganography message should fail on the backend.": {
			opts: lib.SubmitOpts{
				Operation: lib.OperationSteganography,
				Prompt:    "a secret",
				Image:     strings.NewReader("tiny"),
			},
			expText: "Error: message too long for image: needs 8 bytes, image holds 0",
		},
		"Chat jobs should be rejected.": {
			opts:   lib.SubmitOpts{Operation: lib.OperationChat, Prompt: "hi"},
			expErr: true,
		},
		"Unknown operations should be rejected.": {
			opts:   lib.SubmitOpts{Operation: "translate", Prompt: "hi"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			client := newTestClient(t, lib.Config{})
			job, err := client.Submit(context.Background(), test.opts)
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)

			outcome, err := job.Wait(context.Background())
			require.NoError(err)
			assert.Equal(test.expSuccess, outcome.Success)
			assert.Equal(test.expText, outcome.Text)
		})
	}
}

func TestClientSubmitUnreachableBackend(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	client := newTestClient(t, lib.Config{BackendURL: url})
	job, err := client.Submit(context.Background(), lib.SubmitOpts{Operation: lib.OperationGenerate, Prompt: "hi"})
	require.NoError(err)
	assert.Empty(job.TaskID())

	outcome, err := job.Wait(context.Background())
	require.NoError(err)
	assert.False(outcome.Success)
	assert.True(strings.HasPrefix(outcome.Text, "Error: "))
}

func TestJobStop(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	b, err := fake.NewBackend(fake.BackendConfig{PendingPolls: 1000})
	require.NoError(err)
	srv := httptest.NewServer(fake.NewHandler(b, nil))
	t.Cleanup(srv.Close)

	client := newTestClient(t, lib.Config{BackendURL: srv.URL})
	job, err := client.Submit(context.Background(), lib.SubmitOpts{Operation: lib.OperationGenerate, Prompt: "hi"})
	require.NoError(err)
	assert.NotEmpty(job.TaskID())

	job.Stop()
	_, err = job.Wait(context.Background())
	assert.Error(err)
}

func TestClientHistory(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	client := newTestClient(t, lib.Config{DBPath: filepath.Join(t.TempDir(), "jobwatch.db")})
	ctx := context.Background()

	for _, opts := range []lib.SubmitOpts{
		{Operation: lib.OperationGenerate, Prompt: "first"},
		{Operation: lib.OperationSummarize, Prompt: "Second one. Longer."},
	} {
		job, err := client.Submit(ctx, opts)
		require.NoError(err)
		_, err = job.Wait(ctx)
		require.NoError(err)
	}
	conv := client.NewConversation(nil)
	_, err := conv.Send(ctx, "/help")
	require.NoError(err)

	records, err := client.History(ctx, lib.HistoryOpts{})
	require.NoError(err)
	require.Len(records, 3)

	summarize, err := client.History(ctx, lib.HistoryOpts{Operation: lib.OperationSummarize})
	require.NoError(err)
	require.Len(summarize, 1)
	assert.Equal(lib.StatusCompleted, summarize[0].Status)
	assert.NotEmpty(summarize[0].TaskID)
	assert.JSONEq(`{"summary":"Second one.","words":3}`, string(summarize[0].Result))

	_, err = client.History(ctx, lib.HistoryOpts{Status: "running"})
	assert.Error(err)
}

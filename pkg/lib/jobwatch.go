package lib

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/slok/jobwatch/internal/app/dispatch"
	"github.com/slok/jobwatch/internal/app/history"
	"github.com/slok/jobwatch/internal/backend/api"
	"github.com/slok/jobwatch/internal/encode"
	"github.com/slok/jobwatch/internal/log"
	"github.com/slok/jobwatch/internal/model"
	"github.com/slok/jobwatch/internal/poller"
	"github.com/slok/jobwatch/internal/render"
	"github.com/slok/jobwatch/internal/storage"
	"github.com/slok/jobwatch/internal/storage/memory"
	"github.com/slok/jobwatch/internal/storage/sqlite"
)

// Config configures the SDK client.
//
// All fields are optional, an empty Config{} talks to http://localhost:8080,
// polls every 2 seconds and keeps the journal in memory.
type Config struct {
	// BackendURL is the base URL of the job backend.
	BackendURL string

	// PollInterval is the time between task status queries.
	// Default: 2s.
	PollInterval time.Duration

	// MaxPollErrors is the number of consecutive failed status queries before a
	// job is resolved as failed. Negative never gives up.
	// Default: 5.
	MaxPollErrors int

	// PollTimeout bounds the polling of every job. Zero polls until the task resolves.
	PollTimeout time.Duration

	// HTTPClient is used for every backend call.
	// Default: a client with a 30s timeout.
	HTTPClient *http.Client

	// DBPath is the SQLite journal path. Empty keeps the journal in memory.
	DBPath string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	def := model.DefaultClientConfig()
	if c.BackendURL == "" {
		c.BackendURL = def.BackendURL
	}
	if c.PollInterval == 0 {
		c.PollInterval = def.PollInterval
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("poll interval can't be negative")
	}
	if c.MaxPollErrors == 0 {
		c.MaxPollErrors = def.MaxPollErrors
	}
	if c.PollTimeout < 0 {
		return fmt.Errorf("poll timeout can't be negative")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	return nil
}

// Client is the main SDK entry point to submit jobs.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	dispatch *dispatch.Service
	history  *history.Service
	logger   log.Logger
	closeFn  func() error
}

// New creates a new SDK client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	backendClient, err := api.NewClient(api.ClientConfig{
		BaseURL:    cfg.BackendURL,
		HTTPClient: cfg.HTTPClient,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create backend client: %w", err)
	}

	watcher, err := poller.NewWatcher(poller.WatcherConfig{
		Querier:              backendClient,
		Interval:             cfg.PollInterval,
		MaxConsecutiveErrors: cfg.MaxPollErrors,
		Timeout:              cfg.PollTimeout,
		Logger:               cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create watcher: %w", err)
	}

	repo, closeFn, err := newJournal(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dispatchSvc, err := dispatch.NewService(dispatch.ServiceConfig{
		Submitter:  backendClient,
		Watcher:    watcher,
		Encoder:    encode.NewBase64Encoder(nil),
		Repository: repo,
		Logger:     cfg.Logger,
	})
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("could not create dispatch service: %w", err)
	}

	historySvc, err := history.NewService(history.ServiceConfig{
		Repository: repo,
		Logger:     cfg.Logger,
	})
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("could not create history service: %w", err)
	}

	return &Client{
		dispatch: dispatchSvc,
		history:  historySvc,
		logger:   cfg.Logger,
		closeFn:  closeFn,
	}, nil
}

func newJournal(ctx context.Context, cfg Config) (storage.Repository, func() error, error) {
	if cfg.DBPath == "" {
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: cfg.Logger})
		if err != nil {
			return nil, nil, fmt.Errorf("could not create memory journal: %w", err)
		}
		return repo, func() error { return nil }, nil
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create journal: %w", err)
	}
	return repo, repo.Close, nil
}

// Close releases resources held by the client, including the journal.
// Jobs still being polled should be stopped or waited before.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

// SubmitOpts are the options of a single job submission.
type SubmitOpts struct {
	// Operation is the job type, chat jobs must use [Client.NewConversation].
	Operation Operation
	// Prompt is the user text. Summarize jobs send it as the data to summarize.
	Prompt string
	// Image is required by the multimodal and steganography operations.
	Image io.Reader
}

// Submit submits a job. Rejected submissions are not returned as errors, the
// returned job is already resolved as failed.
func (c *Client) Submit(ctx context.Context, opts SubmitOpts) (*Job, error) {
	slot := render.NewSlot(nil)
	h, err := c.dispatch.Run(ctx, dispatch.Request{
		Operation: model.Operation(opts.Operation),
		Prompt:    opts.Prompt,
		Image:     opts.Image,
		Surface:   slot,
	})
	if err != nil {
		return nil, err
	}

	return &Job{handle: h, outcome: slot.Outcome}, nil
}

// HistoryOpts filter the journal listing.
type HistoryOpts struct {
	Operation Operation
	Status    Status
	// Limit is the maximum number of records, zero returns all of them.
	Limit int
}

// History returns the journaled submissions, newest first.
func (c *Client) History(ctx context.Context, opts HistoryOpts) ([]Record, error) {
	req := history.Request{Limit: opts.Limit}
	if opts.Operation != "" {
		op := model.Operation(opts.Operation)
		req.OperationFilter = &op
	}
	if opts.Status != "" {
		status := model.TaskStatus(opts.Status)
		req.StatusFilter = &status
	}

	records, err := c.history.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	res := make([]Record, 0, len(records))
	for _, r := range records {
		res = append(res, recordFromModel(r))
	}
	return res, nil
}

// Job is a submitted job.
type Job struct {
	// handle is nil when the job resolved at submission time.
	handle  *poller.Handle
	outcome func() (model.Outcome, bool)
}

// TaskID returns the backend task ID, empty when the job didn't need a task.
func (j *Job) TaskID() string {
	if j.handle != nil {
		return j.handle.TaskID()
	}
	return ""
}

// Wait blocks until the job resolves or the context is done.
func (j *Job) Wait(ctx context.Context) (*Outcome, error) {
	if j.handle != nil {
		select {
		case <-j.handle.Done():
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	o, ok := j.outcome()
	if !ok {
		return nil, fmt.Errorf("job %q stopped before resolving", j.TaskID())
	}
	out := outcomeFromModel(o)
	return &out, nil
}

// Stop stops polling the job. Stopped jobs never resolve.
func (j *Job) Stop() {
	if j.handle != nil {
		j.handle.Stop()
	}
}

// Conversation is a chat with the backend.
type Conversation struct {
	client     *Client
	transcript *render.Transcript
}

// NewConversation starts a conversation, if out is not nil every transcript line is also written to it.
func (c *Client) NewConversation(out io.Writer) *Conversation {
	return &Conversation{client: c, transcript: render.NewTranscript(out)}
}

// Send sends a prompt. The user entry is on the transcript when Send returns.
func (c *Conversation) Send(ctx context.Context, prompt string) (*Job, error) {
	s := &jobTranscript{Transcript: c.transcript}
	h, err := c.client.dispatch.Run(ctx, dispatch.Request{
		Operation: model.OperationChat,
		Prompt:    prompt,
		Surface:   s,
	})
	if err != nil {
		return nil, err
	}

	return &Job{handle: h, outcome: s.Outcome}, nil
}

// Entries returns the conversation transcript in order.
func (c *Conversation) Entries() []Entry {
	entries := c.transcript.Entries()
	res := make([]Entry, 0, len(entries))
	for _, e := range entries {
		res = append(res, entryFromModel(e))
	}
	return res
}

// jobTranscript shows the outcome of a single job on a shared transcript.
type jobTranscript struct {
	*render.Transcript

	mu      sync.Mutex
	outcome *model.Outcome
}

func (t *jobTranscript) Show(outcome model.Outcome, text string) error {
	t.mu.Lock()
	t.outcome = &outcome
	t.mu.Unlock()

	return t.Transcript.Show(outcome, text)
}

func (t *jobTranscript) Outcome() (model.Outcome, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.outcome == nil {
		return model.Outcome{}, false
	}
	return *t.outcome, true
}

package dispatch

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/jobwatch/internal/backend"
	"github.com/slok/jobwatch/internal/encode"
	"github.com/slok/jobwatch/internal/log"
	"github.com/slok/jobwatch/internal/model"
	"github.com/slok/jobwatch/internal/poller"
	"github.com/slok/jobwatch/internal/render"
	"github.com/slok/jobwatch/internal/storage"
)

// Watcher starts the polling of a backend task.
type Watcher interface {
	Watch(ctx context.Context, taskID string, onTerminal poller.OnTerminal) *poller.Handle
}

// Conversation is a surface that also keeps the user side of an exchange.
type Conversation interface {
	render.Surface
	AppendUser(prompt string) error
	AppendTaskCreated(taskID string) error
}

// ServiceConfig is the configuration for the dispatch service.
type ServiceConfig struct {
	Submitter backend.Submitter
	Watcher   Watcher
	Encoder   encode.Encoder
	// Repository is the journal where submissions and outcomes are recorded.
	Repository storage.Repository
	TimeNow    func() time.Time
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Submitter == nil {
		return fmt.Errorf("submitter is required")
	}
	if c.Watcher == nil {
		return fmt.Errorf("watcher is required")
	}
	if c.Encoder == nil {
		return fmt.Errorf("encoder is required")
	}
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Dispatch"})
	return nil
}

// Service binds user actions to backend jobs: it submits the job, watches the
// resulting task and renders its outcome on the surface of the request.
type Service struct {
	submitter backend.Submitter
	watcher   Watcher
	encoder   encode.Encoder
	repo      storage.Repository
	timeNow   func() time.Time
	logger    log.Logger
}

// NewService creates a new dispatch service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		submitter: cfg.Submitter,
		watcher:   cfg.Watcher,
		encoder:   cfg.Encoder,
		repo:      cfg.Repository,
		timeNow:   cfg.TimeNow,
		logger:    cfg.Logger,
	}, nil
}

// Request contains the parameters of a user action.
type Request struct {
	Operation model.Operation
	// Prompt is the user text, sent as the operation prompt field.
	Prompt string
	// Image is the binary attachment of the operations that need one.
	Image io.Reader
	// ImagePath is read through the encoder filesystem when Image is not set.
	ImagePath string
	// Surface is where the outcome is rendered, its mode must match the operation.
	Surface render.Surface
}

func (r Request) validate(spec model.OperationSpec) error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("%s is required", spec.PromptField)
	}
	if r.Surface == nil {
		return fmt.Errorf("surface is required")
	}
	if r.Surface.Mode() != spec.Mode {
		return fmt.Errorf("%s renders on %s surfaces, got %s", spec.Operation, spec.Mode, r.Surface.Mode())
	}
	if spec.Mode == model.SurfaceModeTranscript {
		if _, ok := r.Surface.(Conversation); !ok {
			return fmt.Errorf("transcript surface must keep user entries")
		}
	}
	return nil
}

// Run dispatches a user action. Submission and encoding failures are rendered
// on the request surface, the returned error is only for invalid requests.
// The returned handle is nil when the outcome was rendered without polling.
func (s *Service) Run(ctx context.Context, req Request) (*poller.Handle, error) {
	spec, err := model.SpecFor(req.Operation)
	if err != nil {
		return nil, err
	}
	if err := req.validate(spec); err != nil {
		return nil, fmt.Errorf("invalid request: %w: %w", model.ErrNotValid, err)
	}

	logger := s.logger.WithValues(log.Kv{"operation": spec.Operation})

	conv, isConv := req.Surface.(Conversation)
	if isConv && spec.Mode == model.SurfaceModeTranscript {
		if err := conv.AppendUser(req.Prompt); err != nil {
			return nil, fmt.Errorf("could not show user entry: %w", err)
		}
	}

	rec := model.Record{
		ID:          ulid.MustNew(ulid.Timestamp(s.timeNow()), rand.Reader).String(),
		Operation:   spec.Operation,
		Prompt:      req.Prompt,
		Status:      model.TaskStatusPending,
		SubmittedAt: s.timeNow().UTC(),
	}

	body := model.Body{spec.PromptField: req.Prompt}
	if spec.NeedsImage {
		image, err := s.encodeImage(ctx, req)
		if err != nil {
			logger.Warningf("Could not encode image: %s", err)
			s.resolve(ctx, logger, req.Surface, &rec, model.FailureOutcome("", err.Error()), true)
			return nil, nil
		}
		body[model.BodyFieldImage] = image
	}

	sub, err := s.submitter.Submit(ctx, spec.Operation, body)
	if err != nil {
		logger.Warningf("Could not submit job: %s", err)
		s.resolve(ctx, logger, req.Surface, &rec, model.FailureOutcome("", err.Error()), true)
		return nil, nil
	}

	if !sub.Deferred() {
		logger.Debugf("Backend answered inline")
		s.resolve(ctx, logger, req.Surface, &rec, model.SuccessOutcome("", sub.Immediate), true)
		return nil, nil
	}

	rec.TaskID = sub.TaskID
	logger = logger.WithValues(log.Kv{"task-id": sub.TaskID})
	logger.Infof("Job submitted")
	s.journalCreate(ctx, logger, rec)

	if isConv && spec.Mode == model.SurfaceModeTranscript {
		if err := conv.AppendTaskCreated(sub.TaskID); err != nil {
			logger.Errorf("Could not show task created entry: %s", err)
		}
	}

	h := s.watcher.Watch(ctx, sub.TaskID, func(outcome model.Outcome) {
		s.resolve(ctx, logger, req.Surface, &rec, outcome, false)
	})
	return h, nil
}

// Follow watches an already submitted task and renders its outcome on the surface.
// Followed tasks are not journaled.
func (s *Service) Follow(ctx context.Context, taskID string, surface render.Surface) (*poller.Handle, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, fmt.Errorf("task ID is required: %w", model.ErrNotValid)
	}
	if surface == nil {
		return nil, fmt.Errorf("surface is required: %w", model.ErrNotValid)
	}

	logger := s.logger.WithValues(log.Kv{"task-id": taskID})
	h := s.watcher.Watch(ctx, taskID, func(outcome model.Outcome) {
		if err := render.Render(surface, outcome); err != nil {
			logger.Errorf("Could not render outcome: %s", err)
		}
	})
	return h, nil
}

func (s *Service) encodeImage(ctx context.Context, req Request) (string, error) {
	if req.Image == nil && req.ImagePath != "" {
		return s.encoder.EncodeFile(ctx, req.ImagePath)
	}
	return s.encoder.Encode(ctx, req.Image)
}

// resolve renders the terminal outcome and records it on the journal. The
// journal is best effort, its failures never hide an outcome.
func (s *Service) resolve(ctx context.Context, logger log.Logger, surface render.Surface, rec *model.Record, outcome model.Outcome, create bool) {
	if err := render.Render(surface, outcome); err != nil {
		logger.Errorf("Could not render outcome: %s", err)
	}

	now := s.timeNow().UTC()
	rec.ResolvedAt = &now
	switch outcome.Kind {
	case model.OutcomeKindSuccess:
		rec.Status = model.TaskStatusCompleted
		rec.Result = outcome.Result
	default:
		rec.Status = model.TaskStatusFailed
		rec.Error = outcome.Error
	}

	// The watch context may already be gone once the task resolves.
	ctx = context.WithoutCancel(ctx)
	if create {
		s.journalCreate(ctx, logger, *rec)
		return
	}
	if err := s.repo.UpdateRecord(ctx, *rec); err != nil {
		logger.Warningf("Could not update journal record %s: %s", rec.ID, err)
	}
}

func (s *Service) journalCreate(ctx context.Context, logger log.Logger, rec model.Record) {
	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		logger.Warningf("Could not create journal record %s: %s", rec.ID, err)
	}
}

package fake

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/slok/jobwatch/internal/log"
	"github.com/slok/jobwatch/internal/model"
)

const (
	// DefaultPendingPolls is the number of status queries answered as pending before a task resolves.
	DefaultPendingPolls = 2

	chatHelp          = "Commands: /help, /implement [description]"
	chatDefaultAnswer = "Awaiting command."
	maxSummaryLen     = 200
)

// BackendConfig is the configuration for the fake backend.
type BackendConfig struct {
	// PendingPolls is the number of status queries a task stays pending.
	// Negative values resolve tasks on the first query.
	PendingPolls int
	// NewID returns new task identifiers, defaults to random UUIDs.
	NewID  func() string
	Logger log.Logger
}

func (c *BackendConfig) defaults() error {
	if c.PendingPolls == 0 {
		c.PendingPolls = DefaultPendingPolls
	}
	if c.PendingPolls < 0 {
		c.PendingPolls = 0
	}
	if c.NewID == nil {
		c.NewID = func() string { return uuid.New().String() }
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "backend.Fake"})
	return nil
}

type fakeTask struct {
	task      model.Task
	remaining int
	resolved  model.Task
}

// Backend is a fake implementation of the job backend.
// It simulates an asynchronous job queue in memory without running any real inference.
type Backend struct {
	tasks        map[string]*fakeTask
	pendingPolls int
	newID        func() string
	mu           sync.Mutex
	logger       log.Logger
}

// NewBackend creates a new fake backend.
func NewBackend(cfg BackendConfig) (*Backend, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Backend{
		tasks:        map[string]*fakeTask{},
		pendingPolls: cfg.PendingPolls,
		newID:        cfg.NewID,
		logger:       cfg.Logger,
	}, nil
}

// Submit accepts a job. Chat answers plain messages and unknown commands inline.
func (b *Backend) Submit(ctx context.Context, op model.Operation, body model.Body) (*model.Submission, error) {
	spec, err := model.SpecFor(op)
	if err != nil {
		return nil, err
	}

	prompt, ok := body[spec.PromptField]
	if !ok {
		return nil, fmt.Errorf("missing %q field: %w", spec.PromptField, model.ErrNotValid)
	}

	if op == model.OperationChat {
		if inline := chatInline(prompt); inline != nil {
			b.logger.Debugf("Answered chat inline")
			return &model.Submission{Immediate: inline}, nil
		}
	}

	resolved := resolve(op, prompt, body[model.BodyFieldImage])

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.newID()
	if _, ok := b.tasks[id]; ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotValid)
	}
	resolved.ID = id
	b.tasks[id] = &fakeTask{
		task:      model.Task{ID: id, Status: model.TaskStatusPending},
		remaining: b.pendingPolls,
		resolved:  resolved,
	}

	b.logger.Infof("Task %s created for %s", id, op)
	return &model.Submission{TaskID: id}, nil
}

// GetTask returns the task state, every query moves the task closer to its resolution.
func (b *Backend) GetTask(ctx context.Context, taskID string) (*model.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", taskID, model.ErrNotFound)
	}

	if t.remaining > 0 {
		t.remaining--
		taskCopy := t.task
		return &taskCopy, nil
	}

	if t.task.Status == model.TaskStatusPending {
		t.task = t.resolved
		b.logger.Infof("Task %s resolved as %s", taskID, t.task.Status)
	}

	taskCopy := t.task
	return &taskCopy, nil
}

func chatInline(prompt string) json.RawMessage {
	if !strings.HasPrefix(prompt, "/") {
		return mustJSON(map[string]string{"response": chatDefaultAnswer})
	}

	command, _ := parseCommand(prompt)
	switch command {
	case "/implement":
		return nil
	case "/help":
		return mustJSON(map[string]string{"response": chatHelp})
	default:
		return mustJSON(map[string]string{"response": fmt.Sprintf("Unknown command: %s", command)})
	}
}

func parseCommand(prompt string) (command, data string) {
	command, data, _ = strings.Cut(strings.TrimSpace(prompt), " ")
	return command, strings.TrimSpace(data)
}

// resolve computes the terminal state of a task.
func resolve(op model.Operation, prompt, image string) model.Task {
	switch op {
	case model.OperationGenerate:
		if strings.TrimSpace(prompt) == "" {
			return failed("empty prompt")
		}
		return completed(map[string]any{"text": fmt.Sprintf("Generated response for: %s", prompt)})

	case model.OperationChat:
		_, description := parseCommand(prompt)
		if description == "" {
			return failed("Proposal generation failed: empty capability description")
		}
		return completed(map[string]any{
			"success":          true,
			"original_request": description,
		})

	case model.OperationMultimodal:
		img, err := base64.StdEncoding.DecodeString(image)
		if err != nil || len(img) == 0 {
			return failed(fmt.Sprintf("invalid image: %v", imageErr(err)))
		}
		return completed(map[string]any{"caption": prompt, "image_bytes": len(img)})

	case model.OperationSteganography:
		img, err := base64.StdEncoding.DecodeString(image)
		if err != nil || len(img) == 0 {
			return failed(fmt.Sprintf("invalid image: %v", imageErr(err)))
		}
		// One message bit per image byte.
		capacity := len(img) / 8
		if len(prompt) > capacity {
			return failed(fmt.Sprintf("message too long for image: needs %d bytes, image holds %d", len(prompt), capacity))
		}
		return completed(map[string]any{
			"message_bytes":  len(prompt),
			"capacity_bytes": capacity,
			"image_bytes":    len(img),
		})

	case model.OperationSummarize:
		data := strings.TrimSpace(prompt)
		if data == "" {
			return failed("no data to summarize")
		}
		return completed(map[string]any{
			"summary": summarize(data),
			"words":   len(strings.Fields(data)),
		})
	}

	return failed(fmt.Sprintf("unsupported operation %q", op))
}

func summarize(data string) string {
	summary := data
	if i := strings.IndexAny(summary, ".!?"); i >= 0 {
		summary = summary[:i+1]
	}
	if len(summary) > maxSummaryLen {
		summary = summary[:maxSummaryLen] + "..."
	}
	return summary
}

func imageErr(err error) error {
	if err == nil {
		return fmt.Errorf("empty image")
	}
	return err
}

func completed(result any) model.Task {
	return model.Task{Status: model.TaskStatusCompleted, Result: mustJSON(result)}
}

func failed(msg string) model.Task {
	return model.Task{Status: model.TaskStatusFailed, Error: msg}
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/jobwatch/internal/backend"
	"github.com/slok/jobwatch/internal/log"
	"github.com/slok/jobwatch/internal/model"
)

// OnTerminal receives the single terminal outcome of a watched task.
type OnTerminal func(outcome model.Outcome)

// WatcherConfig is the configuration for the task watcher.
type WatcherConfig struct {
	Querier backend.StatusQuerier
	// Interval is the fixed time between status queries.
	Interval time.Duration
	// MaxConsecutiveErrors is the number of consecutive failed queries or unknown
	// statuses tolerated before giving up with a failure outcome.
	// Negative disables the limit.
	MaxConsecutiveErrors int
	// Timeout bounds the total polling time, zero polls until a terminal state.
	Timeout time.Duration
	Logger  log.Logger
}

func (c *WatcherConfig) defaults() error {
	if c.Querier == nil {
		return fmt.Errorf("status querier is required")
	}
	if c.Interval <= 0 {
		c.Interval = model.DefaultPollInterval
	}
	if c.MaxConsecutiveErrors == 0 {
		c.MaxConsecutiveErrors = model.DefaultMaxPollErrors
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout can't be negative")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "poller.Watcher"})
	return nil
}

// Watcher polls backend tasks until they reach a terminal state.
type Watcher struct {
	querier   backend.StatusQuerier
	interval  time.Duration
	maxErrors int
	timeout   time.Duration
	logger    log.Logger
}

// NewWatcher returns a new task watcher.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Watcher{
		querier:   cfg.Querier,
		interval:  cfg.Interval,
		maxErrors: cfg.MaxConsecutiveErrors,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
	}, nil
}

// Handle owns the polling of a single task.
type Handle struct {
	taskID string
	cancel context.CancelFunc
	done   chan struct{}
}

// TaskID returns the watched task identifier.
func (h *Handle) TaskID() string { return h.taskID }

// Done is closed when polling has ended and the terminal callback (if any) has returned.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until polling ends.
func (h *Handle) Wait() { <-h.done }

// Stop ends polling without a terminal callback if the task had not resolved yet,
// and waits for the polling goroutine to exit. Must not be called from the terminal callback.
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
}

// Watch starts polling the task every interval, the first query happens after one interval.
// onTerminal is called exactly once when the task completes or fails, and never if
// the context is cancelled first.
func (w *Watcher) Watch(ctx context.Context, taskID string, onTerminal OnTerminal) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		taskID: taskID,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		defer cancel()

		outcome, ok := w.poll(ctx, taskID)
		if !ok {
			return
		}
		if onTerminal != nil {
			onTerminal(outcome)
		}
	}()

	return h
}

func (w *Watcher) poll(ctx context.Context, taskID string) (model.Outcome, bool) {
	logger := w.logger.WithValues(log.Kv{"task-id": taskID})
	logger.Debugf("Watching task every %s", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if w.timeout > 0 {
		timer := time.NewTimer(w.timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	queries := 0
	unhealthy := 0
	for {
		select {
		case <-ctx.Done():
			logger.Debugf("Polling stopped before a terminal state: %s", ctx.Err())
			return model.Outcome{}, false
		case <-deadline:
			logger.Warningf("Task still not resolved after %s", w.timeout)
			return model.FailureOutcome(taskID, fmt.Sprintf("%s: task not resolved after %s", model.ErrPollingTransient, w.timeout)), true
		case <-ticker.C:
		}

		queries++
		task, err := w.querier.GetTask(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return model.Outcome{}, false
			}

			unhealthy++
			logger.Warningf("Could not query task status (%d consecutive): %s", unhealthy, err)
			if w.exhausted(unhealthy) {
				return model.FailureOutcome(taskID, fmt.Sprintf("%s: giving up after %d consecutive errors: %s", model.ErrPollingTransient, unhealthy, err)), true
			}
			continue
		}
		if task == nil {
			unhealthy++
			logger.Warningf("Empty task status answer (%d consecutive)", unhealthy)
			if w.exhausted(unhealthy) {
				return model.FailureOutcome(taskID, fmt.Sprintf("%s: giving up after %d consecutive empty status answers", model.ErrPollingTransient, unhealthy)), true
			}
			continue
		}

		switch task.Status {
		case model.TaskStatusCompleted:
			logger.Debugf("Task completed after %d queries", queries)
			return model.SuccessOutcome(taskID, task.Result), true
		case model.TaskStatusFailed:
			logger.Debugf("Task failed after %d queries", queries)
			return model.FailureOutcome(taskID, task.Error), true
		case model.TaskStatusPending:
			unhealthy = 0
		default:
			unhealthy++
			logger.Warningf("Unknown task status %q, treating it as pending (%d consecutive)", task.Status, unhealthy)
			if w.exhausted(unhealthy) {
				return model.FailureOutcome(taskID, fmt.Sprintf("%s: giving up after %d consecutive unknown statuses, last was %q", model.ErrPollingTransient, unhealthy, task.Status)), true
			}
		}
	}
}

func (w *Watcher) exhausted(unhealthy int) bool {
	return w.maxErrors > 0 && unhealthy >= w.maxErrors
}

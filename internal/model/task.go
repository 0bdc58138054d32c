package model

import (
	"encoding/json"
)

// TaskStatus represents the state of a backend task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Terminal returns true when no further status changes follow.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Known returns true for the statuses the backend defines.
func (s TaskStatus) Known() bool {
	return s == TaskStatusPending || s.Terminal()
}

// Task is a backend tracked unit of asynchronous work.
type Task struct {
	ID     string
	Status TaskStatus
	// Result is present only when the task completed.
	Result json.RawMessage
	// Error is present only when the task failed.
	Error string
}

// Submission is the backend answer to a submitted request. Exactly one of
// TaskID or Immediate is set.
type Submission struct {
	// TaskID is set when the work was deferred to a backend task.
	TaskID string
	// Immediate is set when the backend answered with the result inline.
	Immediate json.RawMessage
}

// Deferred returns true when the result must be polled.
func (s Submission) Deferred() bool { return s.TaskID != "" }

// OutcomeKind is the kind of a terminal observation.
type OutcomeKind string

const (
	OutcomeKindSuccess OutcomeKind = "success"
	OutcomeKindFailure OutcomeKind = "failure"
)

// Outcome is the resolved result of a submission.
type Outcome struct {
	Kind   OutcomeKind
	TaskID string
	Result json.RawMessage
	Error  string
}

// SuccessOutcome returns a success outcome.
func SuccessOutcome(taskID string, result json.RawMessage) Outcome {
	return Outcome{Kind: OutcomeKindSuccess, TaskID: taskID, Result: result}
}

// FailureOutcome returns a failure outcome.
func FailureOutcome(taskID string, msg string) Outcome {
	return Outcome{Kind: OutcomeKindFailure, TaskID: taskID, Error: msg}
}

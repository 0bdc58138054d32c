package lib

import (
	"encoding/json"
	"time"

	"github.com/slok/jobwatch/internal/model"
	"github.com/slok/jobwatch/internal/render"
)

// Operation identifies a backend job type.
type Operation string

const (
	// OperationGenerate generates text from a prompt.
	OperationGenerate Operation = "generate"
	// OperationChat answers a chat prompt, use [Client.NewConversation].
	OperationChat Operation = "chat"
	// OperationMultimodal runs a prompt over an image.
	OperationMultimodal Operation = "multimodal"
	// OperationSteganography hides the prompt inside an image.
	OperationSteganography Operation = "steganography"
	// OperationSummarize summarizes the prompt text.
	OperationSummarize Operation = "summarize"
)

// Status is the state of a journaled submission.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Outcome is the terminal result of a job.
type Outcome struct {
	// Success is false when the job could not be submitted or its task failed.
	Success bool
	// TaskID is empty when the job resolved without a backend task.
	TaskID string
	// Result is the raw JSON result of a successful job.
	Result json.RawMessage
	// Error is the failure message of a failed job.
	Error string
	// Text is the display form of the outcome.
	Text string
}

// Entry is a single conversation line.
type Entry struct {
	// User is true for the user prompts.
	User   bool
	TaskID string
	Text   string
}

func (e Entry) String() string {
	if e.User {
		return "You: " + e.Text
	}
	return "Bot: " + e.Text
}

// Record is a journaled submission.
type Record struct {
	ID          string
	Operation   Operation
	Prompt      string
	TaskID      string
	Status      Status
	Result      json.RawMessage
	Error       string
	SubmittedAt time.Time
	ResolvedAt  *time.Time
}

func outcomeFromModel(o model.Outcome) Outcome {
	return Outcome{
		Success: o.Kind == model.OutcomeKindSuccess,
		TaskID:  o.TaskID,
		Result:  o.Result,
		Error:   o.Error,
		Text:    render.Format(o),
	}
}

func entryFromModel(e render.Entry) Entry {
	return Entry{
		User:   e.Role == render.RoleUser,
		TaskID: e.TaskID,
		Text:   e.Text,
	}
}

func recordFromModel(r model.Record) Record {
	return Record{
		ID:          r.ID,
		Operation:   Operation(r.Operation),
		Prompt:      r.Prompt,
		TaskID:      r.TaskID,
		Status:      Status(r.Status),
		Result:      r.Result,
		Error:       r.Error,
		SubmittedAt: r.SubmittedAt,
		ResolvedAt:  r.ResolvedAt,
	}
}

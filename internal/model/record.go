package model

import (
	"encoding/json"
	"time"
)

// Record is the journal entry of a single submission.
type Record struct {
	ID        string
	Operation Operation
	Prompt    string
	// TaskID is empty for inline answers and rejected submissions.
	TaskID      string
	Status      TaskStatus
	Result      json.RawMessage
	Error       string
	SubmittedAt time.Time
	ResolvedAt  *time.Time
}

// RecordFilter filters journal listings.
type RecordFilter struct {
	Operation *Operation
	Status    *TaskStatus
	Limit     int
}

package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/jobwatch/internal/model"
)

// JSONPrinter prints journal information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type recordOutput struct {
	ID          string          `json:"id"`
	Operation   string          `json:"operation"`
	Prompt      string          `json:"prompt"`
	TaskID      string          `json:"task_id,omitempty"`
	Status      string          `json:"status"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	ResolvedAt  *time.Time      `json:"resolved_at"`
}

type messageOutput struct {
	Message string `json:"message"`
}

// PrintHistory prints journal records in JSON format.
func (j *JSONPrinter) PrintHistory(records []model.Record) error {
	items := make([]recordOutput, len(records))
	for i, r := range records {
		items[i] = recordOutput{
			ID:          r.ID,
			Operation:   string(r.Operation),
			Prompt:      r.Prompt,
			TaskID:      r.TaskID,
			Status:      string(r.Status),
			Error:       r.Error,
			SubmittedAt: r.SubmittedAt.UTC(),
		}
		// Only valid JSON can be embedded raw.
		if json.Valid(r.Result) {
			items[i].Result = r.Result
		}
		if r.ResolvedAt != nil {
			utcTime := r.ResolvedAt.UTC()
			items[i].ResolvedAt = &utcTime
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(messageOutput{Message: msg})
}

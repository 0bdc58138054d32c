package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/slok/jobwatch/internal/model"
)

// Slot is a single-slot surface, every render replaces the previous content.
type Slot struct {
	content string
	outcome *model.Outcome
	out     io.Writer
	mu      sync.Mutex
}

// NewSlot returns a new slot, if out is not nil every new content is also written to it.
func NewSlot(out io.Writer) *Slot {
	return &Slot{out: out}
}

func (s *Slot) Mode() model.SurfaceMode { return model.SurfaceModeSingleSlot }

func (s *Slot) Show(outcome model.Outcome, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.content = text
	s.outcome = &outcome
	if s.out != nil {
		if _, err := fmt.Fprintln(s.out, text); err != nil {
			return fmt.Errorf("could not write slot content: %w", err)
		}
	}
	return nil
}

// Content returns the current slot content.
func (s *Slot) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// Outcome returns the outcome of the current content, false if nothing was rendered yet.
func (s *Slot) Outcome() (model.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome == nil {
		return model.Outcome{}, false
	}
	return *s.outcome, true
}

// Role is the author of a transcript entry.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Entry is a single transcript line.
type Entry struct {
	Role Role
	// TaskID is the task the entry refers to, empty for user entries and inline answers.
	TaskID string
	Text   string
}

func (e Entry) String() string {
	if e.Role == RoleUser {
		return "You: " + e.Text
	}
	return "Bot: " + e.Text
}

// Transcript is an append-only surface, entries are never reordered or removed.
type Transcript struct {
	entries []Entry
	out     io.Writer
	mu      sync.Mutex
}

// NewTranscript returns a new transcript, if out is not nil every new entry is also written to it.
func NewTranscript(out io.Writer) *Transcript {
	return &Transcript{out: out}
}

func (t *Transcript) Mode() model.SurfaceMode { return model.SurfaceModeTranscript }

// Show appends the bot resolution of a task.
func (t *Transcript) Show(outcome model.Outcome, text string) error {
	return t.append(Entry{Role: RoleBot, TaskID: outcome.TaskID, Text: text})
}

// AppendUser appends the user prompt.
func (t *Transcript) AppendUser(prompt string) error {
	return t.append(Entry{Role: RoleUser, Text: sanitize(prompt)})
}

// AppendTaskCreated appends the bot reference to a deferred task.
func (t *Transcript) AppendTaskCreated(taskID string) error {
	return t.append(Entry{Role: RoleBot, TaskID: taskID, Text: sanitize("Task created with ID: " + taskID)})
}

// Entries returns a copy of the transcript entries in order.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := make([]Entry, len(t.entries))
	copy(entries, t.entries)
	return entries
}

func (t *Transcript) append(e Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, e)
	if t.out != nil {
		if _, err := fmt.Fprintln(t.out, e.String()); err != nil {
			return fmt.Errorf("could not write transcript entry: %w", err)
		}
	}
	return nil
}

package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/slok/jobwatch/internal/model"
)

// Surface is where resolved outcomes are displayed.
type Surface interface {
	// Mode returns how the surface keeps rendered outcomes.
	Mode() model.SurfaceMode
	// Show displays an already formatted outcome.
	Show(outcome model.Outcome, text string) error
}

// Render formats the outcome and shows it on the surface.
func Render(s Surface, outcome model.Outcome) error {
	if err := s.Show(outcome, Format(outcome)); err != nil {
		return fmt.Errorf("could not render %s outcome: %w", outcome.Kind, err)
	}
	return nil
}

// Format returns the display text of an outcome: pretty printed JSON for
// successes and an "Error: <message>" line for failures.
func Format(outcome model.Outcome) string {
	if outcome.Kind == model.OutcomeKindFailure {
		return sanitize("Error: " + outcome.Error)
	}
	return sanitize(prettyJSON(outcome.Result))
}

func prettyJSON(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "null"
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// sanitize escapes control characters so backend content can't drive the terminal.
func sanitize(s string) string {
	if strings.IndexFunc(s, isUnsafe) < 0 {
		return s
	}

	var sb strings.Builder
	for _, r := range s {
		if isUnsafe(r) {
			fmt.Fprintf(&sb, "\\u%04x", r)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func isUnsafe(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t'
}

package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/slok/jobwatch/internal/model"
)

const maxPromptWidth = 40

// TablePrinter prints journal information in a table format.
type TablePrinter struct {
	writer io.Writer
	now    func() time.Time
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w, now: time.Now}
}

// PrintHistory prints journal records in a table format.
func (t *TablePrinter) PrintHistory(records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tOPERATION\tTASK\tSTATUS\tSUBMITTED\tTOOK\tPROMPT")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Operation,
			orDash(r.TaskID),
			r.Status,
			TimeAgo(r.SubmittedAt, t.now()),
			took(r),
			truncate(r.Prompt, maxPromptWidth),
		)
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func took(r model.Record) string {
	if r.ResolvedAt == nil {
		return "-"
	}
	return FormatDuration(r.ResolvedAt.Sub(r.SubmittedAt))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate cuts s to max runes on a single line.
func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

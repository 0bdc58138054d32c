package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/jobwatch/internal/app/history"
	"github.com/slok/jobwatch/internal/model"
	"github.com/slok/jobwatch/internal/printer"
)

type HistoryCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	operation string
	status    string
	limit     int
	format    string
}

// NewHistoryCommand returns the history command.
func NewHistoryCommand(rootCmd *RootCommand, app *kingpin.Application) *HistoryCommand {
	c := &HistoryCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("history", "List the journaled submissions, newest first.")
	c.Cmd.Flag("operation", "Filter by operation (generate, chat, multimodal, steganography, summarize).").StringVar(&c.operation)
	c.Cmd.Flag("status", "Filter by status (pending, completed, failed).").StringVar(&c.status)
	c.Cmd.Flag("limit", "Maximum number of submissions, 0 lists all of them.").Default("20").IntVar(&c.limit)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c HistoryCommand) Name() string { return c.Cmd.FullCommand() }

func (c HistoryCommand) Run(ctx context.Context) error {
	req := history.Request{Limit: c.limit}
	if c.operation != "" {
		op := model.Operation(strings.ToLower(c.operation))
		req.OperationFilter = &op
	}
	if c.status != "" {
		status := model.TaskStatus(strings.ToLower(c.status))
		req.StatusFilter = &status
	}

	repo, closeFn, err := c.rootCmd.Journal(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	svc, err := history.NewService(history.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	records, err := svc.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("could not list history: %w", err)
	}

	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if len(records) == 0 && c.format != "json" {
		return p.PrintMessage("No submissions found.")
	}

	if err := p.PrintHistory(records); err != nil {
		return fmt.Errorf("could not print history: %w", err)
	}

	return nil
}

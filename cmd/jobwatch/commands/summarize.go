package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/jobwatch/internal/app/dispatch"
	"github.com/slok/jobwatch/internal/model"
)

type SummarizeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	data string
}

// NewSummarizeCommand returns the summarize command.
func NewSummarizeCommand(rootCmd *RootCommand, app *kingpin.Application) *SummarizeCommand {
	c := &SummarizeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("summarize", "Summarize a text.")
	c.Cmd.Arg("data", "The text to summarize, '-' reads it from stdin.").Required().StringVar(&c.data)

	return c
}

func (c SummarizeCommand) Name() string { return c.Cmd.FullCommand() }

func (c SummarizeCommand) Run(ctx context.Context) error {
	data := c.data
	if data == "-" {
		b, err := io.ReadAll(c.rootCmd.Stdin)
		if err != nil {
			return fmt.Errorf("could not read stdin: %w", err)
		}
		data = string(b)
	}

	return c.rootCmd.RunSingleSlot(ctx, dispatch.Request{
		Operation: model.OperationSummarize,
		Prompt:    data,
	})
}

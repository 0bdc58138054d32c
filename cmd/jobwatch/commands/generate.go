package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/jobwatch/internal/app/dispatch"
	"github.com/slok/jobwatch/internal/model"
)

type GenerateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	prompt string
}

// NewGenerateCommand returns the generate command.
func NewGenerateCommand(rootCmd *RootCommand, app *kingpin.Application) *GenerateCommand {
	c := &GenerateCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("generate", "Generate text from a prompt.")
	c.Cmd.Arg("prompt", "The prompt to generate from.").Required().StringVar(&c.prompt)

	return c
}

func (c GenerateCommand) Name() string { return c.Cmd.FullCommand() }

func (c GenerateCommand) Run(ctx context.Context) error {
	return c.rootCmd.RunSingleSlot(ctx, dispatch.Request{
		Operation: model.OperationGenerate,
		Prompt:    c.prompt,
	})
}

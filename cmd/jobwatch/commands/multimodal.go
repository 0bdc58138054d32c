package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/jobwatch/internal/app/dispatch"
	"github.com/slok/jobwatch/internal/model"
)

type MultimodalCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	prompt    string
	imagePath string
}

// NewMultimodalCommand returns the multimodal command.
func NewMultimodalCommand(rootCmd *RootCommand, app *kingpin.Application) *MultimodalCommand {
	c := &MultimodalCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("multimodal", "Run a prompt over an image.")
	c.Cmd.Arg("prompt", "The prompt about the image.").Required().StringVar(&c.prompt)
	c.Cmd.Flag("image", "Path to the image file.").Short('i').Required().StringVar(&c.imagePath)

	return c
}

func (c MultimodalCommand) Name() string { return c.Cmd.FullCommand() }

func (c MultimodalCommand) Run(ctx context.Context) error {
	path, err := rootFSPath(c.imagePath)
	if err != nil {
		return err
	}

	return c.rootCmd.RunSingleSlot(ctx, dispatch.Request{
		Operation: model.OperationMultimodal,
		Prompt:    c.prompt,
		ImagePath: path,
	})
}

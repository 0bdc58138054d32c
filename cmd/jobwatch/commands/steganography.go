package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/jobwatch/internal/app/dispatch"
	"github.com/slok/jobwatch/internal/model"
)

type SteganographyCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	message   string
	imagePath string
}

// NewSteganographyCommand returns the steganography command.
func NewSteganographyCommand(rootCmd *RootCommand, app *kingpin.Application) *SteganographyCommand {
	c := &SteganographyCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("steganography", "Hide a message inside an image.")
	c.Cmd.Arg("message", "The message to hide.").Required().StringVar(&c.message)
	c.Cmd.Flag("image", "Path to the cover image file.").Short('i').Required().StringVar(&c.imagePath)

	return c
}

func (c SteganographyCommand) Name() string { return c.Cmd.FullCommand() }

func (c SteganographyCommand) Run(ctx context.Context) error {
	path, err := rootFSPath(c.imagePath)
	if err != nil {
		return err
	}

	return c.rootCmd.RunSingleSlot(ctx, dispatch.Request{
		Operation: model.OperationSteganography,
		Prompt:    c.message,
		ImagePath: path,
	})
}

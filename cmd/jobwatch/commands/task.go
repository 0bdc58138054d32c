package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/jobwatch/internal/render"
)

type TaskCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
}

// NewTaskCommand returns the task command.
func NewTaskCommand(rootCmd *RootCommand, app *kingpin.Application) *TaskCommand {
	c := &TaskCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("task", "Wait for an already submitted task and print its outcome.")
	c.Cmd.Arg("task-id", "The backend task ID.").Required().StringVar(&c.taskID)

	return c
}

func (c TaskCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskCommand) Run(ctx context.Context) error {
	svc, closeFn, err := c.rootCmd.DispatchService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	slot := render.NewSlot(c.rootCmd.Stdout)
	h, err := svc.Follow(ctx, c.taskID, slot)
	if err != nil {
		return err
	}
	h.Wait()

	return slotErr(ctx, slot)
}

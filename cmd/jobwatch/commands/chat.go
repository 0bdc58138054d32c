package commands

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/jobwatch/internal/app/dispatch"
	"github.com/slok/jobwatch/internal/model"
	"github.com/slok/jobwatch/internal/poller"
	"github.com/slok/jobwatch/internal/render"
)

type ChatCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewChatCommand returns the chat command.
func NewChatCommand(rootCmd *RootCommand, app *kingpin.Application) *ChatCommand {
	c := &ChatCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("chat", "Chat with the backend, one prompt per stdin line. Waits for every pending answer at EOF.")

	return c
}

func (c ChatCommand) Name() string { return c.Cmd.FullCommand() }

func (c ChatCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	svc, closeFn, err := c.rootCmd.DispatchService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	transcript := render.NewTranscript(c.rootCmd.Stdout)

	// Stdin reads can't be cancelled, read them apart so a signal still ends the chat.
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.rootCmd.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	var handles []*poller.Handle
	defer func() {
		for _, h := range handles {
			h.Wait()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("could not read prompts: %w", err)
					}
				default:
				}
				if len(handles) > 0 {
					logger.Infof("Waiting for %d pending answers", len(handles))
				}
				return nil
			}

			prompt := strings.TrimSpace(line)
			if prompt == "" {
				continue
			}

			h, err := svc.Run(ctx, dispatch.Request{
				Operation: model.OperationChat,
				Prompt:    prompt,
				Surface:   transcript,
			})
			if err != nil {
				return err
			}
			if h != nil {
				handles = append(handles, h)
			}
		}
	}
}

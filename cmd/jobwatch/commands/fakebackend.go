package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"

	"github.com/slok/jobwatch/internal/backend/fake"
)

type FakeBackendCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	listen       string
	pendingPolls int
}

// NewFakeBackendCommand returns the fake backend command.
func NewFakeBackendCommand(rootCmd *RootCommand, app *kingpin.Application) *FakeBackendCommand {
	c := &FakeBackendCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("fake-backend", "Serve an in-memory job backend for local testing.")
	c.Cmd.Flag("listen", "Address to listen on.").Default(":8080").StringVar(&c.listen)
	c.Cmd.Flag("pending-polls", "Status queries a task stays pending for, negative resolves on the first query.").Default(fmt.Sprint(fake.DefaultPendingPolls)).IntVar(&c.pendingPolls)

	return c
}

func (c FakeBackendCommand) Name() string { return c.Cmd.FullCommand() }

func (c FakeBackendCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	b, err := fake.NewBackend(fake.BackendConfig{
		PendingPolls: c.pendingPolls,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("could not create fake backend: %w", err)
	}

	server := &http.Server{
		Addr:              c.listen,
		Handler:           fake.NewHandler(b, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var g run.Group

	// HTTP server.
	{
		g.Add(
			func() error {
				logger.Infof("Fake backend listening on %s", c.listen)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("could not serve: %w", err)
				}
				return nil
			},
			func(_ error) {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(ctx); err != nil {
					logger.Warningf("Could not shut down server gracefully: %s", err)
				}
			},
		)
	}

	// Parent context.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				<-ctx.Done()
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

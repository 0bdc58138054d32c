package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/jobwatch/internal/app/dispatch"
	"github.com/slok/jobwatch/internal/backend/api"
	"github.com/slok/jobwatch/internal/conventions"
	"github.com/slok/jobwatch/internal/encode"
	"github.com/slok/jobwatch/internal/log"
	"github.com/slok/jobwatch/internal/model"
	"github.com/slok/jobwatch/internal/poller"
	"github.com/slok/jobwatch/internal/render"
	"github.com/slok/jobwatch/internal/storage"
	storageio "github.com/slok/jobwatch/internal/storage/io"
	"github.com/slok/jobwatch/internal/storage/memory"
	"github.com/slok/jobwatch/internal/storage/sqlite"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug         bool
	NoLog         bool
	NoColor       bool
	LoggerType    string
	ConfigPath    string
	BackendURL    string
	PollInterval  time.Duration
	MaxPollErrors int
	PollTimeout   time.Duration
	DBPath        string
	NoJournal     bool

	// Envar values don't mark flags as set by the user, so values that
	// differ from the defaults are also considered explicit.
	defaultConfigPath string
	configSet         bool
	backendURLSet     bool
	pollIntervalSet   bool
	maxPollErrorsSet  bool
	pollTimeoutSet    bool

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	dataDir := filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir)
	c.defaultConfigPath = conventions.ConfigPath(dataDir)
	app.Flag("config", "Path to the client configuration YAML file.").Default(c.defaultConfigPath).IsSetByUser(&c.configSet).StringVar(&c.ConfigPath)
	app.Flag("backend-url", "Base URL of the job backend.").Default(model.DefaultBackendURL).IsSetByUser(&c.backendURLSet).StringVar(&c.BackendURL)
	app.Flag("poll-interval", "Time between task status queries.").Default(model.DefaultPollInterval.String()).IsSetByUser(&c.pollIntervalSet).DurationVar(&c.PollInterval)
	app.Flag("max-poll-errors", "Consecutive failed status queries before giving up, negative never gives up.").Default(fmt.Sprint(model.DefaultMaxPollErrors)).IsSetByUser(&c.maxPollErrorsSet).IntVar(&c.MaxPollErrors)
	app.Flag("poll-timeout", "Maximum time a task is polled, 0 polls until the task resolves.").Default("0s").IsSetByUser(&c.pollTimeoutSet).DurationVar(&c.PollTimeout)
	app.Flag("db-path", "Path to the SQLite journal file.").Default(conventions.JournalPath(dataDir)).StringVar(&c.DBPath)
	app.Flag("no-journal", "Don't record submissions on the journal.").BoolVar(&c.NoJournal)

	return c
}

// ClientConfig returns the client configuration: defaults, then the YAML config file and
// finally the flags explicitly set by the user.
func (r *RootCommand) ClientConfig(ctx context.Context) (model.ClientConfig, error) {
	cfg := model.DefaultClientConfig()

	if r.ConfigPath != "" {
		path, err := rootFSPath(r.ConfigPath)
		if err != nil {
			return cfg, err
		}

		fileCfg, err := storageio.NewConfigYAMLRepository(os.DirFS("/")).GetConfig(ctx, path)
		switch {
		case err == nil:
			cfg = fileCfg
		case errors.Is(err, fs.ErrNotExist) && !r.configSet && r.ConfigPath == r.defaultConfigPath:
			// Default config file is optional.
		default:
			return cfg, fmt.Errorf("could not load config %q: %w", r.ConfigPath, err)
		}
	}

	if r.backendURLSet || r.BackendURL != model.DefaultBackendURL {
		cfg.BackendURL = r.BackendURL
	}
	if r.pollIntervalSet || r.PollInterval != model.DefaultPollInterval {
		if r.PollInterval <= 0 {
			return cfg, fmt.Errorf("poll interval must be positive")
		}
		cfg.PollInterval = r.PollInterval
	}
	if r.maxPollErrorsSet || r.MaxPollErrors != model.DefaultMaxPollErrors {
		if r.MaxPollErrors == 0 {
			return cfg, fmt.Errorf("max poll errors can't be 0, use a negative value to disable the limit")
		}
		cfg.MaxPollErrors = r.MaxPollErrors
	}
	if r.pollTimeoutSet || r.PollTimeout != 0 {
		if r.PollTimeout < 0 {
			return cfg, fmt.Errorf("poll timeout can't be negative")
		}
		cfg.PollTimeout = r.PollTimeout
	}

	return cfg, nil
}

// Journal returns the submissions journal and its cleanup function.
func (r *RootCommand) Journal(ctx context.Context) (storage.Repository, func(), error) {
	if r.NoJournal {
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: r.Logger})
		if err != nil {
			return nil, nil, fmt.Errorf("could not create memory journal: %w", err)
		}
		return repo, func() {}, nil
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: r.DBPath,
		Logger: r.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create repository: %w", err)
	}

	return repo, func() {
		if err := repo.Close(); err != nil {
			r.Logger.Warningf("Could not close journal: %s", err)
		}
	}, nil
}

// DispatchService returns a dispatch service wired to the configured backend and journal.
func (r *RootCommand) DispatchService(ctx context.Context) (*dispatch.Service, func(), error) {
	cfg, err := r.ClientConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	r.Logger.Debugf("Using backend %s, polling every %s", cfg.BackendURL, cfg.PollInterval)

	client, err := api.NewClient(api.ClientConfig{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.HTTPTimeout,
		Logger:  r.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create backend client: %w", err)
	}

	watcher, err := poller.NewWatcher(poller.WatcherConfig{
		Querier:              client,
		Interval:             cfg.PollInterval,
		MaxConsecutiveErrors: cfg.MaxPollErrors,
		Timeout:              cfg.PollTimeout,
		Logger:               r.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create watcher: %w", err)
	}

	repo, closeRepo, err := r.Journal(ctx)
	if err != nil {
		return nil, nil, err
	}

	svc, err := dispatch.NewService(dispatch.ServiceConfig{
		Submitter:  client,
		Watcher:    watcher,
		Encoder:    encode.NewBase64Encoder(os.DirFS("/")),
		Repository: repo,
		Logger:     r.Logger,
	})
	if err != nil {
		closeRepo()
		return nil, nil, fmt.Errorf("could not create service: %w", err)
	}

	return svc, closeRepo, nil
}

// RunSingleSlot dispatches a single slot request and waits until its outcome is
// printed on stdout. Failed outcomes are returned as errors.
func (r *RootCommand) RunSingleSlot(ctx context.Context, req dispatch.Request) error {
	svc, closeFn, err := r.DispatchService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	slot := render.NewSlot(r.Stdout)
	req.Surface = slot

	h, err := svc.Run(ctx, req)
	if err != nil {
		return err
	}
	if h != nil {
		r.Logger.Infof("Waiting for task %s", h.TaskID())
		h.Wait()
	}

	return slotErr(ctx, slot)
}

func slotErr(ctx context.Context, slot *render.Slot) error {
	outcome, ok := slot.Outcome()
	if !ok {
		if ctx.Err() != nil {
			return fmt.Errorf("stopped before the task resolved: %w", ctx.Err())
		}
		return fmt.Errorf("no outcome was rendered")
	}
	if outcome.Kind == model.OutcomeKindFailure {
		return model.ErrTaskFailure
	}
	return nil
}

// rootFSPath converts a host path into a path of the root filesystem.
func rootFSPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("could not resolve %q: %w", path, err)
	}
	return strings.TrimPrefix(filepath.ToSlash(abs), "/"), nil
}

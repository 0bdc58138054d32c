package model

import "time"

// ClientConfig is the configuration used to talk with the job backend.
type ClientConfig struct {
	BackendURL string
	// PollInterval is the time between status queries.
	PollInterval time.Duration
	// MaxPollErrors is the number of consecutive unhealthy observations before
	// the poller gives up. Negative disables the limit.
	MaxPollErrors int
	// PollTimeout bounds the total polling time of a task, zero means no bound.
	PollTimeout time.Duration
	// HTTPTimeout bounds every single HTTP call.
	HTTPTimeout time.Duration
}

const (
	DefaultBackendURL    = "http://localhost:8080"
	DefaultPollInterval  = 2 * time.Second
	DefaultMaxPollErrors = 5
	DefaultHTTPTimeout   = 30 * time.Second
)

// DefaultClientConfig returns the client configuration defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BackendURL:    DefaultBackendURL,
		PollInterval:  DefaultPollInterval,
		MaxPollErrors: DefaultMaxPollErrors,
		HTTPTimeout:   DefaultHTTPTimeout,
	}
}

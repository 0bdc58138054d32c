package io

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/jobwatch/internal/model"
)

// ConfigYAMLRepository loads client configuration from YAML files.
type ConfigYAMLRepository struct {
	fs fs.FS
}

// NewConfigYAMLRepository creates a new YAML config repository.
func NewConfigYAMLRepository(filesystem fs.FS) *ConfigYAMLRepository {
	return &ConfigYAMLRepository{fs: filesystem}
}

// GetConfig loads a client configuration from a YAML file, missing values use the defaults.
func (r *ConfigYAMLRepository) GetConfig(ctx context.Context, path string) (model.ClientConfig, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.ClientConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.ClientConfig{}, ctx.Err()
	}

	var cfg ClientConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.ClientConfig{}, fmt.Errorf("parsing YAML: %w", err)
	}

	m, err := cfg.toModel()
	if err != nil {
		return model.ClientConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return m, nil
}

// ClientConfig represents the YAML structure for the client configuration.
type ClientConfig struct {
	BackendURL  string     `yaml:"backend_url"`
	HTTPTimeout string     `yaml:"http_timeout"`
	Poll        PollConfig `yaml:"poll"`
}

// PollConfig represents the YAML structure for the polling configuration.
type PollConfig struct {
	Interval  string `yaml:"interval"`
	MaxErrors *int   `yaml:"max_errors"`
	Timeout   string `yaml:"timeout"`
}

func (c ClientConfig) toModel() (model.ClientConfig, error) {
	m := model.DefaultClientConfig()

	if c.BackendURL != "" {
		u, err := url.Parse(c.BackendURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return m, fmt.Errorf("backend_url %q must be an absolute URL", c.BackendURL)
		}
		m.BackendURL = c.BackendURL
	}

	var err error
	if m.HTTPTimeout, err = parsePositiveDuration("http_timeout", c.HTTPTimeout, m.HTTPTimeout); err != nil {
		return m, err
	}
	if m.PollInterval, err = parsePositiveDuration("poll.interval", c.Poll.Interval, m.PollInterval); err != nil {
		return m, err
	}

	if c.Poll.Timeout != "" {
		d, err := time.ParseDuration(c.Poll.Timeout)
		if err != nil {
			return m, fmt.Errorf("poll.timeout: %w", err)
		}
		if d < 0 {
			return m, fmt.Errorf("poll.timeout can't be negative")
		}
		m.PollTimeout = d
	}

	if c.Poll.MaxErrors != nil {
		if *c.Poll.MaxErrors == 0 {
			return m, fmt.Errorf("poll.max_errors can't be 0, use a negative value to disable the limit")
		}
		m.MaxPollErrors = *c.Poll.MaxErrors
	}

	return m, nil
}

func parsePositiveDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", field)
	}
	return d, nil
}

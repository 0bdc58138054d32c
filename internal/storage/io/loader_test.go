package io

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/jobwatch/internal/model"
)

func TestConfigYAMLRepository_GetConfig(t *testing.T) {
	tests := map[string]struct {
		fs     fstest.MapFS
		path   string
		expCfg model.ClientConfig
		expErr bool
		errMsg string
	}{
		"Full config should load successfully": {
			fs: fstest.MapFS{
				"jobwatch.yaml": &fstest.MapFile{
					Data: []byte(`backend_url: https://jobs.example.com/api
http_timeout: 10s
poll:
  interval: 500ms
  max_errors: -1
  timeout: 5m
`),
				},
			},
			path: "jobwatch.yaml",
			expCfg: model.ClientConfig{
				BackendURL:    "https://jobs.example.com/api",
				PollInterval:  500 * time.Millisecond,
				MaxPollErrors: -1,
				PollTimeout:   5 * time.Minute,
				HTTPTimeout:   10 * time.Second,
			},
		},
		"Empty config should load the defaults": {
			fs: fstest.MapFS{
				"empty.yaml": &fstest.MapFile{
					Data: []byte(`---
`),
				},
			},
			path:   "empty.yaml",
			expCfg: model.DefaultClientConfig(),
		},
		"Partial config should keep the defaults for missing values": {
			fs: fstest.MapFS{
				"jobwatch.yaml": &fstest.MapFile{
					Data: []byte(`poll:
  interval: 1s
`),
				},
			},
			path: "jobwatch.yaml",
			expCfg: model.ClientConfig{
				BackendURL:    model.DefaultBackendURL,
				PollInterval:  time.Second,
				MaxPollErrors: model.DefaultMaxPollErrors,
				HTTPTimeout:   model.DefaultHTTPTimeout,
			},
		},
		"Missing file should fail": {
			fs:     fstest.MapFS{},
			path:   "missing.yaml",
			expErr: true,
			errMsg: "reading config file",
		},
		"Invalid YAML should fail": {
			fs: fstest.MapFS{
				"bad.yaml": &fstest.MapFile{Data: []byte(`poll: [`)},
			},
			path:   "bad.yaml",
			expErr: true,
			errMsg: "parsing YAML",
		},
		"Relative backend URL should fail": {
			fs: fstest.MapFS{
				"jobwatch.yaml": &fstest.MapFile{Data: []byte(`backend_url: localhost:8080/api`)},
			},
			path:   "jobwatch.yaml",
			expErr: true,
			errMsg: "backend_url",
		},
		"Zero poll interval should fail": {
			fs: fstest.MapFS{
				"jobwatch.yaml": &fstest.MapFile{Data: []byte("poll:\n  interval: 0s\n")},
			},
			path:   "jobwatch.yaml",
			expErr: true,
			errMsg: "poll.interval must be positive",
		},
		"Zero max errors should fail": {
			fs: fstest.MapFS{
				"jobwatch.yaml": &fstest.MapFile{Data: []byte("poll:\n  max_errors: 0\n")},
			},
			path:   "jobwatch.yaml",
			expErr: true,
			errMsg: "poll.max_errors",
		},
		"Invalid timeout should fail": {
			fs: fstest.MapFS{
				"jobwatch.yaml": &fstest.MapFile{Data: []byte("poll:\n  timeout: soon\n")},
			},
			path:   "jobwatch.yaml",
			expErr: true,
			errMsg: "poll.timeout",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo := NewConfigYAMLRepository(test.fs)
			cfg, err := repo.GetConfig(context.Background(), test.path)

			if test.expErr {
				require.Error(err)
				assert.Contains(err.Error(), test.errMsg)
				return
			}
			require.NoError(err)
			assert.Equal(test.expCfg, cfg)
		})
	}
}

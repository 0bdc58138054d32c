package encode_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/jobwatch/internal/encode"
	"github.com/slok/jobwatch/internal/model"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestBase64EncoderEncode(t *testing.T) {
	tests := map[string]struct {
		ctx    func() context.Context
		input  io.Reader
		exp    string
		expErr bool
	}{
		"Binary input should be encoded as plain base64.": {
			ctx:   context.Background,
			input: strings.NewReader("\x89PNG\r\n"),
			exp:   "iVBORw0K",
		},
		"Empty input should be encoded as an empty string.": {
			ctx:   context.Background,
			input: strings.NewReader(""),
			exp:   "",
		},
		"Missing input should fail.": {
			ctx:    context.Background,
			input:  nil,
			expErr: true,
		},
		"Read errors should fail.": {
			ctx:    context.Background,
			input:  failingReader{},
			expErr: true,
		},
		"A cancelled context should fail.": {
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			input:  strings.NewReader("data"),
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			e := encode.NewBase64Encoder(nil)
			got, err := e.Encode(test.ctx(), test.input)

			if test.expErr {
				assert.Error(err)
				assert.ErrorIs(err, model.ErrEncoding)
			} else if assert.NoError(err) {
				assert.Equal(test.exp, got)
				assert.NotContains(got, "data:")
			}
		})
	}
}

func TestBase64EncoderEncodeFile(t *testing.T) {
	tests := map[string]struct {
		path   string
		exp    string
		expErr bool
	}{
		"An existing file should be encoded.": {
			path: "cat.png",
			exp:  "Y2F0",
		},
		"A missing file should fail with an encoding error.": {
			path:   "dog.png",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			e := encode.NewBase64Encoder(fstest.MapFS{
				"cat.png": &fstest.MapFile{Data: []byte("cat")},
			})
			got, err := e.EncodeFile(context.Background(), test.path)

			if test.expErr {
				require.Error(err)
				require.ErrorIs(err, model.ErrEncoding)
			} else {
				require.NoError(err)
				require.Equal(test.exp, got)
			}
		})
	}
}

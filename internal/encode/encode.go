package encode

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/slok/jobwatch/internal/model"
)

// Encoder converts binary user input into a transport safe string.
type Encoder interface {
	Encode(ctx context.Context, r io.Reader) (string, error)
	EncodeFile(ctx context.Context, path string) (string, error)
}

// Base64Encoder encodes binary input as standard base64 without any data URI prefix.
type Base64Encoder struct {
	fs fs.FS
}

// NewBase64Encoder returns a new base64 encoder, the filesystem is used to read files by path.
func NewBase64Encoder(filesystem fs.FS) *Base64Encoder {
	return &Base64Encoder{fs: filesystem}
}

// Encode reads r until EOF and returns its base64 representation.
func (e *Base64Encoder) Encode(ctx context.Context, r io.Reader) (string, error) {
	if r == nil {
		return "", fmt.Errorf("missing input: %w", model.ErrEncoding)
	}

	var sb strings.Builder
	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	if _, err := io.Copy(enc, contextReader{ctx: ctx, r: r}); err != nil {
		return "", fmt.Errorf("could not read input: %w: %w", model.ErrEncoding, err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("could not flush encoder: %w: %w", model.ErrEncoding, err)
	}

	return sb.String(), nil
}

// EncodeFile encodes the file at path.
func (e *Base64Encoder) EncodeFile(ctx context.Context, path string) (string, error) {
	if e.fs == nil {
		return "", fmt.Errorf("no filesystem to read %q from: %w", path, model.ErrEncoding)
	}

	f, err := e.fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("could not open %q: %w: %w", path, model.ErrEncoding, err)
	}
	defer f.Close()

	return e.Encode(ctx, f)
}

// contextReader stops reading as soon as the context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

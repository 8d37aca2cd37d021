package transport

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tjfontaine/polyglot-fetch/internal/core/domain"
	"github.com/tjfontaine/polyglot-fetch/internal/core/ports"
)

// File serves file:// URLs from the local filesystem. Envelopes carry
// FileMetadata, which is not HTTP metadata.
type File struct {
	root string
}

// NewFile creates a file transport. When root is non-empty, paths are
// resolved inside it and may not escape it.
func NewFile(root string) *File {
	return &File{root: root}
}

// Send implements ports.Transport.
func (f *File) Send(ctx context.Context, req *http.Request, done func(domain.Envelope)) {
	go func() {
		done(f.read(ctx, req))
	}()
}

func (f *File) read(ctx context.Context, req *http.Request) domain.Envelope {
	if err := ctx.Err(); err != nil {
		return domain.Envelope{Err: err}
	}
	if req.Method != http.MethodGet && req.Method != "" {
		return domain.Envelope{Err: fmt.Errorf("method %s not supported for file URLs", req.Method)}
	}

	path, err := f.resolve(req.URL.Path)
	if err != nil {
		return domain.Envelope{Err: err}
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.Envelope{Err: fmt.Errorf("stat %s: %w", path, err)}
	}
	if info.IsDir() {
		return domain.Envelope{Err: fmt.Errorf("%s is a directory", path)}
	}

	meta := &domain.FileMetadata{Path: path, Size: info.Size(), ModTime: info.ModTime()}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Envelope{Metadata: meta, Err: fmt.Errorf("read %s: %w", path, err)}
	}
	return domain.Envelope{Body: data, Metadata: meta}
}

func (f *File) resolve(path string) (string, error) {
	if f.root == "" {
		return filepath.Clean(filepath.FromSlash(path)), nil
	}
	rel, err := filepath.Rel("/", filepath.Clean("/"+path))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return filepath.Join(f.root, rel), nil
}

// Ensure File implements the interface.
var _ ports.Transport = (*File)(nil)

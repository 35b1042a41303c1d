package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
)

const (
	DefaultURLPrefix = "/documents/"
	defaultMaxBytes  = 64 << 20
)

// Source is an opened document.
type Source interface {
	io.ReaderAt
	io.Closer
	Size() int64
}

// Resolver turns references into readable sources.
type Resolver struct {
	Dir       string
	URLPrefix string
	Client    *http.Client
	MaxBytes  int64
}

// NewResolver serves local references from dir.
func NewResolver(dir string) *Resolver {
	return &Resolver{Dir: dir, URLPrefix: DefaultURLPrefix, Client: http.DefaultClient, MaxBytes: defaultMaxBytes}
}

// Name returns the slash-separated path of a local reference relative to
// the documents directory.
func (r *Resolver) Name(ref Ref) (string, error) {
	s := strings.TrimSpace(string(ref))
	if s == "" || ref.Remote() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}
	if u, err := url.PathUnescape(s); err == nil {
		s = u
	}
	prefix := r.prefix()
	switch {
	case strings.HasPrefix(s, prefix):
		s = strings.TrimPrefix(s, prefix)
	default:
		s = strings.TrimPrefix(s, "/")
	}
	name := path.Clean(s)
	if name == "." || !fs.ValidPath(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, string(ref))
	}
	return name, nil
}

// Href is the URL the browser uses to fetch ref.
func (r *Resolver) Href(ref Ref) string {
	if ref.Remote() {
		return string(ref)
	}
	name, err := r.Name(ref)
	if err != nil {
		return ""
	}
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return r.prefix() + strings.Join(parts, "/")
}

// RefFor builds the local reference for a name relative to the directory.
func (r *Resolver) RefFor(name string) Ref {
	return Ref(r.prefix() + name)
}

func (r *Resolver) prefix() string {
	if r.URLPrefix == "" {
		return DefaultURLPrefix
	}
	return r.URLPrefix
}

// Open opens ref for reading.
func (r *Resolver) Open(ctx context.Context, ref Ref) (Source, error) {
	if ref.Remote() {
		return r.fetch(ctx, ref)
	}
	name, err := r.Name(ref)
	if err != nil {
		return nil, err
	}
	root, err := os.OpenRoot(r.Dir)
	if err != nil {
		return nil, fmt.Errorf("open documents dir: %w", err)
	}
	defer root.Close()

	f, err := root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, ref, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", ref, err)
	}
	if st.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, ref)
	}
	return &fileSource{File: f, size: st.Size()}, nil
}

func (r *Resolver) fetch(ctx context.Context, ref Ref) (Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(ref), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRef, err)
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case resp.StatusCode/100 != 2:
		return nil, fmt.Errorf("%w: %s: status %d", ErrUnreadable, ref, resp.StatusCode)
	}

	limit := r.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrUnreadable, ref, limit)
	}
	return &memSource{Reader: bytes.NewReader(data)}, nil
}

type fileSource struct {
	*os.File
	size int64
}

func (s *fileSource) Size() int64 { return s.size }

type memSource struct {
	*bytes.Reader
}

func (s *memSource) Close() error { return nil }

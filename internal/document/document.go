// Package document is the boundary to paginated documents. It resolves
// references and asks the PDF library for a page count; painting pages is
// left to the client-side renderer.
package document

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrInvalidRef is returned for an empty or malformed reference.
	ErrInvalidRef = errors.New("document: invalid reference")
	// ErrNotFound is returned when the referenced document does not exist.
	ErrNotFound = errors.New("document: not found")
	// ErrUnreadable is returned when the document exists but cannot be parsed.
	ErrUnreadable = errors.New("document: unreadable")
)

// Ref is an opaque locator: a path under the documents directory or an
// http(s) URL.
type Ref string

// Remote reports whether the reference points at another origin.
func (r Ref) Remote() bool {
	s := strings.ToLower(string(r))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (r Ref) String() string { return string(r) }

// Info describes a loaded document.
type Info struct {
	Ref   Ref
	Pages int
	Size  int64
}

// Loader loads a document far enough to know its page count.
type Loader interface {
	Load(ctx context.Context, ref Ref) (Info, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, ref Ref) (Info, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, ref Ref) (Info, error) {
	return f(ctx, ref)
}

package document

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

const DefaultGlob = "**/*.pdf"

// Entry is one document found in the documents directory.
type Entry struct {
	Name string
	Ref  Ref
	Size int64
	Info Info
	Err  error
}

// Catalog lists documents under a resolver's directory.
type Catalog struct {
	Resolver *Resolver
	Pattern  string
}

// List globs the directory and loads every match through loader. Load
// failures are reported per entry rather than aborting the listing.
func (c *Catalog) List(ctx context.Context, loader Loader) ([]Entry, error) {
	pattern := c.Pattern
	if pattern == "" {
		pattern = DefaultGlob
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid documents glob %q", pattern)
	}
	fsys := os.DirFS(c.Resolver.Dir)
	names, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return entries, err
		}
		e := Entry{Name: name, Ref: c.Resolver.RefFor(name)}
		if st, err := fs.Stat(fsys, name); err == nil {
			e.Size = st.Size()
		}
		if loader != nil {
			e.Info, e.Err = loader.Load(ctx, e.Ref)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

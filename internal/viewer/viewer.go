// Package viewer holds the document viewer state: which document is open and
// whether its load is pending, finished or failed.
package viewer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dhashmi/portfolio/internal/document"
)

// State is the viewer lifecycle.
type State int

const (
	Closed State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Page is one rendered page slot.
type Page struct {
	Number int
	Width  float64
}

// Snapshot is a point-in-time copy of the viewer.
type Snapshot struct {
	State      State
	Ref        document.Ref
	Pages      []Page
	Err        error
	Generation uint64
}

// Open reports whether a document is being shown in any state.
func (s Snapshot) Open() bool { return s.State != Closed }

// Option configures a Viewer.
type Option func(*Viewer)

// WithTimeout bounds each load.
func WithTimeout(d time.Duration) Option {
	return func(v *Viewer) { v.timeout = d }
}

// WithLogger logs load failures.
func WithLogger(l *zap.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.log = l
		}
	}
}

// Viewer shows at most one document. Opening a document replaces the current
// one; a load that finishes after being replaced is dropped.
type Viewer struct {
	loader  document.Loader
	layout  document.Layout
	timeout time.Duration
	log     *zap.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
	snap   Snapshot
}

// New returns a closed viewer.
func New(loader document.Loader, layout document.Layout, opts ...Option) *Viewer {
	v := &Viewer{loader: loader, layout: layout, log: zap.NewNop()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Open starts loading ref and returns a channel closed once this load has
// settled or been superseded. viewport is the client width in CSS pixels,
// zero when unknown.
func (v *Viewer) Open(ctx context.Context, ref document.Ref, viewport float64) <-chan struct{} {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.settleLocked()
	v.gen++
	gen := v.gen

	var (
		loadCtx context.Context
		cancel  context.CancelFunc
	)
	if v.timeout > 0 {
		loadCtx, cancel = context.WithTimeout(ctx, v.timeout)
	} else {
		loadCtx, cancel = context.WithCancel(ctx)
	}
	done := make(chan struct{})
	v.cancel = cancel
	v.done = done
	v.snap = Snapshot{State: Loading, Ref: ref, Generation: gen}

	go v.load(loadCtx, gen, ref, viewport)
	return done
}

func (v *Viewer) load(ctx context.Context, gen uint64, ref document.Ref, viewport float64) {
	info, err := v.loader.Load(ctx, ref)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return
	}

	if err != nil {
		v.log.Warn("document load failed", zap.String("ref", ref.String()), zap.Error(err))
		v.snap = Snapshot{State: Failed, Ref: ref, Err: err, Generation: gen}
	} else {
		width := v.layout.Width(viewport)
		pages := make([]Page, info.Pages)
		for i := range pages {
			pages[i] = Page{Number: i + 1, Width: width}
		}
		v.snap = Snapshot{State: Loaded, Ref: ref, Pages: pages, Generation: gen}
	}
	v.settleLocked()
}

// Close discards the open document whatever its state.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.settleLocked()
	v.gen++
	v.snap = Snapshot{State: Closed, Generation: v.gen}
}

// Snapshot returns a copy of the current state.
func (v *Viewer) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.snap
	if s.Pages != nil {
		s.Pages = append([]Page(nil), s.Pages...)
	}
	return s
}

// settleLocked cancels any outstanding load and releases its waiters.
func (v *Viewer) settleLocked() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	if v.done != nil {
		close(v.done)
		v.done = nil
	}
}

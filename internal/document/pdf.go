package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFLoader counts pages with github.com/ledongthuc/pdf.
type PDFLoader struct {
	Resolver *Resolver
}

// NewPDFLoader returns a loader reading through r.
func NewPDFLoader(r *Resolver) *PDFLoader {
	return &PDFLoader{Resolver: r}
}

// Load opens ref and reports its page count.
func (l *PDFLoader) Load(ctx context.Context, ref Ref) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	src, err := l.Resolver.Open(ctx, ref)
	if err != nil {
		return Info{}, err
	}
	defer src.Close()

	pages, err := countPages(src)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %s: %v", ErrUnreadable, ref, err)
	}
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	return Info{Ref: ref, Pages: pages, Size: src.Size()}, nil
}

// countPages recovers from parser panics on malformed input.
func countPages(src Source) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(src, src.Size())
	if err != nil {
		return 0, err
	}
	n = r.NumPage()
	if n <= 0 {
		return 0, errors.New("no pages")
	}
	return n, nil
}

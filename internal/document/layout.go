package document

import (
	"math"
	"strconv"
)

const (
	DefaultViewportRatio = 0.85
	DefaultMaxWidth      = 900
)

// Layout caps rendered page widths at min(ViewportRatio*viewport, MaxWidth).
type Layout struct {
	ViewportRatio float64
	MaxWidth      float64
}

// DefaultLayout returns the standard page layout.
func DefaultLayout() Layout {
	return Layout{ViewportRatio: DefaultViewportRatio, MaxWidth: DefaultMaxWidth}
}

// Width returns the page width for a viewport width in CSS pixels. An
// unknown viewport (<= 0) yields MaxWidth; the stylesheet still clamps to
// the viewport on the client.
func (l Layout) Width(viewport float64) float64 {
	if viewport <= 0 || math.IsNaN(viewport) || math.IsInf(viewport, 0) {
		return l.MaxWidth
	}
	return math.Min(viewport*l.ViewportRatio, l.MaxWidth)
}

// CSSWidth is the client-side form of Width.
func (l Layout) CSSWidth() string {
	return "min(" + trim(l.ViewportRatio*100) + "vw, " + trim(l.MaxWidth) + "px)"
}

func trim(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

// Package motion describes UI transitions as plain records. The stylesheet
// reads the custom properties emitted by Style; nothing on the server depends
// on the values.
package motion

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"
)

// Ease names a CSS timing function.
type Ease string

const (
	EaseCircOut Ease = "cubic-bezier(0, 0.55, 0.45, 1)"
	EaseOut     Ease = "ease-out"
	EaseSpring  Ease = "cubic-bezier(0.34, 1.36, 0.64, 1)"
)

// Props is the subset of animatable properties the site uses.
type Props struct {
	Opacity float64
	Y       float64 // px
	Blur    float64 // px
}

// Transition animates an element from From to To.
type Transition struct {
	Name     string
	Duration time.Duration
	Ease     Ease
	Stagger  time.Duration // delay between children, zero for none
	Delay    time.Duration
	From     Props
	To       Props
}

var (
	// Page swaps section content: fade, slide and unblur in.
	Page = Transition{
		Name:     "page",
		Duration: 500 * time.Millisecond,
		Ease:     EaseCircOut,
		From:     Props{Opacity: 0, Y: 20, Blur: 10},
		To:       Props{Opacity: 1},
	}

	// FadeUp is used by cards and timeline items.
	FadeUp = Transition{
		Name:     "fade-up",
		Duration: 400 * time.Millisecond,
		Ease:     EaseOut,
		From:     Props{Opacity: 0, Y: 20},
		To:       Props{Opacity: 1},
	}

	// Stagger reveals a container's children one after another.
	Stagger = Transition{
		Name:     "stagger",
		Duration: 300 * time.Millisecond,
		Ease:     EaseOut,
		Stagger:  100 * time.Millisecond,
		From:     Props{Opacity: 0},
		To:       Props{Opacity: 1},
	}

	// Overlay fades the document viewer backdrop.
	Overlay = Transition{
		Name:     "overlay",
		Duration: 200 * time.Millisecond,
		Ease:     EaseOut,
		From:     Props{Opacity: 0, Blur: 0},
		To:       Props{Opacity: 1},
	}
)

// WithDelay returns a copy of t starting after d.
func (t Transition) WithDelay(d time.Duration) Transition {
	t.Delay = d
	return t
}

// Style renders t as CSS custom properties.
func (t Transition) Style() template.CSS {
	var b strings.Builder
	prop := func(name, value string) {
		fmt.Fprintf(&b, "--mo-%s:%s;", name, value)
	}
	prop("duration", ms(t.Duration))
	prop("ease", string(t.Ease))
	prop("delay", ms(t.Delay))
	prop("stagger", ms(t.Stagger))
	prop("from-opacity", num(t.From.Opacity))
	prop("from-y", num(t.From.Y)+"px")
	prop("from-blur", num(t.From.Blur)+"px")
	prop("to-opacity", num(t.To.Opacity))
	prop("to-y", num(t.To.Y)+"px")
	prop("to-blur", num(t.To.Blur)+"px")
	// Trusted: every value above is produced from typed fields.
	return template.CSS(b.String())
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

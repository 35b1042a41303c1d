// Package section is the view router: one active section at a time, each
// mapped to exactly one content block.
package section

import (
	"fmt"
	"strings"

	"github.com/dhashmi/portfolio/internal/motion"
)

// Section names one of the fixed content pages.
type Section string

const (
	Home       Section = "home"
	About      Section = "about"
	Projects   Section = "projects"
	Reflection Section = "reflection"
)

// Default is the section every visit starts on.
const Default = Home

var order = []Section{Home, About, Projects, Reflection}

var labels = map[Section]string{
	Home:       "Home",
	About:      "About",
	Projects:   "Projects",
	Reflection: "Reflection",
}

// All returns the sections in navigation order.
func All() []Section {
	out := make([]Section, len(order))
	copy(out, order)
	return out
}

// Parse maps a user-supplied name to a Section. "project" is accepted for
// links written against the old singular tab name.
func Parse(name string) (Section, bool) {
	s := Section(strings.ToLower(strings.TrimSpace(name)))
	if s == "project" {
		return Projects, true
	}
	return s, s.Valid()
}

// Valid reports whether s is a member of the closed set.
func (s Section) Valid() bool {
	_, ok := labels[s]
	return ok
}

// Label is the human-readable navigation label.
func (s Section) Label() string {
	return labels[s]
}

// Path is the URL path that renders s.
func (s Section) Path() string {
	if s == Default {
		return "/"
	}
	return "/s/" + string(s)
}

func (s Section) String() string { return string(s) }

// Block is the content rendered for a section.
type Block struct {
	Section  Section
	Template string
	Title    string
}

// NavItem is a view model for the navigation bar.
type NavItem struct {
	Section Section
	Label   string
	Href    string
	Active  bool
}

// Router holds the active section. It is owned by a single render pass and
// is not safe for concurrent use.
type Router struct {
	active Section
	blocks map[Section]Block
}

// NewRouter builds a router starting at Default. Every section must have
// exactly one block.
func NewRouter(blocks ...Block) (*Router, error) {
	m := make(map[Section]Block, len(order))
	for _, b := range blocks {
		if !b.Section.Valid() {
			return nil, fmt.Errorf("block for unknown section %q", b.Section)
		}
		if _, dup := m[b.Section]; dup {
			return nil, fmt.Errorf("duplicate block for section %q", b.Section)
		}
		if b.Template == "" {
			return nil, fmt.Errorf("block for section %q has no template", b.Section)
		}
		m[b.Section] = b
	}
	for _, s := range order {
		if _, ok := m[s]; !ok {
			return nil, fmt.Errorf("no block for section %q", s)
		}
	}
	return &Router{active: Default, blocks: m}, nil
}

// SetActive makes s the active section and returns the transition for the
// incoming block. Selecting the active section again is a no-op beyond the
// re-render. Passing a value outside the set is a programming error.
func (r *Router) SetActive(s Section) motion.Transition {
	if !s.Valid() {
		panic(fmt.Sprintf("section: invalid section %q", s))
	}
	r.active = s
	return motion.Page
}

// Active returns the active section.
func (r *Router) Active() Section {
	return r.active
}

// View returns the single block for the active section.
func (r *Router) View() Block {
	return r.blocks[r.active]
}

// Nav returns navigation items with exactly one marked active.
func (r *Router) Nav() []NavItem {
	items := make([]NavItem, 0, len(order))
	for _, s := range order {
		items = append(items, NavItem{
			Section: s,
			Label:   s.Label(),
			Href:    s.Path(),
			Active:  s == r.active,
		})
	}
	return items
}

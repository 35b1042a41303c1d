// Package content holds the portfolio's static records. They are decoded
// once at startup and never change afterwards.
package content

import (
	"html/template"

	"github.com/dhashmi/portfolio/internal/document"
)

// Content is everything the site displays.
type Content struct {
	Profile    Profile
	Hero       Hero
	Features   []Feature
	About      About
	Education  []ExperienceRecord
	Experience []ExperienceRecord
	Project    Project
	Process    []ProcessStep
	Gallery    []GalleryPhase
	Risks      []Risk
	Reflection Reflection
	Quotes     []Quote
}

// Profile identifies the site owner and their outbound links.
type Profile struct {
	Name     string
	Initials string
	Tagline  string
	Email    string
	LinkedIn string
	Headshot Image
	Footer   []string
}

// MailTo is the mailto: link for the profile email.
func (p Profile) MailTo() string {
	return "mailto:" + p.Email
}

// DocumentLink opens a document in the viewer.
type DocumentLink struct {
	Title    string
	Ref      document.Ref
	Download bool
}

// Hero is the landing block.
type Hero struct {
	Quote    Quote
	Intro    template.HTML
	CTA      string
	Document DocumentLink
}

// Feature is a short capability card.
type Feature struct {
	Title string
	Short string
	Icon  string
}

// Tag is a labelled chip.
type Tag struct {
	Label string
	Icon  string
}

// About is the biography block.
type About struct {
	Body      template.HTML
	Skills    []Tag
	Interests []Tag
	Connect   string
}

// ExperienceRecord is a timeline or experience entry.
type ExperienceRecord struct {
	Title    string
	Subtitle string
	Org      string
	Date     string
	Short    string
	Tag      string
	Current  bool
}

// ProjectLink is an outbound link to a shared document.
type ProjectLink struct {
	Title string
	URL   string
}

// Stat is a highlighted figure.
type Stat struct {
	Value string
	Label string
	Note  string
}

// Project is the design project write-up.
type Project struct {
	Badge       string
	Title       string
	Summary     string
	Challenge   template.HTML
	Stat        Stat
	Perspective template.HTML
	Links       []ProjectLink
	Documents   []DocumentLink
}

// ProcessStep is one stage of the engineering process.
type ProcessStep struct {
	ID    int
	Title string
	Icon  string
	Short string
	Long  template.HTML
}

// GalleryPhase groups gallery items.
type GalleryPhase struct {
	Phase string
	Items []GalleryItem
}

// GalleryItem is one captioned image.
type GalleryItem struct {
	Title string
	Tag   string
	Short string
	Image Image
}

// Risk is a row of the risk assessment table.
type Risk struct {
	Hazard     string
	Likelihood int
	Severity   int
	Mitigation string
	Residual   string
}

// Score is likelihood times severity on a 5x5 matrix.
func (r Risk) Score() int {
	return r.Likelihood * r.Severity
}

// Level buckets Score into low, medium or high.
func (r Risk) Level() string {
	switch s := r.Score(); {
	case s >= 15:
		return "high"
	case s >= 8:
		return "medium"
	default:
		return "low"
	}
}

// Reflection is the personal reflection block.
type Reflection struct {
	Title   string
	Summary string
	Entries []ReflectionEntry
}

// ReflectionEntry is a question and its answer.
type ReflectionEntry struct {
	Question string
	Answer   template.HTML
}

// Quote is shown by the rotating quote strip.
type Quote struct {
	Text   string
	Author string
}

package content

import (
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dhashmi/portfolio/internal/document"
)

//go:embed portfolio.yaml
var defaultYAML []byte

// Default decodes the content compiled into the binary.
func Default() (*Content, error) {
	return Parse(defaultYAML)
}

// Load reads content from path, or the embedded default when path is empty.
func Load(path string) (*Content, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading content %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("content %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates YAML content, rendering markdown fields.
func Parse(data []byte) (*Content, error) {
	var raw fileContent
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	c, err := raw.build(NewMarkdown())
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the invariants templates rely on.
func (c *Content) Validate() error {
	var errs []error
	if c.Profile.Name == "" {
		errs = append(errs, errors.New("profile.name is required"))
	}
	if c.Hero.Document.Ref == "" {
		errs = append(errs, errors.New("hero.document.ref is required"))
	}
	seen := map[int]bool{}
	for i, s := range c.Process {
		if s.Title == "" {
			errs = append(errs, fmt.Errorf("process[%d]: title is required", i))
		}
		if seen[s.ID] {
			errs = append(errs, fmt.Errorf("process[%d]: duplicate id %d", i, s.ID))
		}
		seen[s.ID] = true
	}
	for i, p := range c.Gallery {
		for j, it := range p.Items {
			if it.Title == "" {
				errs = append(errs, fmt.Errorf("gallery[%d].items[%d]: title is required", i, j))
			}
		}
	}
	for i, r := range c.Risks {
		if r.Likelihood < 1 || r.Likelihood > 5 || r.Severity < 1 || r.Severity > 5 {
			errs = append(errs, fmt.Errorf("risks[%d]: likelihood and severity must be 1-5", i))
		}
	}
	for i, e := range c.Reflection.Entries {
		if e.Question == "" {
			errs = append(errs, fmt.Errorf("reflection.entries[%d]: question is required", i))
		}
	}
	for i, d := range c.Project.Documents {
		if d.Ref == "" {
			errs = append(errs, fmt.Errorf("project.documents[%d]: ref is required", i))
		}
	}
	return errors.Join(errs...)
}

type fileContent struct {
	Profile struct {
		Name     string   `yaml:"name"`
		Initials string   `yaml:"initials"`
		Tagline  string   `yaml:"tagline"`
		Email    string   `yaml:"email"`
		LinkedIn string   `yaml:"linkedin"`
		Headshot string   `yaml:"headshot"`
		Footer   []string `yaml:"footer"`
	} `yaml:"profile"`
	Hero struct {
		Quote    fileQuote    `yaml:"quote"`
		Intro    string       `yaml:"intro"`
		CTA      string       `yaml:"cta"`
		Document fileDocument `yaml:"document"`
	} `yaml:"hero"`
	Features []struct {
		Title string `yaml:"title"`
		Short string `yaml:"short"`
		Icon  string `yaml:"icon"`
	} `yaml:"features"`
	About struct {
		Body      string    `yaml:"body"`
		Skills    []fileTag `yaml:"skills"`
		Interests []fileTag `yaml:"interests"`
		Connect   string    `yaml:"connect"`
	} `yaml:"about"`
	Education  []fileExperience `yaml:"education"`
	Experience []fileExperience `yaml:"experience"`
	Project    struct {
		Badge     string `yaml:"badge"`
		Title     string `yaml:"title"`
		Summary   string `yaml:"summary"`
		Challenge string `yaml:"challenge"`
		Stat      struct {
			Value string `yaml:"value"`
			Label string `yaml:"label"`
			Note  string `yaml:"note"`
		} `yaml:"stat"`
		Perspective string `yaml:"perspective"`
		Links       []struct {
			Title string `yaml:"title"`
			URL   string `yaml:"url"`
		} `yaml:"links"`
		Documents []fileDocument `yaml:"documents"`
	} `yaml:"project"`
	Process []struct {
		ID     int    `yaml:"id"`
		Title  string `yaml:"title"`
		Icon   string `yaml:"icon"`
		Short  string `yaml:"short"`
		Detail string `yaml:"detail"`
	} `yaml:"process"`
	Gallery []struct {
		Phase string `yaml:"phase"`
		Items []struct {
			Title string `yaml:"title"`
			Src   string `yaml:"src"`
			Tag   string `yaml:"tag"`
			Desc  string `yaml:"desc"`
		} `yaml:"items"`
	} `yaml:"gallery"`
	Risks []struct {
		Hazard     string `yaml:"hazard"`
		Likelihood int    `yaml:"likelihood"`
		Severity   int    `yaml:"severity"`
		Mitigation string `yaml:"mitigation"`
		Residual   string `yaml:"residual"`
	} `yaml:"risks"`
	Reflection struct {
		Title   string `yaml:"title"`
		Summary string `yaml:"summary"`
		Entries []struct {
			Q string `yaml:"q"`
			A string `yaml:"a"`
		} `yaml:"entries"`
	} `yaml:"reflection"`
	Quotes []fileQuote `yaml:"quotes"`
}

type fileQuote struct {
	Text   string `yaml:"text"`
	Author string `yaml:"author"`
}

type fileDocument struct {
	Title    string `yaml:"title"`
	Ref      string `yaml:"ref"`
	Download bool   `yaml:"download"`
}

type fileTag struct {
	Label string `yaml:"label"`
	Icon  string `yaml:"icon"`
}

type fileExperience struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Org      string `yaml:"org"`
	Date     string `yaml:"date"`
	Desc     string `yaml:"desc"`
	Tag      string `yaml:"tag"`
	Current  bool   `yaml:"current"`
}

func (f *fileContent) build(md *Markdown) (*Content, error) {
	var errs []error
	render := func(field, src string) template.HTML {
		h, err := md.Render(src)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
		return h
	}

	c := &Content{}
	c.Profile = Profile{
		Name:     f.Profile.Name,
		Initials: f.Profile.Initials,
		Tagline:  f.Profile.Tagline,
		Email:    f.Profile.Email,
		LinkedIn: f.Profile.LinkedIn,
		Headshot: newImage(f.Profile.Headshot, f.Profile.Name, 400, 500),
		Footer:   f.Profile.Footer,
	}
	c.Hero = Hero{
		Quote:    Quote(f.Hero.Quote),
		Intro:    render("hero.intro", f.Hero.Intro),
		CTA:      f.Hero.CTA,
		Document: f.Hero.Document.link(),
	}
	for _, ft := range f.Features {
		c.Features = append(c.Features, Feature(ft))
	}
	c.About = About{
		Body:      render("about.body", f.About.Body),
		Skills:    tags(f.About.Skills),
		Interests: tags(f.About.Interests),
		Connect:   f.About.Connect,
	}
	c.Education = experiences(f.Education)
	c.Experience = experiences(f.Experience)

	p := f.Project
	c.Project = Project{
		Badge:       p.Badge,
		Title:       p.Title,
		Summary:     p.Summary,
		Challenge:   render("project.challenge", p.Challenge),
		Stat:        Stat(p.Stat),
		Perspective: render("project.perspective", p.Perspective),
	}
	for _, l := range p.Links {
		c.Project.Links = append(c.Project.Links, ProjectLink(l))
	}
	for _, d := range p.Documents {
		c.Project.Documents = append(c.Project.Documents, d.link())
	}

	for i, s := range f.Process {
		c.Process = append(c.Process, ProcessStep{
			ID:    s.ID,
			Title: s.Title,
			Icon:  s.Icon,
			Short: s.Short,
			Long:  render(fmt.Sprintf("process[%d].detail", i), s.Detail),
		})
	}
	for _, ph := range f.Gallery {
		phase := GalleryPhase{Phase: ph.Phase}
		for _, it := range ph.Items {
			phase.Items = append(phase.Items, GalleryItem{
				Title: it.Title,
				Tag:   it.Tag,
				Short: it.Desc,
				Image: newImage(it.Src, it.Title, 800, 600),
			})
		}
		c.Gallery = append(c.Gallery, phase)
	}
	for _, r := range f.Risks {
		c.Risks = append(c.Risks, Risk(r))
	}
	c.Reflection = Reflection{Title: f.Reflection.Title, Summary: f.Reflection.Summary}
	for i, e := range f.Reflection.Entries {
		c.Reflection.Entries = append(c.Reflection.Entries, ReflectionEntry{
			Question: e.Q,
			Answer:   render(fmt.Sprintf("reflection.entries[%d].a", i), e.A),
		})
	}
	for _, q := range f.Quotes {
		c.Quotes = append(c.Quotes, Quote(q))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

func (d fileDocument) link() DocumentLink {
	return DocumentLink{Title: d.Title, Ref: document.Ref(strings.TrimSpace(d.Ref)), Download: d.Download}
}

func tags(in []fileTag) []Tag {
	out := make([]Tag, 0, len(in))
	for _, t := range in {
		out = append(out, Tag(t))
	}
	return out
}

func experiences(in []fileExperience) []ExperienceRecord {
	out := make([]ExperienceRecord, 0, len(in))
	for _, e := range in {
		out = append(out, ExperienceRecord{
			Title:    e.Title,
			Subtitle: e.Subtitle,
			Org:      e.Org,
			Date:     e.Date,
			Short:    e.Desc,
			Tag:      e.Tag,
			Current:  e.Current,
		})
	}
	return out
}

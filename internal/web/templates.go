package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dhashmi/portfolio/internal/document"
	"github.com/dhashmi/portfolio/internal/motion"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFiles embed.FS

func staticFS() http.FileSystem {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// parseTemplates loads every template. partial executes a template chosen
// at runtime, which the section block lookup needs.
func (s *Server) parseTemplates() (*template.Template, error) {
	var root *template.Template
	funcs := template.FuncMap{
		"partial": func(name string, data any) (template.HTML, error) {
			var buf bytes.Buffer
			if err := root.ExecuteTemplate(&buf, name, data); err != nil {
				return "", err
			}
			return template.HTML(buf.String()), nil
		},
		"viewerURL": func(ref document.Ref) string {
			return "/viewer/open?doc=" + url.QueryEscape(ref.String())
		},
		"pagesURL": func(ref document.Ref) string {
			return "/viewer/pages?doc=" + url.QueryEscape(ref.String())
		},
		"docHref": s.resolver.Href,
		"stagger": func(i int) template.CSS {
			return motion.FadeUp.WithDelay(time.Duration(i) * motion.Stagger.Stagger).Style()
		},
		"fadeUp": func() template.CSS {
			return motion.FadeUp.Style()
		},
		"overlay": func() template.CSS {
			return motion.Overlay.Style()
		},
		"ago":  humanize.Time,
		"inc":  func(i int) int { return i + 1 },
		"dict": dict,
	}

	var err error
	root, err = template.New("portfolio").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	return root, err
}

func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, errors.New("dict: keys must be strings")
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

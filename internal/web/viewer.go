package web

import (
	"context"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhashmi/portfolio/internal/document"
	"github.com/dhashmi/portfolio/internal/section"
	"github.com/dhashmi/portfolio/internal/viewer"
)

// viewerData feeds the viewer templates.
type viewerData struct {
	Ref   document.Ref
	Href  string
	State viewer.State
	Pages []pageView
}

type pageView struct {
	Number int
	Style  template.CSS
}

func docRef(c *gin.Context) (document.Ref, bool) {
	ref := strings.TrimSpace(c.Query("doc"))
	return document.Ref(ref), ref != ""
}

func viewport(c *gin.Context) float64 {
	vw, err := strconv.ParseFloat(c.Query("vw"), 64)
	if err != nil || vw <= 0 {
		return 0
	}
	return vw
}

// isOffered reports whether ref may be opened, logging refusals.
func (s *Server) isOffered(c *gin.Context, ref document.Ref) bool {
	if s.docs.Allowed(ref) {
		return true
	}
	s.log.Warn("document not offered",
		zap.String("ref", ref.String()),
		zap.String("request_id", c.GetString(requestIDKey)))
	return false
}

// openViewer returns the overlay in its loading state. The overlay body
// requests the pages itself once swapped in, so opening a second document
// replaces the first in the single #viewer slot. Without htmx the document
// is loaded inline and the overlay served on a full page. References the
// site does not offer get the failed overlay without being loaded.
func (s *Server) openViewer(c *gin.Context) {
	ref, ok := docRef(c)
	if !ok {
		c.HTML(http.StatusBadRequest, "viewer-error", viewerData{})
		return
	}
	v := viewerData{Ref: ref, State: viewer.Failed}
	allowed := s.isOffered(c, ref)
	if isHTMX(c) {
		if allowed {
			v.State = viewer.Loading
		}
		c.HTML(http.StatusOK, "viewer-overlay", v)
		return
	}

	from, ok := section.Parse(c.Query("from"))
	if !ok {
		from = section.Default
	}
	if allowed {
		v = s.load(c, ref, viewport(c))
	}
	s.render(c, from, &v)
}

func (s *Server) viewerPages(c *gin.Context) {
	ref, ok := docRef(c)
	if !ok {
		c.HTML(http.StatusBadRequest, "viewer-error", viewerData{})
		return
	}
	if !s.isOffered(c, ref) {
		c.HTML(http.StatusOK, "viewer-error", viewerData{Ref: ref, State: viewer.Failed})
		return
	}
	v := s.load(c, ref, viewport(c))
	if v.State == viewer.Failed {
		c.HTML(http.StatusOK, "viewer-error", v)
		return
	}
	c.HTML(http.StatusOK, "viewer-pages", v)
}

func (s *Server) closeViewer(c *gin.Context) {
	c.Status(http.StatusOK)
}

// load runs one viewer open to completion for this request. ref must be
// offered.
func (s *Server) load(c *gin.Context, ref document.Ref, vw float64) viewerData {
	v := viewer.New(s.loader, s.layout,
		viewer.WithTimeout(s.cfg.LoadTimeout),
		viewer.WithLogger(s.log.With(zap.String("request_id", c.GetString(requestIDKey)))),
	)
	defer v.Close()

	<-v.Open(c.Request.Context(), ref, vw)
	snap := v.Snapshot()

	data := viewerData{Ref: ref, Href: s.resolver.Href(ref), State: snap.State}
	if snap.State == viewer.Loaded {
		data.Pages = make([]pageView, len(snap.Pages))
		for i, p := range snap.Pages {
			data.Pages[i] = pageView{Number: p.Number, Style: s.pageStyle(p.Width, vw)}
		}
	}
	s.recordOpen(c, ref, snap)
	return data
}

// pageStyle caps a page at the computed width, or lets CSS compute it
// when the client did not report a viewport.
func (s *Server) pageStyle(width, vw float64) template.CSS {
	if vw <= 0 {
		return template.CSS("width: " + s.layout.CSSWidth())
	}
	return template.CSS("width: " + strconv.FormatFloat(math.Round(width*100)/100, 'f', -1, 64) + "px")
}

func (s *Server) recordOpen(c *gin.Context, ref document.Ref, snap viewer.Snapshot) {
	if s.store == nil || c.GetHeader("DNT") == "1" {
		return
	}
	ip := c.ClientIP()
	loaded := snap.State == viewer.Loaded
	pages := len(snap.Pages)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.RecordDocumentOpen(ctx, ip, ref.String(), pages, loaded); err != nil {
			s.log.Warn("recording document open", zap.Error(err))
		}
	}()
}

func (v viewerData) Loading() bool { return v.State == viewer.Loading }
func (v viewerData) Loaded() bool  { return v.State == viewer.Loaded }
func (v viewerData) Failed() bool  { return v.State == viewer.Failed }

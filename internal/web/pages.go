package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhashmi/portfolio/internal/content"
	"github.com/dhashmi/portfolio/internal/document"
	"github.com/dhashmi/portfolio/internal/motion"
	"github.com/dhashmi/portfolio/internal/section"
)

// pageData is what the page and fragment templates render.
type pageData struct {
	Site       *content.Content
	Nav        []section.NavItem
	Block      section.Block
	Transition motion.Transition
	Layout     document.Layout
	Viewer     *viewerData
	Year       int
}

func (s *Server) home(c *gin.Context) {
	s.render(c, section.Default, nil)
}

func (s *Server) showSection(c *gin.Context) {
	sec, ok := section.Parse(c.Param("section"))
	if !ok {
		s.notFound(c)
		return
	}
	s.render(c, sec, nil)
}

func (s *Server) pageData(sec section.Section) (pageData, error) {
	r, err := s.newRouter()
	if err != nil {
		return pageData{}, err
	}
	tr := r.SetActive(sec)
	return pageData{
		Site:       s.site,
		Nav:        r.Nav(),
		Block:      r.View(),
		Transition: tr,
		Layout:     s.layout,
		Year:       time.Now().Year(),
	}, nil
}

// render writes the section as a <main> fragment for htmx or as a full
// page otherwise. v pre-fills the viewer slot on full pages.
func (s *Server) render(c *gin.Context, sec section.Section, v *viewerData) {
	c.Set(sectionKey, sec.String())
	data, err := s.pageData(sec)
	if err != nil {
		s.fail(c, err)
		return
	}
	if isHTMX(c) {
		c.Header("HX-Push-Url", sec.Path())
		c.HTML(http.StatusOK, "fragment", data)
		return
	}
	data.Viewer = v
	c.HTML(http.StatusOK, "page", data)
}

func (s *Server) notFound(c *gin.Context) {
	if isHTMX(c) {
		c.HTML(http.StatusNotFound, "not-found-body", nil)
		return
	}
	data, err := s.pageData(section.Default)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.HTML(http.StatusNotFound, "not-found", data)
}

func (s *Server) fail(c *gin.Context, err error) {
	s.log.Error("rendering page", zap.Error(err), zap.String("request_id", c.GetString(requestIDKey)))
	_ = c.Error(err)
	c.AbortWithStatus(http.StatusInternalServerError)
}

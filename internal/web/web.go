// Package web is the HTTP surface: section pages, the document viewer
// fragments and the analytics admin.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhashmi/portfolio/internal/analytics"
	"github.com/dhashmi/portfolio/internal/config"
	"github.com/dhashmi/portfolio/internal/content"
	"github.com/dhashmi/portfolio/internal/document"
	"github.com/dhashmi/portfolio/internal/section"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Config    *config.Config
	Content   *content.Content
	Logger    *zap.Logger
	Resolver  *document.Resolver
	Loader    document.Loader
	Analytics *analytics.Store // nil disables tracking and admin
}

// Server serves the portfolio.
type Server struct {
	cfg      *config.Config
	site     *content.Content
	log      *zap.Logger
	resolver *document.Resolver
	loader   document.Loader
	layout   document.Layout
	docs     *document.Allowlist
	store    *analytics.Store
	blocks   []section.Block
	tmpl     *template.Template
	engine   *gin.Engine

	adminToken string
	adminUser  string
	adminPass  string
}

// New builds the server and its routes.
func New(d Deps) (*Server, error) {
	if d.Config == nil || d.Content == nil || d.Resolver == nil {
		return nil, errors.New("web: config, content and resolver are required")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Loader == nil {
		d.Loader = document.NewPDFLoader(d.Resolver)
	}

	s := &Server{
		cfg:      d.Config,
		site:     d.Content,
		log:      d.Logger,
		resolver: d.Resolver,
		loader:   d.Loader,
		layout:   d.Config.Layout(),
		store:    d.Analytics,
		blocks: []section.Block{
			{Section: section.Home, Template: "section-home", Title: "Home"},
			{Section: section.About, Template: "section-about", Title: "About Me"},
			{Section: section.Projects, Template: "section-projects", Title: d.Content.Project.Title},
			{Section: section.Reflection, Template: "section-reflection", Title: d.Content.Reflection.Title},
		},
	}
	if _, err := s.newRouter(); err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}

	s.docs = s.offeredDocuments()

	tmpl, err := s.parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}
	s.tmpl = tmpl

	s.engine = s.routes()
	return s, nil
}

// offeredDocuments lists the references visitors may open: those linked
// from the content and those found under the documents directory at
// startup. Anything else never reaches the loader.
func (s *Server) offeredDocuments() *document.Allowlist {
	offered := document.NewAllowlist(s.resolver)
	offered.Add(s.site.Hero.Document.Ref)
	for _, d := range s.site.Project.Documents {
		offered.Add(d.Ref)
	}

	cat := &document.Catalog{Resolver: s.resolver, Pattern: s.cfg.DocumentsGlob}
	entries, err := cat.List(context.Background(), nil)
	if err != nil {
		s.log.Warn("listing documents", zap.String("dir", s.resolver.Dir), zap.Error(err))
	}
	for _, e := range entries {
		offered.Add(e.Ref)
	}
	s.log.Info("documents offered", zap.Int("count", offered.Len()))
	return offered
}

func (s *Server) newRouter() (*section.Router, error) {
	return section.NewRouter(s.blocks...)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.cfg.LoadTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr), zap.String("mode", gin.Mode()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(s.tmpl)
	r.Use(requestID())
	r.Use(requestLogger(s.log))
	r.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		s.log.Error("panic recovered", zap.Any("error", err), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	r.Use(htmx())
	if s.store != nil {
		r.Use(visitorTracking(s.store, s.log))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.StaticFS("/static", staticFS())
	r.Static("/documents", s.resolver.Dir)

	r.GET("/", s.home)
	r.GET("/s/:section", s.showSection)

	r.GET("/viewer/open", s.openViewer)
	r.GET("/viewer/pages", s.viewerPages)
	r.GET("/viewer/close", s.closeViewer)

	s.setupAdminRoutes(r)

	r.NoRoute(s.notFound)
	return r
}

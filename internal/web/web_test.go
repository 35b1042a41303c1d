package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/dhashmi/portfolio/internal/analytics"
	"github.com/dhashmi/portfolio/internal/config"
	"github.com/dhashmi/portfolio/internal/content"
	"github.com/dhashmi/portfolio/internal/document"
	"github.com/dhashmi/portfolio/internal/document/pdftest"
	"github.com/dhashmi/portfolio/internal/section"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const reportRef = "/documents/report.pdf"

type testEnv struct {
	dir    string
	server *Server
	store  *analytics.Store
	site   *content.Content
}

func newTestEnv(t *testing.T, withAnalytics bool) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{dir: dir}
	pdftest.Write(t, dir, "report.pdf", 3)
	pdftest.Write(t, dir, "other.pdf", 1)

	cfg := config.Default()
	cfg.DocumentsDir = dir
	cfg.AdminUsername = "owner"
	cfg.AdminPassword = "s3cret"

	site, err := content.Default()
	require.NoError(t, err)

	env.site = site
	deps := Deps{
		Config:   cfg,
		Content:  site,
		Resolver: document.NewResolver(dir),
	}
	if withAnalytics {
		store, err := analytics.OpenMemory()
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		env.store = store
		deps.Analytics = store
	}

	env.server, err = New(deps)
	require.NoError(t, err)
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(t *testing.T, target string, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return e.do(t, req)
}

func parse(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	return doc
}

func activeNav(t *testing.T, doc *goquery.Document) string {
	t.Helper()
	active := doc.Find("#site-nav a.active")
	require.Equal(t, 1, active.Length(), "exactly one active nav item")
	return active.AttrOr("data-section", "")
}

func TestSectionsRenderExactlyOneBlock(t *testing.T) {
	env := newTestEnv(t, false)

	for _, sec := range section.All() {
		t.Run(sec.String(), func(t *testing.T) {
			w := env.get(t, sec.Path(), false)
			require.Equal(t, http.StatusOK, w.Code)

			doc := parse(t, w)
			blocks := doc.Find("main#content > .section")
			require.Equal(t, 1, blocks.Length())
			require.Equal(t, sec.String(), blocks.AttrOr("data-section", ""))
			require.Equal(t, sec.String(), activeNav(t, doc))
			require.Equal(t, 1, doc.Find("#viewer").Length())
			require.Empty(t, strings.TrimSpace(doc.Find("#viewer").Text()))
		})
	}
}

func TestSectionContent(t *testing.T) {
	env := newTestEnv(t, false)

	doc := parse(t, env.get(t, "/", false))
	require.Contains(t, doc.Find(".hero-quote").Text(), env.site.Hero.Quote.Text)
	require.Equal(t, len(env.site.Features), doc.Find(".feature").Length())

	doc = parse(t, env.get(t, "/s/about", false))
	require.Equal(t, len(env.site.Education), doc.Find(".timeline-item").Length())
	require.Equal(t, len(env.site.Experience), doc.Find(".experience-card").Length())
	require.Equal(t, env.site.Profile.MailTo(), doc.Find(".connect a").First().AttrOr("href", ""))
	linkedin := doc.Find(`.connect a[target="_blank"]`)
	require.Equal(t, env.site.Profile.LinkedIn, linkedin.AttrOr("href", ""))
	require.Equal(t, "noreferrer", linkedin.AttrOr("rel", ""))

	doc = parse(t, env.get(t, "/s/projects", false))
	require.Equal(t, len(env.site.Process), doc.Find(".step").Length())
	require.Equal(t, len(env.site.Risks), doc.Find(".risk").Length())
	require.Equal(t, len(env.site.Project.Links), doc.Find(`.documents a[target="_blank"]`).Length())
	doc.Find(".gallery-card img").Each(func(_ int, img *goquery.Selection) {
		require.True(t, strings.HasPrefix(img.AttrOr("data-fallback", ""), "https://placehold.co/"))
	})

	doc = parse(t, env.get(t, "/s/reflection", false))
	require.Equal(t, len(env.site.Reflection.Entries), doc.Find(".reflection-entry").Length())
}

func TestNavigationScenario(t *testing.T) {
	env := newTestEnv(t, false)

	doc := parse(t, env.get(t, "/", false))
	require.Equal(t, "home", activeNav(t, doc))

	for _, step := range []section.Section{section.Projects, section.Reflection} {
		w := env.get(t, step.Path(), true)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, step.Path(), w.Header().Get("HX-Push-Url"))
		require.NotContains(t, w.Body.String(), "<html")

		doc := parse(t, w)
		blocks := doc.Find(".section[data-section]")
		require.Equal(t, 1, blocks.Length())
		require.Equal(t, step.String(), blocks.AttrOr("data-section", ""))

		nav := doc.Find("#site-nav")
		require.Equal(t, "true", nav.AttrOr("hx-swap-oob", ""))
		require.Equal(t, step.String(), activeNav(t, doc))
	}
}

func TestNavLinksSwapContentAndScrollTop(t *testing.T) {
	env := newTestEnv(t, false)

	doc := parse(t, env.get(t, "/", false))
	doc.Find("#site-nav li a").Each(func(_ int, a *goquery.Selection) {
		require.Equal(t, "#content", a.AttrOr("hx-target", ""))
		require.Contains(t, a.AttrOr("hx-swap", ""), "show:window:top")
	})
	require.Equal(t, len(section.All()), doc.Find("#site-nav li a").Length())
}

func TestSectionTransitionStyle(t *testing.T) {
	env := newTestEnv(t, false)

	doc := parse(t, env.get(t, "/s/about", true))
	block := doc.Find(".section[data-section]")
	require.Equal(t, "page", block.AttrOr("data-transition", ""))
	require.Contains(t, block.AttrOr("style", ""), "--mo-duration:500ms;")
}

func TestLegacyProjectAlias(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.get(t, "/s/project", true)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "/s/projects", w.Header().Get("HX-Push-Url"))
	require.Equal(t, "projects", activeNav(t, parse(t, w)))
}

func TestUnknownSection(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.get(t, "/s/contact", false)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Page not found")

	w = env.get(t, "/s/contact", true)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.NotContains(t, w.Body.String(), "<html")

	w = env.get(t, "/nowhere", false)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentButtonTargetsViewerSlot(t *testing.T) {
	env := newTestEnv(t, false)

	doc := parse(t, env.get(t, "/", false))
	btn := doc.Find(".hero a[data-doc]")
	require.Equal(t, 1, btn.Length())
	require.Equal(t, "#viewer", btn.AttrOr("hx-target", ""))
	require.Equal(t, "innerHTML", btn.AttrOr("hx-swap", ""))

	u, err := url.Parse(btn.AttrOr("hx-get", ""))
	require.NoError(t, err)
	require.Equal(t, "/viewer/open", u.Path)
	require.Equal(t, env.site.Hero.Document.Ref.String(), u.Query().Get("doc"))
}

func TestViewerOpen(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.get(t, "/viewer/open?doc="+url.QueryEscape(reportRef), true)
	require.Equal(t, http.StatusOK, w.Code)

	doc := parse(t, w)
	require.Equal(t, 1, doc.Find(".viewer-backdrop").Length())
	require.Equal(t, "loading", doc.Find(".viewer-backdrop").AttrOr("data-state", ""))
	require.Contains(t, doc.Find(".viewer-loading").Text(), "Loading Secure Document...")
	require.Zero(t, doc.Find(".doc-page").Length())

	body := doc.Find(`.viewer-body[data-state="loading"]`)
	require.Equal(t, "load", body.AttrOr("hx-trigger", ""))
	u, err := url.Parse(body.AttrOr("hx-get", ""))
	require.NoError(t, err)
	require.Equal(t, "/viewer/pages", u.Path)
	require.Equal(t, reportRef, u.Query().Get("doc"))

	backdrop := doc.Find("#viewer-backdrop")
	require.Equal(t, "/viewer/close", backdrop.AttrOr("hx-get", ""))
	require.Contains(t, backdrop.AttrOr("hx-trigger", ""), "target.id=='viewer-backdrop'")
	require.Equal(t, "/viewer/close", doc.Find(".viewer-close").AttrOr("hx-get", ""))
}

func TestViewerOpenReplacesPrevious(t *testing.T) {
	env := newTestEnv(t, false)

	for _, ref := range []string{reportRef, "/documents/other.pdf"} {
		doc := parse(t, env.get(t, "/viewer/open?doc="+url.QueryEscape(ref), true))
		require.Equal(t, 1, doc.Find(".viewer-backdrop").Length())
		u, err := url.Parse(doc.Find(".viewer-body").AttrOr("hx-get", ""))
		require.NoError(t, err)
		require.Equal(t, ref, u.Query().Get("doc"))
	}
}

func TestViewerPages(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.get(t, "/viewer/pages?doc="+url.QueryEscape(reportRef)+"&vw=400", true)
	require.Equal(t, http.StatusOK, w.Code)

	doc := parse(t, w)
	body := doc.Find(".viewer-body")
	require.Equal(t, "loaded", body.AttrOr("data-state", ""))
	require.Equal(t, "/documents/report.pdf", body.AttrOr("data-src", ""))
	require.Equal(t, "3", body.AttrOr("data-pages", ""))

	var numbers []string
	doc.Find(".doc-page").Each(func(_ int, p *goquery.Selection) {
		numbers = append(numbers, p.AttrOr("data-page", ""))
		require.Equal(t, "width: 340px", p.AttrOr("style", ""))
		require.Equal(t, 1, p.Find("canvas").Length())
	})
	require.Equal(t, []string{"1", "2", "3"}, numbers)
	require.Zero(t, doc.Find(".textLayer, .annotationLayer").Length())
}

func TestViewerPagesWidthCap(t *testing.T) {
	env := newTestEnv(t, false)

	doc := parse(t, env.get(t, "/viewer/pages?doc="+url.QueryEscape(reportRef)+"&vw=1920", true))
	require.Equal(t, "width: 900px", doc.Find(".doc-page").First().AttrOr("style", ""))

	doc = parse(t, env.get(t, "/viewer/pages?doc="+url.QueryEscape(reportRef), true))
	require.Equal(t, "width: min(85vw, 900px)", doc.Find(".doc-page").First().AttrOr("style", ""))
}

func TestViewerMissingDocument(t *testing.T) {
	env := newTestEnv(t, false)
	ref := env.site.Hero.Document.Ref.String()

	w := env.get(t, "/viewer/pages?doc="+url.QueryEscape(ref), true)
	require.Equal(t, http.StatusOK, w.Code)

	doc := parse(t, w)
	errBlock := doc.Find(".viewer-error")
	require.Equal(t, 1, errBlock.Length())
	require.Equal(t, "failed", errBlock.AttrOr("data-state", ""))
	require.Contains(t, errBlock.Text(), "Unable to load PDF.")
	require.Contains(t, errBlock.Find("code").Text(), ref)
	require.Zero(t, doc.Find(".doc-page").Length())
}

func TestViewerRejectsTraversal(t *testing.T) {
	env := newTestEnv(t, false)

	doc := parse(t, env.get(t, "/viewer/pages?doc="+url.QueryEscape("/documents/../../etc/passwd"), true))
	require.Equal(t, 1, doc.Find(".viewer-error").Length())
	require.Zero(t, doc.Find(".doc-page").Length())
}

func TestViewerMissingRef(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.get(t, "/viewer/open", true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Unable to load PDF.")
}

func TestViewerClose(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.get(t, "/viewer/close", true)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, strings.TrimSpace(w.Body.String()))
}

func TestViewerWithoutHTMX(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.get(t, "/viewer/open?from=projects&vw=400&doc="+url.QueryEscape(reportRef), false)
	require.Equal(t, http.StatusOK, w.Code)

	doc := parse(t, w)
	require.Equal(t, "projects", activeNav(t, doc))
	require.Equal(t, 3, doc.Find("#viewer .doc-page").Length())
	require.Equal(t, "loaded", doc.Find("#viewer .viewer-backdrop").AttrOr("data-state", ""))
}

func TestDocumentsServed(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.get(t, "/documents/report.pdf", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
}

func TestStaticAndHealth(t *testing.T) {
	env := newTestEnv(t, false)

	for _, path := range []string{"/static/css/site.css", "/static/js/viewer.js", "/static/js/site.js"} {
		require.Equal(t, http.StatusOK, env.get(t, path, false).Code, path)
	}

	w := env.get(t, "/healthz", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.get(t, "/healthz", false)
	require.Len(t, w.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = env.do(t, req)
	require.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestNewRequiresDeps(t *testing.T) {
	_, err := New(Deps{})
	require.Error(t, err)
}

func TestViewerRefusesRemoteRefs(t *testing.T) {
	env := newTestEnv(t, false)

	var hits atomic.Int64
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(pdftest.Build(2))
	}))
	defer internal.Close()
	ref := internal.URL + "/latest/meta-data/secret.pdf"

	w := env.get(t, "/viewer/pages?doc="+url.QueryEscape(ref), true)
	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)
	require.Equal(t, 1, doc.Find(".viewer-error").Length())
	require.Zero(t, doc.Find(".doc-page").Length())
	require.Zero(t, doc.Find("[data-src]").Length())

	doc = parse(t, env.get(t, "/viewer/open?doc="+url.QueryEscape(ref), true))
	require.Equal(t, "failed", doc.Find(".viewer-backdrop").AttrOr("data-state", ""))
	require.Zero(t, doc.Find("[hx-trigger=load]").Length())

	doc = parse(t, env.get(t, "/viewer/open?doc="+url.QueryEscape(ref), false))
	require.Equal(t, 1, doc.Find("#viewer .viewer-error").Length())

	require.Zero(t, hits.Load())
}

func TestViewerRefusesUnlistedLocalRefs(t *testing.T) {
	env := newTestEnv(t, false)
	pdftest.Write(t, env.dir, "later.pdf", 2)

	doc := parse(t, env.get(t, "/viewer/pages?doc="+url.QueryEscape("/documents/later.pdf"), true))
	require.Equal(t, 1, doc.Find(".viewer-error").Length())
	require.Zero(t, doc.Find(".doc-page").Length())

	doc = parse(t, env.get(t, "/viewer/pages?doc="+url.QueryEscape("other.pdf"), true))
	require.Equal(t, 1, doc.Find(".doc-page").Length())
}

func TestPageRouterFailure(t *testing.T) {
	env := newTestEnv(t, false)
	env.server.blocks = env.server.blocks[:3]

	require.Equal(t, http.StatusInternalServerError, env.get(t, "/", false).Code)
	require.Equal(t, http.StatusInternalServerError, env.get(t, "/s/about", true).Code)
	require.Equal(t, http.StatusInternalServerError, env.get(t, "/nowhere", false).Code)
}

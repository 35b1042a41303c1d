package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dhashmi/portfolio/internal/analytics"
)

func (e *testEnv) stats(t *testing.T) *analytics.Stats {
	t.Helper()
	stats, err := e.store.Stats(context.Background())
	require.NoError(t, err)
	return stats
}

func (e *testEnv) login(t *testing.T, user, pass string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {user}, "password": {pass}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req)
}

func withCookies(req *http.Request, w *httptest.ResponseRecorder) *http.Request {
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestAdminDisabledWithoutAnalytics(t *testing.T) {
	env := newTestEnv(t, false)

	require.Equal(t, http.StatusNotFound, env.get(t, "/admin/login", false).Code)
	require.Equal(t, http.StatusNotFound, env.get(t, "/admin/dashboard", false).Code)

	w := env.get(t, "/privacy", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "does not record visits")
}

func TestAdminLogin(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.get(t, "/admin/dashboard", false)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/admin/login", w.Header().Get("Location"))

	require.Equal(t, http.StatusOK, env.get(t, "/admin/login", false).Code)

	w = env.login(t, "owner", "wrong")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Invalid credentials")
	require.Empty(t, w.Result().Cookies())

	w = env.login(t, "owner", "s3cret")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/admin/dashboard", w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
	require.True(t, cookies[0].HttpOnly)

	req := withCookies(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), w)
	dash := env.do(t, req)
	require.Equal(t, http.StatusOK, dash.Code)
	doc := parse(t, dash)
	require.Equal(t, "0", doc.Find(`[data-stat="total"] strong`).Text())

	bad := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	bad.AddCookie(&http.Cookie{Name: adminCookie, Value: "forged"})
	require.Equal(t, http.StatusFound, env.do(t, bad).Code)

	logout := env.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/admin/logout", nil), w))
	require.Equal(t, http.StatusFound, logout.Code)
	require.Equal(t, "/admin/login", logout.Header().Get("Location"))
}

func TestAdminStatsAPI(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.store.RecordVisit(context.Background(), "10.0.0.1", "test", "/s/about", "about"))

	session := env.login(t, "owner", "s3cret")

	w := env.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil), session))
	require.Equal(t, http.StatusOK, w.Code)
	var stats analytics.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.EqualValues(t, 1, stats.TotalVisits)
	require.Equal(t, []analytics.SectionViews{{Section: "about", Views: 1}}, stats.Sections)

	w = env.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/admin/export/stats", nil), session))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
}

func TestVisitorTracking(t *testing.T) {
	env := newTestEnv(t, true)

	dnt := httptest.NewRequest(http.MethodGet, "/s/about", nil)
	dnt.Header.Set("DNT", "1")
	require.Equal(t, http.StatusOK, env.do(t, dnt).Code)

	require.Equal(t, http.StatusOK, env.get(t, "/s/projects", true).Code)
	require.Equal(t, http.StatusOK, env.get(t, "/static/css/site.css", false).Code)
	require.Equal(t, http.StatusNotFound, env.get(t, "/s/contact", false).Code)

	require.Eventually(t, func() bool {
		return env.stats(t).TotalVisits == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Never(t, func() bool {
		return env.stats(t).TotalVisits > 1
	}, 100*time.Millisecond, 10*time.Millisecond)

	stats := env.stats(t)
	require.Equal(t, []analytics.SectionViews{{Section: "projects", Views: 1}}, stats.Sections)
	require.Equal(t, "/s/projects", stats.RecentVisits[0].Path)
	require.NotContains(t, stats.RecentVisits[0].HashedIP, "192.0.2.1")
}

func TestDocumentOpensRecorded(t *testing.T) {
	env := newTestEnv(t, true)

	missing := env.site.Hero.Document.Ref.String()
	env.get(t, "/viewer/pages?doc="+url.QueryEscape(reportRef), true)
	env.get(t, "/viewer/pages?doc="+url.QueryEscape(missing), true)
	env.get(t, "/viewer/pages?doc="+url.QueryEscape("../escape.pdf"), true)

	require.Eventually(t, func() bool {
		return len(env.stats(t).Documents) == 2
	}, 2*time.Second, 10*time.Millisecond)

	byRef := map[string]analytics.DocumentOpens{}
	for _, d := range env.stats(t).Documents {
		byRef[d.Ref] = d
	}
	require.EqualValues(t, 1, byRef[reportRef].Loaded)
	require.Equal(t, 3, byRef[reportRef].MaxPages)
	require.EqualValues(t, 1, byRef[missing].Failed)
}

func TestInventedRefsNotRecorded(t *testing.T) {
	env := newTestEnv(t, true)

	for i := range 5 {
		ref := fmt.Sprintf("/documents/spam-%d-%s.pdf", i, strings.Repeat("x", 40))
		w := env.get(t, "/viewer/pages?doc="+url.QueryEscape(ref), true)
		require.Equal(t, 1, parse(t, w).Find(".viewer-error").Length())
	}
	env.get(t, "/viewer/pages?doc="+url.QueryEscape(reportRef), true)

	require.Eventually(t, func() bool {
		return len(env.stats(t).Documents) > 0
	}, 2*time.Second, 10*time.Millisecond)
	require.Never(t, func() bool {
		return len(env.stats(t).Documents) > 1
	}, 100*time.Millisecond, 10*time.Millisecond)
	require.Equal(t, reportRef, env.stats(t).Documents[0].Ref)
}

func TestPrivacyPageWithAnalytics(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.get(t, "/privacy", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "365 days")
	require.Contains(t, w.Body.String(), "Do Not Track")
}

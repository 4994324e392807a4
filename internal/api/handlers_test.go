package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/stock-trader-dashboard/internal/dashboard"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubLoader struct {
	view     dashboard.View
	deadline bool
}

func (s *stubLoader) Load(ctx context.Context) dashboard.View {
	_, s.deadline = ctx.Deadline()
	return s.view
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

type renderCounter struct {
	mu     sync.Mutex
	ok     int
	failed int
}

func (c *renderCounter) ObserveRender(failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if failed {
		c.failed++
	} else {
		c.ok++
	}
}

func newTestRouter(t *testing.T, loader DashboardLoader, opts Options) http.Handler {
	t.Helper()
	renderer, err := dashboard.NewRenderer()
	require.NoError(t, err)
	h := NewHandler(loader, renderer, opts, zerolog.Nop())
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics"))
	})
	return SetupRoutes(h, dashboard.StaticFS(), metrics)
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func readyView() dashboard.View {
	return dashboard.View{
		LastUpdated: "1/1/2024, 3:30:00 PM",
		Stocks: []dashboard.StockRow{
			{ID: 1, Symbol: "AAPL", Company: "Apple Inc.", Price: "$175.25", Change: "2.35%", ChangeClass: "positive"},
		},
		Trades:          []dashboard.TradeRow{},
		ShowTradesEmpty: true,
		Queries:         map[string]string{"stocks": "success", "trades": "success", "summary": "success"},
	}
}

// ---------------------------------------------------------------------------
// Dashboard page
// ---------------------------------------------------------------------------

func TestDashboard_RendersPage(t *testing.T) {
	loader := &stubLoader{view: readyView()}
	counter := &renderCounter{}
	router := newTestRouter(t, loader, Options{RenderWait: time.Second, Metrics: counter})

	rec := get(t, router, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "Stock Trader Pro")
	assert.Contains(t, body, "AAPL")
	assert.Contains(t, body, "Last updated: 1/1/2024, 3:30:00 PM")
	assert.True(t, loader.deadline, "render wait should bound the load")
	assert.Equal(t, 1, counter.ok)
}

func TestDashboard_ErrorStillReturns200(t *testing.T) {
	view := readyView()
	view.Err = errors.New("upstream down")
	view.ErrorMessage = dashboard.ErrorMessage
	counter := &renderCounter{}
	router := newTestRouter(t, &stubLoader{view: view}, Options{Metrics: counter})

	rec := get(t, router, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unable to load dashboard data.")
	assert.Equal(t, 1, counter.failed)
}

func TestDashboard_NoRenderWaitLeavesContextUnbounded(t *testing.T) {
	loader := &stubLoader{view: readyView()}
	router := newTestRouter(t, loader, Options{})

	get(t, router, "/")

	assert.False(t, loader.deadline)
}

func TestDashboard_BasePath(t *testing.T) {
	router := newTestRouter(t, &stubLoader{view: readyView()}, Options{BasePath: "/stock-trader/"})

	rec := get(t, router, "/stock-trader/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/stock-trader/static/app.css"`)

	rec = get(t, router, "/stock-trader")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/stock-trader/", rec.Header().Get("Location"))

	rec = get(t, router, "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardJSON(t *testing.T) {
	router := newTestRouter(t, &stubLoader{view: readyView()}, Options{BasePath: "/stock-trader/"})

	rec := get(t, router, "/stock-trader/api/dashboard")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["loading"])
	assert.Equal(t, true, body["show_trades_empty"])
	stocks := body["stocks"].([]interface{})
	require.Len(t, stocks, 1)
	assert.Equal(t, "AAPL", stocks[0].(map[string]interface{})["symbol"])
}

func TestStaticAssets(t *testing.T) {
	router := newTestRouter(t, &stubLoader{}, Options{BasePath: "/stock-trader/"})

	rec := get(t, router, "/stock-trader/static/app.css")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

func TestMetricsRoute(t *testing.T) {
	router := newTestRouter(t, &stubLoader{}, Options{BasePath: "/stock-trader/"})

	rec := get(t, router, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

func healthBody(t *testing.T, rec *httptest.ResponseRecorder) (string, map[string]interface{}) {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["status"].(string), body["services"].(map[string]interface{})
}

func TestHealthCheck_AllHealthy(t *testing.T) {
	router := newTestRouter(t, &stubLoader{}, Options{
		Upstream:   stubPinger{},
		Redis:      stubPinger{},
		KafkaTopic: "trading.orders",
	})

	rec := get(t, router, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	status, services := healthBody(t, rec)
	assert.Equal(t, "healthy", status)
	assert.Equal(t, "healthy", services["api"])
	assert.Equal(t, "healthy", services["redis"])
	assert.Equal(t, "listening on trading.orders", services["kafka"])
}

func TestHealthCheck_UpstreamDown(t *testing.T) {
	router := newTestRouter(t, &stubLoader{}, Options{Upstream: stubPinger{err: errors.New("connection refused")}})

	rec := get(t, router, "/health")

	status, services := healthBody(t, rec)
	assert.Equal(t, "degraded", status)
	assert.Equal(t, "unhealthy: connection refused", services["api"])
	assert.Equal(t, "not configured", services["redis"])
	assert.Equal(t, "not configured", services["kafka"])
}

func TestHealthCheck_RedisDownIsNotDegraded(t *testing.T) {
	router := newTestRouter(t, &stubLoader{}, Options{
		Upstream: stubPinger{},
		Redis:    stubPinger{err: errors.New("timeout")},
	})

	rec := get(t, router, "/health")

	status, services := healthBody(t, rec)
	assert.Equal(t, "healthy", status)
	assert.Equal(t, "unhealthy: timeout", services["redis"])
}

package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/offeroye/internal/catalog"
	"github.com/offeroye/internal/config"
	"github.com/offeroye/internal/provider"
	"github.com/offeroye/internal/query"
	"github.com/offeroye/internal/repository"
	"github.com/offeroye/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v := viper.New()
	config.SetDefaults(v)
	cfg, err := config.Decode(v)
	if err != nil {
		t.Fatalf("decode config failed: %v", err)
	}
	cfg.Catalog.OutputFile = filepath.Join(t.TempDir(), "coupons.json")

	tables, err := catalog.DefaultTables()
	if err != nil {
		t.Fatalf("load tables failed: %v", err)
	}
	builder := catalog.NewBuilder(tables)
	repo := repository.NewFileCatalogRepository(cfg.Catalog.OutputFile)
	catalogService := service.NewCatalogService(builder, repo, service.CatalogServiceOptions{TTL: cfg.Catalog.RefreshInterval()})
	engine := query.NewEngine()
	container := &provider.Container{
		Config:         cfg,
		Builder:        builder,
		Engine:         engine,
		CatalogRepo:    repo,
		CatalogService: catalogService,
		CouponService:  service.NewCouponService(catalogService, engine, cfg.Catalog.QueryCacheTTL()),
		RefreshService: service.NewRefreshService(catalogService, nil),
	}
	return SetupRouter(cfg, container)
}

func doRequest(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func decodeStatusCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v, body=%s", err, w.Body.String())
	}
	return resp.StatusCode
}

func TestSetupRouterRoutes(t *testing.T) {
	r := newTestEngine(t)

	cases := []struct {
		method string
		target string
		code   int
	}{
		{http.MethodGet, "/api/v1/public/coupons?source=Amazon", 0},
		{http.MethodGet, "/api/v1/public/coupons?city=Pune&city=Delhi", 400},
		{http.MethodGet, "/api/v1/public/stats", 0},
		{http.MethodGet, "/api/v1/status", 0},
		{http.MethodGet, "/health", 0},
		{http.MethodGet, "/api/v1/visits", 404},
		{http.MethodGet, "/no/such/route", 404},
	}
	for _, tc := range cases {
		w := doRequest(r, tc.method, tc.target)
		if w.Code != http.StatusOK {
			t.Fatalf("%s %s: http status want 200 got %d", tc.method, tc.target, w.Code)
		}
		if got := decodeStatusCode(t, w); got != tc.code {
			t.Fatalf("%s %s: status_code want %d got %d", tc.method, tc.target, tc.code, got)
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s %s: request id header missing", tc.method, tc.target)
		}
	}
}

func TestSetupRouterDashboard(t *testing.T) {
	r := newTestEngine(t)
	w := doRequest(r, http.MethodGet, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("dashboard should render html, got %s", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "Today's Picks") {
		t.Fatalf("unfiltered dashboard should render spotlight")
	}
}

func TestSetupRouterRefreshWithoutRedis(t *testing.T) {
	r := newTestEngine(t)
	w := doRequest(r, http.MethodPost, "/api/v1/refresh?city=Pune")
	if got := decodeStatusCode(t, w); got != 0 {
		t.Fatalf("refresh should succeed without redis, got %d body=%s", got, w.Body.String())
	}
}

package server

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"a11y-hq/lumen/pkg/catalog"
	"a11y-hq/lumen/pkg/config"
	"a11y-hq/lumen/pkg/results"
	"a11y-hq/lumen/pkg/results/storage"
	"a11y-hq/lumen/pkg/rule/library"
	"a11y-hq/lumen/pkg/scan"
	"a11y-hq/lumen/pkg/telemetry/health"
	"a11y-hq/lumen/pkg/telemetry/metrics"
)

const treeYAML = `
control_type: Window
name: Main
children:
  - control_type: Hyperlink
    name: Home
  - control_type: ListItem
    name: Orphan
`

const treeJSON = `{"control_type": "Window", "children": [{"control_type": "Button", "name": "OK"}]}`

const packYAML = `
version: 1
rules:
  - id: HyperlinkHasName
    description: Hyperlinks must be named
    condition: {control_type: Hyperlink}
    pass_when: {property: {name: Name, matches: "."}}
`

type testEnv struct {
	server  *Server
	handler http.Handler
	store   *storage.MemoryStorage
	manager *catalog.Manager
	packDir string
}

func newTestEnv(t *testing.T, mutate func(*config.ServerConfig)) *testEnv {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "links.yaml"), []byte(packYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	manager, err := catalog.NewManager(&config.RulesConfig{Builtin: true, Packs: []string{dir}}, nil, nil)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := manager.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := config.Default().Server
	if mutate != nil {
		mutate(&cfg)
	}

	store := storage.NewMemoryStorage()
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test"}, prometheus.NewRegistry())
	srv, err := New(&cfg, Deps{
		Catalog:     manager,
		Storage:     store,
		Metrics:     collector,
		MetricsPath: "/metrics",
		Version:     health.NewVersionInfo("1.2.3", "abc", "now"),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &testEnv{server: srv, handler: srv.Handler(), store: store, manager: manager, packDir: dir}
}

func (e *testEnv) do(t *testing.T, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestNew_RequiresCatalog(t *testing.T) {
	if _, err := New(nil, Deps{}); err == nil {
		t.Error("New() without a catalog should fail")
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/version", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tt.path, "", "")
			if w.Code != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.want)
			}
			if w.Header().Get(RequestIDHeader) == "" {
				t.Error("missing request ID header")
			}
		})
	}
}

func TestReady_NoRules(t *testing.T) {
	manager, err := catalog.NewManager(&config.RulesConfig{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	srv, err := New(nil, Deps{Catalog: manager})
	if err != nil {
		t.Fatal(err)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /ready = %d, want 503", w.Code)
	}
}

func TestRules(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/v1/rules", "", "")
	all := decode[[]RuleView](t, w)
	if len(all) != len(library.Declarations())+1 {
		t.Errorf("rules = %d, want %d", len(all), len(library.Declarations())+1)
	}

	w = env.do(t, http.MethodGet, "/api/v1/rules?origin=pack", "", "")
	packs := decode[[]RuleView](t, w)
	if len(packs) != 1 || packs[0].ID != "HyperlinkHasName" || packs[0].File == "" {
		t.Errorf("pack rules = %+v", packs)
	}

	w = env.do(t, http.MethodGet, "/api/v1/rules/"+library.NameNotNull, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET rule = %d", w.Code)
	}
	if v := decode[RuleView](t, w); v.Origin != catalog.SourceBuiltin || v.Condition == "" {
		t.Errorf("rule = %+v", v)
	}

	if w := env.do(t, http.MethodGet, "/api/v1/rules/Missing", "", ""); w.Code != http.StatusNotFound {
		t.Errorf("GET missing rule = %d, want 404", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/v1/rules/status", "", "")
	if st := decode[catalog.Status](t, w); st.Rules != len(all) || st.Version == "" {
		t.Errorf("status = %+v", st)
	}
}

func TestReloadRules(t *testing.T) {
	env := newTestEnv(t, nil)
	before := env.manager.Snapshot().Version()

	if w := env.do(t, http.MethodPost, "/api/v1/rules/reload", "", ""); w.Code != http.StatusOK {
		t.Fatalf("reload = %d: %s", w.Code, w.Body)
	}

	if err := os.WriteFile(filepath.Join(env.packDir, "broken.yaml"), []byte("version: 1\nrules:\n  - id: Broken\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := env.do(t, http.MethodPost, "/api/v1/rules/reload", "", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("broken reload = %d, want 422", w.Code)
	}
	if env.manager.Snapshot().Version() != before {
		t.Error("failed reload replaced the active rules")
	}
}

func TestScans(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/scans?target=main.yaml", "application/yaml", treeYAML)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST scan = %d: %s", w.Code, w.Body)
	}
	created := decode[scan.Result](t, w)
	if created.Target != "main.yaml" || created.Summary.Elements != 3 || created.Status != scan.StatusCompleted {
		t.Errorf("created = %+v", created)
	}
	if loc := w.Header().Get("Location"); loc != "/api/v1/scans/"+created.ID {
		t.Errorf("Location = %q", loc)
	}

	w = env.do(t, http.MethodPost, "/api/v1/scans?rules="+library.NameNotNull, "application/json", treeJSON)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST JSON scan = %d: %s", w.Code, w.Body)
	}
	if r := decode[scan.Result](t, w); r.Summary.Rules != 1 {
		t.Errorf("rule subset scan evaluated %d rules", r.Summary.Rules)
	}

	w = env.do(t, http.MethodGet, "/api/v1/scans?target=main.yaml", "", "")
	list := decode[ScanList](t, w)
	if list.Total != 1 || len(list.Scans) != 1 || list.Scans[0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}

	w = env.do(t, http.MethodGet, "/api/v1/scans?limit=1&sort=started_at&order=asc", "", "")
	if list := decode[ScanList](t, w); list.Total != 2 || len(list.Scans) != 1 {
		t.Errorf("paginated list = total %d, %d scans", list.Total, len(list.Scans))
	}

	w = env.do(t, http.MethodGet, "/api/v1/scans/"+created.ID, "", "")
	got := decode[scan.Result](t, w)
	if len(got.Findings) != len(created.Findings) {
		t.Errorf("stored findings = %d, want %d", len(got.Findings), len(created.Findings))
	}

	w = env.do(t, http.MethodGet, "/api/v1/scans/"+created.ID+"?format=csv&failures_only=true", "", "")
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	rows, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	if len(rows) != len(created.Failures())+1 {
		t.Errorf("CSV rows = %d, want %d", len(rows), len(created.Failures())+1)
	}

	if w := env.do(t, http.MethodDelete, "/api/v1/scans/"+created.ID, "", ""); w.Code != http.StatusNoContent {
		t.Errorf("DELETE = %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/v1/scans/"+created.ID, "", ""); w.Code != http.StatusNotFound {
		t.Errorf("GET deleted = %d", w.Code)
	}
	if w := env.do(t, http.MethodDelete, "/api/v1/scans/"+created.ID, "", ""); w.Code != http.StatusNotFound {
		t.Errorf("DELETE deleted = %d", w.Code)
	}
	if n, _ := env.store.Count(context.Background(), &results.Query{}); n != 1 {
		t.Errorf("stored scans = %d, want 1", n)
	}
}

func TestScans_Errors(t *testing.T) {
	env := newTestEnv(t, func(c *config.ServerConfig) { c.MaxBodyBytes = 256 })

	tests := []struct {
		name        string
		method      string
		target      string
		contentType string
		body        string
		want        int
	}{
		{"bad yaml", http.MethodPost, "/api/v1/scans", "application/yaml", "control_type: [", http.StatusBadRequest},
		{"unknown control type", http.MethodPost, "/api/v1/scans", "application/yaml", "control_type: Widget", http.StatusBadRequest},
		{"unknown rule", http.MethodPost, "/api/v1/scans?rules=Nope", "application/yaml", treeYAML, http.StatusBadRequest},
		{"too large", http.MethodPost, "/api/v1/scans", "application/yaml", treeYAML + strings.Repeat("# padding\n", 40), http.StatusRequestEntityTooLarge},
		{"bad limit", http.MethodGet, "/api/v1/scans?limit=x", "", "", http.StatusBadRequest},
		{"bad sort", http.MethodGet, "/api/v1/scans?sort=name", "", "", http.StatusBadRequest},
		{"bad since", http.MethodGet, "/api/v1/scans?since=yesterday", "", "", http.StatusBadRequest},
		{"missing scan", http.MethodGet, "/api/v1/scans/none", "", "", http.StatusNotFound},
		{"wrong method", http.MethodPut, "/api/v1/scans", "", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.target, tt.contentType, tt.body)
			if w.Code != tt.want {
				t.Errorf("%s %s = %d, want %d: %s", tt.method, tt.target, w.Code, tt.want, w.Body)
			}
			if resp := decode[errorResponse](t, w); resp.Error == "" {
				t.Error("error response without message")
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	env := newTestEnv(t, nil)
	h := env.server.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "req-42" {
		t.Errorf("X-Request-ID = %q, want req-42", got)
	}
}

func TestStartShutdown(t *testing.T) {
	env := newTestEnv(t, func(c *config.ServerConfig) { c.ListenAddress = "127.0.0.1:0" })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Start(ctx) }()

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Start() error = %v", err)
	}
}

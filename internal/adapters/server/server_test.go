package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/hylla/zukai/internal/adapters/server/common"
	"github.com/hylla/zukai/internal/adapters/storage/sqlite"
	"github.com/hylla/zukai/internal/app"
)

// newTestService builds the shared adapter over sqlite-backed sessions.
func newTestService(t *testing.T) common.Service {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "zukai.db"))
	if err != nil {
		t.Fatalf("sqlite.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return common.NewAppServiceAdapter(
		app.NewLogicService(repo, nil, nil, app.ServiceConfig{}),
		app.NewPurposeService(repo, nil, nil, app.ServiceConfig{}),
	)
}

// TestNormalizeConfig verifies endpoint defaults and collision checks.
func TestNormalizeConfig(t *testing.T) {
	cfg, err := normalizeConfig(Config{APIEndpoint: "api/v2/", MCPEndpoint: " "})
	if err != nil {
		t.Fatalf("normalizeConfig() error = %v", err)
	}
	if cfg.HTTPBind != "127.0.0.1:8080" || cfg.APIEndpoint != "/api/v2" || cfg.MCPEndpoint != "/mcp" {
		t.Fatalf("normalizeConfig() = %#v", cfg)
	}
	if cfg.ServerName != "zukai" || cfg.ServerVersion != "dev" {
		t.Fatalf("normalizeConfig() name/version = %q/%q", cfg.ServerName, cfg.ServerVersion)
	}
	if _, err := normalizeConfig(Config{APIEndpoint: "/x", MCPEndpoint: "x/"}); err == nil {
		t.Fatal("normalizeConfig() error = nil, want endpoint collision")
	}
}

// TestNewHandlerRoutes verifies health, API and MCP mounts share one mux.
func TestNewHandlerRoutes(t *testing.T) {
	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})
	handler, cfg, err := NewHandler(Config{}, Dependencies{Service: newTestService(t), Logger: logger})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	for _, path := range []string{"/healthz", "/readyz", cfg.APIEndpoint + "/logic"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d body=%s", path, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, cfg.APIEndpoint+"/logic/items", strings.NewReader(`{"text":"a","category":"inputs"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST items status = %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(logs.String(), "/api/v1/logic/items") {
		t.Fatalf("request log missing path: %q", logs.String())
	}
}

// TestNewHandlerRequiresService verifies a missing service is rejected.
func TestNewHandlerRequiresService(t *testing.T) {
	if _, _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatal("NewHandler() error = nil, want missing dependency")
	}
}

// TestRunStopsOnCancel verifies Run shuts down when its context ends.
func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Run(ctx, Config{HTTPBind: "127.0.0.1:0"}, Dependencies{Service: newTestService(t)}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

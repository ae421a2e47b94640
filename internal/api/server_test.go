package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/slipstream/metascrape/internal/config"
	"github.com/slipstream/metascrape/internal/health"
	"github.com/slipstream/metascrape/internal/metadata"
	"github.com/slipstream/metascrape/internal/metrics"
	"github.com/slipstream/metascrape/internal/scheduler"
	"github.com/slipstream/metascrape/internal/scraper"
	"github.com/slipstream/metascrape/internal/transport"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.Server.RequestsPerMinute = 2
	cfg.Metadata.TMDB.APIKey = "test-key"
	cfg.Metadata.TMDB.BaseURL = "http://127.0.0.1:0"

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	hs := health.NewService(zerolog.Nop())
	svc, err := metadata.NewService(cfg.Metadata, transport.New(transport.Config{}, zerolog.Nop()), zerolog.Nop(),
		metadata.WithScraperOptions(scraper.WithRecorder(scraper.Recorders(m, hs))))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	reg.MustRegister(metrics.NewStateCollector(svc))
	hs.Register("tmdb")

	return NewServer(cfg, svc, hs, reg, zerolog.Nop())
}

func TestHealthCheck(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("HealthCheck status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("HealthCheck status = %q, want %q", response["status"], "ok")
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestStatus(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status code = %d, want %d", rec.Code, http.StatusOK)
	}

	var response map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["providers"] != float64(3) {
		t.Errorf("providers = %v, want 3", response["providers"])
	}
	if response["defaultProvider"] != "tmdb" {
		t.Errorf("defaultProvider = %v, want tmdb", response["defaultProvider"])
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Metrics status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "metascrape_search_cache_entries") {
		t.Error("expected state collector output in /metrics")
	}
}

func TestMetadataRoutesAreRateLimited(t *testing.T) {
	s := setupTestServer(t)

	var codes []int
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/metadata/providers", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		s.echo.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}
}

func TestProviderHealth(t *testing.T) {
	s := setupTestServer(t)
	s.healthService.SetError("tmdb", "configuration failed")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Health status = %d, want %d", rec.Code, http.StatusOK)
	}
	var response health.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(response.Providers) != 1 {
		t.Fatalf("providers = %d, want 1", len(response.Providers))
	}
	if response.Providers[0].Status != health.StatusError {
		t.Errorf("tmdb status = %q, want %q", response.Providers[0].Status, health.StatusError)
	}
	if !response.Summary.HasIssues {
		t.Error("expected summary to report issues")
	}
}

func TestSchedulerRoutes(t *testing.T) {
	s := setupTestServer(t)

	sched, err := scheduler.New(zerolog.Nop())
	if err != nil {
		t.Fatalf("scheduler.New() error = %v", err)
	}
	t.Cleanup(func() { _ = sched.Stop() })
	err = sched.Register(scheduler.Task{
		ID:   "provider-configuration",
		Name: "Provider configuration",
		Cron: "0 4 * * *",
		Func: func(context.Context) error { return nil },
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	s.RegisterScheduler(sched)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/system/tasks", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Tasks status = %d, want %d", rec.Code, http.StatusOK)
	}
	var tasks []scheduler.TaskInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "provider-configuration" {
		t.Errorf("tasks = %+v, want provider-configuration", tasks)
	}
}

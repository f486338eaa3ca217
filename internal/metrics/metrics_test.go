package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("expected non-nil registry")
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	// Go runtime collectors at minimum.
	if len(mfs) == 0 {
		t.Error("expected some metrics to be registered")
	}
}

func gatherNames(t *testing.T, reg *Registry) map[string]bool {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	names := make(map[string]bool, len(mfs))
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	return names
}

func TestRegistry_RecordScan(t *testing.T) {
	reg := NewRegistry()
	reg.RecordScan("ok", 3.2)

	names := gatherNames(t, reg)
	if !names["buywrite_scans_total"] {
		t.Error("expected buywrite_scans_total metric")
	}
	if !names["buywrite_scan_duration_seconds"] {
		t.Error("expected buywrite_scan_duration_seconds metric")
	}
}

func TestRegistry_RecordAPIRequest(t *testing.T) {
	reg := NewRegistry()
	reg.RecordAPIRequest("chains", "2xx", 0.4)
	reg.RecordAPIRequest("quotes", "4xx", 0.1)

	names := gatherNames(t, reg)
	if !names["buywrite_api_requests_total"] {
		t.Error("expected buywrite_api_requests_total metric")
	}
}

func TestRegistry_RecordContracts(t *testing.T) {
	reg := NewRegistry()
	reg.RecordContracts(120, 7, map[string]int{
		"expiry":  80,
		"strike":  25,
		"premium": 8,
	})

	names := gatherNames(t, reg)
	for _, want := range []string{
		"buywrite_contracts_seen_total",
		"buywrite_contracts_skipped_total",
		"buywrite_report_rows_total",
	} {
		if !names[want] {
			t.Errorf("expected %s metric", want)
		}
	}
}

func TestRegistry_Handler(t *testing.T) {
	reg := NewRegistry()
	reg.SetWatchlistSize(12)
	reg.SetBestReturn(0.836)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	reg.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "buywrite_watchlist_symbols 12") {
		t.Errorf("expected watchlist gauge in exposition, got:\n%s", body)
	}
	if !strings.Contains(body, "buywrite_best_return 0.836") {
		t.Errorf("expected best return gauge in exposition")
	}
}

package inspect

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*Server, *Registry) {
	t.Helper()
	registry := NewRegistry()
	srv := NewServer(registry, nil)
	return srv, registry
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected ok status, got %v", body)
	}
}

func TestListUnits(t *testing.T) {
	srv, registry := newTestServer(t)
	if _, err := registry.Register("cart", newTestUnit(t)); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/units", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var body struct {
		Units []string         `json:"units"`
		Stats map[string]int64 `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Units) != 1 || body.Units[0] != "cart" {
		t.Errorf("expected [cart], got %v", body.Units)
	}
	if _, ok := body.Stats["active_watchers"]; !ok {
		t.Errorf("expected graph stats, got %v", body.Stats)
	}
}

func TestGetUnit(t *testing.T) {
	srv, registry := newTestServer(t)
	u := newTestUnit(t)
	if _, err := registry.Register("cart", u); err != nil {
		t.Fatal(err)
	}
	u.Set("count", 2)

	req := httptest.NewRequest("GET", "/units/cart", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var snap UnitSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if snap.Fields["count"] != float64(2) {
		t.Errorf("expected count=2, got %v", snap.Fields["count"])
	}
	if snap.Derived["double"] != float64(4) {
		t.Errorf("expected double=4, got %v", snap.Derived["double"])
	}
}

func TestGetUnknownUnit(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/units/nope", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, registry := newTestServer(t)
	if _, err := registry.Register("cart", newTestUnit(t)); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, metric := range []string{"inspected_units", "active_watchers", "evaluations_total"} {
		if !strings.Contains(body, metric) {
			t.Errorf("scrape output missing %s", metric)
		}
	}
}

func TestLiveStream(t *testing.T) {
	srv, registry := newTestServer(t)
	u := newTestUnit(t)
	if _, err := registry.Register("cart", u); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/units/cart/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// First message is the current snapshot.
	var first UnitSnapshot
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if first.Fields["count"] != float64(0) {
		t.Errorf("initial snapshot count: got %v", first.Fields["count"])
	}

	u.Set("count", 7)

	var second UnitSnapshot
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("read change snapshot: %v", err)
	}
	if second.Fields["count"] != float64(7) {
		t.Errorf("change snapshot count: got %v", second.Fields["count"])
	}
	if second.Digest == first.Digest {
		t.Error("changed state must change the digest")
	}
}

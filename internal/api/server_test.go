package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nota-bridge/nota/internal/app/engine"
	"github.com/nota-bridge/nota/internal/domain"
	"github.com/nota-bridge/nota/internal/infra/extract"
)

type nullMessenger struct{}

func (nullMessenger) Send(context.Context, string) error { return nil }

type memLedger struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry
}

func (m *memLedger) Create(_ context.Context, e domain.LedgerEntry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return "rec", nil
}

const authorized = "777"

func newTestServer(t *testing.T) (*httptest.Server, *memLedger) {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.AuthorizedSender = authorized
	cfg.LedgerBackend = "mem"
	led := &memLedger{}
	eng := engine.New(cfg, nullMessenger{}, led)

	srv := httptest.NewServer(NewServer(eng, extract.New(nil)).Handler())
	t.Cleanup(srv.Close)
	return srv, led
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var parsed map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&parsed)
	return resp, parsed
}

func TestEventIntake(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/event", `{"amount": 50000}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if body["status"] != "pending" {
		t.Errorf("status field = %v, want pending", body["status"])
	}
	if body["id"] == "" || body["id"] == nil {
		t.Error("expected a pending id")
	}
	if body["pending"].(float64) != 1 {
		t.Errorf("pending = %v, want 1", body["pending"])
	}
}

func TestEventIntakeRejectsInvalid(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"zero", `{"amount": 0}`},
		{"negative", `{"amount": -100}`},
		{"non-numeric", `{"amount": "abc"}`},
		{"missing", `{}`},
		{"malformed", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postJSON(t, srv.URL+"/api/event", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}

	// None of the rejected events created pending state.
	resp, body := postJSON(t, srv.URL+"/api/reply",
		`{"text":"Lunch","sender":"`+authorized+`"}`)
	if resp.StatusCode != http.StatusOK || body["status"] != "nothing_pending" {
		t.Errorf("reply after invalid events = %d %v, want nothing_pending", resp.StatusCode, body)
	}
}

func TestDuplicateEvent(t *testing.T) {
	srv, _ := newTestServer(t)

	postJSON(t, srv.URL+"/api/event", `{"amount": 10000}`)
	resp, body := postJSON(t, srv.URL+"/api/event", `{"amount": 10000}`)

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if body["status"] != "duplicate" {
		t.Errorf("status field = %v, want duplicate", body["status"])
	}
}

func TestNotificationIntake(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/notification",
		`{"text": "Pembayaran Rp 75.000 berhasil"}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if body["status"] != "pending" {
		t.Errorf("status = %v, want pending", body["status"])
	}

	resp, _ = postJSON(t, srv.URL+"/api/notification", `{"text": "no amount here"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 when no amount found", resp.StatusCode)
	}
}

func TestReplyFlow(t *testing.T) {
	srv, led := newTestServer(t)

	postJSON(t, srv.URL+"/api/event", `{"amount": 50000}`)

	resp, body := postJSON(t, srv.URL+"/api/reply",
		`{"text":"Lunch","sender":"`+authorized+`"}`)
	if resp.StatusCode != http.StatusOK || body["status"] != "resolved" {
		t.Fatalf("reply = %d %v, want resolved", resp.StatusCode, body)
	}

	led.mu.Lock()
	defer led.mu.Unlock()
	if len(led.entries) != 1 || led.entries[0].Name != "Lunch" {
		t.Errorf("ledger entries = %+v, want one Lunch entry", led.entries)
	}
}

func TestReplyUnauthorized(t *testing.T) {
	srv, led := newTestServer(t)

	postJSON(t, srv.URL+"/api/event", `{"amount": 50000}`)

	resp, _ := postJSON(t, srv.URL+"/api/reply", `{"text":"Lunch","sender":"evil"}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}

	led.mu.Lock()
	defer led.mu.Unlock()
	if len(led.entries) != 0 {
		t.Error("unauthorized reply reached the ledger")
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	postJSON(t, srv.URL+"/api/event", `{"amount": 12345}`)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["ok"] != true {
		t.Errorf("ok = %v, want true", body["ok"])
	}
	if body["pending_count"].(float64) != 1 {
		t.Errorf("pending_count = %v, want 1", body["pending_count"])
	}
	if body["current_time"] == nil {
		t.Error("current_time missing")
	}
}

func TestVersionAndStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/version")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["version"] != Version {
		t.Errorf("version = %q, want %q", body["version"], Version)
	}
}

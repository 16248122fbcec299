package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"tokenrush.gg/internal/extledger"
	"tokenrush.gg/internal/ledger"
)

type fixedClock struct{ minute int64 }

func (c *fixedClock) CurrentMinute() int64 { return c.minute }

func newTestAPI(t *testing.T) (*httptest.Server, *ledger.Engine) {
	t.Helper()
	engine := ledger.NewEngine(ledger.Options{
		Denom:       "urush",
		PoolAccount: "rush-active-pool",
		Clock:       &fixedClock{minute: 1},
		External:    extledger.NewMemory(),
		Logger:      log.New(io.Discard, "", 0),
	})
	api := New(engine, log.New(io.Discard, "", 0))
	ts := httptest.NewServer(api.Mux())
	t.Cleanup(ts.Close)
	return ts, engine
}

func post(t *testing.T, ts *httptest.Server, path, caller string, body any) (*http.Response, map[string]any) {
	t.Helper()
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewReader(b))
	if caller != "" {
		req.Header.Set("X-Caller", caller)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestInitializeThenStatus(t *testing.T) {
	ts, _ := newTestAPI(t)

	resp, _ := get(t, ts, "/v1/status")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status before init: %d", resp.StatusCode)
	}

	resp, _ = post(t, ts, "/v1/initialize", "", map[string]any{
		"owner":                           "owner",
		"max_mints_per_player_per_minute": 10,
		"is_infinite":                     true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("initialize: %d", resp.StatusCode)
	}

	resp, _ = post(t, ts, "/v1/initialize", "", map[string]any{"owner": "other"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second initialize: %d", resp.StatusCode)
	}

	resp, body := get(t, ts, "/v1/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if body["owner"] != "owner" || body["is_infinite"] != true {
		t.Fatalf("status body: %v", body)
	}
}

func TestAutoMintAuthorization(t *testing.T) {
	ts, _ := newTestAPI(t)
	post(t, ts, "/v1/initialize", "", map[string]any{"owner": "owner", "is_infinite": true})

	resp, body := post(t, ts, "/v1/automint", "mallory", map[string]any{"amount": 100})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("automint as non-owner: %d %v", resp.StatusCode, body)
	}

	resp, body = post(t, ts, "/v1/automint", "owner", map[string]any{"amount": 100})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("automint: %d %v", resp.StatusCode, body)
	}
	if body["game_amount"] != float64(80) || body["owner_amount"] != float64(20) {
		t.Fatalf("split: %v", body)
	}
}

func TestPlayerEndpoint(t *testing.T) {
	ts, engine := newTestAPI(t)
	post(t, ts, "/v1/initialize", "", map[string]any{"owner": "owner", "is_infinite": true, "max_mints_per_player_per_minute": 5})
	post(t, ts, "/v1/automint", "owner", map[string]any{"amount": 100})
	if _, err := engine.EarnFromPool(context.Background(), "p1", "p1", 30); err != nil {
		t.Fatalf("earn: %v", err)
	}

	resp, _ := get(t, ts, "/v1/player")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("player without id: %d", resp.StatusCode)
	}
	resp, _ = get(t, ts, "/v1/player?id=nobody")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown player: %d", resp.StatusCode)
	}
	resp, body := get(t, ts, "/v1/player?id=p1")
	if resp.StatusCode != http.StatusOK || body["total_earned"] != float64(30) {
		t.Fatalf("player: %d %v", resp.StatusCode, body)
	}
}

func TestPauseAndAudit(t *testing.T) {
	ts, _ := newTestAPI(t)
	post(t, ts, "/v1/initialize", "", map[string]any{"owner": "owner", "is_infinite": true})
	post(t, ts, "/v1/automint", "owner", map[string]any{"amount": 1000})

	resp, _ := post(t, ts, "/v1/pause", "imposter", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("pause as non-owner: %d", resp.StatusCode)
	}
	resp, _ = post(t, ts, "/v1/pause", "owner", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pause: %d", resp.StatusCode)
	}

	resp, body := post(t, ts, "/v1/automint", "owner", map[string]any{"amount": 1})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("automint after pause: %d %v", resp.StatusCode, body)
	}

	resp, report := get(t, ts, "/v1/audit")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("audit: %d", resp.StatusCode)
	}
	if report["conserved"] != true {
		t.Fatalf("audit report: %v", report)
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestAPI(t)
	resp, body := get(t, ts, "/healthz")
	if resp.StatusCode != http.StatusOK || body["ok"] != true || body["initialized"] != false {
		t.Fatalf("healthz: %d %v", resp.StatusCode, body)
	}
}

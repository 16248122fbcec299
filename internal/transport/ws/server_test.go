package ws

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tokenrush.gg/internal/extledger"
	"tokenrush.gg/internal/ledger"
	"tokenrush.gg/internal/protocol"
)

type fixedClock struct{ minute int64 }

func (c *fixedClock) CurrentMinute() int64 { return c.minute }

func newTestServer(t *testing.T) (*httptest.Server, *ledger.Engine) {
	t.Helper()
	engine := ledger.NewEngine(ledger.Options{
		Denom:       "urush",
		PoolAccount: "rush-active-pool",
		Clock:       &fixedClock{minute: 1},
		External:    extledger.NewMemory(),
		Logger:      log.New(io.Discard, "", 0),
	})
	if err := engine.Initialize("owner", 10, true, 0); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := engine.AutoMint(context.Background(), "owner", 1000); err != nil {
		t.Fatalf("automint: %v", err)
	}

	srv := NewServer(engine, log.New(io.Discard, "", 0))
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", srv.Handler())
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, engine
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	b, _ := json.Marshal(v)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func read(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := json.Unmarshal(msg, v); err != nil {
		t.Fatalf("unmarshal %q: %v", msg, err)
	}
}

func handshake(t *testing.T, conn *websocket.Conn, player string) protocol.WelcomeMsg {
	t.Helper()
	send(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerID:        player,
	})
	var welcome protocol.WelcomeMsg
	read(t, conn, &welcome)
	if welcome.Type != protocol.TypeWelcome {
		t.Fatalf("expected WELCOME, got %+v", welcome)
	}
	return welcome
}

func TestHandshakeAndEarn(t *testing.T) {
	ts, engine := newTestServer(t)
	conn := dial(t, ts)

	welcome := handshake(t, conn, "p1")
	if welcome.ActivePool != 800 || welcome.MintsPerMinute != 10 {
		t.Fatalf("welcome: %+v", welcome)
	}

	send(t, conn, protocol.EarnMsg{
		Type:            protocol.TypeEarn,
		ProtocolVersion: protocol.Version,
		Seq:             1,
		Amount:          5,
	})
	var res protocol.ResultMsg
	read(t, conn, &res)
	if res.Type != protocol.TypeResult || res.Seq != 1 || res.Op != protocol.TypeEarn {
		t.Fatalf("result: %+v", res)
	}
	if res.PoolBalance != 795 || res.TotalEarned != 5 || res.PlayerBalance != 5 {
		t.Fatalf("result balances: %+v", res)
	}

	stats, ok := engine.PlayerStats("p1")
	if !ok || stats.TotalEarned != 5 {
		t.Fatalf("engine stats: %+v ok=%v", stats, ok)
	}
}

func TestEarnErrorsCarryStableCodes(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)
	handshake(t, conn, "p1")

	send(t, conn, protocol.EarnMsg{
		Type:            protocol.TypeEarn,
		ProtocolVersion: protocol.Version,
		Seq:             2,
		Amount:          0,
	})
	var errMsg protocol.ErrorMsg
	read(t, conn, &errMsg)
	if errMsg.Type != protocol.TypeError || errMsg.Code != protocol.ErrInvalidAmount {
		t.Fatalf("expected E_INVALID_AMOUNT, got %+v", errMsg)
	}

	send(t, conn, protocol.EarnMsg{
		Type:            protocol.TypeEarn,
		ProtocolVersion: protocol.Version,
		Seq:             3,
		Amount:          10_000,
	})
	read(t, conn, &errMsg)
	if errMsg.Code != protocol.ErrInsufficientPool {
		t.Fatalf("expected E_INSUFFICIENT_POOL, got %+v", errMsg)
	}
}

func TestHandshakeRejectsBadVersion(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)

	send(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: "0.1",
		PlayerID:        "p1",
	})
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected close on bad protocol_version")
	}
}

func TestStatsRequest(t *testing.T) {
	ts, engine := newTestServer(t)
	if _, err := engine.EarnFromPool(context.Background(), "p1", "p1", 7); err != nil {
		t.Fatalf("earn: %v", err)
	}
	conn := dial(t, ts)
	handshake(t, conn, "p1")

	send(t, conn, protocol.StatsMsg{
		Type:            protocol.TypeStats,
		ProtocolVersion: protocol.Version,
		Seq:             9,
	})
	var res protocol.ResultMsg
	read(t, conn, &res)
	if res.Op != protocol.TypeStats || res.TotalEarned != 7 {
		t.Fatalf("stats result: %+v", res)
	}
}

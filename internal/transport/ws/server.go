package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"tokenrush.gg/internal/ledger"
	"tokenrush.gg/internal/protocol"
)

// Server speaks the game-client protocol: one HELLO handshake binding the
// connection to a player identity, then EARN/STATS requests. The connection
// identity is the caller identity the engine authorizes against.
type Server struct {
	engine *ledger.Engine
	log    *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(engine *ledger.Engine, logger *log.Logger) *Server {
	return &Server{
		engine: engine,
		log:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		player := s.handshake(conn)
		if player == "" {
			return
		}

		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			switch base.Type {
			case protocol.TypeEarn:
				s.handleEarn(conn, player, msg)
			case protocol.TypeStats:
				s.handleStats(conn, player, msg)
			}
		}
	}
}

func (s *Server) handleEarn(conn *websocket.Conn, player string, msg []byte) {
	var earn protocol.EarnMsg
	if err := json.Unmarshal(msg, &earn); err != nil {
		return
	}
	if earn.ProtocolVersion != protocol.Version {
		writeErr(conn, earn.Seq, protocol.ErrProtoBadRequest, "bad protocol_version")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := s.engine.EarnFromPool(ctx, player, player, earn.Amount)
	if err != nil {
		writeErr(conn, earn.Seq, ledger.Code(err), err.Error())
		return
	}
	writeJSON(conn, protocol.ResultMsg{
		Type:          protocol.TypeResult,
		Seq:           earn.Seq,
		Op:            protocol.TypeEarn,
		PoolBalance:   res.PoolBalance,
		PlayerBalance: res.PlayerBalance,
		SessionTokens: res.SessionTokens,
		TotalEarned:   res.TotalEarned,
		TxID:          res.TxID,
	})
}

func (s *Server) handleStats(conn *websocket.Conn, player string, msg []byte) {
	var req protocol.StatsMsg
	if err := json.Unmarshal(msg, &req); err != nil {
		return
	}
	stats, _ := s.engine.PlayerStats(player)
	writeJSON(conn, protocol.ResultMsg{
		Type:          protocol.TypeResult,
		Seq:           req.Seq,
		Op:            protocol.TypeStats,
		SessionTokens: stats.SessionTokens,
		TotalEarned:   stats.TotalEarned,
	})
}

func (s *Server) handshake(conn *websocket.Conn) string {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return ""
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return ""
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return ""
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return ""
	}
	player := strings.TrimSpace(hello.PlayerID)
	if player == "" {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "missing player_id"), time.Now().Add(time.Second))
		return ""
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        player,
		Denom:           s.engine.Denom(),
	}
	if st, err := s.engine.Status(); err == nil {
		welcome.MintsPerMinute = st.MaxMintsPerPlayerPerMinute
		welcome.ActivePool = st.ActivePool
	}
	if stats, ok := s.engine.PlayerStats(player); ok {
		welcome.SessionTokens = stats.SessionTokens
		welcome.TotalEarned = stats.TotalEarned
	}
	if !writeJSON(conn, welcome) {
		return ""
	}
	return player
}

func writeErr(conn *websocket.Conn, seq uint64, code, message string) {
	writeJSON(conn, protocol.ErrorMsg{
		Type:    protocol.TypeError,
		Seq:     seq,
		Code:    code,
		Message: message,
	})
}

func writeJSON(conn *websocket.Conn, v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		return false
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b) == nil
}

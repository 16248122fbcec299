// Package httpapi is the administrative surface: initialize, automint,
// emergency pause, status and audit. The engine does the actual owner check;
// this layer only carries the caller identity from the X-Caller header.
package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"tokenrush.gg/internal/ledger"
	"tokenrush.gg/internal/protocol"
)

type Server struct {
	engine *ledger.Engine
	log    *log.Logger
	mux    *http.ServeMux
}

func New(engine *ledger.Engine, logger *log.Logger) *Server {
	s := &Server{engine: engine, log: logger, mux: http.NewServeMux()}
	s.mux.HandleFunc("/healthz", s.healthz)
	s.mux.HandleFunc("/v1/status", s.handleStatus)
	s.mux.HandleFunc("/v1/player", s.handlePlayer)
	s.mux.HandleFunc("/v1/audit", s.handleAudit)
	s.mux.HandleFunc("/v1/initialize", s.handleInitialize)
	s.mux.HandleFunc("/v1/automint", s.handleAutoMint)
	s.mux.HandleFunc("/v1/pause", s.handlePause)
	return s
}

func (s *Server) Mux() *http.ServeMux { return s.mux }

func caller(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Caller"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errBody struct {
	Error errInfo `json:"error"`
}

type errInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeErr(w http.ResponseWriter, err error) {
	code := ledger.Code(err)
	status := http.StatusInternalServerError
	switch code {
	case protocol.ErrInvalidAmount, protocol.ErrProtoBadRequest:
		status = http.StatusBadRequest
	case protocol.ErrNotOwner, protocol.ErrNotPlayer:
		status = http.StatusForbidden
	case protocol.ErrAlreadyInitialized:
		status = http.StatusConflict
	case protocol.ErrNotInitialized:
		status = http.StatusServiceUnavailable
	case protocol.ErrSupplyLimit, protocol.ErrInsufficientPool:
		status = http.StatusUnprocessableEntity
	case protocol.ErrRateLimit:
		status = http.StatusTooManyRequests
	case protocol.ErrLedger:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errBody{Error: errInfo{Code: code, Message: err.Error()}})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"initialized": s.engine.Initialized(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.engine.Status()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"owner":                           st.Owner,
		"total_minted":                    st.TotalMinted,
		"is_infinite":                     st.IsInfinite,
		"max_supply":                      st.MaxSupply,
		"max_mints_per_player_per_minute": st.MaxMintsPerPlayerPerMinute,
		"active_pool":                     st.ActivePool,
		"reward_pool":                     st.RewardPool,
		"reserve_pool":                    st.ReservePool,
		"burn_pool":                       st.BurnPool,
		"players":                         st.Players,
		"denom":                           s.engine.Denom(),
	})
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	player := strings.TrimSpace(r.URL.Query().Get("id"))
	if player == "" {
		writeJSON(w, http.StatusBadRequest, errBody{Error: errInfo{Code: protocol.ErrProtoBadRequest, Message: "missing id"}})
		return
	}
	stats, ok := s.engine.PlayerStats(player)
	if !ok {
		writeJSON(w, http.StatusNotFound, errBody{Error: errInfo{Code: protocol.ErrProtoBadRequest, Message: "unknown player"}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"player":            stats.Player,
		"session_tokens":    stats.SessionTokens,
		"total_earned":      stats.TotalEarned,
		"last_mint_minute":  stats.LastMintMinute,
		"mints_this_minute": stats.MintsThisMinute,
	})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	report, err := s.engine.Audit(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type initializeReq struct {
	Owner                      string `json:"owner"`
	MaxMintsPerPlayerPerMinute uint32 `json:"max_mints_per_player_per_minute"`
	IsInfinite                 bool   `json:"is_infinite"`
	MaxSupply                  uint64 `json:"max_supply"`
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req initializeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Owner) == "" {
		writeJSON(w, http.StatusBadRequest, errBody{Error: errInfo{Code: protocol.ErrProtoBadRequest, Message: "owner required"}})
		return
	}
	if err := s.engine.Initialize(req.Owner, req.MaxMintsPerPlayerPerMinute, req.IsInfinite, req.MaxSupply); err != nil {
		writeErr(w, err)
		return
	}
	s.log.Printf("initialize via api: owner=%s", req.Owner)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type autoMintReq struct {
	Amount uint64 `json:"amount"`
}

func (s *Server) handleAutoMint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req autoMintReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: errInfo{Code: protocol.ErrProtoBadRequest, Message: "bad body"}})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	res, err := s.engine.AutoMint(ctx, caller(r), req.Amount)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_minted": res.TotalMinted,
		"game_amount":  res.GameAmount,
		"owner_amount": res.OwnerAmount,
		"pool_tx_id":   res.PoolTxID,
		"owner_tx_id":  res.OwnerTxID,
	})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.engine.EmergencyPause(caller(r)); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

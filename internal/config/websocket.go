package config

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultWSWriteWait = 10 * time.Second
	defaultWSReadLimit = 4096
)

// WebSocket holds the upgrader and per-connection limits for live game
// sessions. A move command is a few bytes, so ReadLimit stays small.
type WebSocket struct {
	Upgrader  websocket.Upgrader
	WriteWait time.Duration
	ReadLimit int64
}

func NewWebSocket(cfg *App) (*WebSocket, error) {
	ws := &WebSocket{
		WriteWait: cfg.WSWriteWait,
		ReadLimit: cfg.WSReadLimit,
	}
	if ws.WriteWait <= 0 {
		ws.WriteWait = defaultWSWriteWait
	}
	if ws.ReadLimit <= 0 {
		ws.ReadLimit = defaultWSReadLimit
	}

	ws.Upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || cfg.AllowsOrigin(origin)
		},
	}

	return ws, nil
}

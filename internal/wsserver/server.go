// internal/wsserver/server.go
package wsserver

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// Server exposes the broadcaster at /ws with optional token auth.
type Server struct {
	broadcaster *Broadcaster
	authToken   string
}

// NewServer creates a Server. An empty authToken disables auth.
func NewServer(broadcaster *Broadcaster, authToken string) *Server {
	return &Server{broadcaster: broadcaster, authToken: authToken}
}

// SetupRoutes registers the websocket endpoint on mux.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		// Local tooling server; clients connect from file:// overlays and
		// localhost pages alike.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}

	slog.Debug("ws client connected", "remote", r.RemoteAddr)
	c := s.broadcaster.AddClient(conn)

	go func() {
		defer func() {
			s.broadcaster.RemoveClient(c)
			slog.Debug("ws client disconnected", "remote", r.RemoteAddr)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) authorize(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}
	if r.URL.Query().Get("token") == s.authToken {
		return true
	}
	return r.Header.Get("X-Danmaku-Token") == s.authToken
}

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"traceview/internal/session"
)

const (
	wsWriteTimeout = 5 * time.Second
	// interactions are a few hundred bytes; anything past this closes the socket
	wsReadLimit = 64 << 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(strings.TrimSpace(r.Host))
		originHost := strings.ToLower(strings.TrimSpace(u.Host))
		return host == originHost
	},
}

// wsReply is sent for every interaction received on the socket.
type wsReply struct {
	SessionID string            `json:"session_id"`
	Snapshot  *session.Snapshot `json:"snapshot,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// handleWS runs an interactive session: each message the client sends is an
// interaction, answered with a freshly rendered snapshot.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	// the connection outlives the upgrade request
	s.serveConnection(context.WithoutCancel(r.Context()), conn)
}

func (s *Server) serveConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	id := uuid.NewString()
	logger := log.WithField("session", id)
	logger.Debug("Interactive session opened")
	defer logger.Debug("Interactive session closed")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var in session.Interaction
		if err := json.Unmarshal(data, &in); err != nil {
			if err := writeReply(conn, wsReply{SessionID: id, Error: "invalid interaction: " + err.Error()}); err != nil {
				return
			}
			continue
		}
		if in.Dataset == "" {
			if err := writeReply(conn, wsReply{SessionID: id, Error: "dataset is required"}); err != nil {
				return
			}
			continue
		}
		snap := s.session.Render(ctx, in)
		logger.WithField("dataset", in.Dataset).Debug("Rendered snapshot")
		if err := writeReply(conn, wsReply{SessionID: id, Snapshot: &snap}); err != nil {
			return
		}
	}
}

func writeReply(conn *websocket.Conn, payload wsReply) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(payload)
}

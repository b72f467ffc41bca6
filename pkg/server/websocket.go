package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"pyjs/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Allow all origins; auth is enforced by the bearer token
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket treats every text message as one program and replies with
// a Response. The connection stays open across failures.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	policy, err := s.policyFor(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		logger.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(MaxSourceBytes)

	for {
		src, err := receive(conn)
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("Websocket closed", "error", err)
			}
			return
		}
		if err := conn.WriteJSON(s.transpile(policy, src)); err != nil {
			logger.Debug("Websocket write failed", "error", err)
			return
		}
	}
}

// receive reads the next text message. A binary frame ends the session.
func receive(conn *websocket.Conn) (string, error) {
	msgType, msg, err := conn.ReadMessage()
	if err != nil {
		return "", err
	}
	if msgType != websocket.TextMessage {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "text messages only"))
		return "", errors.New("unexpected binary message")
	}
	return string(msg), nil
}

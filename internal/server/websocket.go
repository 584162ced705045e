package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/otpgate/otpgate/internal/logging"
	"github.com/otpgate/otpgate/internal/verify"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Idle time allowed between submissions on one connection
	readWait = 60 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  256,
	WriteBufferSize: 256,
	// The demo service is meant for localhost and LAN use; it does not
	// enforce browser origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades the connection and answers code submissions until
// the client disconnects. Each text frame carries one verify.CheckRequest
// and receives one verify.CheckResponse.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	remoteAddr := conn.RemoteAddr().String()
	logging.LogConnection(remoteAddr, "websocket_connected")

	defer func() {
		_ = conn.Close()
		logging.LogConnection(remoteAddr, "websocket_closed")
	}()

	conn.SetReadLimit(maxMessageSize)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(readWait)); err != nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Debug("WebSocket read error",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
			}
			return
		}

		req, err := verify.UnmarshalCheckRequest(data)
		var resp verify.CheckResponse
		if err != nil {
			resp = verify.CheckResponse{OK: false, Reason: "malformed request"}
		} else {
			resp = s.check(r.Context(), remoteAddr, req.Code)
		}

		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := conn.WriteJSON(resp); err != nil {
			logging.Debug("WebSocket write error",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
			return
		}
	}
}

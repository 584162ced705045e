package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultRemoteTimeout bounds a single remote verification exchange.
const DefaultRemoteTimeout = 5 * time.Second

// CheckRequest is the wire format sent to a remote verification service.
type CheckRequest struct {
	Code string `json:"code"`
}

// CheckResponse is the wire format returned by a remote verification
// service.
type CheckResponse struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// Remote returns a verifier that submits the code to an otpgate verification
// service over WebSocket. url is a ws:// or wss:// endpoint, typically
// "ws://host:port/verify/ws". Each submission dials a fresh connection;
// submissions are rare enough that connection reuse is not worth the
// bookkeeping.
func Remote(url string, timeout time.Duration) Func {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}

	return func(ctx context.Context, code string) (bool, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			return false, &RemoteError{URL: url, Op: "dial", Err: err}
		}
		defer func() { _ = conn.Close() }()

		deadline, ok := ctx.Deadline()
		if ok {
			_ = conn.SetWriteDeadline(deadline)
			_ = conn.SetReadDeadline(deadline)
		}

		if err := conn.WriteJSON(CheckRequest{Code: code}); err != nil {
			return false, &RemoteError{URL: url, Op: "send", Err: err}
		}

		var resp CheckResponse
		if err := conn.ReadJSON(&resp); err != nil {
			return false, &RemoteError{URL: url, Op: "receive", Err: err}
		}

		// Close politely; the result is already in hand, so errors here are
		// not worth surfacing.
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)

		return resp.OK, nil
	}
}

// UnmarshalCheckRequest parses a raw WebSocket message into a CheckRequest.
// Shared with the server side so both ends agree on the frame format.
func UnmarshalCheckRequest(data []byte) (CheckRequest, error) {
	var req CheckRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return CheckRequest{}, fmt.Errorf("malformed verification request: %w", err)
	}
	return req, nil
}

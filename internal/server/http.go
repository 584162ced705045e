package server

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/otpgate/otpgate/internal/logging"
	"github.com/otpgate/otpgate/internal/verify"
)

// maxRequestBody bounds a verification request. A code submission is a few
// dozen bytes; anything larger is not a legitimate client.
const maxRequestBody = 1024

// handleVerify answers a single code submission over plain HTTP.
// Request:  POST /verify  {"code": "123456"}
// Response: 200           {"ok": true}  or  {"ok": false, "reason": "..."}
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	req, err := verify.UnmarshalCheckRequest(body)
	if err != nil {
		logging.Debug("Rejected malformed verification request",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	resp := s.check(r.Context(), r.RemoteAddr, req.Code)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error("Failed to write verification response",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
	}
}

// Package server implements the demo verification service.
//
// The service answers one-time-passcode submissions using an injected
// verify.Func. Two transports are exposed:
//
//   - POST /verify accepts a single JSON submission and returns the result.
//   - GET /verify/ws upgrades to WebSocket and answers submissions
//     frame-by-frame until the client disconnects. This is the transport
//     the prompt's remote verifier uses.
//
// Submitted codes are never logged; only attempt outcomes are. The service
// keeps no state between submissions and does no rate limiting - it exists
// to exercise the remote verification path end to end, not to guard
// anything.
package server

// Package entry implements the one-time-passcode entry state machine.
//
// A Controller owns six single-digit cells, the index of the focused cell,
// and the verification lifecycle of the current attempt (Idle, Verifying,
// Success, Error, Locked). It reacts to cell-level input events (digit,
// backspace, arrow keys, paste) and to the resolution of an asynchronous
// verification call.
//
// The controller never performs I/O and never touches the terminal. Every
// operation returns a list of Effect values describing the side effects the
// presentation layer should carry out: move the visible focus, run the
// verification collaborator, start the shake animation, schedule the delayed
// error clear. Timers are modeled as effects carrying a sequence token; the
// controller ignores results delivered with a stale token, so cancelling a
// pending timer on Reset or re-submit is correct by construction.
//
// # Lifecycle
//
//	Idle --(code complete & auto-submit, or Submit())--> Verifying
//	Verifying --(verifier returns true)--> Success            [terminal]
//	Verifying --(verifier returns false or error)--> Error
//	Verifying --(limit reached on failure)--> Locked          [terminal]
//	Error --(clear delay elapses)--> Idle                     (cells cleared)
//	any state --(Reset())--> Idle                             (cells cleared)
//
// Success and Locked are terminal until an external Reset. Only one
// verification call is in flight at a time per controller; Submit while
// Verifying is a no-op.
package entry

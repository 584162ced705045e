// Package tui renders the interactive entry prompt.
//
// The Bubble Tea model here is a thin presentation layer over
// entry.Controller: keypresses are translated into controller operations,
// and the effects the controller returns are mapped onto commands - the
// verification collaborator runs as an async tea.Cmd, the error-clear delay
// and shake animation as tea.Tick timers. All entry semantics (focus
// movement, paste handling, the verification lifecycle, timer cancellation)
// live in the controller; this package only draws cells and schedules work.
package tui

package entry

import "time"

// Effect is a side-effect intent emitted by a controller operation. The
// presentation layer consumes effects and performs the actual work (moving
// the terminal cursor, dispatching the verification call, arming timers).
// The controller itself never executes side effects.
type Effect interface {
	isEffect()
}

// FocusCell asks the presentation layer to move visible input focus to the
// cell at Index.
type FocusCell struct {
	Index int
}

// Shake asks the presentation layer to play the transient shake animation on
// the cell group. Emitted once per failed verification.
type Shake struct{}

// StartVerify asks the presentation layer to invoke the verification
// collaborator with Code. The result must be delivered back through
// Controller.ResolveVerify with the same Seq; results carrying a stale Seq
// are ignored.
type StartVerify struct {
	Seq  int
	Code string
}

// ScheduleClear asks the presentation layer to arm a one-shot timer that
// calls Controller.FireClear(Seq) after Delay. The timer drives the
// Error -> Idle transition; a Reset or a newer attempt invalidates Seq, which
// cancels the pending transition.
type ScheduleClear struct {
	Seq   int
	Delay time.Duration
}

// Lock tells the presentation layer the attempt limit has been reached and
// input is disabled until Reset.
type Lock struct{}

func (FocusCell) isEffect()     {}
func (Shake) isEffect()         {}
func (StartVerify) isEffect()   {}
func (ScheduleClear) isEffect() {}
func (Lock) isEffect()          {}

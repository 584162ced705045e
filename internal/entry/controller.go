package entry

import (
	"time"
)

// CodeLength is the fixed number of digit cells.
const CodeLength = 6

// ErrorDisplayDelay is how long the Error state is shown before the cells
// are cleared and the controller returns to Idle.
const ErrorDisplayDelay = 400 * time.Millisecond

// State is the verification lifecycle of the current submission attempt.
type State int

const (
	// StateIdle accepts input. Initial state.
	StateIdle State = iota
	// StateVerifying means a verification call is in flight. Input is
	// rejected until the call resolves.
	StateVerifying
	// StateSuccess is terminal: the code was verified. No further input is
	// accepted until Reset.
	StateSuccess
	// StateError is shown after a failed verification. After
	// ErrorDisplayDelay the controller clears the cells and returns to Idle.
	StateError
	// StateLocked is terminal: the attempt limit was exceeded. Only Reset
	// leaves this state.
	StateLocked
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateVerifying:
		return "verifying"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	case StateLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// Direction identifies an arrow key.
type Direction int

const (
	ArrowLeft Direction = iota
	ArrowRight
	ArrowUp
	ArrowDown
)

// Options configures controller behavior.
type Options struct {
	// AutoSubmit triggers verification automatically when the sixth digit is
	// entered. When false, Submit must be called explicitly.
	AutoSubmit bool

	// MaxAttempts is the number of failed verifications allowed before the
	// controller locks. Zero means unlimited.
	MaxAttempts int
}

// DefaultOptions returns the default controller configuration.
func DefaultOptions() Options {
	return Options{
		AutoSubmit:  true,
		MaxAttempts: 0,
	}
}

// CellView is the per-cell render state consumed by the presentation layer.
type CellView struct {
	Value   rune // 0 when empty
	Filled  bool
	Focused bool
	Error   bool
}

// Controller is the OTP entry state machine. It is not safe for concurrent
// use; all operations are expected to run on a single event loop.
type Controller struct {
	cells [CodeLength]rune // 0 = empty
	focus int
	state State
	opts  Options

	attempts int

	// Sequence tokens for in-flight async work. Bumping a token orphans any
	// outstanding result or timer carrying the old value.
	verifySeq int
	clearSeq  int
}

// NewController creates a controller in the Idle state with focus on cell 0.
func NewController(opts Options) *Controller {
	return &Controller{opts: opts}
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Focus returns the index of the focused cell.
func (c *Controller) Focus() int { return c.focus }

// Attempts returns the number of failed verification attempts since the last
// Reset.
func (c *Controller) Attempts() int { return c.attempts }

// Cell returns the digit in cell i and whether the cell is filled.
func (c *Controller) Cell(i int) (rune, bool) {
	if i < 0 || i >= CodeLength {
		return 0, false
	}
	return c.cells[i], c.cells[i] != 0
}

// Complete reports whether all six cells hold a digit.
func (c *Controller) Complete() bool {
	for _, r := range c.cells {
		if r == 0 {
			return false
		}
	}
	return true
}

// Code returns the concatenation of all filled cells. It is six characters
// exactly when Complete is true.
func (c *Controller) Code() string {
	buf := make([]rune, 0, CodeLength)
	for _, r := range c.cells {
		if r != 0 {
			buf = append(buf, r)
		}
	}
	return string(buf)
}

// Cells returns the render state of all six cells.
func (c *Controller) Cells() [CodeLength]CellView {
	var views [CodeLength]CellView
	hasErr := c.state == StateError || c.state == StateLocked
	for i, r := range c.cells {
		views[i] = CellView{
			Value:   r,
			Filled:  r != 0,
			Focused: c.state == StateIdle && i == c.focus,
			Error:   hasErr,
		}
	}
	return views
}

// SetCellDigit enters a single digit into cell index. Non-digit input is
// silently rejected: the cell and focus are left unchanged. On success focus
// advances to the next cell (staying on the last cell at index 5); if the
// code becomes complete and auto-submit is enabled, verification starts.
func (c *Controller) SetCellDigit(index int, ch rune) []Effect {
	if c.state != StateIdle || index < 0 || index >= CodeLength {
		return nil
	}
	if ch < '0' || ch > '9' {
		return nil
	}

	c.cells[index] = ch

	var effects []Effect
	if index < CodeLength-1 {
		c.focus = index + 1
		effects = append(effects, FocusCell{Index: c.focus})
	}

	if c.Complete() && c.opts.AutoSubmit {
		effects = append(effects, c.Submit()...)
	}
	return effects
}

// ClearCell empties cell index. Focus does not move.
func (c *Controller) ClearCell(index int) []Effect {
	if c.state != StateIdle || index < 0 || index >= CodeLength {
		return nil
	}
	c.cells[index] = 0
	return nil
}

// HandleBackspace implements delete-then-step-back semantics: a filled cell
// is cleared in place; an already-empty cell clears the previous cell and
// moves focus back to it.
func (c *Controller) HandleBackspace(index int) []Effect {
	if c.state != StateIdle || index < 0 || index >= CodeLength {
		return nil
	}

	if c.cells[index] != 0 {
		c.cells[index] = 0
		return nil
	}
	if index == 0 {
		return nil
	}

	c.cells[index-1] = 0
	c.focus = index - 1
	return []Effect{FocusCell{Index: c.focus}}
}

// HandleArrow moves focus left or right, clamped to the cell range. Up and
// down deliberately do not change focus.
func (c *Controller) HandleArrow(dir Direction, index int) []Effect {
	if c.state != StateIdle || index < 0 || index >= CodeLength {
		return nil
	}

	next := index
	switch dir {
	case ArrowLeft:
		next = index - 1
		if next < 0 {
			next = 0
		}
	case ArrowRight:
		next = index + 1
		if next > CodeLength-1 {
			next = CodeLength - 1
		}
	case ArrowUp, ArrowDown:
		return nil
	}

	if next == c.focus {
		return nil
	}
	c.focus = next
	return []Effect{FocusCell{Index: c.focus}}
}

// HandlePaste writes the digits of raw into consecutive cells starting at
// index. Non-digit characters are stripped first. Cells before index are
// left untouched; cells from index onward are overwritten. Focus lands after
// the last pasted digit, clamped to the final cell.
func (c *Controller) HandlePaste(raw string, index int) []Effect {
	if c.state != StateIdle || index < 0 || index >= CodeLength {
		return nil
	}

	digits := make([]rune, 0, len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return nil
	}

	n := len(digits)
	if n > CodeLength-index {
		n = CodeLength - index
	}
	for i := 0; i < n; i++ {
		c.cells[index+i] = digits[i]
	}

	c.focus = index + len(digits)
	if c.focus > CodeLength-1 {
		c.focus = CodeLength - 1
	}
	effects := []Effect{FocusCell{Index: c.focus}}

	if c.Complete() && c.opts.AutoSubmit {
		effects = append(effects, c.Submit()...)
	}
	return effects
}

// Submit starts verification of the entered code. It is a silent no-op
// unless the controller is Idle and the code is complete; in particular a
// second Submit while a verification call is in flight does nothing.
func (c *Controller) Submit() []Effect {
	if c.state != StateIdle || !c.Complete() {
		return nil
	}

	c.state = StateVerifying
	c.verifySeq++
	c.clearSeq++ // orphan any pending error clear
	return []Effect{StartVerify{Seq: c.verifySeq, Code: c.Code()}}
}

// ResolveVerify delivers the result of the verification call started with
// sequence seq. A verifier error is treated exactly like a false result.
// Stale sequences and results arriving outside Verifying are ignored.
func (c *Controller) ResolveVerify(seq int, ok bool, err error) []Effect {
	if c.state != StateVerifying || seq != c.verifySeq {
		return nil
	}

	if ok && err == nil {
		c.state = StateSuccess
		return nil
	}

	c.attempts++
	if c.opts.MaxAttempts > 0 && c.attempts >= c.opts.MaxAttempts {
		c.state = StateLocked
		c.clearCells()
		return []Effect{Shake{}, Lock{}}
	}

	c.state = StateError
	c.clearSeq++
	return []Effect{
		Shake{},
		ScheduleClear{Seq: c.clearSeq, Delay: ErrorDisplayDelay},
	}
}

// FireClear delivers the expiry of the error-display timer armed with
// sequence seq. If the token is still current the cells are cleared and the
// controller returns to Idle; otherwise the timer was cancelled by a newer
// transition and nothing happens.
func (c *Controller) FireClear(seq int) []Effect {
	if c.state != StateError || seq != c.clearSeq {
		return nil
	}

	c.clearCells()
	c.state = StateIdle
	return []Effect{FocusCell{Index: 0}}
}

// Reset returns the controller to Idle with all cells empty and focus on
// cell 0, from any state. Pending verification results and timers are
// orphaned, and the attempt counter starts over.
func (c *Controller) Reset() []Effect {
	c.clearCells()
	c.state = StateIdle
	c.attempts = 0
	c.verifySeq++
	c.clearSeq++
	return []Effect{FocusCell{Index: 0}}
}

func (c *Controller) clearCells() {
	for i := range c.cells {
		c.cells[i] = 0
	}
	c.focus = 0
}

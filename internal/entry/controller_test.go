package entry

import (
	"errors"
	"testing"
	"time"
)

// typeCode enters a complete code one digit at a time, returning the effects
// of the final keystroke.
func typeCode(c *Controller, code string) []Effect {
	var last []Effect
	for _, r := range code {
		last = c.SetCellDigit(c.Focus(), r)
	}
	return last
}

// findVerify extracts the StartVerify effect from an effect list, if any.
func findVerify(effects []Effect) (StartVerify, bool) {
	for _, e := range effects {
		if v, ok := e.(StartVerify); ok {
			return v, true
		}
	}
	return StartVerify{}, false
}

// findClear extracts the ScheduleClear effect from an effect list, if any.
func findClear(effects []Effect) (ScheduleClear, bool) {
	for _, e := range effects {
		if cl, ok := e.(ScheduleClear); ok {
			return cl, true
		}
	}
	return ScheduleClear{}, false
}

func cellString(c *Controller) string {
	var out []rune
	for i := 0; i < CodeLength; i++ {
		r, filled := c.Cell(i)
		if filled {
			out = append(out, r)
		} else {
			out = append(out, '_')
		}
	}
	return string(out)
}

func TestSetCellDigitRejectsNonDigits(t *testing.T) {
	tests := []struct {
		name string
		ch   rune
	}{
		{"letter", 'a'},
		{"uppercase", 'Z'},
		{"space", ' '},
		{"punctuation", '.'},
		{"dash", '-'},
		{"unicode digit lookalike", '٣'}, // arabic-indic three
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(DefaultOptions())
			effects := c.SetCellDigit(0, tt.ch)

			if effects != nil {
				t.Errorf("SetCellDigit(0, %q) effects = %v, want nil", tt.ch, effects)
			}
			if _, filled := c.Cell(0); filled {
				t.Errorf("cell 0 should remain empty after rejected input %q", tt.ch)
			}
			if c.Focus() != 0 {
				t.Errorf("focus = %d, want 0 (unchanged on rejection)", c.Focus())
			}
		})
	}
}

func TestSetCellDigitAdvancesFocus(t *testing.T) {
	c := NewController(Options{AutoSubmit: false})

	for i := 0; i < CodeLength-1; i++ {
		c.SetCellDigit(i, '5')
		if c.Focus() != i+1 {
			t.Errorf("after SetCellDigit(%d), focus = %d, want %d", i, c.Focus(), i+1)
		}
	}

	// Last cell: digit lands but focus stays put.
	c.SetCellDigit(5, '9')
	if c.Focus() != 5 {
		t.Errorf("after SetCellDigit(5), focus = %d, want 5", c.Focus())
	}
	if r, _ := c.Cell(5); r != '9' {
		t.Errorf("cell 5 = %q, want '9'", r)
	}
}

func TestBackspaceClearsInPlace(t *testing.T) {
	c := NewController(Options{AutoSubmit: false})
	c.SetCellDigit(0, '1')
	c.SetCellDigit(1, '2')

	// Focus is on cell 2 (empty). Fill cell 2 manually to test in-place clear.
	c.SetCellDigit(2, '3')
	effects := c.HandleBackspace(3)
	// Cell 3 is empty, so backspace steps back and clears cell 2.
	if r, filled := c.Cell(2); filled {
		t.Errorf("cell 2 = %q, want empty after step-back backspace", r)
	}
	if c.Focus() != 2 {
		t.Errorf("focus = %d, want 2", c.Focus())
	}
	if len(effects) != 1 {
		t.Fatalf("effects = %v, want single FocusCell", effects)
	}
	if f, ok := effects[0].(FocusCell); !ok || f.Index != 2 {
		t.Errorf("effect = %v, want FocusCell{2}", effects[0])
	}

	// Cell 1 is filled: backspace clears it without moving focus.
	effects = c.HandleBackspace(1)
	if _, filled := c.Cell(1); filled {
		t.Error("cell 1 should be empty after in-place backspace")
	}
	if c.Focus() != 2 {
		t.Errorf("focus = %d, want 2 (unchanged for in-place clear)", c.Focus())
	}
	if effects != nil {
		t.Errorf("in-place backspace effects = %v, want nil", effects)
	}
}

func TestClearCell(t *testing.T) {
	c := NewController(Options{AutoSubmit: false})
	c.SetCellDigit(0, '1')
	c.SetCellDigit(1, '2')

	c.ClearCell(0)
	if _, filled := c.Cell(0); filled {
		t.Error("cell 0 should be empty after ClearCell")
	}
	// Focus is untouched; ClearCell only empties the slot.
	if c.Focus() != 2 {
		t.Errorf("focus = %d, want 2 (unchanged)", c.Focus())
	}

	if effects := c.ClearCell(-1); effects != nil {
		t.Errorf("out-of-range ClearCell effects = %v, want nil", effects)
	}
}

func TestBackspaceAtFirstEmptyCell(t *testing.T) {
	c := NewController(DefaultOptions())
	if effects := c.HandleBackspace(0); effects != nil {
		t.Errorf("backspace on empty cell 0 effects = %v, want nil", effects)
	}
	if c.Focus() != 0 {
		t.Errorf("focus = %d, want 0", c.Focus())
	}
}

func TestArrowNavigation(t *testing.T) {
	tests := []struct {
		name  string
		dir   Direction
		index int
		want  int
	}{
		{"left from middle", ArrowLeft, 3, 2},
		{"left clamps at zero", ArrowLeft, 0, 0},
		{"right from middle", ArrowRight, 3, 4},
		{"right clamps at last", ArrowRight, 5, 5},
		{"up is a no-op", ArrowUp, 3, 3},
		{"down is a no-op", ArrowDown, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(DefaultOptions())
			// Walk focus to the starting index.
			for c.Focus() < tt.index {
				c.HandleArrow(ArrowRight, c.Focus())
			}

			c.HandleArrow(tt.dir, tt.index)
			if c.Focus() != tt.want {
				t.Errorf("HandleArrow(%v, %d): focus = %d, want %d", tt.dir, tt.index, c.Focus(), tt.want)
			}
		})
	}
}

func TestPasteStripsNonDigits(t *testing.T) {
	c := NewController(Options{AutoSubmit: false})
	c.HandlePaste("1a2b3c4d5e6f", 0)

	if got := cellString(c); got != "123456" {
		t.Errorf("cells = %q, want \"123456\"", got)
	}
	if c.Focus() != 5 {
		t.Errorf("focus = %d, want 5", c.Focus())
	}
}

func TestPastePreservesPrecedingCells(t *testing.T) {
	c := NewController(Options{AutoSubmit: false})
	typeCode(c, "123456")

	c.HandlePaste("99", 4)
	if got := cellString(c); got != "123499" {
		t.Errorf("cells = %q, want \"123499\"", got)
	}
}

func TestPasteOverflowTruncates(t *testing.T) {
	c := NewController(Options{AutoSubmit: false})
	c.HandlePaste("123456789", 3)

	if got := cellString(c); got != "___123" {
		t.Errorf("cells = %q, want \"___123\"", got)
	}
	if c.Focus() != 5 {
		t.Errorf("focus = %d, want 5 (clamped)", c.Focus())
	}
}

func TestPasteWithoutDigitsIsNoop(t *testing.T) {
	c := NewController(DefaultOptions())
	effects := c.HandlePaste("hello world", 2)

	if effects != nil {
		t.Errorf("effects = %v, want nil", effects)
	}
	if got := cellString(c); got != "______" {
		t.Errorf("cells = %q, want all empty", got)
	}
	if c.Focus() != 0 {
		t.Errorf("focus = %d, want 0", c.Focus())
	}
}

func TestAutoSubmitOnCompletion(t *testing.T) {
	c := NewController(DefaultOptions())
	effects := typeCode(c, "123456")

	v, ok := findVerify(effects)
	if !ok {
		t.Fatal("completing the code with auto-submit should emit StartVerify")
	}
	if v.Code != "123456" {
		t.Errorf("StartVerify.Code = %q, want \"123456\"", v.Code)
	}
	if c.State() != StateVerifying {
		t.Errorf("state = %v, want verifying", c.State())
	}
}

func TestExplicitSubmitWhenAutoSubmitDisabled(t *testing.T) {
	c := NewController(Options{AutoSubmit: false})
	effects := typeCode(c, "123456")

	if _, ok := findVerify(effects); ok {
		t.Fatal("completion should not auto-submit when disabled")
	}
	if c.State() != StateIdle {
		t.Fatalf("state = %v, want idle", c.State())
	}

	effects = c.Submit()
	if _, ok := findVerify(effects); !ok {
		t.Fatal("explicit Submit should emit StartVerify")
	}
}

func TestSubmitIncompleteIsNoop(t *testing.T) {
	c := NewController(Options{AutoSubmit: false})
	typeCode(c, "123")

	if effects := c.Submit(); effects != nil {
		t.Errorf("Submit with incomplete code effects = %v, want nil", effects)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle", c.State())
	}
}

func TestVerifySuccessIsTerminal(t *testing.T) {
	c := NewController(DefaultOptions())
	effects := typeCode(c, "123456")
	v, _ := findVerify(effects)

	c.ResolveVerify(v.Seq, true, nil)
	if c.State() != StateSuccess {
		t.Fatalf("state = %v, want success", c.State())
	}

	// No input is accepted in the terminal state.
	if effects := c.SetCellDigit(0, '7'); effects != nil {
		t.Errorf("input after success effects = %v, want nil", effects)
	}
	if effects := c.Submit(); effects != nil {
		t.Errorf("submit after success effects = %v, want nil", effects)
	}
}

func TestVerifyFailureClearsAfterDelay(t *testing.T) {
	c := NewController(DefaultOptions())
	effects := typeCode(c, "654321")
	v, _ := findVerify(effects)

	effects = c.ResolveVerify(v.Seq, false, nil)
	if c.State() != StateError {
		t.Fatalf("state = %v, want error", c.State())
	}

	hasShake := false
	for _, e := range effects {
		if _, ok := e.(Shake); ok {
			hasShake = true
		}
	}
	if !hasShake {
		t.Error("failed verification should emit Shake")
	}

	cl, ok := findClear(effects)
	if !ok {
		t.Fatal("failed verification should emit ScheduleClear")
	}
	if cl.Delay != 400*time.Millisecond {
		t.Errorf("clear delay = %v, want 400ms", cl.Delay)
	}

	// Cells are still shown (with error styling) until the timer fires.
	if got := cellString(c); got != "654321" {
		t.Errorf("cells during error display = %q, want \"654321\"", got)
	}

	c.FireClear(cl.Seq)
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle after clear", c.State())
	}
	if got := cellString(c); got != "______" {
		t.Errorf("cells = %q, want all empty after clear", got)
	}
	if c.Focus() != 0 {
		t.Errorf("focus = %d, want 0 after clear", c.Focus())
	}
}

func TestVerifierErrorTreatedAsFailure(t *testing.T) {
	c := NewController(DefaultOptions())
	effects := typeCode(c, "123456")
	v, _ := findVerify(effects)

	c.ResolveVerify(v.Seq, true, errors.New("verifier unreachable"))
	if c.State() != StateError {
		t.Errorf("state = %v, want error (verifier error treated as false)", c.State())
	}
}

func TestSubmitWhileVerifyingIsNoop(t *testing.T) {
	c := NewController(DefaultOptions())
	typeCode(c, "123456")

	if c.State() != StateVerifying {
		t.Fatalf("state = %v, want verifying", c.State())
	}
	if effects := c.Submit(); effects != nil {
		t.Errorf("re-entrant Submit effects = %v, want nil (single flight)", effects)
	}
	if effects := c.SetCellDigit(0, '1'); effects != nil {
		t.Errorf("SetCellDigit while verifying effects = %v, want nil", effects)
	}
	if effects := c.HandlePaste("999999", 0); effects != nil {
		t.Errorf("HandlePaste while verifying effects = %v, want nil", effects)
	}
}

func TestStaleVerifyResultIgnored(t *testing.T) {
	c := NewController(DefaultOptions())
	effects := typeCode(c, "123456")
	v, _ := findVerify(effects)

	// Reset orphans the in-flight attempt; its late result must not land.
	c.Reset()
	if effects := c.ResolveVerify(v.Seq, true, nil); effects != nil {
		t.Errorf("stale ResolveVerify effects = %v, want nil", effects)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle (stale result ignored)", c.State())
	}
}

func TestResetCancelsPendingClear(t *testing.T) {
	c := NewController(DefaultOptions())
	effects := typeCode(c, "654321")
	v, _ := findVerify(effects)
	effects = c.ResolveVerify(v.Seq, false, nil)
	cl, _ := findClear(effects)

	// User resets during the error display window, then types fresh digits.
	c.Reset()
	c.SetCellDigit(0, '7')

	// The stale timer fires afterwards; it must not clobber the new input.
	c.FireClear(cl.Seq)
	if r, _ := c.Cell(0); r != '7' {
		t.Errorf("cell 0 = %q, want '7' (stale clear timer must not fire)", r)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle", c.State())
	}
}

func TestResetFromAnyState(t *testing.T) {
	drive := func(t *testing.T, c *Controller, target State) {
		t.Helper()
		effects := typeCode(c, "111111")
		v, ok := findVerify(effects)
		if !ok {
			t.Fatal("expected StartVerify")
		}
		switch target {
		case StateSuccess:
			c.ResolveVerify(v.Seq, true, nil)
		case StateError:
			c.ResolveVerify(v.Seq, false, nil)
		case StateVerifying:
			// already there
		}
		if c.State() != target {
			t.Fatalf("setup: state = %v, want %v", c.State(), target)
		}
	}

	for _, target := range []State{StateVerifying, StateSuccess, StateError} {
		t.Run(target.String(), func(t *testing.T) {
			c := NewController(DefaultOptions())
			drive(t, c, target)

			c.Reset()
			if c.State() != StateIdle {
				t.Errorf("state after reset = %v, want idle", c.State())
			}
			if got := cellString(c); got != "______" {
				t.Errorf("cells after reset = %q, want all empty", got)
			}
			if c.Focus() != 0 {
				t.Errorf("focus after reset = %d, want 0", c.Focus())
			}
		})
	}
}

func TestMaxAttemptsLocks(t *testing.T) {
	c := NewController(Options{AutoSubmit: true, MaxAttempts: 2})

	// First failure: normal error path.
	effects := typeCode(c, "111111")
	v, _ := findVerify(effects)
	effects = c.ResolveVerify(v.Seq, false, nil)
	if c.State() != StateError {
		t.Fatalf("state = %v, want error after first failure", c.State())
	}
	cl, _ := findClear(effects)
	c.FireClear(cl.Seq)

	// Second failure: limit reached, controller locks.
	effects = typeCode(c, "222222")
	v, _ = findVerify(effects)
	effects = c.ResolveVerify(v.Seq, false, nil)
	if c.State() != StateLocked {
		t.Fatalf("state = %v, want locked after %d failures", c.State(), 2)
	}

	locked := false
	for _, e := range effects {
		if _, ok := e.(Lock); ok {
			locked = true
		}
	}
	if !locked {
		t.Error("reaching the attempt limit should emit Lock")
	}
	if effects := c.SetCellDigit(0, '1'); effects != nil {
		t.Errorf("input while locked effects = %v, want nil", effects)
	}

	// Reset recovers and restarts the attempt counter.
	c.Reset()
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle after reset", c.State())
	}
	if c.Attempts() != 0 {
		t.Errorf("attempts = %d, want 0 after reset", c.Attempts())
	}
}

func TestLockHappensDirectlyFromVerifying(t *testing.T) {
	c := NewController(Options{AutoSubmit: true, MaxAttempts: 1})

	effects := typeCode(c, "111111")
	v, _ := findVerify(effects)
	effects = c.ResolveVerify(v.Seq, false, nil)

	// The limit-reaching failure locks straight from Verifying; there is no
	// intermediate Error display and no clear timer to wait out.
	if c.State() != StateLocked {
		t.Fatalf("state = %v, want locked immediately after ResolveVerify", c.State())
	}
	if cl, ok := findClear(effects); ok {
		t.Errorf("lock path emitted ScheduleClear %+v, want none", cl)
	}

	// An older clear timer firing later must not disturb the locked state.
	c.FireClear(1)
	c.FireClear(2)
	if c.State() != StateLocked {
		t.Errorf("state = %v, want locked (stale clear timers ignored)", c.State())
	}
}

func TestCellsRenderState(t *testing.T) {
	c := NewController(Options{AutoSubmit: false})
	c.SetCellDigit(0, '4')

	views := c.Cells()
	if !views[0].Filled || views[0].Value != '4' {
		t.Errorf("views[0] = %+v, want filled '4'", views[0])
	}
	if !views[1].Focused {
		t.Errorf("views[1] = %+v, want focused", views[1])
	}
	for i := 2; i < CodeLength; i++ {
		if views[i].Filled || views[i].Focused || views[i].Error {
			t.Errorf("views[%d] = %+v, want empty/unfocused", i, views[i])
		}
	}
}

package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/otpgate/otpgate/internal/entry"
	"github.com/otpgate/otpgate/internal/verify"
)

// verifyTimeout bounds one verification call dispatched from the prompt.
const verifyTimeout = 10 * time.Second

// shakeInterval is the frame rate of the shake animation.
const shakeInterval = 50 * time.Millisecond

// shakeOffsets is the horizontal displacement, in columns, of each shake
// animation frame.
var shakeOffsets = []int{2, 0, 2, 0, 1, 0}

// Messages for async operations
type verifyResultMsg struct {
	seq int
	ok  bool
	err error
}

type clearTimerMsg struct {
	seq int
}

type shakeFrameMsg struct {
	frame int
}

// promptKeyMap defines key bindings for the entry prompt
type promptKeyMap struct {
	Left      key.Binding
	Right     key.Binding
	Backspace key.Binding
	Submit    key.Binding
	Reset     key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k promptKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Backspace, k.Submit, k.Reset, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k promptKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Backspace},
		{k.Submit, k.Reset, k.Quit},
	}
}

func newPromptKeyMap() promptKeyMap {
	return promptKeyMap{
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←/→", "move"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("", ""),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("bksp", "delete"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model is the Bubble Tea model for the entry prompt. It owns an
// entry.Controller and maps its effects onto commands: verification runs as
// an async tea.Cmd, the error-clear delay and shake frames as tea.Tick
// timers. Stale timers are ignored by the controller's sequence tokens.
type Model struct {
	ctrl     *entry.Controller
	verifyFn verify.Func

	// UI state
	Width      int
	Height     int
	shakeFrame int // index into shakeOffsets, -1 when not shaking
	status     string

	Spinner spinner.Model
	Help    help.Model
	Keys    promptKeyMap
}

// New creates a prompt model around a controller and a verification
// collaborator.
func New(opts entry.Options, fn verify.Func) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return Model{
		ctrl:       entry.NewController(opts),
		verifyFn:   fn,
		Width:      GetTerminalWidth(),
		shakeFrame: -1,
		Spinner:    s,
		Help:       help.New(),
		Keys:       newPromptKeyMap(),
	}
}

// Controller exposes the underlying state machine, primarily for the command
// layer to read the final outcome after the program exits.
func (m Model) Controller() *entry.Controller {
	return m.ctrl
}

// Succeeded reports whether the code was verified.
func (m Model) Succeeded() bool {
	return m.ctrl.State() == entry.StateSuccess
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.State() != entry.StateVerifying {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case verifyResultMsg:
		effects := m.ctrl.ResolveVerify(msg.seq, msg.ok, msg.err)
		return m.applyEffects(effects)

	case clearTimerMsg:
		effects := m.ctrl.FireClear(msg.seq)
		if m.ctrl.State() == entry.StateIdle {
			m.status = ""
		}
		return m.applyEffects(effects)

	case shakeFrameMsg:
		if m.shakeFrame < 0 {
			return m, nil
		}
		if msg.frame >= len(shakeOffsets) {
			m.shakeFrame = -1
			return m, nil
		}
		m.shakeFrame = msg.frame
		return m, shakeTick(msg.frame + 1)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey routes a keypress to the controller.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	focus := m.ctrl.Focus()

	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEnter:
		// In a terminal state enter dismisses the prompt; in idle it is the
		// explicit submit trigger.
		switch m.ctrl.State() {
		case entry.StateSuccess, entry.StateLocked:
			return m, tea.Quit
		default:
			return m.applyEffects(m.ctrl.Submit())
		}

	case tea.KeyBackspace:
		return m.applyEffects(m.ctrl.HandleBackspace(focus))

	case tea.KeyLeft:
		return m.applyEffects(m.ctrl.HandleArrow(entry.ArrowLeft, focus))

	case tea.KeyRight:
		return m.applyEffects(m.ctrl.HandleArrow(entry.ArrowRight, focus))

	case tea.KeyUp:
		return m.applyEffects(m.ctrl.HandleArrow(entry.ArrowUp, focus))

	case tea.KeyDown:
		return m.applyEffects(m.ctrl.HandleArrow(entry.ArrowDown, focus))

	case tea.KeyRunes:
		// Terminal paste arrives as a single KeyMsg carrying every rune.
		if msg.Paste || len(msg.Runes) > 1 {
			return m.applyEffects(m.ctrl.HandlePaste(string(msg.Runes), focus))
		}
		if len(msg.Runes) == 0 {
			return m, nil
		}
		switch r := msg.Runes[0]; {
		case r == 'q':
			return m, tea.Quit
		case r == 'r':
			m.status = ""
			m.shakeFrame = -1
			return m.applyEffects(m.ctrl.Reset())
		case r >= '0' && r <= '9':
			return m.applyEffects(m.ctrl.SetCellDigit(focus, r))
		}
	}

	return m, nil
}

// applyEffects executes the controller's side-effect intents, turning them
// into Bubble Tea commands.
func (m Model) applyEffects(effects []entry.Effect) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	for _, e := range effects {
		switch e := e.(type) {
		case entry.FocusCell:
			// Focus is derived from the controller when rendering; nothing
			// to do here.

		case entry.StartVerify:
			m.status = ""
			cmds = append(cmds, m.Spinner.Tick, m.verifyCmd(e.Seq, e.Code))

		case entry.Shake:
			m.status = FailureMarker + " Invalid code"
			m.shakeFrame = 0
			cmds = append(cmds, shakeTick(1))

		case entry.ScheduleClear:
			cmds = append(cmds, clearTick(e.Seq, e.Delay))

		case entry.Lock:
			m.status = FailureMarker + " Too many failed attempts"
		}
	}

	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

// verifyCmd dispatches the verification collaborator off the event loop.
func (m Model) verifyCmd(seq int, code string) tea.Cmd {
	fn := m.verifyFn
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
		defer cancel()
		ok, err := fn(ctx, code)
		return verifyResultMsg{seq: seq, ok: ok, err: err}
	}
}

// clearTick arms the cancellable error-display timer.
func clearTick(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return clearTimerMsg{seq: seq}
	})
}

// shakeTick schedules the next shake animation frame.
func shakeTick(frame int) tea.Cmd {
	return tea.Tick(shakeInterval, func(time.Time) tea.Msg {
		return shakeFrameMsg{frame: frame}
	})
}

// contentWidth clamps the window width to the supported content range for
// responsive rendering.
func (m Model) contentWidth() int {
	w := m.Width
	if w < MinTerminalWidth {
		w = MinTerminalWidth
	}
	if w > MaxContentWidth {
		w = MaxContentWidth
	}
	return w
}

// View implements tea.Model
func (m Model) View() string {
	w := m.contentWidth()
	center := func(s string) string {
		return lipgloss.PlaceHorizontal(w, lipgloss.Center, s)
	}

	var b strings.Builder

	b.WriteString(center(TitleStyle.Render("Enter verification code")))
	b.WriteString("\n\n")

	b.WriteString(center(m.renderCells()))
	b.WriteString("\n\n")
	b.WriteString(center(m.renderStatus()))
	b.WriteString("\n\n")
	b.WriteString(center(m.Help.View(m.Keys)))
	b.WriteString("\n")

	return b.String()
}

// renderCells draws the six digit cells, applying the shake offset while the
// animation runs.
func (m Model) renderCells() string {
	views := m.ctrl.Cells()
	success := m.ctrl.State() == entry.StateSuccess

	boxes := make([]string, 0, entry.CodeLength)
	for _, cv := range views {
		style := CellStyle
		switch {
		case success:
			style = SuccessCellStyle
		case cv.Error:
			style = ErrorCellStyle
		case cv.Focused:
			style = FocusedCellStyle
		}

		content := " "
		if cv.Filled {
			content = string(cv.Value)
		} else if cv.Focused {
			content = "_"
		}
		boxes = append(boxes, style.Render(content))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, boxes...)

	if m.shakeFrame >= 0 && m.shakeFrame < len(shakeOffsets) {
		pad := strings.Repeat(" ", shakeOffsets[m.shakeFrame])
		lines := strings.Split(row, "\n")
		for i := range lines {
			lines[i] = pad + lines[i]
		}
		row = strings.Join(lines, "\n")
	}

	return row
}

// renderStatus draws the lifecycle status line.
func (m Model) renderStatus() string {
	switch m.ctrl.State() {
	case entry.StateVerifying:
		return StatusVerifyingStyle.Render(m.Spinner.View() + " Verifying...")

	case entry.StateSuccess:
		return StatusSuccessStyle.Render(SuccessMarker + " Code verified")

	case entry.StateError:
		return StatusErrorStyle.Render(m.status)

	case entry.StateLocked:
		return StatusLockedStyle.Render(m.status + " (press r to start over)")

	default:
		if m.status != "" {
			return StatusErrorStyle.Render(m.status)
		}
		return HintStyle.Render("Type the 6-digit code, or paste it")
	}
}

// Run launches the prompt and blocks until it exits, returning the final
// model state.
func Run(opts entry.Options, fn verify.Func) (Model, error) {
	p := tea.NewProgram(New(opts, fn))
	final, err := p.Run()
	if err != nil {
		return Model{}, err
	}
	return final.(Model), nil
}

package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bite/internal/interaction"
	"bite/internal/session"
)

const tickInterval = 33 * time.Millisecond

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusStyle = lipgloss.NewStyle().Faint(true)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

type tickMsg time.Time

// Model is the Bubble Tea model hosting a *session.Session, following the
// teacher's internal/app.Start construction (WithAltScreen +
// WithMouseCellMotion) and internal/specui's PTY-chunk-driven redraw idiom.
type Model struct {
	sess *session.Session

	mode  Mode
	input textinput.Model
	view  viewport.Model

	history      []string
	historyIndex int

	width, height int

	tuiInteraction int64
	statusLine     string
}

// New builds a presenter Model bound to sess.
func New(sess *session.Session) Model {
	ti := textinput.New()
	ti.Prompt = "$ "
	ti.Focus()
	ti.PromptStyle = promptStyle
	return Model{
		sess:  sess,
		mode:  ModeCompose,
		input: ti,
		view:  viewport.New(80, 24),
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the redraw tick.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update dispatches on the tagged mode per spec.md §9's presenter pattern.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.view.Width = msg.Width
		m.view.Height = msg.Height - 2
		m.input.Width = msg.Width - len(m.input.Prompt)
		m.sess.Resize(m.view.Height, m.view.Width)
		return m, nil

	case tickMsg:
		m.refreshTUIMode()
		m.renderVisible()
		return m, tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

// refreshTUIMode promotes the presenter into ModeTUI once any Running
// Interaction's output stream has switched to the alternate buffer (DECSET
// 1049), per spec.md §4.4's TUI promotion rule; the first such Interaction
// in submission order is the one promoted.
func (m *Model) refreshTUIMode() {
	if m.mode == ModeTUI {
		return
	}
	for _, ia := range m.sess.Interactions() {
		if ia.Running.Phase == interaction.Running && ia.TUIMode() {
			m.mode = ModeTUI
			m.tuiInteraction = ia.ID
			return
		}
	}
}

func (m *Model) renderVisible() {
	lines := m.sess.IterVisible(0, 0)
	var b strings.Builder
	for _, l := range lines {
		for _, c := range l.Line.Cells {
			if c.IsContinuation() {
				continue
			}
			b.WriteRune(c.Rune)
		}
		b.WriteByte('\n')
	}
	m.view.SetContent(b.String())
	m.view.GotoBottom()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeTUI {
		return m.handleTUIKey(msg)
	}
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		text := m.input.Value()
		m.input.SetValue("")
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		id, err := m.sess.Submit(text)
		if err != nil {
			m.statusLine = fmt.Sprintf("error: %v", err)
			return m, nil
		}
		m.history = append(m.history, text)
		m.historyIndex = len(m.history)
		m.mode = ModeExecute
		m.tuiInteraction = id
		return m, nil
	case tea.KeyUp:
		m.mode = ModeHistory
		if m.historyIndex > 0 {
			m.historyIndex--
			m.input.SetValue(m.history[m.historyIndex])
		}
		return m, nil
	case tea.KeyDown:
		if m.historyIndex < len(m.history)-1 {
			m.historyIndex++
			m.input.SetValue(m.history[m.historyIndex])
		} else {
			m.historyIndex = len(m.history)
			m.input.SetValue("")
		}
		return m, nil
	case tea.KeyTab:
		m.mode = ModeComplete
		return m, nil
	}
	if m.mode != ModeCompose {
		m.mode = ModeCompose
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleTUIKey forwards keystrokes transparently to the promoted
// Interaction's Job, applying application-cursor-key translation.
func (m Model) handleTUIKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		_ = m.sess.SendStdin(m.tuiInteraction, []byte{0x03})
		return m, nil
	}
	data := keyToBytes(msg, m.appCursorKeys())
	if len(data) > 0 {
		_ = m.sess.SendStdin(m.tuiInteraction, data)
	}
	if _, ok := m.sess.ExitCode(m.tuiInteraction); ok {
		m.mode = ModeCompose
	}
	return m, nil
}

// appCursorKeys reports whether the promoted Interaction's output screen has
// application-cursor-keys mode set (DECSET 1), per spec.md §4.4's note that
// arrow-key encoding follows "application-key translations as set by the
// stream".
func (m Model) appCursorKeys() bool {
	for _, ia := range m.sess.Interactions() {
		if ia.ID == m.tuiInteraction {
			return ia.Output.AppCursorKeys()
		}
	}
	return false
}

// keyToBytes encodes a key press for the wire. Arrow keys use the SS3
// (ESC O x) form under application-cursor-keys mode and the normal
// (ESC [ x) form otherwise.
func keyToBytes(msg tea.KeyMsg, appCursor bool) []byte {
	arrow := func(final byte) []byte {
		if appCursor {
			return []byte{0x1b, 'O', final}
		}
		return []byte{0x1b, '[', final}
	}
	switch msg.Type {
	case tea.KeyEnter:
		return []byte{'\r'}
	case tea.KeyBackspace:
		return []byte{0x7f}
	case tea.KeyTab:
		return []byte{'\t'}
	case tea.KeyEsc:
		return []byte{0x1b}
	case tea.KeyUp:
		return arrow('A')
	case tea.KeyDown:
		return arrow('B')
	case tea.KeyRight:
		return arrow('C')
	case tea.KeyLeft:
		return arrow('D')
	case tea.KeyRunes:
		return []byte(string(msg.Runes))
	case tea.KeySpace:
		return []byte{' '}
	default:
		return nil
	}
}

// View renders the current frame per the tagged mode.
func (m Model) View() string {
	header := headerStyle.Render("bite")
	if m.mode == ModeTUI {
		return m.view.View()
	}
	status := statusStyle.Render(fmt.Sprintf("mode:%s  %s", m.mode, m.statusLine))
	return lipgloss.JoinVertical(lipgloss.Left, header, m.view.View(), m.input.View(), status)
}

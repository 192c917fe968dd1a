// Package tui is the terminal chat surface of the travel planner.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"travelchat/internal/domain"
	"travelchat/internal/service"
)

// ChatPort is the TUI-facing subset of the chat service.
type ChatPort interface {
	Send(ctx context.Context, input string) string
	Transcript() []domain.Turn
	Collections() []service.Handle
	Logs(ctx context.Context) (string, error)
}

type replyMsg struct{ reply string }

type logsMsg struct {
	text string
	err  error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	ctx      context.Context
	chat     ChatPort
	input    textinput.Model
	viewport viewport.Model
	logView  viewport.Model
	showLogs bool
	busy     bool
	pending  string
	// sentAt is the transcript length when the pending turn was submitted.
	sentAt int
	status   string
	ready    bool
	width    int
	height   int
}

// New creates a chat model. ctx bounds every turn sent from the UI.
func New(ctx context.Context, chat ChatPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about beaches, towns, forts, food..."
	ti.Focus()
	ti.CharLimit = 0
	return Model{
		ctx:      ctx,
		chat:     chat,
		input:    ti,
		viewport: viewport.New(0, 0),
		logView:  viewport.New(0, 0),
		status:   "Enter to send, ctrl+l chat log, ctrl+c quit.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and turn completion events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width, m.height = msg.Width, msg.Height
		m.resize(msg.Width, msg.Height)
		m.refresh()
		return m, nil

	case replyMsg:
		m.busy = false
		m.pending = ""
		m.status = "Ready."
		if strings.HasPrefix(msg.reply, "Error: ") {
			m.status = msg.reply
		}
		m.input.Focus()
		m.refresh()
		if m.showLogs {
			return m, m.loadLogs()
		}
		return m, nil

	case logsMsg:
		if msg.err != nil {
			m.logView.SetContent("Error reading chat log: " + msg.err.Error())
		} else if strings.TrimSpace(msg.text) == "" {
			m.logView.SetContent("No chat log entries yet.")
		} else {
			m.logView.SetContent(msg.text)
			m.logView.GotoBottom()
		}
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyCtrlL:
			m.showLogs = !m.showLogs
			if m.ready {
				m.resize(m.width, m.height)
				m.refresh()
			}
			if m.showLogs {
				return m, m.loadLogs()
			}
			return m, nil
		case tea.KeyPgUp:
			m.viewport.HalfViewUp()
			return m, nil
		case tea.KeyPgDown:
			m.viewport.HalfViewDown()
			return m, nil
		case tea.KeyEnter:
			return m.submit()
		}
	}
	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts one turn. Input is ignored while a turn is in flight.
func (m Model) submit() (tea.Model, tea.Cmd) {
	q := strings.TrimSpace(m.input.Value())
	if m.busy || q == "" {
		return m, nil
	}
	m.busy = true
	m.pending = q
	m.sentAt = len(m.chat.Transcript())
	m.status = "Planning..."
	m.input.Reset()
	m.input.Blur()
	m.refresh()

	ctx, chat := m.ctx, m.chat
	return m, func() tea.Msg {
		return replyMsg{reply: chat.Send(ctx, q)}
	}
}

func (m Model) loadLogs() tea.Cmd {
	ctx, chat := m.ctx, m.chat
	return func() tea.Msg {
		text, err := chat.Logs(ctx)
		return logsMsg{text: text, err: err}
	}
}

func (m *Model) resize(width, height int) {
	_, th := transcriptBoxStyle.GetFrameSize()
	_, ih := inputBoxStyle.GetFrameSize()
	reserved := 2 + 1 + ih + 1 // header + collections, status, input box
	avail := max(3, height-reserved-th)
	w := max(20, width-transcriptBoxStyle.GetHorizontalFrameSize())

	m.viewport.Width = w
	m.logView.Width = w
	if m.showLogs {
		m.viewport.Height = max(3, avail*2/3)
		m.logView.Height = max(3, avail-m.viewport.Height-th)
	} else {
		m.viewport.Height = avail
		m.logView.Height = max(3, avail/3)
	}
}

func (m *Model) refresh() {
	turns := m.chat.Transcript()
	// The service records the user turn before the reply arrives; draw the
	// pending question only until it shows up in the transcript.
	pending := ""
	if m.busy && len(turns) <= m.sentAt {
		pending = m.pending
	}
	m.viewport.SetContent(renderTranscript(turns, pending, m.busy, m.viewport.Width))
	m.viewport.GotoBottom()
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Puerto Rico Travel Planner"))
	b.WriteString("\n")
	b.WriteString(renderCollections(m.chat.Collections()))
	b.WriteString("\n")
	b.WriteString(transcriptBoxStyle.Render(m.viewport.View()))
	b.WriteString("\n")
	if m.showLogs {
		b.WriteString(logBoxStyle.Render(m.logView.View()))
		b.WriteString("\n")
	}
	b.WriteString(inputBoxStyle.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	return b.String()
}

func renderTranscript(turns []domain.Turn, pending string, thinking bool, width int) string {
	wrap := lipgloss.NewStyle().Width(max(10, width))
	var parts []string
	for _, t := range turns {
		parts = append(parts, renderTurn(t, wrap))
	}
	if pending != "" {
		parts = append(parts, renderTurn(domain.Turn{Role: domain.RoleUser, Content: pending}, wrap))
	}
	if thinking {
		parts = append(parts, mutedStyle.Render("Planner is thinking..."))
	}
	if len(parts) == 0 {
		return mutedStyle.Render("No messages yet.")
	}
	return strings.Join(parts, "\n\n")
}

func renderTurn(t domain.Turn, wrap lipgloss.Style) string {
	if t.Role == domain.RoleUser {
		return userLabelStyle.Render("You") + "\n" + wrap.Render(t.Content)
	}
	return plannerLabelStyle.Render("Planner") + "\n" + wrap.Render(t.Content)
}

func renderCollections(handles []service.Handle) string {
	if len(handles) == 0 {
		return mutedStyle.Render("No collections configured")
	}
	names := make([]string, 0, len(handles))
	for _, h := range handles {
		if h.Available() {
			names = append(names, okStyle.Render(h.Name))
		} else {
			names = append(names, failStyle.Render(h.Name+" (unavailable)"))
		}
	}
	return mutedStyle.Render("Collections: ") + strings.Join(names, "  ")
}

var (
	headerStyle        = lipgloss.NewStyle().Bold(true)
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	logBoxStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mutedStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userLabelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	plannerLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	okStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

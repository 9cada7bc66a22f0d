package models

import (
	"fmt"
	"time"

	"github.com/allbin/serialkit"
	"github.com/allbin/serialkit/internal/tui/components"
	"github.com/allbin/serialkit/internal/tui/keys"
	"github.com/allbin/serialkit/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type ConsoleOptions struct {
	// LineEnding is appended to commands typed in ASCII mode
	LineEnding  string
	SendingMode components.SendingMode
	Display     components.DisplayMode
}

// ConsoleModel is an interactive command/response console. Every entered line is one
// SendCommand cycle and its response is shown under it.
type ConsoleModel struct {
	*SerialModel
	terminal   *components.Terminal
	statusBar  *components.StatusBar
	input      *components.Input
	help       help.Model
	keys       keys.ConsoleKeys
	lineEnding string
}

func NewConsoleModel(fetcher *serialkit.Fetcher, opts ConsoleOptions) *ConsoleModel {
	return &ConsoleModel{
		SerialModel: NewSerialModel(fetcher),
		terminal:    components.NewTerminal(0, 0, opts.Display),
		statusBar:   components.NewStatusBar(fetcher.Config()),
		input:       components.NewInput(opts.SendingMode),
		help:        help.New(),
		keys:        keys.NewConsoleKeys(),
		lineEnding:  opts.LineEnding,
	}
}

func (m *ConsoleModel) Init() tea.Cmd {
	return m.ConnectCmd()
}

func (m *ConsoleModel) notice(text string, err error) {
	m.terminal.AddMessage(m.AddMessage(components.DataMsg{
		Direction: components.DirectionInfo,
		Data:      []byte(text),
		Err:       err,
	}))
}

// submit turns the input line into a command cycle
func (m *ConsoleModel) submit() tea.Cmd {
	line := m.input.Value()
	if line == "" {
		return nil
	}
	if !m.IsConnected() {
		m.notice("not connected", nil)
		return nil
	}

	var payload []byte
	switch m.input.GetSendingMode() {
	case components.SendingModeHex:
		data, err := components.ParseHex(line)
		if err != nil {
			m.notice("", fmt.Errorf("invalid hex input: %w", err))
			return nil
		}
		payload = data
	default:
		payload = []byte(line + m.lineEnding)
	}

	seq := m.NextSeq()
	m.terminal.AddMessage(m.AddMessage(components.DataMsg{
		Seq:       seq,
		Direction: components.DirectionTX,
		Data:      payload,
		Status:    components.StatusPending,
	}))

	counters := m.statusBar.Counters()
	counters.Commands++
	counters.BytesTX += len(payload)

	m.input.AddToHistory(line)
	m.input.SetValue("")
	return m.SendCmd(seq, payload)
}

func (m *ConsoleModel) handleResponse(msg ResponseMsg) {
	counters := m.statusBar.Counters()

	switch {
	case msg.Err != nil:
		m.SetCommandStatus(msg.Seq, components.StatusFailed)
		m.AddMessage(components.DataMsg{Seq: msg.Seq, Direction: components.DirectionInfo, Err: msg.Err})
	case len(msg.Data) == 0:
		m.SetCommandStatus(msg.Seq, components.StatusTimeout)
		counters.Timeouts++
	default:
		m.SetCommandStatus(msg.Seq, components.StatusAnswered)
		m.AddMessage(components.DataMsg{Seq: msg.Seq, Direction: components.DirectionRX, Data: msg.Data})
		counters.BytesRX += len(msg.Data)
	}

	m.terminal.Refresh(m.Messages())
}

func (m *ConsoleModel) quit() tea.Cmd {
	if err := m.Cleanup(); err != nil {
		m.SetError(err)
	}
	return tea.Quit
}

func (m *ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// input box (3) + status bar (1) + content border (1)
		m.terminal.SetSize(msg.Width, msg.Height-5)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.SetReady(true)
		_, cmd := m.terminal.Update(msg)
		return m, cmd

	case ConnectionStatusMsg:
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetDisconnected(msg.Error)
			m.notice("", msg.Error)
			return m, nil
		}
		m.statusBar.SetConnected()
		m.notice(fmt.Sprintf("connected to %s (%s)", m.Fetcher().Config().Port, components.Framing(m.Fetcher().Config())), nil)
		m.SetInputMode(InputModeInsert)
		m.input.Focus()
		return m, nil

	case ResponseMsg:
		m.handleResponse(msg)
		return m, nil

	case tea.KeyMsg:
		if m.IsInInsertMode() {
			return m.updateInsert(msg)
		}
		return m, m.updateNormal(msg)
	}

	return m, nil
}

func (m *ConsoleModel) updateInsert(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, m.quit()
	case key.Matches(msg, m.keys.Escape):
		m.SetInputMode(InputModeNormal)
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		return m, m.submit()
	case key.Matches(msg, m.keys.HistoryUp):
		m.input.NavigateHistoryUp()
		return m, nil
	case key.Matches(msg, m.keys.HistoryDown):
		m.input.NavigateHistoryDown()
		return m, nil
	case key.Matches(msg, m.keys.ToggleSendMode):
		m.input.ToggleSendingMode()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *ConsoleModel) updateNormal(msg tea.KeyMsg) tea.Cmd {
	formatter := m.terminal.Formatter()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.InsertMode):
		m.SetInputMode(InputModeInsert)
		m.input.Focus()
	case key.Matches(msg, m.keys.Clear):
		m.ClearMessages()
		m.terminal.Clear()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.ToggleHex):
		formatter.ToggleHex()
		m.terminal.Refresh(m.Messages())
	case key.Matches(msg, m.keys.ToggleASCII):
		formatter.ToggleASCII()
		m.terminal.Refresh(m.Messages())
	case key.Matches(msg, m.keys.ToggleTimestamps):
		formatter.ToggleTimestamps()
		m.terminal.Refresh(m.Messages())
	case key.Matches(msg, m.keys.ToggleSendMode):
		m.input.ToggleSendingMode()
	case key.Matches(msg, m.keys.ScrollUp):
		m.terminal.ScrollUp()
	case key.Matches(msg, m.keys.ScrollDown):
		m.terminal.ScrollDown()
	case key.Matches(msg, m.keys.GotoTop):
		m.terminal.GotoTop()
	case key.Matches(msg, m.keys.GotoBottom):
		m.terminal.GotoBottom()
	}
	return nil
}

func (m *ConsoleModel) View() string {
	content := "Initializing..."
	if m.IsReady() {
		content = m.terminal.View()
	}
	if m.help.ShowAll {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.help.View(m.keys))
	}

	status := m.statusBar.View(
		m.GetInputMode().String(),
		m.input.GetSendingMode().String(),
		time.Now().Format("15:04:05"),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ContentBorderStyle.Render(content),
		m.input.ViewWithMode(m.IsInInsertMode()),
		status,
	)
}

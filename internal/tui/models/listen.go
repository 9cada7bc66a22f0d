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

// pollInterval spaces reads when the Fetcher is non-blocking (zero timeout)
const pollInterval = 50 * time.Millisecond

type pollMsg struct{}

type ListenOptions struct {
	ReadSize int
	Display  components.DisplayMode
}

// ListenModel shows everything the device sends, one ReadData at a time
type ListenModel struct {
	*SerialModel
	terminal  *components.Terminal
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.ListenKeys
	readSize  int
	paused    bool
}

func NewListenModel(fetcher *serialkit.Fetcher, opts ListenOptions) *ListenModel {
	size := opts.ReadSize
	if size <= 0 {
		size = fetcher.ResponseSize()
	}

	return &ListenModel{
		SerialModel: NewSerialModel(fetcher),
		terminal:    components.NewTerminal(0, 0, opts.Display),
		statusBar:   components.NewStatusBar(fetcher.Config()),
		help:        help.New(),
		keys:        keys.NewListenKeys(),
		readSize:    size,
	}
}

func (m *ListenModel) Init() tea.Cmd {
	return m.ConnectCmd()
}

func (m *ListenModel) nextRead(lastEmpty bool) tea.Cmd {
	if m.GetContext().Err() != nil || !m.IsConnected() {
		return nil
	}
	if lastEmpty && m.Fetcher().Config().Timeout == 0 {
		return tea.Tick(pollInterval, func(time.Time) tea.Msg { return pollMsg{} })
	}
	return m.ReadCmd(m.readSize)
}

func (m *ListenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// status bar (1) + content border (1)
		m.terminal.SetSize(msg.Width, msg.Height-2)
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
			m.terminal.AddMessage(m.AddMessage(components.DataMsg{Direction: components.DirectionInfo, Err: msg.Error}))
			return m, nil
		}
		m.statusBar.SetConnected()
		m.terminal.AddMessage(m.AddMessage(components.DataMsg{
			Direction: components.DirectionInfo,
			Data:      []byte(fmt.Sprintf("listening on %s (%s)", m.Fetcher().Config().Port, components.Framing(m.Fetcher().Config()))),
		}))
		return m, m.nextRead(false)

	case pollMsg:
		return m, m.nextRead(false)

	case ReadMsg:
		if msg.Err != nil {
			if m.GetContext().Err() != nil {
				return m, nil
			}
			m.SetConnected(false)
			m.SetError(msg.Err)
			m.statusBar.SetDisconnected(msg.Err)
			m.terminal.AddMessage(m.AddMessage(components.DataMsg{Direction: components.DirectionInfo, Err: msg.Err}))
			return m, nil
		}
		if len(msg.Data) > 0 {
			m.statusBar.Counters().BytesRX += len(msg.Data)
			if !m.paused {
				m.terminal.AddMessage(m.AddMessage(components.DataMsg{Direction: components.DirectionRX, Data: msg.Data}))
			}
		}
		return m, m.nextRead(len(msg.Data) == 0)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *ListenModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	formatter := m.terminal.Formatter()

	switch {
	case key.Matches(msg, m.keys.Quit):
		if err := m.Cleanup(); err != nil {
			m.SetError(err)
		}
		return tea.Quit
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
	case key.Matches(msg, m.keys.ScrollUp):
		m.terminal.ScrollUp()
	case key.Matches(msg, m.keys.ScrollDown):
		m.terminal.ScrollDown()
	case key.Matches(msg, m.keys.GotoTop):
		m.terminal.GotoTop()
	case key.Matches(msg, m.keys.GotoBottom):
		m.terminal.GotoBottom()
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
	}
	return nil
}

func (m *ListenModel) View() string {
	content := "Initializing..."
	if m.IsReady() {
		content = m.terminal.View()
	}
	if m.help.ShowAll {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.help.View(m.keys))
	}

	mode := "LISTEN"
	if m.paused {
		mode = "PAUSED"
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ContentBorderStyle.Render(content),
		m.statusBar.View(mode, "", time.Now().Format("15:04:05")),
	)
}

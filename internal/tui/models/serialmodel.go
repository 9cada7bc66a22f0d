package models

import (
	"context"
	"sync"
	"time"

	"github.com/allbin/serialkit"
	"github.com/allbin/serialkit/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	switch m {
	case InputModeInsert:
		return "INSERT"
	default:
		return "NORMAL"
	}
}

type ConnectionStatusMsg struct {
	Connected bool
	Error     error
}

// ResponseMsg carries the outcome of one command cycle started by SendCmd
type ResponseMsg struct {
	Seq  int
	Data []byte
	Err  error
}

// ReadMsg carries the outcome of one ReadCmd
type ReadMsg struct {
	Data []byte
	Err  error
}

// SerialModel is the state shared by the console and listen views: the Fetcher, the
// message log and the vim-like input mode.
type SerialModel struct {
	fetcher *serialkit.Fetcher

	connected bool
	messages  []components.DataMsg
	seq       int
	err       error
	ready     bool

	inputMode InputMode

	cancel context.CancelFunc
	ctx    context.Context
	mu     sync.RWMutex
}

func NewSerialModel(fetcher *serialkit.Fetcher) *SerialModel {
	ctx, cancel := context.WithCancel(context.Background())

	return &SerialModel{
		fetcher:   fetcher,
		messages:  make([]components.DataMsg, 0),
		inputMode: InputModeNormal,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *SerialModel) Fetcher() *serialkit.Fetcher {
	return m.fetcher
}

// ConnectCmd opens the port off the UI goroutine
func (m *SerialModel) ConnectCmd() tea.Cmd {
	f := m.fetcher
	return func() tea.Msg {
		if err := f.Connect(); err != nil {
			return ConnectionStatusMsg{Connected: false, Error: err}
		}
		return ConnectionStatusMsg{Connected: true}
	}
}

// SendCmd runs one command cycle. Cycles started back to back are serialized by the Fetcher.
func (m *SerialModel) SendCmd(seq int, data []byte) tea.Cmd {
	f := m.fetcher
	return func() tea.Msg {
		resp, err := f.SendCommand(string(data))
		return ResponseMsg{Seq: seq, Data: resp, Err: err}
	}
}

// ReadCmd performs one ReadData of size bytes. A timeout yields an empty ReadMsg.
func (m *SerialModel) ReadCmd(size int) tea.Cmd {
	f := m.fetcher
	return func() tea.Msg {
		data, err := f.ReadData(size)
		return ReadMsg{Data: data, Err: err}
	}
}

func (m *SerialModel) IsConnected() bool {
	return m.connected
}

func (m *SerialModel) SetConnected(connected bool) {
	m.connected = connected
}

func (m *SerialModel) GetError() error {
	return m.err
}

func (m *SerialModel) SetError(err error) {
	m.err = err
}

func (m *SerialModel) IsReady() bool {
	return m.ready
}

func (m *SerialModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *SerialModel) NextSeq() int {
	m.seq++
	return m.seq
}

func (m *SerialModel) Messages() []components.DataMsg {
	return m.messages
}

func (m *SerialModel) AddMessage(msg components.DataMsg) components.DataMsg {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	m.messages = append(m.messages, msg)
	return msg
}

// SetCommandStatus updates the TX entry of command seq and reports whether it was found
func (m *SerialModel) SetCommandStatus(seq int, status components.Status) bool {
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := &m.messages[i]
		if msg.Seq == seq && msg.Direction == components.DirectionTX {
			msg.Status = status
			return true
		}
	}
	return false
}

func (m *SerialModel) ClearMessages() {
	m.messages = make([]components.DataMsg, 0)
}

func (m *SerialModel) GetInputMode() InputMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode
}

func (m *SerialModel) SetInputMode(mode InputMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputMode = mode
}

func (m *SerialModel) IsInInsertMode() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode == InputModeInsert
}

func (m *SerialModel) GetContext() context.Context {
	return m.ctx
}

// Cleanup stops pending reads and releases the port
func (m *SerialModel) Cleanup() error {
	if m.cancel != nil {
		m.cancel()
	}
	m.connected = false
	return m.fetcher.Disconnect()
}

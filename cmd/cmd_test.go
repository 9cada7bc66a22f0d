package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/allbin/serialkit"
	"github.com/allbin/serialkit/internal/settings"
	"github.com/allbin/serialkit/internal/tui/models"
	"github.com/allbin/serialkit/serialkittest"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useDevice routes newFetcher/openFetcher to dev for the duration of the test
func useDevice(t *testing.T, dev *serialkittest.Device) {
	t.Helper()
	prevDriver, prevSettings := testDriver, current
	testDriver = dev.Driver()
	current = settings.Settings{
		Port:         "/dev/fake0",
		Baud:         9600,
		Timeout:      time.Second,
		ResponseSize: 64,
	}
	t.Cleanup(func() {
		testDriver, current = prevDriver, prevSettings
	})
}

func open(t *testing.T, dev *serialkittest.Device) *serialkit.Fetcher {
	t.Helper()
	useDevice(t, dev)
	f, err := openFetcher(current.Port)
	require.NoError(t, err)
	t.Cleanup(func() { f.Disconnect() })
	return f
}

func TestFilterPorts(t *testing.T) {
	ports := []serialkit.PortInfo{
		{Name: "ttyS0"},
		{Name: "ttyUSB0", IsUSB: true},
		{Name: "ttyACM0"},
		{Name: "ttyAMA0"},
		{Name: "ttySAC0"},
		{Name: "cu.usbserial-1410", IsUSB: true},
	}

	tests := []struct {
		filter string
		want   []string
	}{
		{"", []string{"ttyS0", "ttyUSB0", "ttyACM0", "ttyAMA0", "ttySAC0", "cu.usbserial-1410"}},
		{"all", []string{"ttyS0", "ttyUSB0", "ttyACM0", "ttyAMA0", "ttySAC0", "cu.usbserial-1410"}},
		{"usb", []string{"ttyUSB0", "ttyACM0", "cu.usbserial-1410"}},
		{"USB", []string{"ttyUSB0", "ttyACM0", "cu.usbserial-1410"}},
		{"standard", []string{"ttyS0"}},
		{"arm", []string{"ttyAMA0"}},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got, err := filterPorts(ports, tt.filter)
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, p := range got {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	_, err := filterPorts(ports, "bluetooth")
	assert.ErrorContains(t, err, "unknown filter")
}

func TestGetPortType(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"ttyUSB0", "USB Serial"},
		{"ttyACM1", "USB CDC/ACM"},
		{"ttyAMA0", "ARM Serial"},
		{"ttySAC2", "Samsung Serial"},
		{"ttyS0", "Standard Serial"},
		{"cu.usbmodem1", "macOS Serial"},
		{"COM3", "COM Port"},
		{"weird", "Serial Port"},
	}

	for _, test := range tests {
		if got := getPortType(test.name); got != test.expected {
			t.Errorf("getPortType(%s) = %s, expected %s", test.name, got, test.expected)
		}
	}
}

func TestDescribePortsFallback(t *testing.T) {
	info := func(port string) (*serialkit.PortInfo, error) {
		if port == "/dev/ttyUSB0" {
			return &serialkit.PortInfo{Name: "ttyUSB0", Path: port, IsUSB: true, VendorID: "0403", ProductID: "6001"}, nil
		}
		return nil, errors.New("gone")
	}

	got := describePorts([]string{"/dev/ttyUSB0", "/dev/ttyS9"}, info)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsUSB)
	assert.Equal(t, "ttyS9", got[1].Name)
	assert.Equal(t, "/dev/ttyS9", got[1].Path)

	var buf bytes.Buffer
	renderSimple(&buf, got)
	assert.Equal(t, "/dev/ttyUSB0\n/dev/ttyS9\n", buf.String())

	table := portTable(got)
	assert.Contains(t, table, "0403:6001")
	assert.Contains(t, table, "ttyS9")
}

func TestBuildPayload(t *testing.T) {
	p, err := buildPayload("VER", false, true)
	require.NoError(t, err)
	assert.Equal(t, "VER\n", p)

	p, err = buildPayload("48 65", true, true)
	require.NoError(t, err)
	assert.Equal(t, "He", p)

	_, err = buildPayload("4", true, false)
	assert.ErrorContains(t, err, "invalid hex data")

	_, err = buildPayload("", false, false)
	assert.Error(t, err)
}

func TestParseLineEnding(t *testing.T) {
	for name, want := range map[string]string{"lf": "\n", "cr": "\r", "crlf": "\r\n", "none": ""} {
		got, err := parseLineEnding(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
	_, err := parseLineEnding("nul")
	assert.Error(t, err)
}

func TestRunSendParsers(t *testing.T) {
	dev := serialkittest.NewDevice(func(cmd []byte) []byte {
		if string(cmd) == "INFO\n" {
			return []byte("model: X1\r\nfw=2.0\r\n")
		}
		return nil
	})
	f := open(t, dev)

	tests := []struct {
		parser string
		want   string
	}{
		{"raw", "model: X1\r\nfw=2.0\r\n"},
		{"text", "model: X1\r\nfw=2.0\n"},
		{"lines", "model: X1\nfw=2.0\n"},
		{"kv", "fw: \"2.0\"\nmodel: X1\n"},
		{"hex", "6D 6F 64 65 6C 3A 20 58 31 0D 0A 66 77 3D 32 2E 30 0D 0A\n"},
	}

	for _, tt := range tests {
		t.Run(tt.parser, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, runSend(&buf, f, "INFO\n", tt.parser))
			assert.Equal(t, tt.want, buf.String())
		})
	}

	assert.Len(t, dev.Written(), len(tests))
}

func TestRunSendErrors(t *testing.T) {
	dev := serialkittest.NewDevice(func([]byte) []byte { return []byte("garbage\n") })
	f := open(t, dev)

	var buf bytes.Buffer
	err := runSend(&buf, f, "X\n", "kv")
	assert.ErrorIs(t, err, serialkit.ErrParseFailed)

	assert.ErrorContains(t, runSend(&buf, f, "X\n", "xml"), "unknown parser")
	assert.False(t, validParser("xml"))
	assert.True(t, validParser("lines"))

	require.NoError(t, f.Disconnect())
	assert.ErrorIs(t, runSend(&buf, f, "X\n", "raw"), serialkit.ErrNotConnected)
}

func TestRunSendTimeout(t *testing.T) {
	f := open(t, serialkittest.NewDevice(nil))

	var buf bytes.Buffer
	require.NoError(t, runSend(&buf, f, "PING\n", "raw"))
	assert.Empty(t, buf.String())
}

func TestRunCapture(t *testing.T) {
	dev := serialkittest.NewDevice(nil)
	dev.Queue([]byte("$GPGGA,1\r\n"))
	f := open(t, dev)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var file, console bytes.Buffer
	out := writerFunc(func(p []byte) (int, error) {
		n, err := file.Write(p)
		cancel()
		return n, err
	})

	total, err := runCapture(ctx, f, out, &console, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, "$GPG", file.String())
	assert.Equal(t, "$GPG", console.String())
}

func TestReadLoopStopsOnError(t *testing.T) {
	dev := serialkittest.NewDevice(nil)
	f := open(t, dev)
	dev.ReadErr = errors.New("unplugged")

	err := readLoop(context.Background(), f, 16, func([]byte) error { return nil })
	assert.ErrorIs(t, err, serialkit.ErrReadFailed)
}

func TestReadLoopRejectsZeroSize(t *testing.T) {
	dev := serialkittest.NewDevice(nil)
	f := open(t, dev)

	err := readLoop(context.Background(), f, 0, func([]byte) error { return nil })
	assert.ErrorContains(t, err, "--size must be positive")
}

func TestTUIError(t *testing.T) {
	dev := serialkittest.NewDevice(nil)
	dev.OpenErr = errors.New("no such device")
	useDevice(t, dev)
	f, err := newFetcher(current.Port)
	require.NoError(t, err)

	m := models.NewConsoleModel(f, models.ConsoleOptions{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(m.Init()())

	assert.ErrorIs(t, tuiError(nil, m), serialkit.ErrConnectFailed)

	runErr := errors.New("could not open a new TTY")
	assert.Equal(t, runErr, tuiError(runErr, m))

	dev.OpenErr = nil
	ok := models.NewListenModel(f, models.ListenOptions{})
	assert.NoError(t, tuiError(nil, ok))
}

func TestRenderConfig(t *testing.T) {
	useDevice(t, serialkittest.NewDevice(nil))
	f, err := newFetcher("/dev/ttyUSB3")
	require.NoError(t, err)
	assert.False(t, f.IsConnected())

	view := describeConfig(f, "")
	assert.Equal(t, "/dev/ttyUSB3", view.Port)
	assert.Equal(t, "1s", view.Timeout)
	assert.Equal(t, "none", view.Parity)
	assert.Equal(t, 64, view.ResponseSize)

	var buf bytes.Buffer
	require.NoError(t, renderConfig(&buf, view, "yaml"))
	assert.Contains(t, buf.String(), "port: /dev/ttyUSB3\n")
	assert.Contains(t, buf.String(), "baud: 9600\n")
	assert.NotContains(t, buf.String(), "config_file")

	buf.Reset()
	require.NoError(t, renderConfig(&buf, view, "table"))
	assert.Contains(t, buf.String(), "Baud rate")
	assert.Contains(t, buf.String(), "/dev/ttyUSB3")

	assert.Error(t, renderConfig(&buf, view, "xml"))
}

func TestPortFromArgs(t *testing.T) {
	useDevice(t, serialkittest.NewDevice(nil))

	assert.Equal(t, "/dev/fake0", portFromArgs(nil, 0))
	assert.Equal(t, "COM7", portFromArgs([]string{"COM7"}, 0))
	assert.Equal(t, "/dev/fake0", portFromArgs([]string{"cmd"}, 1))

	current.Port = ""
	_, err := newFetcher(portFromArgs(nil, 0))
	assert.ErrorContains(t, err, "no serial port")
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	joined := strings.Join(names, " ")
	for _, want := range []string{"list", "info", "send", "read", "capture", "flush", "config", "console", "listen", "version"} {
		assert.Contains(t, joined, want)
	}
	assert.NotEmpty(t, resolveVersion())
}

type writerFunc func(p []byte) (int, error)

func (w writerFunc) Write(p []byte) (int, error) { return w(p) }

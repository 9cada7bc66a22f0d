package serialkit

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestFetcher(t *testing.T, opts ...Option) (*Fetcher, *fakeDriver) {
	t.Helper()
	d := newFakeDriver()
	opts = append([]Option{WithDriver(d), WithTimeout(100 * time.Millisecond)}, opts...)
	f, err := New("COM1", 9600, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Disconnect() })
	return f, d
}

func connectedFetcher(t *testing.T, opts ...Option) (*Fetcher, *fakeHandle) {
	t.Helper()
	f, d := newTestFetcher(t, opts...)
	require.NoError(t, f.Connect())
	return f, d.handle
}

func TestNewBaudRate(t *testing.T) {
	tests := []struct {
		baud    int
		wantErr bool
	}{
		{1, false},
		{300, false},
		{9600, false},
		{115200, false},
		{4000000, false},
		{0, true},
		{-1, true},
		{-9600, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.baud), func(t *testing.T) {
			f, err := New("COM1", tt.baud, WithDriver(newFakeDriver()))
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.baud, f.Config().BaudRate)
				return
			}
			require.Error(t, err)
			assert.Nil(t, f)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorIs(t, err, ErrInvalidBaudRate)
			assert.Contains(t, err.Error(), "invalid baudrate")
		})
	}
}

func TestNewRequiresPort(t *testing.T) {
	_, err := New("", 9600)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewOptionError(t *testing.T) {
	_, err := New("COM1", 9600, WithTimeout(-time.Second))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New("COM1", 9600, WithResponseSize(0))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConnect(t *testing.T) {
	f, d := newTestFetcher(t)

	assert.False(t, f.IsConnected())
	require.NoError(t, f.Connect())
	assert.True(t, f.IsConnected())

	require.Len(t, d.opened, 1)
	assert.Equal(t, Config{
		Port:     "COM1",
		BaudRate: 9600,
		Timeout:  100 * time.Millisecond,
		Parity:   ParityNone,
		StopBits: StopBitsOne,
		ByteSize: ByteSize8,
	}, d.opened[0])
}

func TestConnectAlreadyConnected(t *testing.T) {
	f, d := newTestFetcher(t)
	require.NoError(t, f.Connect())

	err := f.Connect()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyConnected)
	assert.Contains(t, err.Error(), "already connected")

	assert.True(t, f.IsConnected())
	assert.Equal(t, 1, d.openCount())
	assert.Equal(t, 0, d.handle.closeCount)
}

func TestConnectFailure(t *testing.T) {
	f, d := newTestFetcher(t)
	d.openErr = fmt.Errorf("%w: %w", ErrDeviceNotFound, errPortNotFound)

	err := f.Connect()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectFailed)
	assert.ErrorIs(t, err, ErrDeviceNotFound)
	assert.ErrorIs(t, err, errPortNotFound)
	assert.Contains(t, err.Error(), "failed to connect")
	assert.False(t, f.IsConnected())

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "connect", fe.Op)
	assert.Equal(t, "COM1", fe.Port)

	// a later attempt can still succeed
	d.openErr = nil
	require.NoError(t, f.Connect())
	assert.True(t, f.IsConnected())
}

func TestDisconnect(t *testing.T) {
	f, h := connectedFetcher(t)

	require.NoError(t, f.Disconnect())
	assert.False(t, f.IsConnected())
	assert.Equal(t, 1, h.closeCount)

	// second disconnect must not close the handle again
	require.NoError(t, f.Disconnect())
	assert.Equal(t, 1, h.closeCount)
}

func TestDisconnectNeverConnected(t *testing.T) {
	f, d := newTestFetcher(t)
	assert.NoError(t, f.Disconnect())
	assert.False(t, f.IsConnected())
	assert.Equal(t, 0, d.handle.closeCount)
}

func TestDisconnectCloseError(t *testing.T) {
	f, h := connectedFetcher(t)
	h.closeErr = errors.New("io error")

	err := f.Disconnect()
	assert.ErrorIs(t, err, ErrDisconnectFailed)
	assert.False(t, f.IsConnected())

	assert.NoError(t, f.Disconnect())
	assert.Equal(t, 1, h.closeCount)
}

func TestReconnectAfterDisconnect(t *testing.T) {
	f, d := newTestFetcher(t)
	require.NoError(t, f.Connect())
	require.NoError(t, f.Disconnect())
	require.NoError(t, f.Connect())
	assert.True(t, f.IsConnected())
	assert.Equal(t, 2, d.openCount())
}

func TestNotConnected(t *testing.T) {
	f, _ := newTestFetcher(t)

	_, err := f.ReadData(1024)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Contains(t, err.Error(), "not connected")

	for _, size := range []int{0, -1} {
		_, err = f.ReadData(size)
		assert.ErrorIs(t, err, ErrNotConnected, "size %d", size)
	}

	_, err = f.SendCommand("TEST\n")
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = SendCommandParse(f, "TEST\n", SplitLines)
	assert.ErrorIs(t, err, ErrNotConnected)

	assert.ErrorIs(t, f.Flush(), ErrNotConnected)
}

func TestReadData(t *testing.T) {
	f, h := connectedFetcher(t)
	h.reads = [][]byte{[]byte("DATA\n")}

	data, err := f.ReadData(1024)
	require.NoError(t, err)
	assert.Equal(t, []byte("DATA\n"), data)
	assert.Equal(t, []int{1024}, h.readSizes)
}

func TestReadDataTimeout(t *testing.T) {
	f, h := connectedFetcher(t)

	data, err := f.ReadData(1024)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.NotNil(t, data)
	assert.Equal(t, 1, h.readCount())
}

func TestReadDataSize(t *testing.T) {
	f, h := connectedFetcher(t)
	h.reads = [][]byte{[]byte("ABCDEFGH")}

	data, err := f.ReadData(4)
	require.NoError(t, err)
	assert.Equal(t, []byte("ABCD"), data)

	data, err = f.ReadData(0)
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Empty(t, data)

	_, err = f.ReadData(-1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "read", fe.Op)
	assert.Equal(t, 1, h.readCount())
}

func TestReadDataDriverError(t *testing.T) {
	f, h := connectedFetcher(t)
	h.readErr = errors.New("device vanished")

	_, err := f.ReadData(16)
	assert.ErrorIs(t, err, ErrReadFailed)
	assert.True(t, f.IsConnected())
}

func TestSendCommand(t *testing.T) {
	f, h := connectedFetcher(t)
	h.reads = [][]byte{[]byte("OK\n")}

	resp, err := f.SendCommand("TEST\n")
	require.NoError(t, err)
	assert.Equal(t, []byte("OK\n"), resp)

	require.Len(t, h.written, 1)
	assert.Equal(t, []byte("TEST\n"), h.written[0])
	assert.Equal(t, []int{DefaultResponseSize}, h.readSizes)
	assert.Equal(t, []string{"write", "read"}, h.ops)
}

func TestSendCommandResponseSize(t *testing.T) {
	f, h := connectedFetcher(t, WithResponseSize(8))
	h.reads = [][]byte{[]byte("0123456789")}

	resp, err := f.SendCommand("X")
	require.NoError(t, err)
	assert.Equal(t, []byte("01234567"), resp)
	assert.Equal(t, []int{8}, h.readSizes)
}

func TestSendCommandWithParser(t *testing.T) {
	f, h := connectedFetcher(t)
	h.reads = [][]byte{[]byte("LINE1\nLINE2\n")}

	lines, err := SendCommandParse(f, "INFO\n", SplitLines)
	require.NoError(t, err)
	assert.Equal(t, []string{"LINE1", "LINE2"}, lines)
	assert.Equal(t, [][]byte{[]byte("INFO\n")}, h.written)
	assert.Equal(t, 1, h.readCount())
}

func TestSendCommandCustomParser(t *testing.T) {
	f, h := connectedFetcher(t)
	h.reads = [][]byte{[]byte("42")}

	n, err := SendCommandParse(f, "COUNT?\n", func(b []byte) (int, error) {
		var v int
		_, err := fmt.Sscanf(string(b), "%d", &v)
		return v, err
	})
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestSendCommandParserError(t *testing.T) {
	f, h := connectedFetcher(t)
	h.reads = [][]byte{[]byte("garbage")}

	_, err := SendCommandParse(f, "KV\n", KeyValues)
	assert.ErrorIs(t, err, ErrParseFailed)
	assert.True(t, f.IsConnected())
}

func TestSendCommandWriteFailure(t *testing.T) {
	f, h := connectedFetcher(t)
	h.writeErr = errors.New("write error")

	_, err := f.SendCommand("TEST\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommandFailed)
	assert.NotErrorIs(t, err, ErrNotConnected)
	assert.Contains(t, err.Error(), "error in command-response")
	assert.Equal(t, 0, h.readCount())
}

func TestSendCommandReadFailure(t *testing.T) {
	f, h := connectedFetcher(t)
	h.readErr = errors.New("read error")

	_, err := f.SendCommand("TEST\n")
	assert.ErrorIs(t, err, ErrCommandFailed)
}

func TestSendCommandShortWrite(t *testing.T) {
	f, h := connectedFetcher(t)
	h.shortWrite = true

	_, err := f.SendCommand("TEST\n")
	assert.ErrorIs(t, err, ErrCommandFailed)
	assert.Equal(t, 0, h.readCount())
}

func TestSendCommandConcurrent(t *testing.T) {
	f, h := connectedFetcher(t)
	h.echo = true
	h.writeDelay = time.Millisecond

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cmd := fmt.Sprintf("CMD%d\n", i)
			resp, err := f.SendCommand(cmd)
			if err != nil {
				errs <- err
				return
			}
			if string(resp) != "RE:"+cmd {
				errs <- fmt.Errorf("command %q got response %q", cmd, resp)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}

	assert.Equal(t, n, h.writeCount())
	assert.Equal(t, n, h.readCount())
	for i := 0; i < len(h.ops); i += 2 {
		assert.Equal(t, []string{"write", "read"}, h.ops[i:i+2], "cycle %d split", i/2)
	}
}

func TestFlush(t *testing.T) {
	f, h := connectedFetcher(t)

	require.NoError(t, f.Flush())
	assert.Equal(t, 1, h.resetInputCount)
	assert.Equal(t, 1, h.resetOutputCount)
}

func TestFlushFailure(t *testing.T) {
	f, h := connectedFetcher(t)
	h.resetInputErr = errors.New("ioctl failed")

	assert.ErrorIs(t, f.Flush(), ErrFlushFailed)
	assert.Equal(t, 0, h.resetOutputCount)
}

func TestConfigSnapshot(t *testing.T) {
	f, _ := newTestFetcher(t)

	assert.Equal(t, Config{
		Port:     "COM1",
		BaudRate: 9600,
		Timeout:  100 * time.Millisecond,
		Parity:   ParityNone,
		StopBits: StopBitsOne,
		ByteSize: ByteSize8,
	}, f.Config())

	// mutating the snapshot does not leak back
	c := f.Config()
	c.BaudRate = 1
	assert.Equal(t, 9600, f.Config().BaudRate)
}

func TestConfigCustom(t *testing.T) {
	f, err := New("/dev/ttyUSB0", 19200,
		WithDriver(newFakeDriver()),
		WithTimeout(0),
		WithParity(ParityEven),
		WithStopBits(StopBitsTwo),
		WithByteSize(ByteSize7),
	)
	require.NoError(t, err)

	assert.Equal(t, Config{
		Port:     "/dev/ttyUSB0",
		BaudRate: 19200,
		Timeout:  0,
		Parity:   ParityEven,
		StopBits: StopBitsTwo,
		ByteSize: ByteSize7,
	}, f.Config())
}

func TestLoggingOnConnect(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f, _ := newTestFetcher(t, WithLogger(zap.New(core)))

	require.NoError(t, f.Connect())
	assert.Equal(t, 1, logs.FilterMessage("connecting").Len())
	assert.Equal(t, 1, logs.FilterMessage("connected").Len())

	entry := logs.FilterMessage("connected").All()[0]
	assert.Equal(t, "COM1", entry.ContextMap()["port"])
}

func TestLoggingCycleID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f, h := connectedFetcher(t, WithLogger(zap.New(core)))
	h.reads = [][]byte{[]byte("OK")}

	_, err := f.SendCommand("PING\n")
	require.NoError(t, err)

	written := logs.FilterMessage("command written").All()
	read := logs.FilterMessage("response read").All()
	require.Len(t, written, 1)
	require.Len(t, read, 1)
	assert.NotEmpty(t, written[0].ContextMap()["cycle"])
	assert.Equal(t, written[0].ContextMap()["cycle"], read[0].ContextMap()["cycle"])
}

func TestLogLevelFiltersInjectedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f, _ := newTestFetcher(t, WithLogger(zap.New(core)), WithLogLevel(zapcore.InfoLevel))

	require.NoError(t, f.Connect())
	assert.Equal(t, 0, logs.Len())
}

func TestHelp(t *testing.T) {
	f, _ := newTestFetcher(t)
	help := f.Help()

	assert.NotEmpty(t, help)
	assert.Contains(t, help, "Fetcher")
	for _, op := range []string{"Connect", "Disconnect", "ReadData", "SendCommand", "Flush", "Config", "ListPorts"} {
		assert.Contains(t, help, op)
	}
	assert.Contains(t, help, "8N1")
}

func TestString(t *testing.T) {
	f, _ := newTestFetcher(t)
	assert.Equal(t, "Fetcher(port=COM1, baudrate=9600, connected=false)", f.String())
	require.NoError(t, f.Connect())
	assert.True(t, strings.HasSuffix(f.String(), "connected=true)"))
}

func TestListPortsWith(t *testing.T) {
	d := newFakeDriver()
	d.ports = []string{"/dev/ttyACM0", "/dev/ttyUSB0"}

	ports, err := ListPortsWith(d)
	require.NoError(t, err)
	assert.Equal(t, []string{"/dev/ttyACM0", "/dev/ttyUSB0"}, ports)

	d.ports = nil
	ports, err = ListPortsWith(d)
	require.NoError(t, err)
	assert.NotNil(t, ports)
	assert.Empty(t, ports)

	d.listErr = errors.New("sysfs unavailable")
	_, err = ListPortsWith(d)
	assert.ErrorIs(t, err, ErrEnumerationFailed)
}

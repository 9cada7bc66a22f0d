package serialkit

import (
	"errors"
	"sync"
	"time"
)

// fakeHandle implements Handle for testing
type fakeHandle struct {
	mu sync.Mutex

	// reads are served in order; once exhausted Read returns 0, nil like a timeout
	reads [][]byte
	// echo makes Read answer with "RE:" + the last written bytes
	echo bool

	written    [][]byte
	readSizes  []int
	ops        []string
	writeDelay time.Duration

	readErr        error
	writeErr       error
	closeErr       error
	resetInputErr  error
	resetOutputErr error

	closeCount       int
	resetInputCount  int
	resetOutputCount int
	shortWrite       bool
}

func (h *fakeHandle) Read(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.readSizes = append(h.readSizes, len(p))
	h.ops = append(h.ops, "read")
	if h.readErr != nil {
		return 0, h.readErr
	}

	if h.echo {
		if len(h.written) == 0 {
			return 0, nil
		}
		return copy(p, append([]byte("RE:"), h.written[len(h.written)-1]...)), nil
	}

	if len(h.reads) == 0 {
		return 0, nil
	}
	next := h.reads[0]
	h.reads = h.reads[1:]
	return copy(p, next), nil
}

func (h *fakeHandle) Write(p []byte) (int, error) {
	if h.writeDelay > 0 {
		time.Sleep(h.writeDelay)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.ops = append(h.ops, "write")
	if h.writeErr != nil {
		return 0, h.writeErr
	}
	h.written = append(h.written, append([]byte(nil), p...))
	if h.shortWrite && len(p) > 0 {
		return len(p) - 1, nil
	}
	return len(p), nil
}

func (h *fakeHandle) ResetInputBuffer() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resetInputCount++
	return h.resetInputErr
}

func (h *fakeHandle) ResetOutputBuffer() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resetOutputCount++
	return h.resetOutputErr
}

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeCount++
	return h.closeErr
}

func (h *fakeHandle) writeCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.written)
}

func (h *fakeHandle) readCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.readSizes)
}

// fakeDriver implements Driver for testing
type fakeDriver struct {
	mu sync.Mutex

	handle  *fakeHandle
	openErr error
	opened  []Config
	ports   []string
	listErr error
}

var errPortNotFound = errors.New("port not found")

func newFakeDriver() *fakeDriver {
	return &fakeDriver{handle: &fakeHandle{}}
}

func (d *fakeDriver) Open(config Config) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.opened = append(d.opened, config)
	if d.openErr != nil {
		return nil, d.openErr
	}
	return d.handle, nil
}

func (d *fakeDriver) Ports() ([]string, error) {
	return d.ports, d.listErr
}

func (d *fakeDriver) openCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.opened)
}

// Package serialkittest provides an in-memory serial device for testing code built on
// serialkit.Fetcher.
package serialkittest

import (
	"sync"

	"github.com/allbin/serialkit"
)

// Device is a scripted serial device. Every write is passed to Reply and whatever it
// returns becomes readable. Reads with nothing pending behave like an expired timeout.
type Device struct {
	mu sync.Mutex

	Reply func(command []byte) []byte
	// Ports is what the driver reports as present
	Ports []string

	OpenErr  error
	ReadErr  error
	WriteErr error
	CloseErr error

	pending []byte
	written [][]byte
	opens   []serialkit.Config
	open    bool
}

// NewDevice returns a device answering each command with reply
func NewDevice(reply func(command []byte) []byte) *Device {
	return &Device{Reply: reply}
}

// Echo answers every command with itself
func Echo(command []byte) []byte {
	return append([]byte(nil), command...)
}

// Queue makes data readable as if the device had sent it unprompted
func (d *Device) Queue(data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, data...)
}

// Written returns a copy of every write in order
func (d *Device) Written() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, len(d.written))
	copy(out, d.written)
	return out
}

// Opens returns the configurations the device was opened with
func (d *Device) Opens() []serialkit.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]serialkit.Config(nil), d.opens...)
}

func (d *Device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Driver returns a serialkit.Driver whose every port is this device
func (d *Device) Driver() serialkit.Driver {
	return driver{d}
}

type driver struct{ d *Device }

func (dr driver) Open(config serialkit.Config) (serialkit.Handle, error) {
	d := dr.d
	d.mu.Lock()
	defer d.mu.Unlock()

	d.opens = append(d.opens, config)
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	d.open = true
	return handle{d}, nil
}

func (dr driver) Ports() ([]string, error) {
	dr.d.mu.Lock()
	defer dr.d.mu.Unlock()
	return append([]string(nil), dr.d.Ports...), nil
}

type handle struct{ d *Device }

func (h handle) Read(p []byte) (int, error) {
	d := h.d
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ReadErr != nil {
		return 0, d.ReadErr
	}
	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

func (h handle) Write(p []byte) (int, error) {
	d := h.d
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.WriteErr != nil {
		return 0, d.WriteErr
	}
	d.written = append(d.written, append([]byte(nil), p...))
	if d.Reply != nil {
		d.pending = append(d.pending, d.Reply(p)...)
	}
	return len(p), nil
}

func (h handle) ResetInputBuffer() error {
	h.d.mu.Lock()
	defer h.d.mu.Unlock()
	h.d.pending = nil
	return nil
}

func (h handle) ResetOutputBuffer() error {
	return nil
}

func (h handle) Close() error {
	d := h.d
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	return d.CloseErr
}

// Package serialkit provides a small, connection-state guarded adapter around a serial
// port driver for command/response style devices.
//
// The default driver is go.bug.st/serial, so device access, baud timing, parity and
// stop bit handling are whatever that library does on the host platform. serialkit adds
// a connected/disconnected state machine, one lock around every use of the open handle,
// and a single error type.
//
// # Basic Usage
//
// Create a Fetcher (9600 8N1, 1 second read timeout by default) and connect:
//
//	f, err := serialkit.New("/dev/ttyUSB0", 9600)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := f.Connect(); err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Disconnect()
//
//	// One write followed by one read, atomic with respect to other callers
//	resp, err := f.SendCommand("VER\n")
//
//	// Plain read; an empty slice means the timeout expired with nothing received
//	data, err := f.ReadData(256)
//
// # Configuration Options
//
// Use functional options for custom configuration:
//
//	f, err := serialkit.New("/dev/ttyACM0", 115200,
//	    serialkit.WithTimeout(100*time.Millisecond),
//	    serialkit.WithParity(serialkit.ParityEven),
//	    serialkit.WithStopBits(serialkit.StopBitsTwo),
//	    serialkit.WithByteSize(serialkit.ByteSize7),
//	    serialkit.WithResponseSize(4096),
//	    serialkit.WithLogger(logger),
//	)
//
// A non-positive baud rate is rejected by New.
//
// # Parsing Responses
//
// SendCommandParse applies a Parser to the raw response:
//
//	lines, err := serialkit.SendCommandParse(f, "INFO\n", serialkit.SplitLines)
//
// SplitLines, Text, KeyValues and Hex are provided; any func([]byte) (T, error) works.
//
// # Port Discovery
//
//	ports, err := serialkit.ListPorts()
//	for _, p := range ports {
//	    info, _ := serialkit.GetPortInfo(p)
//	    fmt.Printf("%s: %s (VID=%s PID=%s)\n", info.Path, info.Description, info.VendorID, info.ProductID)
//	}
//
// # Error Handling
//
// Every operation returns *FetchError. Use errors.Is with the kind sentinels:
//
//	if errors.Is(err, serialkit.ErrNotConnected) {
//	    // Connect first
//	}
//	if errors.Is(err, serialkit.ErrDeviceNotFound) {
//	    // cable unplugged
//	}
//
// Disconnect on a closed Fetcher returns nil. Read timeouts are not errors.
//
// # Concurrency
//
// A Fetcher is safe for concurrent use. Connect, Disconnect, ReadData, SendCommand,
// SendCommandParse and Flush are serialized by one mutex, so concurrent commands never
// receive each other's responses. Config is lock-free.
package serialkit

// Package serialport abstracts the byte-oriented serial link to the
// accelerator so the exchange logic can be tested without hardware.
package serialport

import (
	"errors"
	"io"
	"time"
)

// ErrWriteFailed is returned when a port accepts zero bytes without an error.
var ErrWriteFailed = errors.New("failed to write to serial port")

// Port defines the minimal interface needed for a serial port.
type Port interface {
	io.ReadWriter
	io.Closer
	// SetReadTimeout bounds each individual Read call. A Read that times out
	// returns 0 bytes and a nil error.
	SetReadTimeout(timeout time.Duration) error
}

// Drainer is implemented by ports that can block until all written bytes
// have been transmitted.
type Drainer interface {
	Drain() error
}

// Factory opens serial ports.
type Factory interface {
	// Open opens the port at path with the given options.
	Open(path string, opts PortOptions) (Port, error)
}

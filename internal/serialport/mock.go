package serialport

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

var errPortClosed = errors.New("serial port closed")

// TestablePort implements Port and Drainer with configurable behaviour for
// testing. It provides fine-grained control over reads, writes and errors,
// and records the order in which operations were called.
type TestablePort struct {
	mu sync.Mutex

	// ReadBuffer holds data to be returned by Read calls. An empty buffer
	// behaves like an elapsed read timeout: Read returns 0, nil.
	ReadBuffer *bytes.Buffer

	// WriteBuffer captures data written to the port
	WriteBuffer *bytes.Buffer

	// MaxReadChunk caps the bytes returned by one Read call (0 = unlimited)
	MaxReadChunk int

	// MaxWriteChunk caps the bytes accepted by one Write call (0 = unlimited)
	MaxWriteChunk int

	// ReadError is returned by the next Read call if set
	ReadError error

	// WriteError is returned by the next Write call if set
	WriteError error

	// DrainError is returned by Drain if set
	DrainError error

	// CloseError is returned by Close if set
	CloseError error

	// TimeoutError is returned by SetReadTimeout if set
	TimeoutError error

	// Echo copies every written byte into ReadBuffer
	Echo bool

	// ReadTimeout is the last timeout passed to SetReadTimeout
	ReadTimeout time.Duration

	Closed     bool
	ReadCalls  int
	WriteCalls int
	CloseCalls int

	// Ops records "write", "drain", "read" and "close" in call order
	Ops []string
}

// NewTestablePort creates a new TestablePort for testing.
func NewTestablePort() *TestablePort {
	return &TestablePort{
		ReadBuffer:  bytes.NewBuffer(nil),
		WriteBuffer: bytes.NewBuffer(nil),
	}
}

// Read reads from the read buffer, optionally simulating errors and
// fragmented delivery.
func (t *TestablePort) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadCalls++
	t.Ops = append(t.Ops, "read")

	if t.Closed {
		return 0, errPortClosed
	}
	if t.ReadError != nil {
		err := t.ReadError
		t.ReadError = nil
		return 0, err
	}
	if t.ReadBuffer.Len() == 0 {
		return 0, nil
	}
	if t.MaxReadChunk > 0 && len(p) > t.MaxReadChunk {
		p = p[:t.MaxReadChunk]
	}
	return t.ReadBuffer.Read(p)
}

// Write writes to the write buffer, optionally simulating errors and partial
// writes.
func (t *TestablePort) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.WriteCalls++
	t.Ops = append(t.Ops, "write")

	if t.Closed {
		return 0, errPortClosed
	}
	if t.WriteError != nil {
		err := t.WriteError
		t.WriteError = nil
		return 0, err
	}
	if t.MaxWriteChunk > 0 && len(p) > t.MaxWriteChunk {
		p = p[:t.MaxWriteChunk]
	}
	if t.Echo {
		t.ReadBuffer.Write(p)
	}
	return t.WriteBuffer.Write(p)
}

// Drain implements Drainer.
func (t *TestablePort) Drain() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Ops = append(t.Ops, "drain")
	return t.DrainError
}

// Close marks the port as closed.
func (t *TestablePort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.CloseCalls++
	t.Ops = append(t.Ops, "close")
	t.Closed = true
	return t.CloseError
}

// SetReadTimeout implements Port.
func (t *TestablePort) SetReadTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.TimeoutError != nil {
		return t.TimeoutError
	}
	t.ReadTimeout = timeout
	return nil
}

// AddReadData adds data to be returned by subsequent Read calls.
func (t *TestablePort) AddReadData(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadBuffer.Write(data)
}

// GetWrittenData returns all data written to the port.
func (t *TestablePort) GetWrittenData() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.WriteBuffer.Bytes()
}

// MockFactory implements Factory for testing.
type MockFactory struct {
	mu sync.Mutex

	// Port is the port to return from Open
	Port Port

	// Error is returned by Open if set
	Error error

	// OpenCalls records all Open calls
	OpenCalls []MockOpenCall
}

// MockOpenCall records details of an Open call.
type MockOpenCall struct {
	Path    string
	Options PortOptions
}

// NewMockFactory creates a new MockFactory returning port.
func NewMockFactory(port Port) *MockFactory {
	return &MockFactory{Port: port}
}

// Open returns the configured port or error.
func (f *MockFactory) Open(path string, opts PortOptions) (Port, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.OpenCalls = append(f.OpenCalls, MockOpenCall{Path: path, Options: opts})

	if f.Error != nil {
		return nil, f.Error
	}
	return f.Port, nil
}

// LastCall returns the most recent Open call, or nil if none.
func (f *MockFactory) LastCall() *MockOpenCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.OpenCalls) == 0 {
		return nil
	}
	return &f.OpenCalls[len(f.OpenCalls)-1]
}

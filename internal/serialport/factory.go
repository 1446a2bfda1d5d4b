package serialport

import (
	"errors"
	"fmt"

	"go.bug.st/serial"
)

// RealFactory opens hardware ports through go.bug.st/serial.
type RealFactory struct{}

// NewRealFactory returns a Factory backed by the operating system's serial
// devices.
func NewRealFactory() *RealFactory {
	return &RealFactory{}
}

// Open opens the device at path. The returned serial.Port satisfies both
// Port and Drainer.
func (f *RealFactory) Open(path string, opts PortOptions) (Port, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, describeOpenError(path, err)
	}
	return port, nil
}

// describeOpenError adds the library's classification (busy, not found,
// permission denied) to the error text.
func describeOpenError(path string, err error) error {
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortBusy:
			return fmt.Errorf("serial port %s is busy: %w", path, err)
		case serial.PortNotFound:
			return fmt.Errorf("serial port %s not found: %w", path, err)
		case serial.PermissionDenied:
			return fmt.Errorf("permission denied opening %s: %w", path, err)
		}
	}
	return fmt.Errorf("failed to open serial port %s: %w", path, err)
}

// ListPorts returns the serial devices visible to the host.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}

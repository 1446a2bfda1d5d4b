// Package transport performs the single half-duplex request/response
// exchange with the accelerator: one write of the outbound frame, then one
// bounded read of the inbound frame.
package transport

import (
	"errors"
	"fmt"
	"io"

	"github.com/banshee-data/pixelstream/internal/config"
	"github.com/banshee-data/pixelstream/internal/fault"
	"github.com/banshee-data/pixelstream/internal/monitoring"
	"github.com/banshee-data/pixelstream/internal/serialport"
)

// Exchange opens the channel described by ch, writes payload in full and then
// reads until expected bytes have arrived or a read returns nothing because
// the per-read timeout elapsed. A short result is returned without error; the
// caller validates its length. The port is closed exactly once on every path.
func Exchange(factory serialport.Factory, ch config.Channel, payload []byte, expected int) (received []byte, err error) {
	opts := ch.PortOptions()
	port, err := factory.Open(ch.Port, opts)
	if err != nil {
		return nil, fault.New(fault.ChannelOpen, "open "+ch.Port, err)
	}
	defer func() {
		if cerr := port.Close(); cerr != nil && err == nil {
			err = fault.New(fault.ChannelIO, "close "+ch.Port, cerr)
		}
	}()

	if err := port.SetReadTimeout(ch.ReadTimeout); err != nil {
		return nil, fault.New(fault.ChannelOpen, "configure "+ch.Port, err)
	}
	monitoring.Logf("serial port %s open (%s). sending %d bytes", ch.Port, opts, len(payload))

	if err := writeAll(port, payload); err != nil {
		return nil, fault.New(fault.ChannelIO, "write "+ch.Port, err)
	}
	if d, ok := port.(serialport.Drainer); ok {
		if err := d.Drain(); err != nil {
			return nil, fault.New(fault.ChannelIO, "drain "+ch.Port, err)
		}
	}

	received, err = readFrame(port, expected)
	if err != nil {
		return nil, fault.New(fault.ChannelIO, "read "+ch.Port, err)
	}
	monitoring.Logf("received %d of %d bytes from %s", len(received), expected, ch.Port)
	return received, nil
}

// writeAll writes p, continuing after partial writes.
func writeAll(w io.Writer, p []byte) error {
	for written := 0; written < len(p); {
		n, err := w.Write(p[written:])
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w after %d of %d bytes", serialport.ErrWriteFailed, written, len(p))
		}
		written += n
	}
	return nil
}

// readFrame reads up to n bytes. A read returning zero bytes marks an elapsed
// timeout and ends the frame early, as does io.EOF.
func readFrame(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	got := 0
	for got < n {
		m, err := r.Read(buf[got:])
		got += m
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if m == 0 {
			break
		}
	}
	return buf[:got], nil
}

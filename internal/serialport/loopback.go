package serialport

import (
	"github.com/banshee-data/pixelstream/internal/monitoring"
)

// LoopbackFactory opens in-memory ports that echo everything written to
// them, standing in for the accelerator when no hardware is attached.
type LoopbackFactory struct {
	// Truncate, when positive, caps the number of echoed bytes so a short
	// read can be reproduced end to end.
	Truncate int

	// Invert echoes 255-b instead of b, imitating a simple device filter.
	Invert bool

	// Silent accepts writes but never replies, so every read times out.
	Silent bool
}

// Open returns a fresh loopback port. path is only logged.
func (f *LoopbackFactory) Open(path string, opts PortOptions) (Port, error) {
	if _, err := opts.Normalize(); err != nil {
		return nil, err
	}
	monitoring.Logf("loopback: standing in for %s", path)
	return &loopbackPort{TestablePort: NewTestablePort(), factory: f}, nil
}

type loopbackPort struct {
	*TestablePort
	factory *LoopbackFactory
	echoed  int
}

func (p *loopbackPort) Write(b []byte) (int, error) {
	n, err := p.TestablePort.Write(b)
	if err != nil {
		return n, err
	}

	if p.factory.Silent {
		return n, nil
	}

	out := b[:n]
	if limit := p.factory.Truncate; limit > 0 {
		room := limit - p.echoed
		if room <= 0 {
			return n, nil
		}
		if len(out) > room {
			out = out[:room]
		}
	}
	if p.factory.Invert {
		inv := make([]byte, len(out))
		for i, v := range out {
			inv[i] = 255 - v
		}
		out = inv
	}
	p.echoed += len(out)
	p.AddReadData(out)
	return n, nil
}

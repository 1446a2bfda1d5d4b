package serialport

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestTestablePort_EmptyReadBehavesLikeTimeout(t *testing.T) {
	port := NewTestablePort()

	n, err := port.Read(make([]byte, 8))
	if err != nil || n != 0 {
		t.Errorf("Read on empty buffer = (%d, %v), want (0, nil)", n, err)
	}
}

func TestTestablePort_Chunking(t *testing.T) {
	port := NewTestablePort()
	port.MaxReadChunk = 3
	port.MaxWriteChunk = 2
	port.AddReadData([]byte("abcdef"))

	buf := make([]byte, 10)
	n, _ := port.Read(buf)
	if n != 3 {
		t.Errorf("Read returned %d bytes, want 3", n)
	}

	n, _ = port.Write([]byte("xyz"))
	if n != 2 {
		t.Errorf("Write accepted %d bytes, want 2", n)
	}
	if !bytes.Equal(port.GetWrittenData(), []byte("xy")) {
		t.Errorf("written = %q, want %q", port.GetWrittenData(), "xy")
	}
}

func TestTestablePort_ErrorsAreOneShot(t *testing.T) {
	port := NewTestablePort()
	port.WriteError = errors.New("unplugged")

	if _, err := port.Write([]byte{1}); err == nil {
		t.Fatal("expected write error")
	}
	if _, err := port.Write([]byte{1}); err != nil {
		t.Errorf("second write error = %v, want nil", err)
	}
}

func TestTestablePort_RecordsOps(t *testing.T) {
	port := NewTestablePort()
	port.Echo = true

	port.Write([]byte{7})
	port.Drain()
	port.Read(make([]byte, 1))
	port.Close()

	want := []string{"write", "drain", "read", "close"}
	if len(port.Ops) != len(want) {
		t.Fatalf("Ops = %v, want %v", port.Ops, want)
	}
	for i := range want {
		if port.Ops[i] != want[i] {
			t.Errorf("Ops[%d] = %q, want %q", i, port.Ops[i], want[i])
		}
	}
	if port.CloseCalls != 1 {
		t.Errorf("CloseCalls = %d, want 1", port.CloseCalls)
	}
}

func TestTestablePort_ClosedPortFails(t *testing.T) {
	port := NewTestablePort()
	port.Close()

	if _, err := port.Read(make([]byte, 1)); err == nil {
		t.Error("Read after Close should fail")
	}
	if _, err := port.Write([]byte{1}); err == nil {
		t.Error("Write after Close should fail")
	}
}

func TestTestablePort_SetReadTimeout(t *testing.T) {
	port := NewTestablePort()
	if err := port.SetReadTimeout(1500 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if port.ReadTimeout != 1500*time.Millisecond {
		t.Errorf("ReadTimeout = %v", port.ReadTimeout)
	}
}

func TestMockFactory_RecordsCalls(t *testing.T) {
	port := NewTestablePort()
	f := NewMockFactory(port)

	if f.LastCall() != nil {
		t.Error("LastCall should be nil before any Open")
	}

	got, err := f.Open("COM6", PortOptions{BaudRate: 9600})
	if err != nil {
		t.Fatal(err)
	}
	if got != port {
		t.Error("Open returned unexpected port")
	}
	last := f.LastCall()
	if last == nil || last.Path != "COM6" || last.Options.BaudRate != 9600 {
		t.Errorf("LastCall = %+v", last)
	}

	f.Error = errors.New("busy")
	if _, err := f.Open("COM6", PortOptions{}); err == nil {
		t.Error("expected configured error")
	}
	if len(f.OpenCalls) != 2 {
		t.Errorf("OpenCalls = %d, want 2", len(f.OpenCalls))
	}
}

func TestLoopbackFactory_Echo(t *testing.T) {
	port, err := (&LoopbackFactory{}).Open("loop", PortOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer port.Close()

	port.Write([]byte{1, 2, 3})
	buf := make([]byte, 3)
	n, _ := port.Read(buf)
	if n != 3 || !bytes.Equal(buf, []byte{1, 2, 3}) {
		t.Errorf("echo = %v (%d bytes)", buf[:n], n)
	}
}

func TestLoopbackFactory_TruncateAcrossWrites(t *testing.T) {
	port, err := (&LoopbackFactory{Truncate: 4}).Open("loop", PortOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer port.Close()

	if n, _ := port.Write([]byte{1, 2, 3}); n != 3 {
		t.Errorf("first write accepted %d bytes, want 3", n)
	}
	if n, _ := port.Write([]byte{4, 5, 6}); n != 3 {
		t.Errorf("second write accepted %d bytes, want 3", n)
	}

	buf := make([]byte, 16)
	n, _ := port.Read(buf)
	if !bytes.Equal(buf[:n], []byte{1, 2, 3, 4}) {
		t.Errorf("echo = %v, want [1 2 3 4]", buf[:n])
	}
}

func TestLoopbackFactory_Invert(t *testing.T) {
	port, err := (&LoopbackFactory{Invert: true}).Open("loop", PortOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer port.Close()

	port.Write([]byte{0, 100, 255})
	buf := make([]byte, 3)
	port.Read(buf)
	if !bytes.Equal(buf, []byte{255, 155, 0}) {
		t.Errorf("inverted echo = %v", buf)
	}
}

func TestLoopbackFactory_RejectsInvalidOptions(t *testing.T) {
	if _, err := (&LoopbackFactory{}).Open("loop", PortOptions{BaudRate: 12345}); err == nil {
		t.Error("expected error for unsupported baud rate")
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Channel.Port != DefaultPort {
		t.Errorf("Port = %q, want %q", cfg.Channel.Port, DefaultPort)
	}
	if cfg.Channel.BaudRate != 115200 {
		t.Errorf("BaudRate = %d, want 115200", cfg.Channel.BaudRate)
	}
	if cfg.Channel.ReadTimeout != time.Second {
		t.Errorf("ReadTimeout = %v, want 1s", cfg.Channel.ReadTimeout)
	}
	if cfg.Width != 256 || cfg.Height != 256 {
		t.Errorf("dimensions = %dx%d, want 256x256", cfg.Width, cfg.Height)
	}
	if cfg.FrameSize() != 65536 {
		t.Errorf("FrameSize() = %d, want 65536", cfg.FrameSize())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestChannelPortOptionsAlwaysEvenParity(t *testing.T) {
	opts := Channel{Port: "COM6", BaudRate: 9600}.PortOptions()

	if opts.Parity != "E" {
		t.Errorf("Parity = %q, want E", opts.Parity)
	}
	if opts.BaudRate != 9600 || opts.DataBits != 8 || opts.StopBits != 1 {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty port", func(c *Config) { c.Channel.Port = "" }, "serial port"},
		{"bad baud", func(c *Config) { c.Channel.BaudRate = 12345 }, "baud"},
		{"zero timeout", func(c *Config) { c.Channel.ReadTimeout = 0 }, "timeout"},
		{"empty input", func(c *Config) { c.InputPath = "" }, "input"},
		{"empty output", func(c *Config) { c.OutputPath = "" }, "output"},
		{"zero width", func(c *Config) { c.Width = 0 }, "width"},
		{"negative height", func(c *Config) { c.Height = -2 }, "width"},
		{"overwrite input", func(c *Config) { c.OutputPath = "./" + c.InputPath }, "overwrite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFileAndApply(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pixelstream.json")

	testJSON := `{
  "port": "COM6",
  "baud_rate": 57600,
  "read_timeout": "2500ms",
  "input_path": "in.png",
  "width": 128,
  "journal_path": "runs.db"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	f, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	cfg := Default()
	if err := f.Apply(&cfg); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if cfg.Channel.Port != "COM6" {
		t.Errorf("Port = %q, want COM6", cfg.Channel.Port)
	}
	if cfg.Channel.BaudRate != 57600 {
		t.Errorf("BaudRate = %d, want 57600", cfg.Channel.BaudRate)
	}
	if cfg.Channel.ReadTimeout != 2500*time.Millisecond {
		t.Errorf("ReadTimeout = %v, want 2.5s", cfg.Channel.ReadTimeout)
	}
	if cfg.InputPath != "in.png" {
		t.Errorf("InputPath = %q", cfg.InputPath)
	}
	// omitted fields keep their defaults
	if cfg.OutputPath != DefaultOutputPath {
		t.Errorf("OutputPath = %q, want default", cfg.OutputPath)
	}
	if cfg.Width != 128 || cfg.Height != 256 {
		t.Errorf("dimensions = %dx%d, want 128x256", cfg.Width, cfg.Height)
	}
	if cfg.JournalPath != "runs.db" {
		t.Errorf("JournalPath = %q", cfg.JournalPath)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	yamlPath := filepath.Join(tmpDir, "config.yaml")
	os.WriteFile(yamlPath, []byte("port: COM6"), 0644)
	if _, err := LoadFile(yamlPath); err == nil {
		t.Error("expected error for non-json extension")
	}

	if _, err := LoadFile(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	badPath := filepath.Join(tmpDir, "bad.json")
	os.WriteFile(badPath, []byte("{not json"), 0644)
	if _, err := LoadFile(badPath); err == nil {
		t.Error("expected error for malformed JSON")
	}

	bigPath := filepath.Join(tmpDir, "big.json")
	os.WriteFile(bigPath, make([]byte, maxFileSize+1), 0644)
	if _, err := LoadFile(bigPath); err == nil {
		t.Error("expected error for oversized file")
	}
}

func TestApply_InvalidDuration(t *testing.T) {
	bad := "soon"
	f := &File{ReadTimeout: &bad}
	cfg := Default()
	if err := f.Apply(&cfg); err == nil {
		t.Error("expected error for invalid read_timeout")
	}
}

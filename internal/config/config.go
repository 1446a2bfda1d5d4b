// Package config builds the single configuration record handed to the
// pipeline. Values come from defaults, an optional JSON file and command-line
// flags, in that order of precedence (flags win).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/pixelstream/internal/serialport"
)

// Parity is the only parity the accelerator's UART is built for.
const Parity = "E"

// Defaults used when neither the config file nor a flag sets a value.
const (
	DefaultPort        = "/dev/ttyUSB0"
	DefaultBaudRate    = serialport.DefaultBaudRate
	DefaultReadTimeout = time.Second
	DefaultInputPath   = "lion.jpg"
	DefaultOutputPath  = "processed_image.jpg"
	DefaultWidth       = 256
	DefaultHeight      = 256
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Channel describes the serial transport. It is built once per run and not
// modified after the port has been opened.
type Channel struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration
}

// PortOptions returns the serial options for this channel: the configured
// baud rate, 8 data bits, even parity, 1 stop bit.
func (c Channel) PortOptions() serialport.PortOptions {
	return serialport.PortOptions{
		BaudRate: c.BaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   Parity,
	}
}

// Config is the complete configuration of one run.
type Config struct {
	Channel    Channel
	InputPath  string
	OutputPath string
	Width      int
	Height     int

	// HistogramPath, when set, receives a PNG of sent/received intensities.
	HistogramPath string
	// JournalPath, when set, is the SQLite database recording each run.
	JournalPath string
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Channel: Channel{
			Port:        DefaultPort,
			BaudRate:    DefaultBaudRate,
			ReadTimeout: DefaultReadTimeout,
		},
		InputPath:  DefaultInputPath,
		OutputPath: DefaultOutputPath,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
	}
}

// FrameSize is the number of bytes exchanged in each direction.
func (c Config) FrameSize() int {
	return c.Width * c.Height
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Channel.Port == "" {
		return errors.New("serial port is required")
	}
	if _, err := c.Channel.PortOptions().Normalize(); err != nil {
		return fmt.Errorf("invalid serial options: %w", err)
	}
	if c.Channel.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", c.Channel.ReadTimeout)
	}
	if c.InputPath == "" {
		return errors.New("input path is required")
	}
	if c.OutputPath == "" {
		return errors.New("output path is required")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", c.Width, c.Height)
	}
	if filepath.Clean(c.InputPath) == filepath.Clean(c.OutputPath) {
		return fmt.Errorf("output path %q would overwrite the input image", c.OutputPath)
	}
	return nil
}

// File is the on-disk JSON schema. Every field is optional; omitted fields
// leave the current value untouched.
type File struct {
	Port          *string `json:"port,omitempty"`
	BaudRate      *int    `json:"baud_rate,omitempty"`
	ReadTimeout   *string `json:"read_timeout,omitempty"` // duration string like "1s"
	InputPath     *string `json:"input_path,omitempty"`
	OutputPath    *string `json:"output_path,omitempty"`
	Width         *int    `json:"width,omitempty"`
	Height        *int    `json:"height,omitempty"`
	HistogramPath *string `json:"histogram_path,omitempty"`
	JournalPath   *string `json:"journal_path,omitempty"`
}

// LoadFile loads a File from a JSON file.
// The file must have a .json extension and be under the max file size.
func LoadFile(path string) (*File, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	f := &File{}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return f, nil
}

// Apply overlays the fields set in f onto cfg.
func (f *File) Apply(cfg *Config) error {
	if f.Port != nil {
		cfg.Channel.Port = *f.Port
	}
	if f.BaudRate != nil {
		cfg.Channel.BaudRate = *f.BaudRate
	}
	if f.ReadTimeout != nil {
		d, err := time.ParseDuration(*f.ReadTimeout)
		if err != nil {
			return fmt.Errorf("invalid read_timeout %q: %w", *f.ReadTimeout, err)
		}
		cfg.Channel.ReadTimeout = d
	}
	if f.InputPath != nil {
		cfg.InputPath = *f.InputPath
	}
	if f.OutputPath != nil {
		cfg.OutputPath = *f.OutputPath
	}
	if f.Width != nil {
		cfg.Width = *f.Width
	}
	if f.Height != nil {
		cfg.Height = *f.Height
	}
	if f.HistogramPath != nil {
		cfg.HistogramPath = *f.HistogramPath
	}
	if f.JournalPath != nil {
		cfg.JournalPath = *f.JournalPath
	}
	return nil
}

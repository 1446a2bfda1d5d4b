// Package testutil provides shared test utilities and fixtures.
//
// This package centralises image fixtures and assertion helpers used by the
// imageio, pipeline and command tests.
package testutil

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertFileAbsent fails the test if path exists.
func AssertFileAbsent(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected %s to be absent, stat err = %v", path, err)
	}
}

// Gradient is a deterministic pattern whose samples differ across both axes.
func Gradient(x, y int) uint8 {
	return uint8((x*7 + y*13) % 256)
}

// GrayImage builds a width x height *image.Gray filled by fill.
func GrayImage(width, height int, fill func(x, y int) uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: fill(x, y)})
		}
	}
	return img
}

// WritePNG encodes img as dir/name and returns the full path.
func WritePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return path
}

// WriteGrayPNG writes a width x height grayscale PNG fixture.
func WriteGrayPNG(t *testing.T, dir, name string, width, height int, fill func(x, y int) uint8) string {
	t.Helper()
	return WritePNG(t, dir, name, GrayImage(width, height, fill))
}

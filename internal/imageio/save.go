package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/banshee-data/pixelstream/internal/fault"
	"github.com/banshee-data/pixelstream/internal/pixels"
)

// JPEGQuality is used for .jpg/.jpeg output.
const JPEGQuality = 95

type encodeFunc func(io.Writer, *image.Gray) error

var encoders = map[string]encodeFunc{
	".png":  func(w io.Writer, g *image.Gray) error { return png.Encode(w, g) },
	".jpg":  encodeJPEG,
	".jpeg": encodeJPEG,
	".bmp":  func(w io.Writer, g *image.Gray) error { return bmp.Encode(w, g) },
	".tif":  encodeTIFF,
	".tiff": encodeTIFF,
	".gif":  encodeGIF,
}

func encodeJPEG(w io.Writer, g *image.Gray) error {
	return jpeg.Encode(w, g, &jpeg.Options{Quality: JPEGQuality})
}

func encodeTIFF(w io.Writer, g *image.Gray) error {
	return tiff.Encode(w, g, &tiff.Options{Compression: tiff.Deflate})
}

// grayPalette maps index i to luminance i so GIF output is lossless.
var grayPalette = func() color.Palette {
	p := make(color.Palette, 256)
	for i := range p {
		p[i] = color.Gray{Y: uint8(i)}
	}
	return p
}()

func encodeGIF(w io.Writer, g *image.Gray) error {
	pal := image.NewPaletted(g.Bounds(), grayPalette)
	copy(pal.Pix, g.Pix)
	return gif.Encode(w, pal, &gif.Options{NumColors: 256})
}

// SupportedOutput reports whether path has an extension Save can encode.
func SupportedOutput(path string) bool {
	_, ok := encoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// OutputMode is the permission given to a newly created output image.
const OutputMode os.FileMode = 0o644

// outputMode keeps the permissions of an image being replaced at path.
func outputMode(path string) os.FileMode {
	if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
		return fi.Mode().Perm()
	}
	return OutputMode
}

// Save encodes buf as a single-channel 8-bit image at path, choosing the
// format from the extension. The image is written to a temporary file in the
// same directory and renamed into place, so path never holds a partial file.
func Save(path string, buf *pixels.Buffer) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	encode, ok := encoders[ext]
	if !ok {
		return fault.WithPath(fault.Encode, "save", path, fmt.Errorf("unsupported output format %q", ext))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pixelstream-*"+ext)
	if err != nil {
		return fault.WithPath(fault.Write, "save", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(outputMode(path)); err != nil {
		return fault.WithPath(fault.Write, "save", path, err)
	}
	if err = encode(tmp, ToImage(buf)); err != nil {
		return fault.WithPath(fault.Encode, "save", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fault.WithPath(fault.Write, "save", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fault.WithPath(fault.Write, "save", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fault.WithPath(fault.Write, "save", path, err)
	}
	return nil
}

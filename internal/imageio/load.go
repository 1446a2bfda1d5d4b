// Package imageio converts between image files and 8-bit luminance pixel
// buffers.
package imageio

import (
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/banshee-data/pixelstream/internal/fault"
	"github.com/banshee-data/pixelstream/internal/monitoring"
	"github.com/banshee-data/pixelstream/internal/pixels"
)

// Load decodes the image at path, converts it to 8-bit luminance and resizes
// it to width x height when its dimensions differ. An image that already has
// the target dimensions is not resampled.
func Load(path string, width, height int) (*pixels.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.WithPath(fault.ImageNotFound, "load", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fault.WithPath(fault.ImageNotFound, "load", path, err)
	}
	if info.IsDir() {
		return nil, fault.WithPath(fault.ImageNotFound, "load", path, errors.New("is a directory"))
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fault.WithPath(fault.Decode, "load", path, err)
	}
	b := img.Bounds()
	monitoring.Logf("loaded %s: %s %dx%d", path, format, b.Dx(), b.Dy())

	gray := toGray(img)
	if b.Dx() != width || b.Dy() != height {
		monitoring.Logf("resizing from %dx%d to %dx%d", b.Dx(), b.Dy(), width, height)
		gray = resize(gray, width, height)
	}
	return fromGray(gray), nil
}

// toGray converts img to luminance using color.GrayModel. *image.Gray input
// is returned as is.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

func resize(src *image.Gray, width, height int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// fromGray copies g into a tightly packed buffer, honouring g's stride and
// origin.
func fromGray(g *image.Gray) *pixels.Buffer {
	b := g.Bounds()
	buf := &pixels.Buffer{Width: b.Dx(), Height: b.Dy(), Pix: make([]byte, b.Dx()*b.Dy())}
	for y := 0; y < buf.Height; y++ {
		start := g.PixOffset(b.Min.X, b.Min.Y+y)
		copy(buf.Row(y), g.Pix[start:start+buf.Width])
	}
	return buf
}

// ToImage wraps a copy of buf as an *image.Gray.
func ToImage(buf *pixels.Buffer) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, buf.Width, buf.Height))
	for y := 0; y < buf.Height; y++ {
		copy(g.Pix[y*g.Stride:y*g.Stride+buf.Width], buf.Row(y))
	}
	return g
}

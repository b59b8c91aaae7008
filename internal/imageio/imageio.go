// Package imageio loads samples from image files and writes generated
// output as PNG.
package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoder
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp" // register decoder
	"golang.org/x/image/draw"

	"github.com/samdwyer/wavecollapse/internal/collapse"
)

// MaxScale bounds the upscale factor accepted by WritePNG.
const MaxScale = 64

// ErrInvalidScale is returned for a scale outside [1, MaxScale].
var ErrInvalidScale = errors.New("imageio: invalid scale")

// DecodeSample decodes a PNG, JPEG, GIF or BMP image into a sample.
func DecodeSample(r io.Reader) (*collapse.Sample, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("imageio: decode: %w", err)
	}
	return collapse.SampleFromImage(img)
}

// LoadSample reads a sample image from path.
func LoadSample(path string) (*collapse.Sample, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("imageio: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return DecodeSample(f)
}

// Scale returns the output as an image with every cell drawn as a
// scale x scale block.
func Scale(out *collapse.Output, scale int) (image.Image, error) {
	if scale < 1 || scale > MaxScale {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScale, scale)
	}
	src := out.Image()
	if scale == 1 {
		return src, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, out.Width*scale, out.Height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// EncodePNG writes the scaled output as PNG to w.
func EncodePNG(w io.Writer, out *collapse.Output, scale int) error {
	img, err := Scale(out, scale)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("imageio: encode PNG: %w", err)
	}
	return nil
}

// WritePNG saves the scaled output as a PNG file.
func WritePNG(path string, out *collapse.Output, scale int) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("imageio: create file: %w", err)
	}

	if err := EncodePNG(f, out, scale); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

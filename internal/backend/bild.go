package backend

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// Bild is the pure Go backend built on anthonynsimon/bild.
type Bild struct{}

func (Bild) Name() string { return NameBild }

func (Bild) Decode(data []byte) (Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode source image: %w", err)
	}
	return &bildImage{img: clone.AsRGBA(src)}, nil
}

type bildImage struct {
	img *image.RGBA
}

func (m *bildImage) Width() int {
	if m.img == nil {
		return 0
	}
	return m.img.Bounds().Dx()
}

func (m *bildImage) Height() int {
	if m.img == nil {
		return 0
	}
	return m.img.Bounds().Dy()
}

func (m *bildImage) Blur(sigma float64) error {
	if m.img == nil {
		return ErrClosed
	}
	if sigma <= 0 {
		return nil
	}
	m.img = blur.Gaussian(m.img, sigma)
	return nil
}

func (m *bildImage) AdjustBrightness(percent float64) error {
	if m.img == nil {
		return ErrClosed
	}
	change := percent / 100
	if change < -1 {
		change = -1
	}
	if change > 1 {
		change = 1
	}
	m.img = adjust.Brightness(m.img, change)
	return nil
}

func (m *bildImage) CropCenter(width, height int) error {
	if m.img == nil {
		return ErrClosed
	}
	m.img = rebase(transform.Crop(m.img, centeredRect(m.img.Bounds(), width, height)))
	return nil
}

func (m *bildImage) Resize(width, height int) error {
	if m.img == nil {
		return ErrClosed
	}
	m.img = transform.Resize(m.img, width, height, transform.Lanczos)
	return nil
}

func (m *bildImage) Clone() (Image, error) {
	if m.img == nil {
		return nil, ErrClosed
	}
	return &bildImage{img: clone.AsRGBA(m.img)}, nil
}

func (m *bildImage) CompositeCenter(overlay Image) error {
	if m.img == nil {
		return ErrClosed
	}
	other, ok := overlay.(*bildImage)
	if !ok || other.img == nil {
		return fmt.Errorf("composite: overlay is not an open %s image", NameBild)
	}

	ob := other.img.Bounds()
	target := centeredRect(m.img.Bounds(), ob.Dx(), ob.Dy())
	// centeredRect clamps to the receiver, so a larger overlay is cut to
	// its own center region.
	srcMin := image.Pt(ob.Min.X+(ob.Dx()-target.Dx())/2, ob.Min.Y+(ob.Dy()-target.Dy())/2)
	draw.Draw(m.img, target, other.img, srcMin, draw.Over)
	return nil
}

func (m *bildImage) Encode(format string, quality int) ([]byte, error) {
	if m.img == nil {
		return nil, ErrClosed
	}

	var (
		buf bytes.Buffer
		err error
	)
	switch normalizeFormat(format) {
	case "jpeg":
		err = imgio.JPEGEncoder(jpegQuality(quality))(&buf, m.img)
	case "png":
		err = imgio.PNGEncoder()(&buf, m.img)
	case "bmp":
		err = imgio.BMPEncoder()(&buf, m.img)
	case "gif":
		err = gif.Encode(&buf, m.img, nil)
	case "tiff":
		err = tiff.Encode(&buf, m.img, nil)
	default:
		return nil, fmt.Errorf("%w: %s requires the govips backend", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

func (m *bildImage) Close() error {
	m.img = nil
	return nil
}

// rebase moves img to a zero origin; sub-images keep their parent's
// coordinates otherwise.
func rebase(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	if b.Min == (image.Point{}) {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// centeredRect returns a width x height rectangle centered in bounds,
// clamped to bounds.
func centeredRect(bounds image.Rectangle, width, height int) image.Rectangle {
	width = min(max(width, 0), bounds.Dx())
	height = min(max(height, 0), bounds.Dy())
	x := bounds.Min.X + (bounds.Dx()-width)/2
	y := bounds.Min.Y + (bounds.Dy()-height)/2
	return image.Rect(x, y, x+width, y+height)
}

package backend

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Imaging is the pure Go backend built on disintegration/imaging.
type Imaging struct{}

func (Imaging) Name() string { return NameImaging }

func (Imaging) Decode(data []byte) (Image, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode source image: %w", err)
	}
	return &imagingImage{img: imaging.Clone(src)}, nil
}

type imagingImage struct {
	img *image.NRGBA
}

func (m *imagingImage) Width() int {
	if m.img == nil {
		return 0
	}
	return m.img.Bounds().Dx()
}

func (m *imagingImage) Height() int {
	if m.img == nil {
		return 0
	}
	return m.img.Bounds().Dy()
}

func (m *imagingImage) Blur(sigma float64) error {
	if m.img == nil {
		return ErrClosed
	}
	m.img = imaging.Blur(m.img, sigma)
	return nil
}

func (m *imagingImage) AdjustBrightness(percent float64) error {
	if m.img == nil {
		return ErrClosed
	}
	m.img = imaging.AdjustBrightness(m.img, percent)
	return nil
}

func (m *imagingImage) CropCenter(width, height int) error {
	if m.img == nil {
		return ErrClosed
	}
	m.img = imaging.CropCenter(m.img, width, height)
	return nil
}

func (m *imagingImage) Resize(width, height int) error {
	if m.img == nil {
		return ErrClosed
	}
	m.img = imaging.Resize(m.img, width, height, imaging.Lanczos)
	return nil
}

func (m *imagingImage) Clone() (Image, error) {
	if m.img == nil {
		return nil, ErrClosed
	}
	return &imagingImage{img: imaging.Clone(m.img)}, nil
}

func (m *imagingImage) CompositeCenter(overlay Image) error {
	if m.img == nil {
		return ErrClosed
	}
	other, ok := overlay.(*imagingImage)
	if !ok || other.img == nil {
		return fmt.Errorf("composite: overlay is not an open %s image", NameImaging)
	}
	m.img = imaging.OverlayCenter(m.img, other.img, 1.0)
	return nil
}

func (m *imagingImage) Encode(format string, quality int) ([]byte, error) {
	if m.img == nil {
		return nil, ErrClosed
	}

	var (
		buf bytes.Buffer
		err error
	)
	switch normalizeFormat(format) {
	case "jpeg":
		err = imaging.Encode(&buf, m.img, imaging.JPEG, imaging.JPEGQuality(jpegQuality(quality)))
	case "png":
		err = imaging.Encode(&buf, m.img, imaging.PNG)
	case "gif":
		err = imaging.Encode(&buf, m.img, imaging.GIF)
	case "tiff":
		err = imaging.Encode(&buf, m.img, imaging.TIFF)
	case "bmp":
		err = imaging.Encode(&buf, m.img, imaging.BMP)
	default:
		return nil, fmt.Errorf("%w: %s requires the govips backend", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

func (m *imagingImage) Close() error {
	m.img = nil
	return nil
}

//go:build govips && cgo

package backend

import (
	"fmt"

	"github.com/davidbyttow/govips/v2/vips"
)

// Govips is the libvips backend. It is the only backend that writes webp.
type Govips struct{}

func (Govips) Name() string { return NameGovips }

func (Govips) Decode(data []byte) (Image, error) {
	img, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, fmt.Errorf("decode source image: %w", err)
	}
	if err := img.AutoRotate(); err != nil {
		img.Close()
		return nil, fmt.Errorf("auto rotate: %w", err)
	}
	return &vipsImage{ref: img}, nil
}

type vipsImage struct {
	ref *vips.ImageRef
}

func (m *vipsImage) Width() int {
	if m.ref == nil {
		return 0
	}
	return m.ref.Width()
}

func (m *vipsImage) Height() int {
	if m.ref == nil {
		return 0
	}
	return m.ref.Height()
}

func (m *vipsImage) Blur(sigma float64) error {
	if m.ref == nil {
		return ErrClosed
	}
	if sigma <= 0 {
		return nil
	}
	if err := m.ref.GaussianBlur(sigma); err != nil {
		return fmt.Errorf("gaussian blur: %w", err)
	}
	return nil
}

func (m *vipsImage) AdjustBrightness(percent float64) error {
	if m.ref == nil {
		return ErrClosed
	}
	percent = min(max(percent, -100), 100)
	shift := percent * 255 / 100

	bands := m.ref.Bands()
	scale := make([]float64, bands)
	offset := make([]float64, bands)
	for i := range bands {
		scale[i] = 1
		offset[i] = shift
	}
	if m.ref.HasAlpha() {
		offset[bands-1] = 0
	}

	if err := m.ref.Linear(scale, offset); err != nil {
		return fmt.Errorf("adjust brightness: %w", err)
	}
	if err := m.ref.Cast(vips.BandFormatUchar); err != nil {
		return fmt.Errorf("cast after brightness: %w", err)
	}
	return nil
}

func (m *vipsImage) CropCenter(width, height int) error {
	if m.ref == nil {
		return ErrClosed
	}
	width = min(max(width, 1), m.ref.Width())
	height = min(max(height, 1), m.ref.Height())
	left := (m.ref.Width() - width) / 2
	top := (m.ref.Height() - height) / 2
	if err := m.ref.ExtractArea(left, top, width, height); err != nil {
		return fmt.Errorf("crop: %w", err)
	}
	return nil
}

func (m *vipsImage) Resize(width, height int) error {
	if m.ref == nil {
		return ErrClosed
	}
	if m.ref.Width() <= 0 || m.ref.Height() <= 0 {
		return fmt.Errorf("source image has invalid dimensions")
	}
	hscale := float64(width) / float64(m.ref.Width())
	vscale := float64(height) / float64(m.ref.Height())
	if err := m.ref.ResizeWithVScale(hscale, vscale, vips.KernelLanczos3); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	return nil
}

func (m *vipsImage) Clone() (Image, error) {
	if m.ref == nil {
		return nil, ErrClosed
	}
	cp, err := m.ref.Copy()
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}
	return &vipsImage{ref: cp}, nil
}

func (m *vipsImage) CompositeCenter(overlay Image) error {
	if m.ref == nil {
		return ErrClosed
	}
	other, ok := overlay.(*vipsImage)
	if !ok || other.ref == nil {
		return fmt.Errorf("composite: overlay is not an open %s image", NameGovips)
	}
	x := (m.ref.Width() - other.ref.Width()) / 2
	y := (m.ref.Height() - other.ref.Height()) / 2
	if err := m.ref.Composite(other.ref, vips.BlendModeOver, x, y); err != nil {
		return fmt.Errorf("composite: %w", err)
	}
	return nil
}

func (m *vipsImage) Encode(format string, quality int) ([]byte, error) {
	if m.ref == nil {
		return nil, ErrClosed
	}

	switch normalizeFormat(format) {
	case "jpeg":
		params := vips.NewJpegExportParams()
		params.Quality = jpegQuality(quality)
		data, _, err := m.ref.ExportJpeg(params)
		if err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		return data, nil
	case "png":
		data, _, err := m.ref.ExportPng(vips.NewPngExportParams())
		if err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		return data, nil
	case "webp":
		params := vips.NewWebpExportParams()
		if quality > 0 && quality <= 100 {
			params.Quality = quality
		}
		data, _, err := m.ref.ExportWebp(params)
		if err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
		return data, nil
	case "gif":
		data, _, err := m.ref.ExportGIF(vips.NewGifExportParams())
		if err != nil {
			return nil, fmt.Errorf("encode gif: %w", err)
		}
		return data, nil
	case "tiff":
		data, _, err := m.ref.ExportTiff(vips.NewTiffExportParams())
		if err != nil {
			return nil, fmt.Errorf("encode tiff: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func (m *vipsImage) Close() error {
	if m.ref != nil {
		m.ref.Close()
		m.ref = nil
	}
	return nil
}

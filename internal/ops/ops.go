// Package ops implements the image operations on top of geometry and a
// backend image handle. Each call mutates the handle it is given.
package ops

import (
	"errors"
	"fmt"

	"github.com/dunamismax/imgbox/internal/backend"
	"github.com/dunamismax/imgbox/internal/geometry"
	"github.com/sirupsen/logrus"
)

var ErrInvalidSize = errors.New("crop size must be positive")

// Library runs operations and reports progress at info level.
type Library struct {
	Log logrus.FieldLogger
}

func New(log logrus.FieldLogger) Library {
	return Library{Log: log}
}

func (l Library) Blur(img backend.Image, percent int) error {
	l.Log.Info("Blurring image...")
	if err := img.Blur(float64(percent)); err != nil {
		return fmt.Errorf("blur: %w", err)
	}
	l.Log.Info("Blurred.")
	return nil
}

// Dim lowers brightness by percent.
func (l Library) Dim(img backend.Image, percent int) error {
	l.Log.Info("Dimming image...")
	if err := img.AdjustBrightness(-float64(percent)); err != nil {
		return fmt.Errorf("dim: %w", err)
	}
	l.Log.Info("Dimmed.")
	return nil
}

// CropRect crops to size around the center. Sizes larger than the image are
// clamped by the backend.
func (l Library) CropRect(img backend.Image, size geometry.Dimensions) error {
	l.Log.Info("Cropping to rectangle...")
	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSize, size)
	}
	if err := img.CropCenter(size.Width, size.Height); err != nil {
		return fmt.Errorf("crop: %w", err)
	}
	l.Log.Info("Cropped.")
	return nil
}

// CropRatio crops to the largest centered rectangle with the given ratio.
func (l Library) CropRatio(img backend.Image, ratio geometry.Ratio) error {
	l.Log.Info("Cropping to ratio...")
	size, err := geometry.FitToRatio(dimensions(img), ratio, true)
	if err != nil {
		return fmt.Errorf("crop to ratio: %w", err)
	}
	l.Log.Info("Calculated ratio.")
	return l.CropRect(img, size)
}

// Enlarge pads img out to ratio. The handle is cropped to the ratio, scaled
// up to the containing rectangle and blurred; an untouched copy of the
// original is then drawn on top, centered.
func (l Library) Enlarge(img backend.Image, ratio geometry.Ratio, blurPercent int) error {
	l.Log.Info("Enlarging image...")
	outer, err := geometry.FitToRatio(dimensions(img), ratio, false)
	if err != nil {
		return fmt.Errorf("enlarge: %w", err)
	}

	// The plate must be taken before the handle is cropped.
	plate, err := img.Clone()
	if err != nil {
		return fmt.Errorf("enlarge: %w", err)
	}
	defer plate.Close()

	if err := l.CropRatio(img, ratio); err != nil {
		return fmt.Errorf("enlarge: %w", err)
	}
	if err := img.Resize(outer.Width, outer.Height); err != nil {
		return fmt.Errorf("enlarge: resize: %w", err)
	}
	if err := l.Blur(img, blurPercent); err != nil {
		return fmt.Errorf("enlarge: %w", err)
	}
	if err := img.CompositeCenter(plate); err != nil {
		return fmt.Errorf("enlarge: %w", err)
	}

	l.Log.Info("Enlarged.")
	return nil
}

// Resize scales img so its larger side (fit) or smaller side (!fit) equals
// side. A derived side that truncates to zero becomes one pixel.
func (l Library) Resize(img backend.Image, side int, fit bool) error {
	l.Log.Info("Resizing image...")
	size, err := geometry.ProportionalResize(dimensions(img), side, fit)
	if err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	if err := img.Resize(max(1, size.Width), max(1, size.Height)); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	l.Log.Info("Resized.")
	return nil
}

func dimensions(img backend.Image) geometry.Dimensions {
	return geometry.Dimensions{Width: img.Width(), Height: img.Height()}
}

// Package backend adapts image libraries to the mutable handle the pipeline
// operates on. Every Image method mutates the receiver in place.
package backend

import (
	"errors"
	"fmt"
	"strings"
)

const (
	NameImaging = "imaging"
	NameBild    = "bild"
	NameGovips  = "govips"
)

var (
	ErrUnknownBackend    = errors.New("unknown image backend")
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrClosed            = errors.New("image handle is closed")
)

// Image is an exclusively owned, mutable image handle.
type Image interface {
	Width() int
	Height() int

	// Blur applies a Gaussian blur with the given sigma.
	Blur(sigma float64) error
	// AdjustBrightness shifts brightness by percent in [-100, 100]; values
	// outside the range are clamped by the library.
	AdjustBrightness(percent float64) error
	// CropCenter crops to width x height around the image center.
	CropCenter(width, height int) error
	// Resize scales to exactly width x height.
	Resize(width, height int) error
	// Clone returns an independent copy.
	Clone() (Image, error)
	// CompositeCenter draws overlay on top of the receiver, centered.
	CompositeCenter(overlay Image) error

	Encode(format string, quality int) ([]byte, error)
	Close() error
}

type Backend interface {
	Name() string
	Decode(data []byte) (Image, error)
}

// Open returns the backend registered under name. An empty name selects the
// imaging backend.
func Open(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameImaging:
		return Imaging{}, nil
	case NameBild:
		return Bild{}, nil
	case NameGovips:
		return newGovips()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

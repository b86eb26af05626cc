// Package geometry computes target dimensions for ratio fitting and
// proportional resizing. All derived sides use truncating integer division.
package geometry

import (
	"errors"
	"fmt"
)

var ErrInvalidArgument = errors.New("invalid geometry argument")

// Dimensions is a width and height in pixels.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Ratio is an aspect ratio Width:Height.
type Ratio struct {
	Width  int
	Height int
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d:%d", r.Width, r.Height)
}

// Square is the 1:1 ratio used when crop or enlarge get no ratio token.
var Square = Ratio{Width: 1, Height: 1}

// FitToRatio returns the rectangle with aspect ratio r that keeps one side of
// old unchanged. With fit set the rectangle is inscribed in old (cropping);
// otherwise it contains old (enlarging).
func FitToRatio(old Dimensions, r Ratio, fit bool) (Dimensions, error) {
	if old.Width <= 0 || old.Height <= 0 {
		return Dimensions{}, fmt.Errorf("%w: dimensions %s", ErrInvalidArgument, old)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return Dimensions{}, fmt.Errorf("%w: ratio %s", ErrInvalidArgument, r)
	}

	w, h := int64(old.Width), int64(old.Height)
	rw, rh := int64(r.Width), int64(r.Height)

	// rw/rh < w/h, compared without floating point.
	narrower := rw*h < w*rh
	if fit == narrower {
		w = h * rw / rh
	} else {
		h = w * rh / rw
	}
	return Dimensions{Width: int(w), Height: int(h)}, nil
}

// ProportionalResize scales old so that its larger side (fit) or its smaller
// side (!fit) becomes side. The other side follows the same scale, truncated.
func ProportionalResize(old Dimensions, side int, fit bool) (Dimensions, error) {
	if old.Width <= 0 || old.Height <= 0 {
		return Dimensions{}, fmt.Errorf("%w: dimensions %s", ErrInvalidArgument, old)
	}
	if side <= 0 {
		return Dimensions{}, fmt.Errorf("%w: side %d", ErrInvalidArgument, side)
	}

	w, h, s := int64(old.Width), int64(old.Height), int64(side)
	if fit == (w > h) {
		h = s * h / w
		w = s
	} else {
		w = s * w / h
		h = s
	}
	return Dimensions{Width: int(w), Height: int(h)}, nil
}

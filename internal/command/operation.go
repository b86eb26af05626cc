// Package command turns the ordered argument list into typed operations.
package command

import (
	"fmt"

	"github.com/dunamismax/imgbox/internal/geometry"
)

type Kind int

const (
	KindBlur Kind = iota + 1
	KindDim
	KindCropRect
	KindCropRatio
	KindEnlargeRatio
	KindResize
	KindShow
	KindSetVerbose
	KindSave
)

func (k Kind) String() string {
	switch k {
	case KindBlur:
		return "blur"
	case KindDim:
		return "dim"
	case KindCropRect:
		return "crop_rect"
	case KindCropRatio:
		return "crop_ratio"
	case KindEnlargeRatio:
		return "enlarge"
	case KindResize:
		return "resize"
	case KindShow:
		return "show"
	case KindSetVerbose:
		return "verbose"
	case KindSave:
		return "save"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type ResizeMode int

const (
	ResizeMin ResizeMode = iota
	ResizeMax
)

func (m ResizeMode) String() string {
	if m == ResizeMax {
		return "max"
	}
	return "min"
}

// Operation is one parsed command. Only the fields for its Kind are set, so
// two operations parsed from equivalent tokens compare equal.
type Operation struct {
	Kind Kind

	// Blur, Dim, and the blur applied by EnlargeRatio.
	Percent int
	// CropRect.
	Size geometry.Dimensions
	// CropRatio and EnlargeRatio.
	Ratio geometry.Ratio
	// Resize.
	Side int
	Mode ResizeMode
	// Save.
	Path string
}

func (o Operation) String() string {
	switch o.Kind {
	case KindBlur, KindDim:
		return fmt.Sprintf("%s %d%%", o.Kind, o.Percent)
	case KindCropRect:
		return fmt.Sprintf("%s %s", o.Kind, o.Size)
	case KindCropRatio:
		return fmt.Sprintf("%s %s", o.Kind, o.Ratio)
	case KindEnlargeRatio:
		return fmt.Sprintf("%s %s blur=%d%%", o.Kind, o.Ratio, o.Percent)
	case KindResize:
		return fmt.Sprintf("%s %s %d", o.Kind, o.Mode, o.Side)
	case KindSave:
		return fmt.Sprintf("%s %s", o.Kind, o.Path)
	default:
		return o.Kind.String()
	}
}

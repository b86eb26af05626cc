package ops

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/dunamismax/imgbox/internal/backend"
	"github.com/dunamismax/imgbox/internal/geometry"
	"github.com/dunamismax/imgbox/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCropRatio(t *testing.T) {
	lib := New(logging.Discard())
	img := newImage(t, 1920, 1080)

	require.NoError(t, lib.CropRatio(img, geometry.Square))
	assert.Equal(t, 1080, img.Width())
	assert.Equal(t, 1080, img.Height())

	// Square input stays square.
	require.NoError(t, lib.CropRatio(img, geometry.Square))
	assert.Equal(t, 1080, img.Width())
	assert.Equal(t, 1080, img.Height())
}

func TestCropRectRejectsEmpty(t *testing.T) {
	lib := New(logging.Discard())
	img := newImage(t, 20, 20)

	err := lib.CropRect(img, geometry.Dimensions{Width: 0, Height: 5})
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestResize(t *testing.T) {
	lib := New(logging.Discard())

	img := newImage(t, 400, 300)
	require.NoError(t, lib.Resize(img, 200, true))
	assert.Equal(t, 200, img.Width())
	assert.Equal(t, 150, img.Height())

	img = newImage(t, 400, 300)
	require.NoError(t, lib.Resize(img, 100, false))
	assert.Equal(t, 133, img.Width())
	assert.Equal(t, 100, img.Height())
}

func TestResizeKeepsOnePixel(t *testing.T) {
	lib := New(logging.Discard())
	img := newImage(t, 300, 2)

	require.NoError(t, lib.Resize(img, 100, true))
	assert.Equal(t, 100, img.Width())
	assert.Equal(t, 1, img.Height())
}

func TestEnlargeProducesContainingRatio(t *testing.T) {
	lib := New(logging.Discard())
	img := newImage(t, 400, 300)

	require.NoError(t, lib.Enlarge(img, geometry.Square, 10))
	assert.Equal(t, 400, img.Width())
	assert.Equal(t, 400, img.Height())
}

func TestEnlargeOrder(t *testing.T) {
	rec := &recordingImage{w: 400, h: 300}
	lib := New(logging.Discard())

	require.NoError(t, lib.Enlarge(rec, geometry.Ratio{Width: 2, Height: 3}, 30))
	assert.Equal(t, []string{
		"clone 400x300",
		"crop 200x300",
		"resize 400x600",
		"blur 30",
		"composite 400x300",
	}, rec.calls)
	assert.True(t, rec.plate.closed, "plate must be released")
}

func TestOperationsLogAtInfo(t *testing.T) {
	var buf bytes.Buffer
	lib := New(logging.New(&buf, logrus.InfoLevel))

	require.NoError(t, lib.Dim(newImage(t, 4, 4), 10))
	assert.Equal(t, "[INFO] Dimming image...\n[INFO] Dimmed.\n", buf.String())
}

func newImage(t *testing.T, w, h int) backend.Image {
	t.Helper()

	src := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := backend.Imaging{}.Decode(buf.Bytes())
	require.NoError(t, err)
	t.Cleanup(func() { _ = img.Close() })
	return img
}

// recordingImage tracks the calls an operation makes.
type recordingImage struct {
	w, h   int
	calls  []string
	plate  *recordingImage
	closed bool
	root   *recordingImage
}

func (r *recordingImage) log(format string, args ...any) {
	target := r
	if r.root != nil {
		target = r.root
	}
	target.calls = append(target.calls, fmt.Sprintf(format, args...))
}

func (r *recordingImage) Width() int  { return r.w }
func (r *recordingImage) Height() int { return r.h }

func (r *recordingImage) Blur(sigma float64) error {
	r.log("blur %d", int(sigma))
	return nil
}

func (r *recordingImage) AdjustBrightness(percent float64) error {
	r.log("brightness %d", int(percent))
	return nil
}

func (r *recordingImage) CropCenter(w, h int) error {
	r.log("crop %dx%d", w, h)
	r.w, r.h = w, h
	return nil
}

func (r *recordingImage) Resize(w, h int) error {
	r.log("resize %dx%d", w, h)
	r.w, r.h = w, h
	return nil
}

func (r *recordingImage) Clone() (backend.Image, error) {
	r.log("clone %dx%d", r.w, r.h)
	r.plate = &recordingImage{w: r.w, h: r.h, root: r}
	return r.plate, nil
}

func (r *recordingImage) CompositeCenter(overlay backend.Image) error {
	r.log("composite %dx%d", overlay.Width(), overlay.Height())
	return nil
}

func (r *recordingImage) Encode(string, int) ([]byte, error) {
	return nil, nil
}

func (r *recordingImage) Close() error {
	r.closed = true
	return nil
}

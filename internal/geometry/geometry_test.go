package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitToRatio(t *testing.T) {
	tests := []struct {
		name  string
		old   Dimensions
		ratio Ratio
		fit   bool
		want  Dimensions
	}{
		{"landscape crop to square", Dimensions{1920, 1080}, Square, true, Dimensions{1080, 1080}},
		{"portrait crop to square", Dimensions{300, 400}, Square, true, Dimensions{300, 300}},
		{"landscape crop to 2:3", Dimensions{400, 300}, Ratio{2, 3}, true, Dimensions{200, 300}},
		{"crop truncates", Dimensions{100, 100}, Ratio{16, 9}, true, Dimensions{100, 56}},
		{"landscape enlarge to square", Dimensions{1920, 1080}, Square, false, Dimensions{1920, 1920}},
		{"portrait enlarge to 16:9", Dimensions{300, 400}, Ratio{16, 9}, false, Dimensions{711, 400}},
		{"matching ratio is unchanged when fitting", Dimensions{400, 300}, Ratio{4, 3}, true, Dimensions{400, 300}},
		{"matching ratio is unchanged when enlarging", Dimensions{400, 300}, Ratio{4, 3}, false, Dimensions{400, 300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FitToRatio(tt.old, tt.ratio, tt.fit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFitToRatioRejectsZero(t *testing.T) {
	cases := []struct {
		old   Dimensions
		ratio Ratio
	}{
		{Dimensions{100, 100}, Ratio{1, 0}},
		{Dimensions{100, 100}, Ratio{0, 1}},
		{Dimensions{100, 0}, Square},
		{Dimensions{0, 100}, Square},
	}
	for _, c := range cases {
		_, err := FitToRatio(c.old, c.ratio, true)
		assert.ErrorIs(t, err, ErrInvalidArgument, "old=%s ratio=%s", c.old, c.ratio)
	}
}

func TestFitToRatioInscribesAndPreservesOneSide(t *testing.T) {
	for ow := 1; ow <= 40; ow += 3 {
		for oh := 1; oh <= 40; oh += 5 {
			for rw := 1; rw <= 9; rw++ {
				for rh := 1; rh <= 9; rh += 2 {
					old := Dimensions{ow, oh}
					got, err := FitToRatio(old, Ratio{rw, rh}, true)
					require.NoError(t, err)

					assert.LessOrEqual(t, got.Width, ow)
					assert.LessOrEqual(t, got.Height, oh)
					assert.True(t, got.Width == ow || got.Height == oh, "old=%s got=%s", old, got)
				}
			}
		}
	}
}

func TestFitToRatioContainsAndPreservesOneSide(t *testing.T) {
	for ow := 1; ow <= 40; ow += 3 {
		for oh := 1; oh <= 40; oh += 5 {
			for rw := 1; rw <= 9; rw++ {
				for rh := 1; rh <= 9; rh += 2 {
					old := Dimensions{ow, oh}
					got, err := FitToRatio(old, Ratio{rw, rh}, false)
					require.NoError(t, err)

					assert.True(t, got.Width == ow || got.Height == oh, "old=%s got=%s", old, got)
					if got.Width == ow {
						assert.GreaterOrEqual(t, got.Height, oh-1)
					} else {
						assert.GreaterOrEqual(t, got.Width, ow-1)
					}
				}
			}
		}
	}
}

func TestProportionalResize(t *testing.T) {
	tests := []struct {
		name string
		old  Dimensions
		side int
		fit  bool
		want Dimensions
	}{
		{"max side of landscape", Dimensions{400, 300}, 200, true, Dimensions{200, 150}},
		{"min side of landscape", Dimensions{400, 300}, 100, false, Dimensions{133, 100}},
		{"max side of portrait", Dimensions{300, 400}, 200, true, Dimensions{150, 200}},
		{"min side of portrait", Dimensions{300, 400}, 100, false, Dimensions{100, 133}},
		{"square max", Dimensions{50, 50}, 20, true, Dimensions{20, 20}},
		{"square min", Dimensions{50, 50}, 20, false, Dimensions{20, 20}},
		{"upscale", Dimensions{40, 30}, 80, true, Dimensions{80, 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProportionalResize(tt.old, tt.side, tt.fit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProportionalResizeHitsSide(t *testing.T) {
	for ow := 1; ow <= 60; ow += 7 {
		for oh := 1; oh <= 60; oh += 11 {
			for side := 1; side <= 90; side += 13 {
				old := Dimensions{ow, oh}

				got, err := ProportionalResize(old, side, true)
				require.NoError(t, err)
				assert.Equal(t, side, max(got.Width, got.Height), "fit old=%s", old)

				got, err = ProportionalResize(old, side, false)
				require.NoError(t, err)
				assert.Equal(t, side, min(got.Width, got.Height), "min old=%s", old)
			}
		}
	}
}

func TestProportionalResizeRejectsNonPositive(t *testing.T) {
	_, err := ProportionalResize(Dimensions{10, 10}, 0, true)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ProportionalResize(Dimensions{0, 10}, 5, true)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

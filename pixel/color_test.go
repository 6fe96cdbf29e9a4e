package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColor_Channels(t *testing.T) {
	t.Parallel()

	red := Color{R: 1, A: 1}
	h, s, b := red.HSB()
	assert.InDelta(t, 0, h, 1e-9)
	assert.InDelta(t, 1, s, 1e-9)
	assert.InDelta(t, 1, b, 1e-9)

	blue := Color{B: 1, A: 1}
	assert.InDelta(t, 240.0/360, blue.Hue(), 1e-9)

	c, m, y, k := red.CMYK()
	assert.InDelta(t, 0, c, 1e-9)
	assert.InDelta(t, 1, m, 1e-9)
	assert.InDelta(t, 1, y, 1e-9)
	assert.InDelta(t, 0, k, 1e-9)

	c, m, y, k = Black.CMYK()
	assert.Equal(t, [4]float64{0, 0, 0, 1}, [4]float64{c, m, y, k})

	yy, u, v := White.YUV()
	assert.InDelta(t, 1, yy, 1e-9)
	assert.InDelta(t, 0, u, 1e-4)
	assert.InDelta(t, 0, v, 1e-4)

	mixed := Color{R: 0.2, G: 0.7, B: 0.4, A: 1}
	assert.Equal(t, 0.7, mixed.Greatest())
	assert.Equal(t, 0.2, mixed.Least())
}

func TestColor_Adjustments(t *testing.T) {
	t.Parallel()

	c := Color{R: 0.5, G: 0.5, B: 0.5, A: 0.8}
	assert.InDelta(t, 0.25, c.Darken(0.5).R, 1e-9)
	assert.InDelta(t, 0.75, c.Lighten(0.5).G, 1e-9)
	assert.Equal(t, 0.8, c.Darken(0.5).A)
	assert.Equal(t, Color{R: 0.5, G: 0.5, B: 0.5, A: 0.8}, c.Inverted())
	assert.Equal(t, "#ff0000", Color{R: 1, A: 1}.Hex())

	g := Color{R: 1, A: 1}.Grayscale()
	assert.InDelta(t, 0.299, g.R, 1e-9)
	assert.Equal(t, g.R, g.B)
}

func TestFromHSB(t *testing.T) {
	t.Parallel()

	c := FromHSB(120, 1, 1)
	assert.InDelta(t, 0, c.R, 1e-9)
	assert.InDelta(t, 1, c.G, 1e-9)
	assert.Equal(t, 1.0, c.A)
}

package prominence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaos-io/pixel3d/pixel"
)

var samples = []pixel.Color{
	{A: 1},
	{R: 1, A: 1},
	{R: 0.2, G: 0.7, B: 0.4, A: 1},
	{R: 0.9, G: 0.1, B: 0.8, A: 0.5},
	{R: 0.33, G: 0.33, B: 0.33, A: 1},
	{R: 1, G: 1, B: 1, A: 1},
	{G: 0.5, B: 1, A: 1},
}

func TestProminence_InvertIsReflection(t *testing.T) {
	t.Parallel()

	for _, src := range Sources() {
		for _, e := range []float64{ExaggerationNormal, ExaggerationHigh, ExaggerationExtra, 0.3} {
			for _, c := range samples {
				plain := Prominence(c, src, e, false)
				inverted := Prominence(c, src, e, true)
				assert.InDelta(t, e-plain, inverted, 1e-9, "source %s", src)
				assert.GreaterOrEqual(t, plain, 0.0)
				assert.LessOrEqual(t, plain, e+1e-12)
			}
		}
	}
}

func TestProminence_MonotonicInChannel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  HeightSource
		make func(v float64) pixel.Color
	}{
		{Red, func(v float64) pixel.Color { return pixel.Color{R: v, A: 1} }},
		{Green, func(v float64) pixel.Color { return pixel.Color{G: v, A: 1} }},
		{Blue, func(v float64) pixel.Color { return pixel.Color{B: v, A: 1} }},
		{Brightness, func(v float64) pixel.Color { return pixel.Color{R: v, G: v / 2, A: 1} }},
		{GreatestChannel, func(v float64) pixel.Color { return pixel.Color{R: v, G: v / 3, A: 1} }},
		{LeastChannel, func(v float64) pixel.Color { return pixel.Color{R: 1, G: v, B: 1, A: 1} }},
		{YUVY, func(v float64) pixel.Color { return pixel.Color{R: v, G: v, B: v, A: 1} }},
		{Black, func(v float64) pixel.Color { return pixel.Color{R: 1 - v, G: 1 - v, B: 1 - v, A: 1} }},
	}
	for _, tt := range tests {
		t.Run(tt.src.String(), func(t *testing.T) {
			t.Parallel()
			prev := math.Inf(-1)
			for i := 0; i <= 20; i++ {
				v := float64(i) / 20
				p := Prominence(tt.make(v), tt.src, 2, false)
				assert.GreaterOrEqual(t, p+1e-12, prev)
				prev = p
			}
		})
	}
}

func TestProminence_RedBrightness(t *testing.T) {
	t.Parallel()

	red := pixel.Color{R: 1, A: 1}
	assert.InDelta(t, 1.0, Prominence(red, Brightness, 1, false), 1e-9)
	assert.InDelta(t, 4.0, Prominence(red, Brightness, 4, false), 1e-9)
	assert.InDelta(t, 0.0, Prominence(red, Brightness, 1, true), 1e-9)
	assert.InDelta(t, 0.0, Prominence(red, Hue, 1, false), 1e-9)
	assert.InDelta(t, 0.5, Channel(pixel.Color{A: 1}, YUVU), 1e-9)
}

func TestParseHeightSource(t *testing.T) {
	t.Parallel()

	for _, src := range Sources() {
		got, err := ParseHeightSource(src.String())
		require.NoError(t, err)
		assert.Equal(t, src, got)
	}
	got, err := ParseHeightSource(" K ")
	require.NoError(t, err)
	assert.Equal(t, Black, got)

	got, err = ParseHeightSource("luminosity")
	assert.Error(t, err)
	assert.Equal(t, Brightness, got)
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(Brightness, 0, false)
	assert.Error(t, err)
	_, err = NewEngine(Brightness, -1, false)
	assert.Error(t, err)
	_, err = NewEngine(HeightSource(99), 1, false)
	assert.Error(t, err)

	e, err := NewEngine(Red, 2, true)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, e.Of(pixel.Color{R: 0.25, A: 1}), 1e-9)
	assert.InDelta(t, 0.75, e.Normalized(pixel.Color{R: 0.25, A: 1}), 1e-9)
}

func TestEngine_HeightMap(t *testing.T) {
	t.Parallel()

	cs := make([]pixel.Color, 9)
	for i := range cs {
		cs[i] = pixel.Color{R: float64(i) / 8, A: 1}
	}
	g, err := pixel.NewGrid(3, 3, cs)
	require.NoError(t, err)

	e, err := NewEngine(Red, 4, false)
	require.NoError(t, err)

	hm := e.HeightMap(g, HeightMapOptions{})
	assert.Equal(t, 3, hm.Bounds().Dx())
	assert.Equal(t, uint8(0), hm.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), hm.GrayAt(2, 2).Y)

	q := e.HeightMap(g, HeightMapOptions{Levels: 4})
	for _, v := range q.Pix {
		assert.Zero(t, int(v)%64)
	}

	blurred := e.HeightMap(g, HeightMapOptions{Blur: true})
	assert.Equal(t, hm.GrayAt(0, 0), blurred.GrayAt(0, 0))
	assert.InDelta(t, int(hm.GrayAt(1, 1).Y), int(blurred.GrayAt(1, 1).Y), 1)
}

package pixel

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color 单个取样颜色，R/G/B/A 都在 [0,1]，不预乘 alpha
type Color struct {
	R, G, B, A float64
}

var (
	Black = Color{A: 1}
	White = Color{R: 1, G: 1, B: 1, A: 1}
)

// FromColor 把任意 color.Color 转成 Color（去掉预乘）
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return FromNRGBA(n.R, n.G, n.B, n.A)
}

// FromNRGBA 8 位非预乘分量 -> Color
func FromNRGBA(r, g, b, a uint8) Color {
	return Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}
}

// NRGBA 转回 8 位颜色，超出 [0,1] 的分量会被截断
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

func fromColorful(cf colorful.Color, alpha float64) Color {
	cf = cf.Clamped()
	return Color{R: cf.R, G: cf.G, B: cf.B, A: alpha}
}

// HSB 返回色相（角度 [0,360)）、饱和度、亮度
func (c Color) HSB() (h, s, b float64) {
	return c.colorful().Hsv()
}

// FromHSB 由 HSB 构造不透明颜色，h 为角度
func FromHSB(h, s, b float64) Color {
	return fromColorful(colorful.Hsv(math.Mod(h, 360), clamp01(s), clamp01(b)), 1)
}

// Hue 归一化到 [0,1) 的色相
func (c Color) Hue() float64 {
	h, _, _ := c.HSB()
	return h / 360
}

// HueDegrees 色相角度
func (c Color) HueDegrees() float64 {
	h, _, _ := c.HSB()
	return h
}

func (c Color) Saturation() float64 {
	_, s, _ := c.HSB()
	return s
}

func (c Color) Brightness() float64 {
	_, _, b := c.HSB()
	return b
}

// CMYK 返回 [0,1] 的印刷四色分量
func (c Color) CMYK() (cy, m, y, k float64) {
	k = 1 - c.Greatest()
	if k >= 1 {
		return 0, 0, 0, 1
	}
	cy = (1 - c.R - k) / (1 - k)
	m = (1 - c.G - k) / (1 - k)
	y = (1 - c.B - k) / (1 - k)
	return cy, m, y, k
}

func (c Color) Cyan() float64 {
	v, _, _, _ := c.CMYK()
	return v
}

func (c Color) Magenta() float64 {
	_, v, _, _ := c.CMYK()
	return v
}

func (c Color) Yellow() float64 {
	_, _, v, _ := c.CMYK()
	return v
}

func (c Color) Black() float64 {
	_, _, _, v := c.CMYK()
	return v
}

// YUV 分量的取值范围（BT.601）
const (
	UMax = 0.436
	VMax = 0.615
)

// YUV 返回 BT.601 YUV：Y ∈ [0,1]，U ∈ [-UMax,UMax]，V ∈ [-VMax,VMax]
func (c Color) YUV() (y, u, v float64) {
	y = 0.299*c.R + 0.587*c.G + 0.114*c.B
	u = -0.14713*c.R - 0.28886*c.G + 0.436*c.B
	v = 0.615*c.R - 0.51499*c.G - 0.10001*c.B
	return y, u, v
}

// Greatest R/G/B 中最大的分量（不含 alpha）
func (c Color) Greatest() float64 {
	return math.Max(c.R, math.Max(c.G, c.B))
}

// Least R/G/B 中最小的分量（不含 alpha）
func (c Color) Least() float64 {
	return math.Min(c.R, math.Min(c.G, c.B))
}

// Darken 向黑色混合 f（0 不变，1 为纯黑）
func (c Color) Darken(f float64) Color {
	return fromColorful(c.colorful().BlendRgb(colorful.Color{}, clamp01(f)), c.A)
}

// Lighten 向白色混合 f（0 不变，1 为纯白）
func (c Color) Lighten(f float64) Color {
	return fromColorful(c.colorful().BlendRgb(colorful.Color{R: 1, G: 1, B: 1}, clamp01(f)), c.A)
}

// Grayscale 按亮度（Rec. 601 luma）去色
func (c Color) Grayscale() Color {
	y, _, _ := c.YUV()
	return Color{R: y, G: y, B: y, A: c.A}
}

// Inverted 反色，alpha 不变
func (c Color) Inverted() Color {
	return Color{R: 1 - c.R, G: 1 - c.G, B: 1 - c.B, A: c.A}
}

// DistanceLab 两个颜色在 Lab 空间的距离
func (c Color) DistanceLab(o Color) float64 {
	return c.colorful().DistanceLab(o.colorful())
}

// Hex 形如 #rrggbb
func (c Color) Hex() string {
	return c.colorful().Clamped().Hex()
}

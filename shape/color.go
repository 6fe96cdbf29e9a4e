package shape

import (
	"github.com/chaos-io/pixel3d/pixel"
)

// capShade 线帽变暗/变亮的混合比例
const capShade = 0.3

// coneRadii 按上下底策略算出圆锥的上下半径；两者都无法确定时为底=边长、顶=0 的圆锥
func (p Parameters) coneRadii(c pixel.Color, s float64) (top, bottom float64) {
	r := s / 2
	resolve := func(size ConeSize) (float64, bool) {
		switch size {
		case ConeSide:
			return r, true
		case ConeHue:
			return c.Hue() * r, true
		case ConeSaturation:
			return c.Saturation() * r, true
		case ConeHalfSide:
			return r / 2, true
		case ConeQuarterSide:
			return r / 4, true
		case ConeZero:
			return 0, true
		}
		return 0, false
	}

	top, topOK := resolve(p.ConeTop)
	bottom, bottomOK := resolve(p.ConeBottom)
	switch {
	case topOK && !bottomOK:
		bottom = top
	case !topOK && bottomOK:
		top = bottom
	case !topOK && !bottomOK:
		top, bottom = 0, r
	}
	if top == 0 && bottom == 0 {
		top, bottom = 0, r
	}
	if p.ConeInvert {
		top, bottom = bottom, top
	}
	return top, bottom
}

// capColor 线帽颜色
func (p Parameters) capColor(c pixel.Color) pixel.Color {
	switch p.CapColor {
	case CapBlack:
		return pixel.Black
	case CapWhite:
		return pixel.White
	case CapDarker:
		return c.Darken(capShade)
	case CapLighter:
		return c.Lighten(capShade)
	}
	return c
}

// Apply 调整节点颜色，normalized 是该格子已归一化的通道值
func (m ColorMode) Apply(c pixel.Color, normalized float64) pixel.Color {
	switch m {
	case ColorGrayscale:
		return c.Grayscale()
	case ColorInverted:
		return c.Inverted()
	case ColorSaturated:
		h, _, b := c.HSB()
		out := pixel.FromHSB(h, 1, b)
		out.A = c.A
		return out
	case ColorProminence:
		h, s, _ := c.HSB()
		out := pixel.FromHSB(h, s, normalized)
		out.A = c.A
		return out
	}
	return c
}

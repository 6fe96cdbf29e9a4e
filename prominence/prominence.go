package prominence

import (
	"fmt"
	"math"
	"strings"

	"github.com/chaos-io/pixel3d/pixel"
)

// HeightSource 决定用颜色的哪个通道作为高度
type HeightSource int

const (
	Brightness HeightSource = iota
	Hue
	Saturation
	Red
	Green
	Blue
	Cyan
	Magenta
	Yellow
	Black
	YUVY
	YUVU
	YUVV
	GreatestChannel
	LeastChannel
)

var sourceNames = [...]string{
	Brightness:      "brightness",
	Hue:             "hue",
	Saturation:      "saturation",
	Red:             "red",
	Green:           "green",
	Blue:            "blue",
	Cyan:            "cyan",
	Magenta:         "magenta",
	Yellow:          "yellow",
	Black:           "black",
	YUVY:            "yuv-y",
	YUVU:            "yuv-u",
	YUVV:            "yuv-v",
	GreatestChannel: "greatest",
	LeastChannel:    "least",
}

// Sources 所有可选的高度来源
func Sources() []HeightSource {
	out := make([]HeightSource, len(sourceNames))
	for i := range sourceNames {
		out[i] = HeightSource(i)
	}
	return out
}

func (s HeightSource) String() string {
	if s < 0 || int(s) >= len(sourceNames) {
		return fmt.Sprintf("HeightSource(%d)", int(s))
	}
	return sourceNames[s]
}

// Valid 是否为已知的高度来源
func (s HeightSource) Valid() bool {
	return s >= 0 && int(s) < len(sourceNames)
}

// ParseHeightSource 大小写不敏感，"k" 是 black 的别名
func ParseHeightSource(name string) (HeightSource, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "k" {
		return Black, nil
	}
	for i, v := range sourceNames {
		if v == n {
			return HeightSource(i), nil
		}
	}
	return Brightness, fmt.Errorf("unknown height source %q", name)
}

// Channel 取颜色在 src 通道上的值，归一化到 [0,1]
func Channel(c pixel.Color, src HeightSource) float64 {
	var v float64
	switch src {
	case Hue:
		v = c.Hue()
	case Saturation:
		v = c.Saturation()
	case Red:
		v = c.R
	case Green:
		v = c.G
	case Blue:
		v = c.B
	case Cyan:
		v = c.Cyan()
	case Magenta:
		v = c.Magenta()
	case Yellow:
		v = c.Yellow()
	case Black:
		v = c.Black()
	case YUVY:
		v, _, _ = c.YUV()
	case YUVU:
		_, u, _ := c.YUV()
		v = (u + pixel.UMax) / (2 * pixel.UMax)
	case YUVV:
		_, _, vv := c.YUV()
		v = (vv + pixel.VMax) / (2 * pixel.VMax)
	case GreatestChannel:
		v = c.Greatest()
	case LeastChannel:
		v = c.Least()
	default:
		v = c.Brightness()
	}
	return math.Max(0, math.Min(1, v))
}

// Prominence 颜色 -> 高度：取通道值，invert 时取 1-v，再乘以 exaggeration
func Prominence(c pixel.Color, src HeightSource, exaggeration float64, invert bool) float64 {
	v := Channel(c, src)
	if invert {
		v = 1 - v
	}
	return v * exaggeration
}

// Engine 把一次组装所用的高度参数绑在一起
type Engine struct {
	Source       HeightSource
	Exaggeration float64
	Invert       bool
}

// Exaggeration 的参考档位
const (
	ExaggerationNormal = 1.0
	ExaggerationHigh   = 2.0
	ExaggerationExtra  = 4.0
)

func NewEngine(src HeightSource, exaggeration float64, invert bool) (Engine, error) {
	if !src.Valid() {
		return Engine{}, fmt.Errorf("height source %d is not valid", int(src))
	}
	if !(exaggeration > 0) || math.IsInf(exaggeration, 0) {
		return Engine{}, fmt.Errorf("exaggeration must be a positive number, got %v", exaggeration)
	}
	return Engine{Source: src, Exaggeration: exaggeration, Invert: invert}, nil
}

func (e Engine) Of(c pixel.Color) float64 {
	return Prominence(c, e.Source, e.Exaggeration, e.Invert)
}

// Normalized 取通道值（已按 invert 处理），不乘 exaggeration
func (e Engine) Normalized(c pixel.Color) float64 {
	v := Channel(c, e.Source)
	if e.Invert {
		v = 1 - v
	}
	return v
}

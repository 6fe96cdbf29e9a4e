package shape

import (
	"fmt"
	"strings"
)

// ConeSize 圆锥上/下底半径的取值策略
type ConeSize int

const (
	ConeSide ConeSize = iota
	ConeHue
	ConeSaturation
	ConeHalfSide
	ConeQuarterSide
	ConeZero
	ConeOther
)

var coneSizeNames = []string{"side", "hue", "saturation", "half-side", "quarter-side", "zero", "other"}

func (c ConeSize) String() string { return enumName(coneSizeNames, int(c)) }

func ParseConeSize(name string) (ConeSize, error) {
	return parseEnum("cone size", name, coneSizeNames, ConeSide)
}

// CapColor 线帽颜色策略
type CapColor int

const (
	CapSame CapColor = iota
	CapBlack
	CapWhite
	CapDarker
	CapLighter
)

var capColorNames = []string{"same", "black", "white", "darker", "lighter"}

func (c CapColor) String() string { return enumName(capColorNames, int(c)) }

func ParseCapColor(name string) (CapColor, error) {
	return parseEnum("cap color", name, capColorNames, CapSame)
}

// BallLocation 线帽球的位置
type BallLocation int

const (
	BallTop BallLocation = iota
	BallBottom
	BallBoth
)

var ballLocationNames = []string{"top", "bottom", "both"}

func (b BallLocation) String() string { return enumName(ballLocationNames, int(b)) }

func ParseBallLocation(name string) (BallLocation, error) {
	return parseEnum("ball location", name, ballLocationNames, BallTop)
}

// Intensity Random 组合的数量档位
type Intensity int

const (
	IntensityLow Intensity = iota
	IntensityMedium
	IntensityHigh
)

var intensityNames = []string{"low", "medium", "high"}

func (i Intensity) String() string { return enumName(intensityNames, int(i)) }

// Count 每个格子散布的副本数
func (i Intensity) Count() int {
	switch i {
	case IntensityMedium:
		return 8
	case IntensityHigh:
		return 16
	}
	return 4
}

func ParseIntensity(name string) (Intensity, error) {
	return parseEnum("random intensity", name, intensityNames, IntensityLow)
}

// Spread Random 组合散布立方体的半宽档位（相对边长）
type Spread int

const (
	SpreadSmall Spread = iota
	SpreadMedium
	SpreadLarge
)

var spreadNames = []string{"small", "medium", "large"}

func (s Spread) String() string { return enumName(spreadNames, int(s)) }

func (s Spread) HalfWidth() float64 {
	switch s {
	case SpreadMedium:
		return 1
	case SpreadLarge:
		return 2
	}
	return 0.5
}

func ParseSpread(name string) (Spread, error) {
	return parseEnum("random spread", name, spreadNames, SpreadSmall)
}

// ColorMode 节点颜色的调整方式
type ColorMode int

const (
	ColorAsIs ColorMode = iota
	ColorGrayscale
	ColorInverted
	ColorSaturated
	ColorProminence
)

var colorModeNames = []string{"as-is", "grayscale", "inverted", "saturated", "prominence"}

func (m ColorMode) String() string { return enumName(colorModeNames, int(m)) }

func ParseColorMode(name string) (ColorMode, error) {
	return parseEnum("color mode", name, colorModeNames, ColorAsIs)
}

// Parameters 一次组装只读的形状参数，比例类字段都相对边长 SideLength
type Parameters struct {
	SideLength float64

	ConeTop, ConeBottom ConeSize
	ConeInvert          bool

	ChamferRadius    float64
	StarApexCount    int
	StarBaseRatio    float64
	NGonVertexCount  int
	EllipseRatio     float64
	DiamondRatio     float64
	ArrowInset       float64
	FlowerPetalCount int
	TorusPipeRatio   float64
	TubeInnerRatio   float64

	CapBall  BallLocation
	CapColor CapColor

	RadiatingLineCount int

	RandomIntensity Intensity
	RandomSpread    Spread
	RandomShape     Selector
	RandomShowBase  bool
	Seed            uint64

	SpherePlusShape Selector
	BoxPlusShape    Selector

	StackShapes      []Selector
	HueShapes        []Selector
	SaturationShapes []Selector
	BrightnessShapes []Selector

	MeshSphere    bool
	MeshLineWidth float64

	ColorMode ColorMode
}

func DefaultParameters() Parameters {
	return Parameters{
		SideLength:         1,
		ConeTop:            ConeZero,
		ConeBottom:         ConeSide,
		ChamferRadius:      0.1,
		StarApexCount:      5,
		StarBaseRatio:      0.5,
		NGonVertexCount:    7,
		EllipseRatio:       0.5,
		DiamondRatio:       0.6,
		ArrowInset:         0.3,
		FlowerPetalCount:   6,
		TorusPipeRatio:     0.3,
		TubeInnerRatio:     0.5,
		CapBall:            BallTop,
		CapColor:           CapSame,
		RadiatingLineCount: 4,
		RandomIntensity:    IntensityLow,
		RandomSpread:       SpreadSmall,
		RandomShape:        Sphere,
		RandomShowBase:     true,
		SpherePlusShape:    Cone,
		BoxPlusShape:       Sphere,
		StackShapes:        []Selector{Block},
		MeshSphere:         true,
		MeshLineWidth:      0.1,
		ColorMode:          ColorAsIs,
	}
}

// RadiatingLineCounts 支持的放射线条数
var RadiatingLineCounts = []int{4, 8, 12}

func (p Parameters) validate() error {
	if !(p.SideLength > 0) {
		return fmt.Errorf("side length must be > 0, got %v", p.SideLength)
	}
	switch p.RadiatingLineCount {
	case 4, 8, 12:
	default:
		return fmt.Errorf("radiating line count must be one of %v, got %d", RadiatingLineCounts, p.RadiatingLineCount)
	}
	if !(p.MeshLineWidth > 0) {
		return fmt.Errorf("mesh line width must be > 0, got %v", p.MeshLineWidth)
	}
	return nil
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("%d", i)
	}
	return names[i]
}

// parseEnum 未知名字返回默认值和错误，由调用方决定是否当作软错误
func parseEnum[T ~int](kind, name string, names []string, def T) (T, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "-")
	for i, v := range names {
		if v == n {
			return T(i), nil
		}
	}
	return def, fmt.Errorf("unknown %s %q, using %q", kind, name, names[def])
}

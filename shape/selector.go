package shape

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnrecognizedSelector 过期或未知的形状配置
	ErrUnrecognizedSelector = errors.New("unrecognized shape selector")
	// ErrMismatchedNeighborState 需要相邻格子的形状被用在了边缘格子上
	ErrMismatchedNeighborState = errors.New("mismatched neighbor state")
)

// Selector 形状族
type Selector int

const (
	Block Selector = iota
	ChamferBlock
	Sphere
	Cylinder
	Cone
	Pyramid
	Torus
	Capsule
	Tube

	Tetrahedron
	Octahedron
	Dodecahedron
	Icosahedron

	Square
	Triangle
	Pentagon
	Hexagon
	Octagon
	NGon
	Circle
	Ellipse
	Star
	Diamond
	ArrowHead
	Flower

	StackedShapes
	SpherePlus
	BoxPlus
	Random
	RadiatingLines
	CappedLines
	PerpendicularSquares
	PerpendicularCircles
	HueTriangles
	EmbeddedBlocks
	SphereWithTorus

	HueVarying
	SaturationVarying
	BrightnessVarying

	Mesh

	selectorCount
)

var selectorNames = [selectorCount]string{
	Block:                "block",
	ChamferBlock:         "chamfer-block",
	Sphere:               "sphere",
	Cylinder:             "cylinder",
	Cone:                 "cone",
	Pyramid:              "pyramid",
	Torus:                "torus",
	Capsule:              "capsule",
	Tube:                 "tube",
	Tetrahedron:          "tetrahedron",
	Octahedron:           "octahedron",
	Dodecahedron:         "dodecahedron",
	Icosahedron:          "icosahedron",
	Square:               "square",
	Triangle:             "triangle",
	Pentagon:             "pentagon",
	Hexagon:              "hexagon",
	Octagon:              "octagon",
	NGon:                 "ngon",
	Circle:               "circle",
	Ellipse:              "ellipse",
	Star:                 "star",
	Diamond:              "diamond",
	ArrowHead:            "arrowhead",
	Flower:               "flower",
	StackedShapes:        "stacked-shapes",
	SpherePlus:           "sphere-plus",
	BoxPlus:              "box-plus",
	Random:               "random",
	RadiatingLines:       "radiating-lines",
	CappedLines:          "capped-lines",
	PerpendicularSquares: "perpendicular-squares",
	PerpendicularCircles: "perpendicular-circles",
	HueTriangles:         "hue-triangles",
	EmbeddedBlocks:       "embedded-blocks",
	SphereWithTorus:      "sphere-with-torus",
	HueVarying:           "hue-varying",
	SaturationVarying:    "saturation-varying",
	BrightnessVarying:    "brightness-varying",
	Mesh:                 "mesh",
}

func (s Selector) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Selector(%d)", int(s))
	}
	return selectorNames[s]
}

func (s Selector) Valid() bool {
	return s >= 0 && s < selectorCount
}

// Selectors 所有已知的形状族，按声明顺序
func Selectors() []Selector {
	out := make([]Selector, selectorCount)
	for i := range out {
		out[i] = Selector(i)
	}
	return out
}

// ParseSelector 大小写不敏感，"_"、空格和 "-" 等价；未知名字返回 ErrUnrecognizedSelector
func ParseSelector(name string) (Selector, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer("_", "-", " ", "-").Replace(n)
	for i, v := range selectorNames {
		if v == n || strings.ReplaceAll(v, "-", "") == n {
			return Selector(i), nil
		}
	}
	return Block, fmt.Errorf("%q: %w", name, ErrUnrecognizedSelector)
}

// Category 形状族的大类
type Category int

const (
	Simple Category = iota
	RegularSolid
	Flat2D
	Composite
	Varying
	MeshCategory
)

func (c Category) String() string {
	switch c {
	case Simple:
		return "simple"
	case RegularSolid:
		return "regular-solid"
	case Flat2D:
		return "flat-2d"
	case Composite:
		return "composite"
	case Varying:
		return "varying"
	case MeshCategory:
		return "mesh"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

func (s Selector) Category() Category {
	return s.Capability().Category
}

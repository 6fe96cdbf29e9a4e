package shape

// Build 一个形状族产生几何体的方式
type Build int

const (
	_ Build = iota
	// BuildsOne 直接由目录生成一个几何体
	BuildsOne
	// BuildsComposite 由多个部件组合
	BuildsComposite
	// ResolvesVarying 先按通道值重新选择具体形状
	ResolvesVarying
)

// Capability 形状族的能力记录
type Capability struct {
	Category         Category
	Build            Build
	RequiresNeighbor bool
}

func one(c Category) Capability {
	return Capability{Category: c, Build: BuildsOne}
}

var (
	composite = Capability{Category: Composite, Build: BuildsComposite}
	varying   = Capability{Category: Varying, Build: ResolvesVarying}
)

// 数组长度固定为 selectorCount，漏写的条目会在测试里以零值暴露出来
var capabilities = [selectorCount]Capability{
	Block:        one(Simple),
	ChamferBlock: one(Simple),
	Sphere:       one(Simple),
	Cylinder:     one(Simple),
	Cone:         one(Simple),
	Pyramid:      one(Simple),
	Torus:        one(Simple),
	Capsule:      one(Simple),
	Tube:         one(Simple),

	Tetrahedron:  one(RegularSolid),
	Octahedron:   one(RegularSolid),
	Dodecahedron: one(RegularSolid),
	Icosahedron:  one(RegularSolid),

	Square:    one(Flat2D),
	Triangle:  one(Flat2D),
	Pentagon:  one(Flat2D),
	Hexagon:   one(Flat2D),
	Octagon:   one(Flat2D),
	NGon:      one(Flat2D),
	Circle:    one(Flat2D),
	Ellipse:   one(Flat2D),
	Star:      one(Flat2D),
	Diamond:   one(Flat2D),
	ArrowHead: one(Flat2D),
	Flower:    one(Flat2D),

	StackedShapes:        composite,
	SpherePlus:           composite,
	BoxPlus:              composite,
	Random:               composite,
	RadiatingLines:       composite,
	CappedLines:          composite,
	PerpendicularSquares: composite,
	PerpendicularCircles: composite,
	HueTriangles:         composite,
	EmbeddedBlocks:       composite,
	SphereWithTorus:      composite,

	HueVarying:        varying,
	SaturationVarying: varying,
	BrightnessVarying: varying,

	Mesh: {Category: MeshCategory, Build: BuildsComposite, RequiresNeighbor: true},
}

// Capability 未知的 Selector 返回零值
func (s Selector) Capability() Capability {
	if !s.Valid() {
		return Capability{}
	}
	return capabilities[s]
}

package shape

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chaos-io/pixel3d/geometry"
	"github.com/chaos-io/pixel3d/pixel"
	"github.com/chaos-io/pixel3d/prominence"
)

// Part 一个格子产生的一个实例，Offset 相对格子底面中心 (x, y, 0)
type Part struct {
	Selector    Selector
	Geometry    geometry.Descriptor
	Offset      r3.Vec
	Orientation geometry.Orientation
	Color       pixel.Color
}

// Neighbors Mesh 需要的右、下、右下三个相邻格子的颜色
type Neighbors struct {
	Right, Below, BelowRight pixel.Color
}

// Request 一个格子的分派请求
type Request struct {
	Selector   Selector
	Color      pixel.Color
	Prominence float64
	X, Y       int
	// Neighbors 只有 RequiresNeighbor 的形状需要，边缘格子为 nil
	Neighbors *Neighbors
}

type builder func(req Request) ([]Part, error)

// single 以边长 s、挤出长度 e 生成一个几何体
type single func(c pixel.Color, s, e float64) (geometry.Descriptor, error)

// Dispatcher 把格子请求转换成部件列表，构造后只读，可以并发使用
type Dispatcher struct {
	catalog  *geometry.Catalog
	engine   prominence.Engine
	params   Parameters
	builders [selectorCount]builder
	singles  [selectorCount]single
}

func NewDispatcher(catalog *geometry.Catalog, engine prominence.Engine, params Parameters) (*Dispatcher, error) {
	if catalog == nil {
		catalog = geometry.Default()
	}
	if err := params.validate(); err != nil {
		return nil, fmt.Errorf("shape parameters: %w", err)
	}
	d := &Dispatcher{catalog: catalog, engine: engine, params: params}
	d.singles = d.singleTable()
	d.builders = d.builderTable()
	return d, nil
}

func (d *Dispatcher) Params() Parameters {
	return d.params
}

func (d *Dispatcher) Catalog() *geometry.Catalog {
	return d.catalog
}

// Resolve Varying 形状按通道值在列表里选一个具体形状，列表为空时退回 Block
func (d *Dispatcher) Resolve(sel Selector, c pixel.Color) Selector {
	var list []Selector
	var v float64
	switch sel {
	case HueVarying:
		list, v = d.params.HueShapes, c.Hue()
	case SaturationVarying:
		list, v = d.params.SaturationShapes, c.Saturation()
	case BrightnessVarying:
		list, v = d.params.BrightnessShapes, c.Brightness()
	default:
		return sel
	}
	if len(list) == 0 {
		return Block
	}
	resolved := list[bucket(v, len(list))]
	if resolved.Valid() && resolved.Category() == Varying {
		return Block
	}
	return resolved
}

// bucket 把 [0,1] 等分成 n 段，v=1 落在最后一段
func bucket(v float64, n int) int {
	i := int(math.Floor(v * float64(n)))
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// Dispatch 生成一个格子的所有部件
func (d *Dispatcher) Dispatch(req Request) ([]Part, error) {
	if !req.Selector.Valid() {
		return nil, fmt.Errorf("%s: %w", req.Selector, ErrUnrecognizedSelector)
	}
	sel := d.Resolve(req.Selector, req.Color)
	if !sel.Valid() {
		return nil, fmt.Errorf("%s resolved to %s: %w", req.Selector, sel, ErrUnrecognizedSelector)
	}
	if sel.Capability().RequiresNeighbor && req.Neighbors == nil {
		return nil, fmt.Errorf("%s at (%d, %d): %w", sel, req.X, req.Y, ErrMismatchedNeighborState)
	}
	build := d.builders[sel]
	if build == nil {
		return nil, fmt.Errorf("%s has no builder: %w", sel, ErrUnrecognizedSelector)
	}
	req.Selector = sel
	parts, err := build(req)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", sel, err)
	}
	return parts, nil
}

func (d *Dispatcher) builderTable() [selectorCount]builder {
	var t [selectorCount]builder
	for i, fn := range d.singles {
		if fn != nil {
			t[i] = d.buildOne
		}
	}
	t[StackedShapes] = d.stacked
	t[SpherePlus] = d.spherePlus
	t[BoxPlus] = d.boxPlus
	t[Random] = d.random
	t[RadiatingLines] = d.radiatingLines
	t[CappedLines] = d.cappedLines
	t[PerpendicularSquares] = d.perpendicularSquares
	t[PerpendicularCircles] = d.perpendicularCircles
	t[HueTriangles] = d.hueTriangles
	t[EmbeddedBlocks] = d.embeddedBlocks
	t[SphereWithTorus] = d.sphereWithTorus
	t[Mesh] = d.mesh
	return t
}

// buildOne 单个几何体：挤出长度为 2×prominence，默认放在 z=prominence
func (d *Dispatcher) buildOne(req Request) ([]Part, error) {
	s := d.params.SideLength
	e := 2 * req.Prominence
	g, err := d.geometry(req.Selector, req.Color, s, e)
	if err != nil {
		return nil, err
	}
	z := req.Prominence
	if g.HasZOverride {
		z = g.ZOverride
	}
	return []Part{{Selector: req.Selector, Geometry: g, Offset: r3.Vec{Z: z}, Color: req.Color}}, nil
}

// geometry 组合形状内部复用的单几何体入口
func (d *Dispatcher) geometry(sel Selector, c pixel.Color, s, e float64) (geometry.Descriptor, error) {
	if !sel.Valid() || d.singles[sel] == nil {
		return geometry.Descriptor{}, fmt.Errorf("%s does not build a single geometry: %w", sel, ErrUnrecognizedSelector)
	}
	return d.singles[sel](c, s, e)
}

func (d *Dispatcher) singleTable() [selectorCount]single {
	c := d.catalog
	p := d.params
	ngon := func(n int) single {
		return func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) { return c.NGon(n, s/2, e) }
	}
	var t [selectorCount]single
	t[Block] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) { return c.Box(s, s, e, 0) }
	t[ChamferBlock] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) {
		return c.Box(s, s, e, p.ChamferRadius*s)
	}
	t[Sphere] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) {
		g, err := c.Sphere(s / 2)
		return g.WithZ(e), err
	}
	t[Cylinder] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) { return c.Cylinder(s/2, e) }
	t[Cone] = func(col pixel.Color, s, e float64) (geometry.Descriptor, error) {
		top, bottom := p.coneRadii(col, s)
		return c.Cone(top, bottom, e)
	}
	t[Pyramid] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) { return c.Pyramid(s, e, s) }
	t[Torus] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) {
		pipe := p.TorusPipeRatio * s / 2
		g, err := c.Torus(s/2-pipe, pipe)
		return g.WithZ(e), err
	}
	t[Capsule] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) { return c.Capsule(s/2, math.Max(e, s)) }
	t[Tube] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) {
		return c.Tube(p.TubeInnerRatio*s/2, s/2, e)
	}

	t[Tetrahedron] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) { return c.Tetrahedron(s, e) }
	t[Octahedron] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) { return c.Octahedron(s, e) }
	t[Dodecahedron] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) { return c.Dodecahedron(s, e) }
	t[Icosahedron] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) { return c.Icosahedron(s, e) }

	t[Square] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) { return c.Square(s, e) }
	t[Triangle] = ngon(3)
	t[Pentagon] = ngon(5)
	t[Hexagon] = ngon(6)
	t[Octagon] = ngon(8)
	t[NGon] = ngon(p.NGonVertexCount)
	t[Circle] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) { return c.Circle(s, e) }
	t[Ellipse] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) {
		return c.Ellipse(s, s*p.EllipseRatio, e)
	}
	t[Star] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) {
		return c.Star(p.StarApexCount, s/2, s/2*p.StarBaseRatio, e)
	}
	t[Diamond] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) {
		return c.Diamond(s, s*p.DiamondRatio, e)
	}
	t[ArrowHead] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) {
		return c.ArrowHead(s, s, s*p.ArrowInset, e)
	}
	t[Flower] = func(_ pixel.Color, s, e float64) (geometry.Descriptor, error) {
		return c.Flower(s/4, p.FlowerPetalCount, e)
	}
	return t
}

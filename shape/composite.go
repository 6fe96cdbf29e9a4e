package shape

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chaos-io/pixel3d/geometry"
	"github.com/chaos-io/pixel3d/pixel"
)

const (
	// secondaryScale SpherePlus/BoxPlus 副形状相对边长的大小
	secondaryScale = 0.5
	// randomScale Random 散布副本相对边长的大小
	randomScale = 0.25
	// lineScale 线条类部件的粗细
	lineScale = 0.1
)

func part(sel Selector, g geometry.Descriptor, offset r3.Vec, c pixel.Color) Part {
	return Part{Selector: sel, Geometry: g, Offset: offset, Color: c}
}

// stacked 沿挤出轴叠放，层数 floor(2p/s)+1，每层占一个 s 的立方格，形状按列表循环
func (d *Dispatcher) stacked(req Request) ([]Part, error) {
	s := d.params.SideLength
	list := d.params.StackShapes
	if len(list) == 0 {
		list = []Selector{Block}
	}
	n := int(math.Floor(2*req.Prominence/s)) + 1
	parts := make([]Part, 0, n)
	for i := 0; i < n; i++ {
		sel := list[i%len(list)]
		g, err := d.geometry(sel, req.Color, s, s)
		if err != nil {
			return nil, fmt.Errorf("stack layer %d: %w", i, err)
		}
		parts = append(parts, part(sel, g, r3.Vec{Z: float64(i)*s + s/2}, req.Color))
	}
	return parts, nil
}

// spherePlus 球加一个副形状，副形状放在球顶之上
func (d *Dispatcher) spherePlus(req Request) ([]Part, error) {
	s := d.params.SideLength
	e := 2 * req.Prominence
	base, err := d.catalog.Sphere(s / 2)
	if err != nil {
		return nil, err
	}
	sub := s * secondaryScale
	g, err := d.geometry(d.params.SpherePlusShape, req.Color, sub, sub)
	if err != nil {
		return nil, fmt.Errorf("secondary: %w", err)
	}
	return []Part{
		part(Sphere, base, r3.Vec{Z: e}, req.Color),
		part(d.params.SpherePlusShape, g, r3.Vec{Z: e + s/2 + sub/2}, req.Color),
	}, nil
}

// boxPlus 倒角方块加一个副形状，副形状放在方块顶面上
func (d *Dispatcher) boxPlus(req Request) ([]Part, error) {
	s := d.params.SideLength
	e := 2 * req.Prominence
	base, err := d.catalog.Box(s, s, e, d.params.ChamferRadius*s)
	if err != nil {
		return nil, err
	}
	sub := s * secondaryScale
	g, err := d.geometry(d.params.BoxPlusShape, req.Color, sub, sub)
	if err != nil {
		return nil, fmt.Errorf("secondary: %w", err)
	}
	return []Part{
		part(ChamferBlock, base, r3.Vec{Z: e / 2}, req.Color),
		part(d.params.BoxPlusShape, g, r3.Vec{Z: e + sub/2}, req.Color),
	}, nil
}

// seed 同一个 Seed 和格子坐标总是得到同样的随机序列，和组装顺序无关
func (d *Dispatcher) seed(x, y int) *rand.Rand {
	return rand.New(rand.NewPCG(d.params.Seed, uint64(uint32(x))<<32|uint64(uint32(y))))
}

// random 可选的底座，加上 N 个小副本，散布在以 (0, 0, p) 为中心、半宽为 hw 的立方体内
func (d *Dispatcher) random(req Request) ([]Part, error) {
	s := d.params.SideLength
	e := 2 * req.Prominence
	n := d.params.RandomIntensity.Count()
	hw := d.params.RandomSpread.HalfWidth() * s

	parts := make([]Part, 0, n+1)
	if d.params.RandomShowBase {
		base, err := d.catalog.Box(s, s, e, 0)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part(Block, base, r3.Vec{Z: req.Prominence}, req.Color))
	}

	sub := s * randomScale
	g, err := d.geometry(d.params.RandomShape, req.Color, sub, sub)
	if err != nil {
		return nil, fmt.Errorf("random copy: %w", err)
	}
	rng := d.seed(req.X, req.Y)
	for i := 0; i < n; i++ {
		offset := r3.Vec{
			X: (2*rng.Float64() - 1) * hw,
			Y: (2*rng.Float64() - 1) * hw,
			Z: req.Prominence + (2*rng.Float64()-1)*hw,
		}
		parts = append(parts, part(d.params.RandomShape, g, offset, req.Color))
	}
	return parts, nil
}

// radiatingLines 一根竖杆，杆顶沿水平方向等角放射 4/8/12 根横杆，横杆长度到格子边缘
func (d *Dispatcher) radiatingLines(req Request) ([]Part, error) {
	s := d.params.SideLength
	e := 2 * req.Prominence
	t := s * lineScale
	post, err := d.catalog.Box(t, t, e, 0)
	if err != nil {
		return nil, err
	}
	bar, err := d.catalog.Box(s/2, t, t, 0)
	if err != nil {
		return nil, err
	}

	n := d.params.RadiatingLineCount
	parts := make([]Part, 0, n+1)
	parts = append(parts, part(Block, post, r3.Vec{Z: e / 2}, req.Color))
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		p := part(Block, bar, r3.Vec{X: s / 4 * math.Cos(angle), Y: s / 4 * math.Sin(angle), Z: e}, req.Color)
		p.Orientation = geometry.Orientation{{Axis: geometry.AxisZ, Angle: angle}}
		parts = append(parts, p)
	}
	return parts, nil
}

// cappedLines 竖线加线帽球，球的位置和颜色由参数决定
func (d *Dispatcher) cappedLines(req Request) ([]Part, error) {
	s := d.params.SideLength
	e := 2 * req.Prominence
	t := 2 * s * lineScale
	line, err := d.catalog.Box(t, t, e, 0)
	if err != nil {
		return nil, err
	}
	ball, err := d.catalog.Sphere(s / 4)
	if err != nil {
		return nil, err
	}

	capColor := d.params.capColor(req.Color)
	parts := []Part{part(Block, line, r3.Vec{Z: e / 2}, req.Color)}
	if d.params.CapBall == BallTop || d.params.CapBall == BallBoth {
		parts = append(parts, part(Sphere, ball, r3.Vec{Z: e}, capColor))
	}
	if d.params.CapBall == BallBottom || d.params.CapBall == BallBoth {
		parts = append(parts, part(Sphere, ball, r3.Vec{}, capColor))
	}
	return parts, nil
}

// perpendicular 两片互相垂直的竖直薄片（XZ 平面和 YZ 平面），下沿在 z=p
func (d *Dispatcher) perpendicular(req Request, sel Selector) ([]Part, error) {
	s := d.params.SideLength
	g, err := d.geometry(sel, req.Color, s, s*lineScale)
	if err != nil {
		return nil, err
	}
	upright := geometry.Orientation{{Axis: geometry.AxisX, Angle: math.Pi / 2}}
	offset := r3.Vec{Z: req.Prominence + s/2}

	a := part(sel, g, offset, req.Color)
	a.Orientation = upright
	b := part(sel, g, offset, req.Color)
	b.Orientation = upright.Then(geometry.AxisZ, math.Pi/2)
	return []Part{a, b}, nil
}

func (d *Dispatcher) perpendicularSquares(req Request) ([]Part, error) {
	return d.perpendicular(req, Square)
}

func (d *Dispatcher) perpendicularCircles(req Request) ([]Part, error) {
	return d.perpendicular(req, Circle)
}

// hueTriangles 底部三角柱加顶上一个倒置的小三角，整体绕 Z 旋转色相角
func (d *Dispatcher) hueTriangles(req Request) ([]Part, error) {
	s := d.params.SideLength
	e := 2 * req.Prominence
	base, err := d.catalog.NGon(3, s/2, e)
	if err != nil {
		return nil, err
	}
	top, err := d.catalog.NGon(3, s/4, s/4)
	if err != nil {
		return nil, err
	}

	hue := geometry.Orientation{{Axis: geometry.AxisZ, Angle: req.Color.Hue() * 2 * math.Pi}}
	a := part(Triangle, base, r3.Vec{Z: e / 2}, req.Color)
	a.Orientation = hue
	b := part(Triangle, top, r3.Vec{Z: e + s/8}, req.Color)
	b.Orientation = geometry.Orientation{{Axis: geometry.AxisZ, Angle: math.Pi}}.Then(geometry.AxisZ, hue[0].Angle)
	return []Part{a, b}, nil
}

// embeddedBlocks 外层方块里嵌一个更细更高的方块，顶部露出 s/2
func (d *Dispatcher) embeddedBlocks(req Request) ([]Part, error) {
	s := d.params.SideLength
	e := 2 * req.Prominence
	outer, err := d.catalog.Box(s, s, e, 0)
	if err != nil {
		return nil, err
	}
	innerLength := e + s/2
	inner, err := d.catalog.Box(s/2, s/2, innerLength, 0)
	if err != nil {
		return nil, err
	}
	return []Part{
		part(Block, outer, r3.Vec{Z: e / 2}, req.Color),
		part(Block, inner, r3.Vec{Z: innerLength / 2}, d.params.capColor(req.Color)),
	}, nil
}

// sphereWithTorus 球外套一个略微倾斜的圆环
func (d *Dispatcher) sphereWithTorus(req Request) ([]Part, error) {
	s := d.params.SideLength
	e := 2 * req.Prominence
	ball, err := d.catalog.Sphere(0.3 * s)
	if err != nil {
		return nil, err
	}
	ring, err := d.catalog.Torus(0.4*s, s*lineScale/2)
	if err != nil {
		return nil, err
	}
	r := part(Torus, ring, r3.Vec{Z: e}, req.Color)
	r.Orientation = geometry.Orientation{{Axis: geometry.AxisX, Angle: math.Pi / 8}}
	return []Part{part(Sphere, ball, r3.Vec{Z: e}, req.Color), r}, nil
}

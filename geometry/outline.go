package geometry

import (
	"math"

	"github.com/gogpu/gg"
	"gonum.org/v1/gonum/spatial/r3"
)

const upAngle = math.Pi / 2

func polar(radius, angle float64) gg.Point {
	return gg.Pt(radius*math.Cos(angle), radius*math.Sin(angle))
}

func extrusion(path *gg.Path, depth float64) Descriptor {
	return Descriptor{Kind: KindExtrusion, Path: path, Depth: depth}
}

func checkDepth(depth float64) error {
	if depth < 0 || math.IsNaN(depth) {
		return invalid("depth %v must be >= 0", depth)
	}
	return nil
}

// NGon 正 n 边形：顶点等角分布，从半个步长开始，第一条边居中在 +Y 上
func (c *Catalog) NGon(vertexCount int, radius, depth float64) (Descriptor, error) {
	if vertexCount < 3 {
		return Descriptor{}, invalid("ngon vertex count %d < 3", vertexCount)
	}
	if !(radius > 0) {
		return Descriptor{}, invalid("ngon radius %v must be > 0", radius)
	}
	if err := checkDepth(depth); err != nil {
		return Descriptor{}, err
	}

	inc := 2 * math.Pi / float64(vertexCount)
	start := upAngle - inc/2
	p := gg.NewPath()
	for i := 0; i < vertexCount; i++ {
		pt := polar(radius, start+float64(i)*inc)
		if i == 0 {
			p.MoveTo(pt.X, pt.Y)
		} else {
			p.LineTo(pt.X, pt.Y)
		}
	}
	p.Close()
	return extrusion(p, depth), nil
}

// Square 边长为 side 的轴对齐正方形
func (c *Catalog) Square(side, depth float64) (Descriptor, error) {
	if !(side > 0) {
		return Descriptor{}, invalid("square side %v must be > 0", side)
	}
	return c.NGon(4, side/math.Sqrt2, depth)
}

// Star 星形：每个顶角输出三个点（后底点、顶点、前底点），拼成一条闭合路径
func (c *Catalog) Star(apexCount int, apexHeight, baseHeight, depth float64) (Descriptor, error) {
	if apexCount < 3 {
		return Descriptor{}, invalid("star apex count %d < 3", apexCount)
	}
	if !(apexHeight > 0) || !(baseHeight > 0) {
		return Descriptor{}, invalid("star apex height %v and base height %v must be > 0", apexHeight, baseHeight)
	}
	if err := checkDepth(depth); err != nil {
		return Descriptor{}, err
	}

	inc := 2 * math.Pi / float64(apexCount)
	half := inc / 2
	p := gg.NewPath()
	for i := 0; i < apexCount; i++ {
		angle := upAngle + float64(i)*inc
		trailing := polar(baseHeight, angle-half)
		apex := polar(apexHeight, angle)
		leading := polar(baseHeight, angle+half)
		if i == 0 {
			p.MoveTo(trailing.X, trailing.Y)
		} else {
			p.LineTo(trailing.X, trailing.Y)
		}
		p.LineTo(apex.X, apex.Y)
		p.LineTo(leading.X, leading.Y)
	}
	p.Close()
	return extrusion(p, depth), nil
}

// Diamond 菱形：外接矩形四条边的中点，majorAxis 沿 Y，minorAxis 沿 X
func (c *Catalog) Diamond(majorAxis, minorAxis, depth float64) (Descriptor, error) {
	if !(majorAxis > 0) || !(minorAxis > 0) {
		return Descriptor{}, invalid("diamond axes %v x %v must be > 0", majorAxis, minorAxis)
	}
	if err := checkDepth(depth); err != nil {
		return Descriptor{}, err
	}

	hy, hx := majorAxis/2, minorAxis/2
	p := gg.NewPath()
	p.MoveTo(0, hy)
	p.LineTo(-hx, 0)
	p.LineTo(0, -hy)
	p.LineTo(hx, 0)
	p.Close()
	return extrusion(p, depth), nil
}

// ArrowHead 箭头：顶点在上方中间，两个底角，底边中点向顶点内收 inset；inset 为负时外凸
func (c *Catalog) ArrowHead(height, base, inset, depth float64) (Descriptor, error) {
	if !(height > 0) || !(base > 0) {
		return Descriptor{}, invalid("arrowhead height %v and base %v must be > 0", height, base)
	}
	if inset >= height {
		return Descriptor{}, invalid("arrowhead inset %v must be < height %v", inset, height)
	}
	if err := checkDepth(depth); err != nil {
		return Descriptor{}, err
	}

	hh, hb := height/2, base/2
	p := gg.NewPath()
	p.MoveTo(0, hh)
	p.LineTo(-hb, -hh)
	p.LineTo(0, -hh+inset)
	p.LineTo(hb, -hh)
	p.Close()
	return extrusion(p, depth), nil
}

// oversampled 椭圆类图形的缩放修正：X/Y 缩小 1/K，挤出深度不变
func (c *Catalog) oversampled(d Descriptor) Descriptor {
	k := c.cfg.EllipseOversample
	d.Rescale = r3.Vec{X: 1 / k, Y: 1 / k, Z: 1}
	return d
}

// Ellipse 椭圆：曲线展平在小尺寸下精度不够，所以先按 axis*K 建模，再由 Rescale 缩回
// majorAxis 沿 X，minorAxis 沿 Y，都是全长
func (c *Catalog) Ellipse(majorAxis, minorAxis, depth float64) (Descriptor, error) {
	if !(majorAxis > 0) || !(minorAxis > 0) {
		return Descriptor{}, invalid("ellipse axes %v x %v must be > 0", majorAxis, minorAxis)
	}
	if err := checkDepth(depth); err != nil {
		return Descriptor{}, err
	}

	k := c.cfg.EllipseOversample
	p := gg.NewPath()
	p.Ellipse(0, 0, majorAxis/2*k, minorAxis/2*k)
	return c.oversampled(extrusion(p, depth)), nil
}

// Circle 直径为 diameter 的圆
func (c *Catalog) Circle(diameter, depth float64) (Descriptor, error) {
	return c.Ellipse(diameter, diameter, depth)
}

// Flower 花：圆心处一个圆，加上 petalCount 片花瓣
// 花瓣只建模一次：在圆顶两侧取两个底点画三次贝塞尔曲线，再绕圆心按 k*360/petalCount 旋转复制
func (c *Catalog) Flower(radius float64, petalCount int, depth float64) (Descriptor, error) {
	if !(radius > 0) {
		return Descriptor{}, invalid("flower radius %v must be > 0", radius)
	}
	if petalCount < 1 {
		return Descriptor{}, invalid("flower petal count %d < 1", petalCount)
	}
	if err := checkDepth(depth); err != nil {
		return Descriptor{}, err
	}

	r := radius * c.cfg.EllipseOversample
	p := gg.NewPath()
	p.Circle(0, 0, r)

	petal := c.petal(r, petalCount)
	inc := 2 * math.Pi / float64(petalCount)
	for k := 0; k < petalCount; k++ {
		appendPath(p, petal.Transform(gg.Rotate(float64(k)*inc)))
	}
	return c.oversampled(extrusion(p, depth)), nil
}

// petal 圆顶上的一片花瓣，两端落在圆上
func (c *Catalog) petal(r float64, petalCount int) *gg.Path {
	spread := math.Min(math.Pi/float64(petalCount), math.Pi/4) * 0.8
	left := polar(r, upAngle+spread)
	right := polar(r, upAngle-spread)
	length := r * 1.5
	width := r * 0.6

	c1 := outward(left, width, length)
	c2 := outward(right, width, length)

	p := gg.NewPath()
	p.MoveTo(left.X, left.Y)
	p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, right.X, right.Y)
	p.Close()
	return p
}

// outward 按底点所在象限把控制点往外推，保证花瓣曲线是凸的
func outward(pt gg.Point, dx, dy float64) gg.Point {
	sx, sy := 1.0, 1.0
	if pt.X < 0 {
		sx = -1
	}
	if pt.Y < 0 {
		sy = -1
	}
	return gg.Pt(pt.X+sx*dx, pt.Y+sy*dy)
}

// appendPath 把 src 的所有元素追加到 dst
func appendPath(dst, src *gg.Path) {
	for _, elem := range src.Elements() {
		switch e := elem.(type) {
		case gg.MoveTo:
			dst.MoveTo(e.Point.X, e.Point.Y)
		case gg.LineTo:
			dst.LineTo(e.Point.X, e.Point.Y)
		case gg.QuadTo:
			dst.QuadraticTo(e.Control.X, e.Control.Y, e.Point.X, e.Point.Y)
		case gg.CubicTo:
			dst.CubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		case gg.Close:
			dst.Close()
		}
	}
}

// Boundary 把路径按子路径展平成多边形，去掉重复的闭合点
func Boundary(path *gg.Path, tolerance float64) [][]gg.Point {
	if path == nil {
		return nil
	}
	var out [][]gg.Point
	for _, sub := range subpaths(path) {
		pts := dedupe(sub.Flatten(tolerance))
		if len(pts) > 0 {
			out = append(out, pts)
		}
	}
	return out
}

// subpaths 在每个 MoveTo 处切分
func subpaths(path *gg.Path) []*gg.Path {
	var out []*gg.Path
	var cur *gg.Path
	for _, elem := range path.Elements() {
		if _, ok := elem.(gg.MoveTo); ok || cur == nil {
			cur = gg.NewPath()
			out = append(out, cur)
		}
		switch e := elem.(type) {
		case gg.MoveTo:
			cur.MoveTo(e.Point.X, e.Point.Y)
		case gg.LineTo:
			cur.LineTo(e.Point.X, e.Point.Y)
		case gg.QuadTo:
			cur.QuadraticTo(e.Control.X, e.Control.Y, e.Point.X, e.Point.Y)
		case gg.CubicTo:
			cur.CubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		case gg.Close:
			cur.Close()
		}
	}
	return out
}

const pointEps = 1e-12

func samePoint(a, b gg.Point) bool {
	return math.Abs(a.X-b.X) <= pointEps*(1+math.Abs(a.X)) && math.Abs(a.Y-b.Y) <= pointEps*(1+math.Abs(a.Y))
}

func dedupe(pts []gg.Point) []gg.Point {
	out := pts[:0:0]
	for _, p := range pts {
		if len(out) > 0 && samePoint(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && samePoint(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

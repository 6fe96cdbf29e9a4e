package geometry

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh 三角网格，Indices 每三个一组
type Mesh struct {
	Vertices []r3.Vec
	Indices  []uint32
}

// Triangles 三角形个数
func (m *Mesh) Triangles() int {
	return len(m.Indices) / 3
}

// Triangle 第 i 个三角形的三个顶点
func (m *Mesh) Triangle(i int) [3]r3.Vec {
	return [3]r3.Vec{
		m.Vertices[m.Indices[3*i]],
		m.Vertices[m.Indices[3*i+1]],
		m.Vertices[m.Indices[3*i+2]],
	}
}

// Bounds 顶点包围盒
func (m *Mesh) Bounds() (lo, hi r3.Vec) {
	if len(m.Vertices) == 0 {
		return
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		lo = r3.Vec{X: math.Min(lo.X, v.X), Y: math.Min(lo.Y, v.Y), Z: math.Min(lo.Z, v.Z)}
		hi = r3.Vec{X: math.Max(hi.X, v.X), Y: math.Max(hi.Y, v.Y), Z: math.Max(hi.Z, v.Z)}
	}
	return lo, hi
}

func (m *Mesh) vertex(v r3.Vec) uint32 {
	m.Vertices = append(m.Vertices, v)
	return uint32(len(m.Vertices) - 1)
}

// tri 追加三角形，面积为 0 的退化三角形直接丢弃
func (m *Mesh) tri(a, b, c uint32) {
	if a == b || b == c || a == c {
		return
	}
	va, vb, vc := m.Vertices[a], m.Vertices[b], m.Vertices[c]
	if r3.Norm2(r3.Cross(r3.Sub(vb, va), r3.Sub(vc, va))) < 1e-24 {
		return
	}
	m.Indices = append(m.Indices, a, b, c)
}

// orientOutward 凸体：让每个三角形的法向背离 center
func (m *Mesh) orientOutward(center r3.Vec) {
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Vertices[m.Indices[i]], m.Vertices[m.Indices[i+1]], m.Vertices[m.Indices[i+2]]
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		centroid := r3.Scale(1.0/3, r3.Add(a, r3.Add(b, c)))
		if r3.Dot(n, r3.Sub(centroid, center)) < 0 {
			m.Indices[i+1], m.Indices[i+2] = m.Indices[i+2], m.Indices[i+1]
		}
	}
}

// Tessellate 把 Descriptor 转成建模坐标下的三角网格（未应用 Rescale 和旋转）
func (c *Catalog) Tessellate(d Descriptor) (*Mesh, error) {
	switch d.Kind {
	case KindBox:
		return boxMesh(d.Width, d.Height, d.Length), nil
	case KindSphere:
		return c.lathe(arcProfile(d.Radius, 0, -math.Pi/2, math.Pi/2, c.cfg.Rings), false), nil
	case KindCylinder:
		h := d.Height / 2
		return c.lathe([]gg.Point{{X: 0, Y: -h}, {X: d.Radius, Y: -h}, {X: d.Radius, Y: h}, {X: 0, Y: h}}, false), nil
	case KindCone:
		h := d.Height / 2
		return c.lathe([]gg.Point{{X: 0, Y: -h}, {X: d.BottomRadius, Y: -h}, {X: d.TopRadius, Y: h}, {X: 0, Y: h}}, false), nil
	case KindPyramid:
		return pyramidMesh(d.Width, d.Height, d.Length), nil
	case KindTorus:
		return c.lathe(circleProfile(d.Radius, d.PipeRadius, c.cfg.Segments), true), nil
	case KindCapsule:
		off := d.Height/2 - d.Radius
		lower := arcProfile(d.Radius, -off, -math.Pi/2, 0, c.cfg.Rings/2+1)
		upper := arcProfile(d.Radius, off, 0, math.Pi/2, c.cfg.Rings/2+1)
		return c.lathe(append(lower, upper...), false), nil
	case KindTube:
		h := d.Height / 2
		return c.lathe([]gg.Point{{X: d.InnerRadius, Y: -h}, {X: d.Radius, Y: -h}, {X: d.Radius, Y: h}, {X: d.InnerRadius, Y: h}}, true), nil
	case KindExtrusion:
		return c.extrude(d.Path, d.Depth)
	case KindPolyhedron:
		if d.Solid == nil {
			return nil, invalid("polyhedron descriptor without a vertex table")
		}
		return polyhedronMesh(d.Solid, d.Scale), nil
	}
	return nil, fmt.Errorf("tessellate %s: %w", d.Kind, ErrInvalidShapeParameters)
}

func boxMesh(w, h, l float64) *Mesh {
	m := &Mesh{}
	for i := 0; i < 8; i++ {
		m.vertex(r3.Vec{
			X: (float64(i&1) - 0.5) * w,
			Y: (float64(i>>1&1) - 0.5) * h,
			Z: (float64(i>>2&1) - 0.5) * l,
		})
	}
	faces := [6][4]uint32{
		{0, 1, 3, 2}, {4, 6, 7, 5}, // -z, +z
		{0, 4, 5, 1}, {2, 3, 7, 6}, // -y, +y
		{0, 2, 6, 4}, {1, 5, 7, 3}, // -x, +x
	}
	for _, f := range faces {
		m.tri(f[0], f[1], f[2])
		m.tri(f[0], f[2], f[3])
	}
	m.orientOutward(r3.Vec{})
	return m
}

// pyramidMesh 底面在 y=-h/2，顶点在 y=+h/2
func pyramidMesh(w, h, l float64) *Mesh {
	m := &Mesh{}
	hw, hl, hh := w/2, l/2, h/2
	b0 := m.vertex(r3.Vec{X: -hw, Y: -hh, Z: -hl})
	b1 := m.vertex(r3.Vec{X: hw, Y: -hh, Z: -hl})
	b2 := m.vertex(r3.Vec{X: hw, Y: -hh, Z: hl})
	b3 := m.vertex(r3.Vec{X: -hw, Y: -hh, Z: hl})
	apex := m.vertex(r3.Vec{Y: hh})
	m.tri(b0, b1, b2)
	m.tri(b0, b2, b3)
	m.tri(b0, b1, apex)
	m.tri(b1, b2, apex)
	m.tri(b2, b3, apex)
	m.tri(b3, b0, apex)
	// 质心在 y = -h/4
	m.orientOutward(r3.Vec{Y: -hh / 2})
	return m
}

func polyhedronMesh(p *Polyhedron, scale r3.Vec) *Mesh {
	m := &Mesh{Vertices: make([]r3.Vec, 0, len(p.Vertices))}
	for _, v := range p.Vertices {
		m.vertex(r3.Vec{X: v.X * scale.X, Y: v.Y * scale.Y, Z: v.Z * scale.Z})
	}
	var center r3.Vec
	for _, v := range m.Vertices {
		center = r3.Add(center, v)
	}
	center = r3.Scale(1/float64(len(m.Vertices)), center)
	for _, f := range p.Faces {
		for i := 1; i+1 < len(f); i++ {
			m.tri(uint32(f[0]), uint32(f[i]), uint32(f[i+1]))
		}
	}
	m.orientOutward(center)
	return m
}

// arcProfile 以 (0, cy) 为圆心、半径 r 的圆弧，角度从 a0 到 a1，(X=半径方向, Y=高度)
func arcProfile(r, cy, a0, a1 float64, steps int) []gg.Point {
	if steps < 1 {
		steps = 1
	}
	pts := make([]gg.Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		a := a0 + (a1-a0)*float64(i)/float64(steps)
		x := r * math.Cos(a)
		if math.Abs(x) < 1e-12 {
			x = 0
		}
		pts = append(pts, gg.Pt(x, cy+r*math.Sin(a)))
	}
	return pts
}

// circleProfile 圆环截面，从外侧开始逆时针
func circleProfile(ring, pipe float64, steps int) []gg.Point {
	pts := make([]gg.Point, 0, steps)
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		pts = append(pts, gg.Pt(ring+pipe*math.Cos(a), pipe*math.Sin(a)))
	}
	return pts
}

// lathe 把 (半径, 高度) 截面绕 Y 轴旋转一周；closed 表示截面首尾相连
func (c *Catalog) lathe(profile []gg.Point, closed bool) *Mesh {
	seg := c.cfg.Segments
	n := len(profile)
	m := &Mesh{Vertices: make([]r3.Vec, 0, n*seg)}
	for s := 0; s < seg; s++ {
		a := 2 * math.Pi * float64(s) / float64(seg)
		cos, sin := math.Cos(a), math.Sin(a)
		for _, p := range profile {
			m.vertex(r3.Vec{X: p.X * cos, Y: p.Y, Z: p.X * sin})
		}
	}
	idx := func(s, i int) uint32 {
		return uint32((s%seg)*n + (i % n))
	}
	edges := n - 1
	if closed {
		edges = n
	}
	for s := 0; s < seg; s++ {
		for i := 0; i < edges; i++ {
			a0, b0 := idx(s, i), idx(s, i+1)
			a1, b1 := idx(s+1, i), idx(s+1, i+1)
			m.tri(a0, b0, a1)
			m.tri(a1, b0, b1)
		}
	}
	return m
}

// extrude 每个子路径单独挤出（花瓣和圆重叠，视觉上就是并集），Z 从 -depth/2 到 +depth/2
func (c *Catalog) extrude(path *gg.Path, depth float64) (*Mesh, error) {
	if path == nil {
		return nil, invalid("extrusion without an outline")
	}
	m := &Mesh{}
	h := depth / 2
	for _, poly := range Boundary(path, c.cfg.FlattenTolerance) {
		if len(poly) < 3 {
			continue
		}
		if signedArea(poly) < 0 {
			reverse(poly)
		}
		tris := earClip(poly)
		base := uint32(len(m.Vertices))
		for _, p := range poly {
			m.vertex(r3.Vec{X: p.X, Y: p.Y, Z: -h})
		}
		for _, p := range poly {
			m.vertex(r3.Vec{X: p.X, Y: p.Y, Z: h})
		}
		n := uint32(len(poly))
		for _, t := range tris {
			m.tri(base+n+t[0], base+n+t[1], base+n+t[2]) // 顶面
			m.tri(base+t[0], base+t[2], base+t[1])       // 底面
		}
		for i := uint32(0); i < n; i++ {
			j := (i + 1) % n
			m.tri(base+i, base+j, base+n+j)
			m.tri(base+i, base+n+j, base+n+i)
		}
	}
	if len(m.Indices) == 0 {
		return nil, invalid("outline has no area")
	}
	return m, nil
}

func signedArea(poly []gg.Point) float64 {
	var a float64
	for i := range poly {
		j := (i + 1) % len(poly)
		a += poly[i].Cross(poly[j])
	}
	return a / 2
}

func reverse(poly []gg.Point) {
	for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
		poly[i], poly[j] = poly[j], poly[i]
	}
}

// earClip 逆时针简单多边形的耳切三角化
func earClip(poly []gg.Point) [][3]uint32 {
	n := len(poly)
	remaining := make([]uint32, n)
	for i := range remaining {
		remaining[i] = uint32(i)
	}
	out := make([][3]uint32, 0, n-2)
	guard := 0
	for len(remaining) > 3 {
		if guard > len(remaining) {
			// 剩下的点共线或自交，按扇形收尾
			for i := 1; i+1 < len(remaining); i++ {
				out = append(out, [3]uint32{remaining[0], remaining[i], remaining[i+1]})
			}
			return out
		}
		k := len(remaining)
		clipped := false
		for i := 0; i < k; i++ {
			ia, ib, ic := remaining[(i+k-1)%k], remaining[i], remaining[(i+1)%k]
			a, b, cc := poly[ia], poly[ib], poly[ic]
			if b.Sub(a).Cross(cc.Sub(b)) <= 0 {
				continue // 凹角
			}
			if containsAny(poly, remaining, ia, ib, ic) {
				continue
			}
			out = append(out, [3]uint32{ia, ib, ic})
			remaining = append(remaining[:i], remaining[i+1:]...)
			clipped = true
			break
		}
		if clipped {
			guard = 0
		} else {
			guard = len(remaining) + 1
		}
	}
	if len(remaining) == 3 {
		out = append(out, [3]uint32{remaining[0], remaining[1], remaining[2]})
	}
	return out
}

func containsAny(poly []gg.Point, remaining []uint32, ia, ib, ic uint32) bool {
	a, b, c := poly[ia], poly[ib], poly[ic]
	for _, j := range remaining {
		if j == ia || j == ib || j == ic {
			continue
		}
		if inTriangle(poly[j], a, b, c) {
			return true
		}
	}
	return false
}

func inTriangle(p, a, b, c gg.Point) bool {
	d1 := b.Sub(a).Cross(p.Sub(a))
	d2 := c.Sub(b).Cross(p.Sub(b))
	d3 := a.Sub(c).Cross(p.Sub(c))
	return d1 >= 0 && d2 >= 0 && d3 >= 0
}

package geometry

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Polyhedron 固定的顶点表和面表，坐标归一化到 [-0.5,0.5]^3，每次调用按 Descriptor.Scale 缩放
type Polyhedron struct {
	Name     string
	Vertices []r3.Vec
	// Faces 每个面是一个凸多边形的顶点下标
	Faces [][]int
}

var phi = (1 + math.Sqrt(5)) / 2

// Tetrahedron 底面在 z=-0.5，顶点在 z=+0.5
var Tetrahedron = normalized(&Polyhedron{
	Name: "tetrahedron",
	Vertices: []r3.Vec{
		{X: 0, Y: 1, Z: -1},
		{X: -math.Sqrt(3) / 2, Y: -0.5, Z: -1},
		{X: math.Sqrt(3) / 2, Y: -0.5, Z: -1},
		{X: 0, Y: 0, Z: 1},
	},
	Faces: [][]int{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {2, 0, 3}},
})

var Octahedron = normalized(&Polyhedron{
	Name: "octahedron",
	Vertices: []r3.Vec{
		{X: 1}, {X: -1},
		{Y: 1}, {Y: -1},
		{Z: 1}, {Z: -1},
	},
	Faces: [][]int{
		{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4},
		{2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5},
	},
})

var Icosahedron = normalized(&Polyhedron{
	Name: "icosahedron",
	Vertices: []r3.Vec{
		{X: -1, Y: phi}, {X: 1, Y: phi}, {X: -1, Y: -phi}, {X: 1, Y: -phi},
		{Y: -1, Z: phi}, {Y: 1, Z: phi}, {Y: -1, Z: -phi}, {Y: 1, Z: -phi},
		{X: phi, Z: -1}, {X: phi, Z: 1}, {X: -phi, Z: -1}, {X: -phi, Z: 1},
	},
	Faces: [][]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	},
})

// Dodecahedron 二十面体的对偶：每个三角面的中心是一个顶点，每个原顶点周围的五个面组成一个五边形
var Dodecahedron = normalized(dual("dodecahedron", Icosahedron))

func dual(name string, p *Polyhedron) *Polyhedron {
	d := &Polyhedron{Name: name}
	for _, f := range p.Faces {
		var sum r3.Vec
		for _, i := range f {
			sum = r3.Add(sum, p.Vertices[i])
		}
		d.Vertices = append(d.Vertices, r3.Scale(1/float64(len(f)), sum))
	}
	for vi, v := range p.Vertices {
		var ring []int
		for fi, f := range p.Faces {
			for _, i := range f {
				if i == vi {
					ring = append(ring, fi)
					break
				}
			}
		}
		// 在垂直于 v 的平面上按角度排序
		axis := r3.Unit(v)
		ref := r3.Unit(r3.Sub(d.Vertices[ring[0]], r3.Scale(r3.Dot(d.Vertices[ring[0]], axis), axis)))
		other := r3.Cross(axis, ref)
		sort.Slice(ring, func(a, b int) bool {
			pa, pb := d.Vertices[ring[a]], d.Vertices[ring[b]]
			return math.Atan2(r3.Dot(pa, other), r3.Dot(pa, ref)) < math.Atan2(r3.Dot(pb, other), r3.Dot(pb, ref))
		})
		d.Faces = append(d.Faces, ring)
	}
	return d
}

// normalized 按各轴最大绝对值把顶点缩放到 [-0.5,0.5]
func normalized(p *Polyhedron) *Polyhedron {
	var m r3.Vec
	for _, v := range p.Vertices {
		m.X = math.Max(m.X, math.Abs(v.X))
		m.Y = math.Max(m.Y, math.Abs(v.Y))
		m.Z = math.Max(m.Z, math.Abs(v.Z))
	}
	for i, v := range p.Vertices {
		p.Vertices[i] = r3.Vec{X: v.X / (2 * m.X), Y: v.Y / (2 * m.Y), Z: v.Z / (2 * m.Z)}
	}
	return p
}

// edges 无向边数，用于校验欧拉公式
func (p *Polyhedron) edges() int {
	seen := make(map[[2]int]struct{})
	for _, f := range p.Faces {
		for i := range f {
			a, b := f[i], f[(i+1)%len(f)]
			if a > b {
				a, b = b, a
			}
			seen[[2]int{a, b}] = struct{}{}
		}
	}
	return len(seen)
}

package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// closed 每条无向边恰好被两个三角形共享（按位置比较）
func closed(t *testing.T, m *Mesh) bool {
	t.Helper()
	type key [6]int64
	q := func(v r3.Vec) [3]int64 {
		return [3]int64{int64(math.Round(v.X * 1e6)), int64(math.Round(v.Y * 1e6)), int64(math.Round(v.Z * 1e6))}
	}
	count := make(map[key]int)
	for i := 0; i < m.Triangles(); i++ {
		tri := m.Triangle(i)
		for j := 0; j < 3; j++ {
			a, b := q(tri[j]), q(tri[(j+1)%3])
			if a[0] > b[0] || (a[0] == b[0] && (a[1] > b[1] || (a[1] == b[1] && a[2] > b[2]))) {
				a, b = b, a
			}
			count[key{a[0], a[1], a[2], b[0], b[1], b[2]}]++
		}
	}
	for _, n := range count {
		if n != 2 {
			return false
		}
	}
	return true
}

// volume 有向体积，法向朝外时为正
func volume(m *Mesh) float64 {
	var v float64
	for i := 0; i < m.Triangles(); i++ {
		tri := m.Triangle(i)
		v += r3.Dot(tri[0], r3.Cross(tri[1], tri[2])) / 6
	}
	return v
}

func TestCatalog_TessellateSolids(t *testing.T) {
	t.Parallel()

	c := Default()
	must := func(d Descriptor, err error) Descriptor {
		require.NoError(t, err)
		return d
	}

	tests := []struct {
		name       string
		d          Descriptor
		wantVolume float64
		rotate     bool
		relTol     float64
	}{
		{"box", must(c.Box(1, 2, 3, 0)), 6, false, 1e-9},
		{"sphere", must(c.Sphere(1)), 4.0 / 3 * math.Pi, false, 0.05},
		{"cylinder", must(c.Cylinder(1, 2)), 2 * math.Pi, true, 0.02},
		{"cone", must(c.Cone(0, 1, 3)), math.Pi, true, 0.02},
		{"frustum", must(c.Cone(0.5, 1, 1)), math.Pi / 3 * (1 + 0.5 + 0.25), true, 0.02},
		{"pyramid", must(c.Pyramid(1, 3, 2)), 2, true, 1e-9},
		{"torus", must(c.Torus(2, 0.5)), 2 * math.Pi * math.Pi * 2 * 0.25, true, 0.03},
		{"capsule", must(c.Capsule(0.5, 3)), math.Pi*0.25*2 + 4.0/3*math.Pi*0.125, true, 0.05},
		{"tube", must(c.Tube(0.5, 1, 2)), math.Pi * (1 - 0.25) * 2, true, 0.02},
		{"tetrahedron", must(c.Tetrahedron(1, 1)), 0, false, 0},
		{"octahedron", must(c.Octahedron(1, 1)), 1.0 / 6, false, 1e-9},
		{"dodecahedron", must(c.Dodecahedron(1, 2)), 0, false, 0},
		{"icosahedron", must(c.Icosahedron(1, 1)), 0, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.rotate, tt.d.MustRotate90OnX)
			m, err := c.Tessellate(tt.d)
			require.NoError(t, err)
			require.Positive(t, m.Triangles())
			assert.True(t, closed(t, m), "mesh must be watertight")

			v := volume(m)
			assert.Positive(t, v, "triangles must face outwards")
			if tt.wantVolume > 0 {
				assert.InEpsilon(t, tt.wantVolume, v, tt.relTol)
			}
		})
	}
}

func TestCatalog_TessellateExtrusions(t *testing.T) {
	t.Parallel()

	c := Default()
	star, err := c.Star(5, 1, 0.4, 2)
	require.NoError(t, err)
	hex, err := c.NGon(6, 1, 0.5)
	require.NoError(t, err)
	arrow, err := c.ArrowHead(1, 1, 0.3, 1)
	require.NoError(t, err)

	for _, d := range []Descriptor{star, hex, arrow} {
		m, err := c.Tessellate(d)
		require.NoError(t, err)
		assert.True(t, closed(t, m))
		assert.Positive(t, volume(m))
		lo, hi := m.Bounds()
		assert.InDelta(t, d.Depth, hi.Z-lo.Z, 1e-9)
	}

	m, err := c.Tessellate(hex)
	require.NoError(t, err)
	// 正六边形面积 3√3/2 r²
	assert.InEpsilon(t, 3*math.Sqrt(3)/2*0.5, volume(m), 1e-9)
	// 6 顶 + 6 底 + 4 顶面 + 4 底面 + 12 侧面
	assert.Equal(t, 12, len(m.Vertices))
	assert.Equal(t, 20, m.Triangles())
}

func TestCatalog_BoxZeroLength(t *testing.T) {
	t.Parallel()

	c := Default()
	d, err := c.Box(1, 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d.Extent())
	m, err := c.Tessellate(d)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Triangles(), "only the two flat faces survive")

	_, err = c.Box(1, -1, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidShapeParameters)

	chamfered, err := c.Box(1, 1, 0.2, 5)
	require.NoError(t, err)
	assert.Equal(t, 0.1, chamfered.Chamfer)
}

func TestCatalog_InvalidSolids(t *testing.T) {
	t.Parallel()

	c := Default()
	_, err := c.Sphere(0)
	assert.ErrorIs(t, err, ErrInvalidShapeParameters)
	_, err = c.Cone(0, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidShapeParameters)
	_, err = c.Torus(0.5, 1)
	assert.ErrorIs(t, err, ErrInvalidShapeParameters)
	_, err = c.Tube(1, 0.5, 1)
	assert.ErrorIs(t, err, ErrInvalidShapeParameters)
	_, err = c.Tetrahedron(0, 1)
	assert.ErrorIs(t, err, ErrInvalidShapeParameters)

	capsule, err := c.Capsule(1, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 2.0, capsule.Height)
}

func TestPolyhedronTables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		p        *Polyhedron
		vertices int
		faces    int
	}{
		{Tetrahedron, 4, 4},
		{Octahedron, 6, 8},
		{Icosahedron, 12, 20},
		{Dodecahedron, 20, 12},
	}
	for _, tt := range tests {
		t.Run(tt.p.Name, func(t *testing.T) {
			t.Parallel()

			assert.Len(t, tt.p.Vertices, tt.vertices)
			assert.Len(t, tt.p.Faces, tt.faces)
			assert.Equal(t, 2, tt.vertices-tt.p.edges()+tt.faces, "euler characteristic")
			for _, v := range tt.p.Vertices {
				assert.LessOrEqual(t, math.Abs(v.X), 0.5+1e-12)
				assert.LessOrEqual(t, math.Abs(v.Y), 0.5+1e-12)
				assert.LessOrEqual(t, math.Abs(v.Z), 0.5+1e-12)
			}
		})
	}

	for _, f := range Dodecahedron.Faces {
		assert.Len(t, f, 5)
	}
}

func TestNewCatalog_Validation(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.EllipseOversample = 0
	_, err := NewCatalog(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Segments = 2
	_, err = NewCatalog(cfg)
	assert.Error(t, err)

	c, err := NewCatalog(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c.Config())
}

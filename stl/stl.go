package stl

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chaos-io/pixel3d/geometry"
	"github.com/chaos-io/pixel3d/scene"
)

// writer ASCII STL 输出，第一次写失败后其余写入都跳过，错误在 close 时返回
type writer struct {
	w      *bufio.Writer
	name   string
	facets int
	err    error
}

func newWriter(w io.Writer, name string) *writer {
	sw := &writer{w: bufio.NewWriter(w), name: name}
	sw.printf("solid %s\n", name)
	return sw
}

func (sw *writer) printf(format string, args ...any) {
	if sw.err != nil {
		return
	}
	_, sw.err = fmt.Fprintf(sw.w, format, args...)
}

// facet 写入一个三角面，法向由顶点顺序（右手）决定
func (sw *writer) facet(v1, v2, v3 r3.Vec) {
	normal := r3.Cross(r3.Sub(v2, v1), r3.Sub(v3, v1))
	if r3.Norm2(normal) > 0 {
		normal = r3.Unit(normal)
	}
	sw.printf("  facet normal %f %f %f\n", normal.X, normal.Y, normal.Z)
	sw.printf("    outer loop\n")
	sw.printf("      vertex %f %f %f\n", v1.X, v1.Y, v1.Z)
	sw.printf("      vertex %f %f %f\n", v2.X, v2.Y, v2.Z)
	sw.printf("      vertex %f %f %f\n", v3.X, v3.Y, v3.Z)
	sw.printf("    endloop\n")
	sw.printf("  endfacet\n")
	sw.facets++
}

func (sw *writer) mesh(m *geometry.Mesh) {
	for i := 0; i < m.Triangles(); i++ {
		t := m.Triangle(i)
		sw.facet(t[0], t[1], t[2])
	}
}

func (sw *writer) close() (int, error) {
	sw.printf("endsolid %s\n", sw.name)
	if sw.err == nil {
		sw.err = sw.w.Flush()
	}
	return sw.facets, sw.err
}

// WriteScene 把场景里每个实例三角化、变换到世界坐标后写成 ASCII STL，返回面数
func WriteScene(w io.Writer, model *scene.Model, catalog *geometry.Catalog) (int, error) {
	if catalog == nil {
		catalog = geometry.Default()
	}
	sw := newWriter(w, "pixel3d_"+model.ID.String())
	for _, node := range model.Nodes {
		for i, in := range node.Instances {
			m, err := in.Mesh(catalog)
			if err != nil {
				return sw.facets, fmt.Errorf("cell (%d, %d) instance %d: %w", node.X, node.Y, i, err)
			}
			sw.mesh(m)
		}
	}
	return sw.close()
}

// WriteHeightField 深度图转成带底座的浮雕：顶面高度为 灰度/255*modelThickness，
// 底面在 -baseThickness，四周封边。modelWidth 是 X 方向的总宽度
func WriteHeightField(w io.Writer, depthMap *image.Gray, modelWidth, modelThickness, baseThickness float64) (int, error) {
	b := depthMap.Bounds()
	width, height := b.Dx(), b.Dy()
	if width < 2 || height < 2 {
		return 0, fmt.Errorf("depth map %dx%d is too small for a relief", width, height)
	}
	pixelSize := modelWidth / float64(width)

	// 构建顶点高度
	vertices := make([][]float64, height)
	for y := 0; y < height; y++ {
		vertices[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			vertices[y][x] = float64(depthMap.GrayAt(b.Min.X+x, b.Min.Y+y).Y) / 255.0 * modelThickness
		}
	}
	// 图片 y 向下，模型 y 向上
	px := func(x int) float64 { return float64(x) * pixelSize }
	py := func(y int) float64 { return float64(height-y-1) * pixelSize }
	top := func(x, y int) r3.Vec { return r3.Vec{X: px(x), Y: py(y), Z: vertices[y][x]} }
	bottom := func(x, y int) r3.Vec { return r3.Vec{X: px(x), Y: py(y), Z: -baseThickness} }

	sw := newWriter(w, "relief_model")

	// 顶面
	for y := 0; y < height-1; y++ {
		for x := 0; x < width-1; x++ {
			sw.facet(top(x, y), top(x, y+1), top(x+1, y))
			sw.facet(top(x+1, y), top(x, y+1), top(x+1, y+1))
		}
	}

	// 底面
	for y := 0; y < height-1; y++ {
		for x := 0; x < width-1; x++ {
			sw.facet(bottom(x, y), bottom(x+1, y), bottom(x, y+1))
			sw.facet(bottom(x+1, y), bottom(x+1, y+1), bottom(x, y+1))
		}
	}

	// 前后边缘
	for x := 0; x < width-1; x++ {
		// 前边（图片最后一行，模型 y=0）
		f := height - 1
		sw.facet(bottom(x, f), bottom(x+1, f), top(x, f))
		sw.facet(bottom(x+1, f), top(x+1, f), top(x, f))
		// 后边（图片第一行）
		sw.facet(bottom(x, 0), top(x, 0), bottom(x+1, 0))
		sw.facet(bottom(x+1, 0), top(x, 0), top(x+1, 0))
	}

	// 左右边缘
	for y := 0; y < height-1; y++ {
		sw.facet(bottom(0, y), bottom(0, y+1), top(0, y))
		sw.facet(bottom(0, y+1), top(0, y+1), top(0, y))

		r := width - 1
		sw.facet(bottom(r, y), top(r, y), bottom(r, y+1))
		sw.facet(bottom(r, y+1), top(r, y), top(r, y+1))
	}

	return sw.close()
}

// WriteFile 创建 path 并用 write 写入
func WriteFile(path string, write func(io.Writer) (int, error)) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = f.Close()
	}()

	n, err := write(f)
	if err != nil {
		return n, fmt.Errorf("write stl %s: %w", path, err)
	}
	return n, nil
}

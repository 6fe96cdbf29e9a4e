package scene

import (
	"github.com/segmentio/ksuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chaos-io/pixel3d/geometry"
	"github.com/chaos-io/pixel3d/pixel"
	"github.com/chaos-io/pixel3d/shape"
)

// Instance 一个放置好的几何体
type Instance struct {
	Selector shape.Selector
	Geometry geometry.Descriptor
	// Position 世界坐标
	Position r3.Vec
	// Orientation 已包含 Canonical 旋转
	Orientation geometry.Orientation
	// Scale 非均匀缩放，没有时为 (1,1,1)
	Scale r3.Vec
	Color pixel.Color
}

// Mesh 世界坐标下的三角网格
func (in Instance) Mesh(c *geometry.Catalog) (*geometry.Mesh, error) {
	m, err := c.Tessellate(in.Geometry)
	if err != nil {
		return nil, err
	}
	return geometry.Place(m, in.Scale, in.Orientation, in.Position), nil
}

// Node 一个格子的节点，组合形状有多个 Instance
type Node struct {
	X, Y int
	// Selector 解析 Varying 之后的形状族
	Selector   shape.Selector
	Color      pixel.Color
	Prominence float64
	// Logical 以网格为单位、居中的位置 (x-H/2, y-V/2, prominence)
	Logical   r3.Vec
	Instances []Instance
}

// Skip 被跳过的格子
type Skip struct {
	X, Y     int
	Selector shape.Selector
	Err      error
}

// Model 一张图片组装出的场景，生成后只读
type Model struct {
	ID         ksuid.KSUID
	Width      int
	Height     int
	SideLength float64
	Nodes      []Node
	Skipped    []Skip
}

// Instances 所有节点的实例总数
func (m *Model) Instances() int {
	n := 0
	for _, node := range m.Nodes {
		n += len(node.Instances)
	}
	return n
}

// Node 按格子坐标查找节点
func (m *Model) Node(x, y int) (Node, bool) {
	for _, n := range m.Nodes {
		if n.X == x && n.Y == y {
			return n, true
		}
	}
	return Node{}, false
}

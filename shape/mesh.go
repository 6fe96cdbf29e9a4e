package shape

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chaos-io/pixel3d/geometry"
)

// mesh 格子自身位置一个可选的小球，加三条线段连到右、下、右下相邻格子；
// 端点高度由同一个 Engine 对相邻格子的颜色重新计算
func (d *Dispatcher) mesh(req Request) ([]Part, error) {
	if req.Neighbors == nil {
		return nil, ErrMismatchedNeighborState
	}
	s := d.params.SideLength
	w := d.params.MeshLineWidth * s
	own := r3.Vec{Z: req.Prominence}

	parts := make([]Part, 0, 4)
	if d.params.MeshSphere {
		ball, err := d.catalog.Sphere(w)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part(Sphere, ball, own, req.Color))
	}

	targets := [3]r3.Vec{
		{X: s, Z: d.engine.Of(req.Neighbors.Right)},
		{Y: s, Z: d.engine.Of(req.Neighbors.Below)},
		{X: s, Y: s, Z: d.engine.Of(req.Neighbors.BelowRight)},
	}
	for _, target := range targets {
		dir := r3.Sub(target, own)
		line, err := d.catalog.Box(w, w, r3.Norm(dir), 0)
		if err != nil {
			return nil, err
		}
		p := part(Block, line, r3.Add(own, r3.Scale(0.5, dir)), req.Color)
		p.Orientation = geometry.Align(dir)
		parts = append(parts, p)
	}
	return parts, nil
}

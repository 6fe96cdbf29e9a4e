package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	AxisX = r3.Vec{X: 1}
	AxisY = r3.Vec{Y: 1}
	AxisZ = r3.Vec{Z: 1}
)

// Turn 绕 Axis 旋转 Angle 弧度（右手定则）
type Turn struct {
	Axis  r3.Vec
	Angle float64
}

// Orientation 按顺序应用的一组旋转，零值表示不旋转
type Orientation []Turn

// Then 在末尾追加一次旋转，返回新的 Orientation，不修改原值
func (o Orientation) Then(axis r3.Vec, angle float64) Orientation {
	out := make(Orientation, len(o), len(o)+1)
	copy(out, o)
	return append(out, Turn{Axis: axis, Angle: angle})
}

// Apply 旋转一个向量
func (o Orientation) Apply(v r3.Vec) r3.Vec {
	for _, t := range o {
		if t.Angle == 0 || r3.Norm2(t.Axis) == 0 {
			continue
		}
		v = r3.NewRotation(t.Angle, r3.Unit(t.Axis)).Rotate(v)
	}
	return v
}

// Align 把 +Z 转到 dir 方向的旋转
func Align(dir r3.Vec) Orientation {
	n := r3.Norm(dir)
	if n == 0 {
		return nil
	}
	d := r3.Scale(1/n, dir)
	axis := r3.Cross(AxisZ, d)
	cos := math.Max(-1, math.Min(1, d.Z))
	if r3.Norm2(axis) < 1e-24 {
		if cos > 0 {
			return nil
		}
		return Orientation{{Axis: AxisX, Angle: math.Pi}}
	}
	return Orientation{{Axis: axis, Angle: math.Acos(cos)}}
}

// Canonical 沿 Y 建模的形状转到挤出轴 Z 上所需的旋转（绕 X 轴 90°，Y -> Z）
func (d Descriptor) Canonical() Orientation {
	if !d.MustRotate90OnX {
		return nil
	}
	return Orientation{{Axis: AxisX, Angle: math.Pi / 2}}
}

// Orient 先做 Canonical 旋转，再做 o
func (d Descriptor) Orient(o Orientation) Orientation {
	c := d.Canonical()
	if len(c) == 0 {
		return o
	}
	return append(c, o...)
}

// Place 把建模坐标下的网格变换到世界坐标：先按 scale 缩放，再旋转，最后平移到 position
func Place(m *Mesh, scale r3.Vec, orientation Orientation, position r3.Vec) *Mesh {
	out := &Mesh{Vertices: make([]r3.Vec, len(m.Vertices)), Indices: m.Indices}
	for i, v := range m.Vertices {
		v = r3.Vec{X: v.X * scale.X, Y: v.Y * scale.Y, Z: v.Z * scale.Z}
		out.Vertices[i] = r3.Add(orientation.Apply(v), position)
	}
	return out
}

package geometry

import (
	"errors"
	"fmt"

	"github.com/gogpu/gg"
	"gonum.org/v1/gonum/spatial/r3"
)

var ErrInvalidShapeParameters = errors.New("invalid shape parameters")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidShapeParameters)
}

// Kind 几何体的构造方式
type Kind uint8

const (
	KindBox Kind = iota
	KindSphere
	KindCylinder
	KindCone
	KindPyramid
	KindTorus
	KindCapsule
	KindTube
	KindExtrusion
	KindPolyhedron
)

var kindNames = [...]string{
	KindBox:        "box",
	KindSphere:     "sphere",
	KindCylinder:   "cylinder",
	KindCone:       "cone",
	KindPyramid:    "pyramid",
	KindTorus:      "torus",
	KindCapsule:    "capsule",
	KindTube:       "tube",
	KindExtrusion:  "extrusion",
	KindPolyhedron: "polyhedron",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Descriptor 目录输出：几何参数 + 调用方必须应用的变换修正
//
// 旋转体（圆柱、圆锥、金字塔、圆环、胶囊、管）沿 Y 轴建模，MustRotate90OnX 为 true，
// 放置时要绕 X 轴转 90° 落到模型的挤出轴 Z 上。
// 椭圆类图形按放大后的坐标建模，Rescale 给出 X/Y 上的缩小系数，Z（挤出深度）不缩放。
type Descriptor struct {
	Kind Kind

	// Box: Width(X) × Height(Y) × Length(Z)；Pyramid: 底面 Width × Length，高 Height
	Width, Height, Length float64
	Chamfer               float64

	// Sphere / Cylinder / Capsule 半径；Tube 外半径；Torus 环半径
	Radius float64
	// Cone 上下底半径
	TopRadius, BottomRadius float64
	// Tube 内半径
	InnerRadius float64
	// Torus 管半径
	PipeRadius float64

	// Extrusion 轮廓和挤出深度
	Path  *gg.Path
	Depth float64

	// Polyhedron 单位表和每次调用的缩放
	Solid *Polyhedron
	Scale r3.Vec

	MustRotate90OnX bool
	Rescale         r3.Vec

	// ZOverride 覆盖默认的 Z 放置高度
	ZOverride    float64
	HasZOverride bool
}

// HasRescale 是否需要非均匀缩放
func (d Descriptor) HasRescale() bool {
	return d.Rescale != (r3.Vec{}) && d.Rescale != (r3.Vec{X: 1, Y: 1, Z: 1})
}

// RescaleOrUnit 返回缩放向量，没有缩放时为 (1,1,1)
func (d Descriptor) RescaleOrUnit() r3.Vec {
	if !d.HasRescale() {
		return r3.Vec{X: 1, Y: 1, Z: 1}
	}
	return d.Rescale
}

// WithZ 返回带 Z 放置覆盖的副本
func (d Descriptor) WithZ(z float64) Descriptor {
	d.ZOverride = z
	d.HasZOverride = true
	return d
}

// Extent 沿挤出轴（放置后的 Z）的名义长度
func (d Descriptor) Extent() float64 {
	switch d.Kind {
	case KindBox:
		return d.Length
	case KindSphere:
		return 2 * d.Radius
	case KindCylinder, KindCone, KindPyramid, KindCapsule, KindTube:
		return d.Height
	case KindTorus:
		return 2 * d.PipeRadius
	case KindExtrusion:
		return d.Depth
	case KindPolyhedron:
		return d.Scale.Z
	}
	return 0
}

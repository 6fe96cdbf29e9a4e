package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

func nonNegative(name string, vs ...float64) error {
	for _, v := range vs {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid("%s %v must be a finite value >= 0", name, v)
		}
	}
	return nil
}

// Box 长方体，Width(X) × Height(Y) × Length(Z)，chamfer 为倒角半径
func (c *Catalog) Box(width, height, length, chamfer float64) (Descriptor, error) {
	if err := nonNegative("box size", width, height, length, chamfer); err != nil {
		return Descriptor{}, err
	}
	if limit := math.Min(width, math.Min(height, length)) / 2; chamfer > limit {
		chamfer = limit
	}
	return Descriptor{Kind: KindBox, Width: width, Height: height, Length: length, Chamfer: chamfer}, nil
}

func (c *Catalog) Sphere(radius float64) (Descriptor, error) {
	if !(radius > 0) {
		return Descriptor{}, invalid("sphere radius %v must be > 0", radius)
	}
	return Descriptor{Kind: KindSphere, Radius: radius}, nil
}

// Cylinder 沿 Y 建模，需要旋转
func (c *Catalog) Cylinder(radius, height float64) (Descriptor, error) {
	if !(radius > 0) {
		return Descriptor{}, invalid("cylinder radius %v must be > 0", radius)
	}
	if err := nonNegative("cylinder height", height); err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Kind: KindCylinder, Radius: radius, Height: height, MustRotate90OnX: true}, nil
}

// Cone 沿 Y 建模，上下底半径不能同时为 0
func (c *Catalog) Cone(topRadius, bottomRadius, height float64) (Descriptor, error) {
	if err := nonNegative("cone size", topRadius, bottomRadius, height); err != nil {
		return Descriptor{}, err
	}
	if topRadius == 0 && bottomRadius == 0 {
		return Descriptor{}, invalid("cone top and bottom radius are both 0")
	}
	return Descriptor{Kind: KindCone, TopRadius: topRadius, BottomRadius: bottomRadius, Height: height, MustRotate90OnX: true}, nil
}

// Pyramid 底面 width × length，高 height，沿 Y 建模
func (c *Catalog) Pyramid(width, height, length float64) (Descriptor, error) {
	if !(width > 0) || !(length > 0) {
		return Descriptor{}, invalid("pyramid base %v x %v must be > 0", width, length)
	}
	if err := nonNegative("pyramid height", height); err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Kind: KindPyramid, Width: width, Height: height, Length: length, MustRotate90OnX: true}, nil
}

// Torus 在 XZ 平面内建模（轴为 Y），需要旋转
func (c *Catalog) Torus(ringRadius, pipeRadius float64) (Descriptor, error) {
	if !(ringRadius > 0) || !(pipeRadius > 0) {
		return Descriptor{}, invalid("torus ring %v and pipe %v must be > 0", ringRadius, pipeRadius)
	}
	if pipeRadius > ringRadius {
		return Descriptor{}, invalid("torus pipe %v larger than ring %v", pipeRadius, ringRadius)
	}
	return Descriptor{Kind: KindTorus, Radius: ringRadius, PipeRadius: pipeRadius, MustRotate90OnX: true}, nil
}

// Capsule 总高 height 不小于两个半球
func (c *Catalog) Capsule(capRadius, height float64) (Descriptor, error) {
	if !(capRadius > 0) {
		return Descriptor{}, invalid("capsule cap radius %v must be > 0", capRadius)
	}
	if height < 2*capRadius {
		height = 2 * capRadius
	}
	return Descriptor{Kind: KindCapsule, Radius: capRadius, Height: height, MustRotate90OnX: true}, nil
}

func (c *Catalog) Tube(innerRadius, outerRadius, height float64) (Descriptor, error) {
	if !(innerRadius > 0) || !(outerRadius > innerRadius) {
		return Descriptor{}, invalid("tube radii inner %v outer %v", innerRadius, outerRadius)
	}
	if err := nonNegative("tube height", height); err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Kind: KindTube, InnerRadius: innerRadius, Radius: outerRadius, Height: height, MustRotate90OnX: true}, nil
}

func (c *Catalog) polyhedron(solid *Polyhedron, baseLength, height float64) (Descriptor, error) {
	if !(baseLength > 0) {
		return Descriptor{}, invalid("%s base length %v must be > 0", solid.Name, baseLength)
	}
	if err := nonNegative(solid.Name+" height", height); err != nil {
		return Descriptor{}, err
	}
	return Descriptor{
		Kind:  KindPolyhedron,
		Solid: solid,
		Scale: r3.Vec{X: baseLength, Y: baseLength, Z: height},
	}, nil
}

func (c *Catalog) Tetrahedron(baseLength, height float64) (Descriptor, error) {
	return c.polyhedron(Tetrahedron, baseLength, height)
}

func (c *Catalog) Octahedron(baseLength, height float64) (Descriptor, error) {
	return c.polyhedron(Octahedron, baseLength, height)
}

func (c *Catalog) Dodecahedron(baseLength, height float64) (Descriptor, error) {
	return c.polyhedron(Dodecahedron, baseLength, height)
}

func (c *Catalog) Icosahedron(baseLength, height float64) (Descriptor, error) {
	return c.polyhedron(Icosahedron, baseLength, height)
}

package bounds

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned box in world space. The zero value is the
// degenerate box at the origin.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// FromCenterSize builds a box from its center and full extent per axis.
func FromCenterSize(center, size mgl32.Vec3) AABB {
	half := size.Mul(0.5)
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the full extent per axis.
func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b AABB) IsZero() bool {
	return b == AABB{}
}

// Encapsulate grows the box to contain other.
func (b AABB) Encapsulate(other AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{min(b.Min.X(), other.Min.X()), min(b.Min.Y(), other.Min.Y()), min(b.Min.Z(), other.Min.Z())},
		Max: mgl32.Vec3{max(b.Max.X(), other.Max.X()), max(b.Max.Y(), other.Max.Y()), max(b.Max.Z(), other.Max.Z())},
	}
}

// Cube keeps the center and sets every axis to the largest extent.
func (b AABB) Cube() AABB {
	size := b.Size()
	side := max(size.X(), size.Y(), size.Z())
	return FromCenterSize(b.Center(), mgl32.Vec3{side, side, side})
}

// Transform returns a conservative world box for a local box under m
// by transforming all eight corners.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	corners := [8]mgl32.Vec3{
		{b.Min.X(), b.Min.Y(), b.Min.Z()},
		{b.Max.X(), b.Min.Y(), b.Min.Z()},
		{b.Min.X(), b.Max.Y(), b.Min.Z()},
		{b.Max.X(), b.Max.Y(), b.Min.Z()},
		{b.Min.X(), b.Min.Y(), b.Max.Z()},
		{b.Max.X(), b.Min.Y(), b.Max.Z()},
		{b.Min.X(), b.Max.Y(), b.Max.Z()},
		{b.Max.X(), b.Max.Y(), b.Max.Z()},
	}

	inf := float32(math.Inf(1))
	wMin := mgl32.Vec3{inf, inf, inf}
	wMax := mgl32.Vec3{-inf, -inf, -inf}
	for _, c := range corners {
		wc := m.Mul4x1(c.Vec4(1.0)).Vec3()
		wMin = mgl32.Vec3{min(wMin.X(), wc.X()), min(wMin.Y(), wc.Y()), min(wMin.Z(), wc.Z())}
		wMax = mgl32.Vec3{max(wMax.X(), wc.X()), max(wMax.Y(), wc.Y()), max(wMax.Z(), wc.Z())}
	}
	return AABB{Min: wMin, Max: wMax}
}

// Package arena holds positions on the ground plane, the play bounds and the
// terrain capability the navigation layer exposes.
// This package is PURE and must NOT import any infrastructure packages.
package arena

import "math"

// Vec2 is a point or direction on the XZ ground plane.
type Vec2 struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Z + o.Z} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Z - o.Z} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Z * s} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Z*o.Z }
func (v Vec2) Length() float64      { return math.Hypot(v.X, v.Z) }
func (v Vec2) IsZero() bool         { return v.X == 0 && v.Z == 0 }
func Distance(a, b Vec2) float64    { return a.Sub(b).Length() }

// Normalize returns the unit vector of v, or the zero vector when v is zero.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Z / l}
}

// Rotate turns v counter-clockwise by angle radians.
func (v Vec2) Rotate(angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{v.X*cos - v.Z*sin, v.X*sin + v.Z*cos}
}

// MoveTowards steps from toward target by at most maxStep.
func MoveTowards(from, target Vec2, maxStep float64) Vec2 {
	d := target.Sub(from)
	l := d.Length()
	if l <= maxStep || l == 0 {
		return target
	}
	return from.Add(d.Scale(maxStep / l))
}

// Bounds is the axis-aligned play area.
type Bounds struct {
	Min Vec2 `json:"min"`
	Max Vec2 `json:"max"`
}

// Contains reports whether p lies inside the bounds, edges included.
func (b Bounds) Contains(p Vec2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Clamp pulls p onto the nearest point inside the bounds.
func (b Bounds) Clamp(p Vec2) Vec2 {
	return Vec2{
		X: math.Max(b.Min.X, math.Min(b.Max.X, p.X)),
		Z: math.Max(b.Min.Z, math.Min(b.Max.Z, p.Z)),
	}
}

// RandomPoint maps two uniform samples in [0,1) to a point inside the bounds.
func (b Bounds) RandomPoint(u, v float64) Vec2 {
	return Vec2{
		X: b.Min.X + u*(b.Max.X-b.Min.X),
		Z: b.Min.Z + v*(b.Max.Z-b.Min.Z),
	}
}

// Terrain answers navigation capability queries. The engine never decides
// climbability itself; it asks the navigation layer.
type Terrain interface {
	IsClimbable(p Vec2) bool
}

// FlatTerrain has nothing climbable.
type FlatTerrain struct{}

func (FlatTerrain) IsClimbable(Vec2) bool { return false }

// Zone is a circular region.
type Zone struct {
	Center Vec2    `json:"center"`
	Radius float64 `json:"radius"`
}

// ZoneTerrain flags every point inside one of its zones as climbable.
type ZoneTerrain struct {
	Climbable []Zone
}

func (z ZoneTerrain) IsClimbable(p Vec2) bool {
	for _, zone := range z.Climbable {
		if Distance(p, zone.Center) <= zone.Radius {
			return true
		}
	}
	return false
}

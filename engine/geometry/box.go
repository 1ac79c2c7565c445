package geometry

import (
	"fmt"
	"math"
)

// Box is an axis aligned bounding box. An empty box has Min > Max; it is
// the neutral element of Union.
type Box struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// EmptyBox returns the empty box. Its bounds are finite, so it survives
// JSON encoding.
func EmptyBox() Box {
	const m = math.MaxFloat64
	return Box{Min: Vec3{m, m, m}, Max: Vec3{-m, -m, -m}}
}

// IsEmpty is true for boxes not containing a single point.
func (b Box) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend returns the smallest box containing b and v.
func (b Box) Extend(v Vec3) Box {
	return Box{
		Min: Vec3{math.Min(b.Min.X, v.X), math.Min(b.Min.Y, v.Y), math.Min(b.Min.Z, v.Z)},
		Max: Vec3{math.Max(b.Max.X, v.X), math.Max(b.Max.Y, v.Y), math.Max(b.Max.Z, v.Z)},
	}
}

// Union returns the smallest box containing b and c.
func (b Box) Union(c Box) Box {
	if c.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return c
	}
	return b.Extend(c.Min).Extend(c.Max)
}

// Size returns the extent of the box, zero for empty boxes.
func (b Box) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return Vec3{b.Max.X - b.Min.X, b.Max.Y - b.Min.Y, b.Max.Z - b.Min.Z}
}

// Transformed returns the box enclosing the transformed corners of b.
func (b Box) Transformed(t Transform) Box {
	if b.IsEmpty() {
		return b
	}
	r := EmptyBox()
	for i := 0; i < 8; i++ {
		c := b.Min
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		r = r.Extend(t.Apply(c))
	}
	return r
}

func (b Box) String() string {
	if b.IsEmpty() {
		return "box[empty]"
	}
	return fmt.Sprintf("box[(%.3g,%.3g)-(%.3g,%.3g)]", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
}

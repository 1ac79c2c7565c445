package outline

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// maxSubdivision limits the recursion depth of curve flattening.
const maxSubdivision = 10

// flattenQuadratic flattens a quadratic Bézier curve by adaptive
// subdivision. The result includes both end points.
func flattenQuadratic(p0, p1, p2 vec.Vec2, flatness float64, depth int) []vec.Vec2 {
	if depth >= maxSubdivision || distanceToLine(p1, p0, p2) <= flatness {
		return []vec.Vec2{p0, p2}
	}
	q0 := midpoint(p0, p1)
	q1 := midpoint(p1, p2)
	r := midpoint(q0, q1)
	left := flattenQuadratic(p0, q0, r, flatness, depth+1)
	right := flattenQuadratic(r, q1, p2, flatness, depth+1)
	return append(left[:len(left)-1], right...)
}

// flattenCubic flattens a cubic Bézier curve by adaptive subdivision.
func flattenCubic(p0, p1, p2, p3 vec.Vec2, flatness float64, depth int) []vec.Vec2 {
	d := math.Max(distanceToLine(p1, p0, p3), distanceToLine(p2, p0, p3))
	if depth >= maxSubdivision || d <= flatness {
		return []vec.Vec2{p0, p3}
	}
	q0 := midpoint(p0, p1)
	q1 := midpoint(p1, p2)
	q2 := midpoint(p2, p3)
	r0 := midpoint(q0, q1)
	r1 := midpoint(q1, q2)
	s := midpoint(r0, r1)
	left := flattenCubic(p0, q0, r0, s, flatness, depth+1)
	right := flattenCubic(s, r1, q2, p3, flatness, depth+1)
	return append(left[:len(left)-1], right...)
}

// distanceToLine is the perpendicular distance of p from the line through
// a and b.
func distanceToLine(p, a, b vec.Vec2) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq < 1e-12 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	cross := dx*(p.Y-a.Y) - dy*(p.X-a.X)
	return math.Abs(cross) / math.Sqrt(lenSq)
}

func midpoint(a, b vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

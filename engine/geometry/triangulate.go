package geometry

import (
	"math"
	"sort"

	"seehuhn.de/go/geom/vec"
)

const epsilon = 1e-12

// Triangulate triangulates the area enclosed by a set of closed contours,
// using the even-odd rule: a contour nested inside an odd number of other
// contours is a hole. Holes are bridged into their enclosing contour, and
// the resulting simple polygons are ear clipped.
//
// Triangulate returns all contour points and triangle indices into them.
// Triangles are oriented counter-clockwise.
func Triangulate(contours [][]vec.Vec2) ([]vec.Vec2, []uint32) {
	var points []vec.Vec2
	var rings []*ring
	for _, c := range contours {
		r := &ring{}
		for _, p := range c {
			r.idx = append(r.idx, len(points))
			points = append(points, p)
		}
		r.area = signedArea(points, r.idx)
		if len(r.idx) < 3 || math.Abs(r.area) < epsilon {
			continue
		}
		rings = append(rings, r)
	}
	if len(rings) == 0 {
		return points, nil
	}
	nest(points, rings)
	var indices []uint32
	for _, outer := range rings {
		if outer.depth%2 != 0 {
			continue
		}
		outer.orient(true)
		var holes []*ring
		for _, h := range rings {
			if h.parent == outer {
				h.orient(false)
				h.maxX = maxXVertex(points, h.idx)
				holes = append(holes, h)
			}
		}
		sort.Slice(holes, func(i, j int) bool {
			return points[holes[i].idx[holes[i].maxX]].X > points[holes[j].idx[holes[j].maxX]].X
		})
		poly := append([]int(nil), outer.idx...)
		for _, h := range holes {
			poly = bridge(points, poly, h)
		}
		indices = append(indices, earclip(points, poly)...)
	}
	return points, indices
}

type ring struct {
	idx    []int // indices into points
	area   float64
	depth  int
	parent *ring
	maxX   int // position of the rightmost vertex in idx
}

// orient reverses the ring if needed, making it counter-clockwise for ccw
// and clockwise otherwise.
func (r *ring) orient(ccw bool) {
	if (r.area > 0) != ccw {
		for i, j := 0, len(r.idx)-1; i < j; i, j = i+1, j-1 {
			r.idx[i], r.idx[j] = r.idx[j], r.idx[i]
		}
		r.area = -r.area
	}
}

// nest finds the nesting depth of every ring and the parent of every hole.
func nest(points []vec.Vec2, rings []*ring) {
	for _, r := range rings {
		p := points[r.idx[0]]
		for _, o := range rings {
			if o != r && insidePolygon(points, o.idx, p) {
				r.depth++
			}
		}
	}
	for _, r := range rings {
		if r.depth%2 == 0 {
			continue
		}
		p := points[r.idx[0]]
		for _, o := range rings {
			if o.depth != r.depth-1 || !insidePolygon(points, o.idx, p) {
				continue
			}
			if r.parent == nil || math.Abs(o.area) < math.Abs(r.parent.area) {
				r.parent = o
			}
		}
	}
}

func signedArea(points []vec.Vec2, idx []int) float64 {
	a := 0.0
	for i := range idx {
		p, q := points[idx[i]], points[idx[(i+1)%len(idx)]]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

func insidePolygon(points []vec.Vec2, idx []int, p vec.Vec2) bool {
	in := false
	for i, j := 0, len(idx)-1; i < len(idx); j, i = i, i+1 {
		a, b := points[idx[i]], points[idx[j]]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

func maxXVertex(points []vec.Vec2, idx []int) int {
	m := 0
	for i := range idx {
		if points[idx[i]].X > points[idx[m]].X {
			m = i
		}
	}
	return m
}

// bridge connects a hole to a polygon by a pair of coincident edges
// between the hole's rightmost vertex M and a vertex P of the polygon
// visible from M.
func bridge(points []vec.Vec2, poly []int, hole *ring) []int {
	m := points[hole.idx[hole.maxX]]
	pi, ix := -1, math.Inf(1)
	for i := range poly {
		a, b := points[poly[i]], points[poly[(i+1)%len(poly)]]
		if a.Y == b.Y || (a.Y-m.Y)*(b.Y-m.Y) > 0 {
			continue
		}
		x := a.X + (m.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
		if x < m.X || x >= ix {
			continue
		}
		ix = x
		pi = i
		if b.X > a.X {
			pi = (i + 1) % len(poly)
		}
	}
	if pi < 0 {
		tracer().Debugf("no edge right of hole, bridging to nearest vertex")
		pi = nearest(points, poly, m)
	} else {
		pi = visible(points, poly, m, vec.Vec2{X: ix, Y: m.Y}, pi)
	}
	merged := make([]int, 0, len(poly)+len(hole.idx)+2)
	merged = append(merged, poly[:pi+1]...)
	for k := 0; k <= len(hole.idx); k++ {
		merged = append(merged, hole.idx[(hole.maxX+k)%len(hole.idx)])
	}
	merged = append(merged, poly[pi:]...)
	return merged
}

// visible checks if any polygon vertex lies within the triangle spanned by
// M, the ray intersection I and the candidate P. If so, the one closest in
// angle to the ray is visible from M instead of P.
func visible(points []vec.Vec2, poly []int, m, i vec.Vec2, pi int) int {
	p := points[poly[pi]]
	if p == i {
		return pi
	}
	best, bestTan, bestDist := pi, math.Inf(1), math.Inf(1)
	for k, v := range poly {
		q := points[v]
		if k == pi || q == p || !inTriangle(q, m, i, p) && !inTriangle(q, m, p, i) {
			continue
		}
		dx := q.X - m.X
		if dx <= 0 {
			continue
		}
		tan := math.Abs(q.Y-m.Y) / dx
		dist := dx*dx + (q.Y-m.Y)*(q.Y-m.Y)
		if tan < bestTan || tan == bestTan && dist < bestDist {
			best, bestTan, bestDist = k, tan, dist
		}
	}
	return best
}

func nearest(points []vec.Vec2, poly []int, m vec.Vec2) int {
	best, bestDist := 0, math.Inf(1)
	for k, v := range poly {
		q := points[v]
		if d := (q.X-m.X)*(q.X-m.X) + (q.Y-m.Y)*(q.Y-m.Y); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

func turn(o, a, b vec.Vec2) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// inTriangle is true if p lies within or on the counter-clockwise triangle
// a, b, c.
func inTriangle(p, a, b, c vec.Vec2) bool {
	return turn(a, b, p) >= 0 && turn(b, c, p) >= 0 && turn(c, a, p) >= 0
}

// earclip triangulates a counter-clockwise simple polygon, which may
// contain bridge edges.
func earclip(points []vec.Vec2, poly []int) []uint32 {
	v := append([]int(nil), poly...)
	var tris []uint32
	misses := 0
	for i := 0; len(v) > 3; {
		n := len(v)
		i %= n
		a, b, c := v[(i+n-1)%n], v[i], v[(i+1)%n]
		pa, pb, pc := points[a], points[b], points[c]
		cr := turn(pa, pb, pc)
		switch {
		case math.Abs(cr) < epsilon: // collinear or spike
			v = append(v[:i], v[i+1:]...)
			misses = 0
		case cr > 0 && isEar(points, v, i):
			tris = append(tris, uint32(a), uint32(b), uint32(c))
			v = append(v[:i], v[i+1:]...)
			misses = 0
		case misses >= n:
			tracer().Debugf("ear clipping stuck with %d vertices left, forcing", n)
			if cr > 0 {
				tris = append(tris, uint32(a), uint32(b), uint32(c))
			}
			v = append(v[:i], v[i+1:]...)
			misses = 0
		default:
			misses++
			i++
		}
	}
	if len(v) == 3 && turn(points[v[0]], points[v[1]], points[v[2]]) > epsilon {
		tris = append(tris, uint32(v[0]), uint32(v[1]), uint32(v[2]))
	}
	return tris
}

func isEar(points []vec.Vec2, v []int, i int) bool {
	n := len(v)
	a, b, c := v[(i+n-1)%n], v[i], v[(i+1)%n]
	pa, pb, pc := points[a], points[b], points[c]
	for k, w := range v {
		if k == i || k == (i+n-1)%n || k == (i+1)%n {
			continue
		}
		q := points[w]
		if q == pa || q == pb || q == pc {
			continue
		}
		if turn(points[v[(k+n-1)%n]], q, points[v[(k+1)%n]]) > 0 {
			continue // convex vertices cannot lie within an ear
		}
		if inTriangle(q, pa, pb, pc) {
			return false
		}
	}
	return true
}

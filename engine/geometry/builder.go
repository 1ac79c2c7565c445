package geometry

import (
	"math"
	"sync"

	"github.com/npillmayer/mtext/core/color"
	"github.com/npillmayer/mtext/core/font"
	"github.com/npillmayer/mtext/engine/style"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
)

// Builder turns glyph outlines into primitives. Colors are resolved
// against the builder's color context.
type Builder struct {
	Colors color.Context
	Cache  *TriangleCache // may be nil
}

// GlyphMatrix maps unit-em glyph coordinates to text coordinates: glyphs
// are scaled to the style's height, stretched by its width factor and
// slanted by its oblique angle, then moved to origin.
func GlyphMatrix(rs style.ResolvedStyle, origin vec.Vec2) matrix.Matrix {
	h := rs.Height
	slant := math.Tan(rs.Oblique * math.Pi / 180)
	m := matrix.Matrix{h * rs.WidthFactor, 0, h * slant, h, 0, 0}
	return m.Mul(matrix.Translate(origin.X, origin.Y))
}

func apply(m matrix.Matrix, p vec.Vec2) (float32, float32) {
	return float32(m[0]*p.X + m[2]*p.Y + m[4]), float32(m[1]*p.X + m[3]*p.Y + m[5])
}

// Build creates the primitives of a glyph placed at origin. Stroke glyphs
// yield one line strip per polyline, outline glyphs a single triangle
// list.
func (b *Builder) Build(g font.Glyph, rs style.ResolvedStyle, origin vec.Vec2) []Primitive {
	m := GlyphMatrix(rs, origin)
	rgb := b.Colors.Resolve(rs.Color)
	var prims []Primitive
	for _, stroke := range g.Strokes {
		if len(stroke) == 0 {
			continue
		}
		pts := stroke
		if len(pts) == 1 { // a dot
			pts = []vec.Vec2{pts[0], pts[0]}
		}
		p := Primitive{Kind: Lines, Color: rgb, Vertices: make([]float32, 0, 3*len(pts))}
		for _, pt := range pts {
			x, y := apply(m, pt)
			p.Vertices = append(p.Vertices, x, y, 0)
		}
		prims = append(prims, p)
	}
	if len(g.Contours) > 0 {
		points, indices := b.triangles(g.Contours)
		if len(indices) == 0 {
			tracer().Debugf("glyph outline does not yield any triangles")
			return prims
		}
		p := Primitive{Kind: Triangles, Color: rgb,
			Vertices: make([]float32, 0, 3*len(points)),
			Indices:  append([]uint32(nil), indices...),
		}
		for _, pt := range points {
			x, y := apply(m, pt)
			p.Vertices = append(p.Vertices, x, y, 0)
		}
		prims = append(prims, p)
	}
	return prims
}

// Segment creates a single line segment, as used for decorations and
// fraction dividers.
func (b *Builder) Segment(from, to vec.Vec2, ref color.Ref) Primitive {
	return Primitive{
		Kind:     Lines,
		Vertices: []float32{float32(from.X), float32(from.Y), 0, float32(to.X), float32(to.Y), 0},
		Color:    b.Colors.Resolve(ref),
	}
}

func (b *Builder) triangles(contours [][]vec.Vec2) ([]vec.Vec2, []uint32) {
	if b.Cache == nil {
		return Triangulate(contours)
	}
	return b.Cache.triangulate(contours)
}

// TriangleCache memoizes triangulations of glyph outlines. Glyph outlines
// handed out by font records are immutable and shared, so the address of
// their first point identifies them. It is safe for concurrent use.
type TriangleCache struct {
	m sync.Map // *vec.Vec2 -> triangulation
}

type triangulation struct {
	points  []vec.Vec2
	indices []uint32
}

func (c *TriangleCache) triangulate(contours [][]vec.Vec2) ([]vec.Vec2, []uint32) {
	var k *vec.Vec2
	for _, cont := range contours {
		if len(cont) > 0 {
			k = &cont[0]
			break
		}
	}
	if k == nil {
		return nil, nil
	}
	if t, ok := c.m.Load(k); ok {
		tri := t.(triangulation)
		return tri.points, tri.indices
	}
	points, indices := Triangulate(contours)
	c.m.Store(k, triangulation{points, indices})
	return points, indices
}

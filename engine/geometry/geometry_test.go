package geometry

import (
	"math"
	"testing"

	"github.com/npillmayer/mtext/core/color"
	"github.com/npillmayer/mtext/core/font"
	"github.com/npillmayer/mtext/core/font/outline"
	"github.com/npillmayer/mtext/engine/style"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"seehuhn.de/go/geom/vec"
)

func rect(x0, y0, x1, y1 float64) []vec.Vec2 {
	return []vec.Vec2{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

// triangleArea sums up triangle areas and checks their orientation.
func triangleArea(t *testing.T, points []vec.Vec2, indices []uint32) float64 {
	require.Equal(t, 0, len(indices)%3)
	a := 0.0
	for i := 0; i < len(indices); i += 3 {
		p, q, r := points[indices[i]], points[indices[i+1]], points[indices[i+2]]
		ta := turn(p, q, r) / 2
		assert.GreaterOrEqual(t, ta, 0.0, "triangle %d is clockwise", i/3)
		a += ta
	}
	return a
}

func TestTriangulateSquare(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	sq := rect(0, 0, 1, 1)
	for i, j := 0, len(sq)-1; i < j; i, j = i+1, j-1 { // clockwise input
		sq[i], sq[j] = sq[j], sq[i]
	}
	points, indices := Triangulate([][]vec.Vec2{sq})
	assert.Len(t, indices, 6)
	assert.InDelta(t, 1.0, triangleArea(t, points, indices), 1e-9)
}

func TestTriangulateConcave(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	ell := []vec.Vec2{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2}}
	points, indices := Triangulate([][]vec.Vec2{ell})
	assert.Len(t, indices, 12)
	assert.InDelta(t, 3.0, triangleArea(t, points, indices), 1e-9)
}

func TestTriangulateHoles(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	contours := [][]vec.Vec2{
		rect(0, 0, 10, 10),
		rect(2, 2.5, 4, 7), // hole
		rect(6, 2, 8, 7.5), // hole
		rect(6.5, 3, 7, 4), // island within the second hole
		rect(20, 0, 21, 1), // separate outer contour
	}
	points, indices := Triangulate(contours)
	assert.InDelta(t, 100-9-11+0.5+1, triangleArea(t, points, indices), 1e-9)
	_, indices = Triangulate([][]vec.Vec2{{{X: 0, Y: 0}, {X: 1, Y: 1}}, {{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}})
	assert.Empty(t, indices, "degenerate contours")
}

func TestTriangulateOutlineGlyph(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	g, ok := outline.Fallback().Glyph('o')
	require.True(t, ok)
	require.Len(t, g.Contours, 2)
	want := 0.0
	for i, c := range g.Contours {
		idx := make([]int, len(c))
		pts := make([]vec.Vec2, len(c))
		for k := range c {
			idx[k], pts[k] = k, c[k]
		}
		a := math.Abs(signedArea(pts, idx))
		if i == 0 {
			want += a
		} else {
			want -= a
		}
	}
	if want < 0 {
		want = -want
	}
	points, indices := Triangulate(g.Contours)
	assert.InDelta(t, want, triangleArea(t, points, indices), want*1e-6)
}

func TestBoxes(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	b := EmptyBox()
	assert.True(t, b.IsEmpty())
	assert.Equal(t, Vec3{}, b.Size())
	assert.True(t, b.Transformed(Translation(1, 1)).IsEmpty())
	b = b.Extend(Vec3{1, 2, 0})
	assert.False(t, b.IsEmpty())
	b = b.Union(Box{Min: Vec3{-1, 0, 0}, Max: Vec3{0, 1, 0}}).Union(EmptyBox())
	assert.Equal(t, Box{Min: Vec3{-1, 0, 0}, Max: Vec3{1, 2, 0}}, b)
	tr := Identity()
	tr.Rotation = RotationZ(math.Pi / 2)
	tr.Position = Vec3{X: 10}
	r := b.Transformed(tr)
	assert.InDelta(t, 8.0, r.Min.X, 1e-9)
	assert.InDelta(t, 10.0, r.Max.X, 1e-9)
	assert.InDelta(t, -1.0, r.Min.Y, 1e-9)
	assert.InDelta(t, 1.0, r.Max.Y, 1e-9)
}

func TestNodeBounds(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	b := &Builder{Colors: color.DefaultContext()}
	root := NewNode(RoleText)
	assert.True(t, root.Bounds().IsEmpty(), "empty tree")
	line := NewNode(RoleLine)
	line.Transform = Translation(0, -2)
	run := NewNode(RoleRun)
	run.Transform = Translation(1, 0)
	run.Primitives = append(run.Primitives, b.Segment(vec.Vec2{}, vec.Vec2{X: 3}, color.Index(1)))
	root.Add(line.Add(run))
	assert.Equal(t, Box{Min: Vec3{1, -2, 0}, Max: Vec3{4, -2, 0}}, root.Bounds())
	assert.Len(t, root.Find(RoleRun), 1)
	assert.Equal(t, color.RGB(0xff0000), run.Primitives[0].Color)
}

func TestBuildStrokeGlyph(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	g := font.Glyph{
		Kind: font.Stroke,
		Strokes: [][]vec.Vec2{
			{{X: 0, Y: 0}, {X: 0, Y: 1}},
			{{X: 0.5, Y: 0.5}},
		},
		Advance: 1,
	}
	b := &Builder{Colors: color.Context{ByLayer: 0x00ff00, ByBlock: 0x0000ff}}
	rs := style.ResolvedStyle{Height: 2, WidthFactor: 0.5, Oblique: 45, Color: color.ByBlock()}
	prims := b.Build(g, rs, vec.Vec2{X: 10, Y: 1})
	require.Len(t, prims, 2, "pen up separates polylines")
	assert.Equal(t, Lines, prims[0].Kind)
	assert.Equal(t, color.RGB(0x0000ff), prims[0].Color)
	assert.InDelta(t, 10.0, prims[0].Vertices[0], 1e-6)
	assert.InDelta(t, 1.0, prims[0].Vertices[1], 1e-6)
	assert.InDelta(t, 12.0, prims[0].Vertices[3], 1e-6, "slanted by 45°")
	assert.InDelta(t, 3.0, prims[0].Vertices[4], 1e-6)
	assert.Equal(t, 2, prims[1].VertexCount(), "dots become zero length segments")
	assert.InDelta(t, 11.5, prims[1].Vertices[0], 1e-6)
}

func TestBuildOutlineGlyph(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	g, ok := outline.Fallback().Glyph('H')
	require.True(t, ok)
	b := &Builder{Colors: color.DefaultContext(), Cache: &TriangleCache{}}
	rs := style.ResolvedStyle{Height: 1, WidthFactor: 1, Color: color.Index(1)}
	prims := b.Build(g, rs, vec.Vec2{})
	require.Len(t, prims, 1)
	p := prims[0]
	assert.Equal(t, Triangles, p.Kind)
	assert.Equal(t, color.RGB(0xff0000), p.Color)
	assert.NotEmpty(t, p.Indices)
	for _, ix := range p.Indices {
		assert.Less(t, int(ix), p.VertexCount())
	}
	box := p.Box()
	assert.InDelta(t, 1.0, box.Max.Y, 0.02, "capital height is one unit")
	again := b.Build(g, rs, vec.Vec2{X: 1})
	assert.Equal(t, p.Indices, again[0].Indices, "triangulation is cached")
}

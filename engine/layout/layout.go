package layout

import (
	"math"
	"strings"

	"github.com/npillmayer/mtext/core/color"
	"github.com/npillmayer/mtext/core/font"
	"github.com/npillmayer/mtext/core/font/fontregistry"
	params "github.com/npillmayer/mtext/core/parameters"
	"github.com/npillmayer/mtext/engine/geometry"
	"github.com/npillmayer/mtext/engine/mtext"
	"github.com/npillmayer/mtext/engine/style"
	"seehuhn.de/go/geom/vec"
)

// Engine lays out documents. Fonts are taken from a font store, which
// should have loaded every font a document refers to; absent fonts are
// substituted. An Engine is safe for concurrent use.
type Engine struct {
	store  *fontregistry.Store
	styles *style.Resolver
	cache  *geometry.TriangleCache
}

// NewEngine creates a layout engine. A nil resolver knows the Standard
// style only.
func NewEngine(store *fontregistry.Store, styles *style.Resolver) *Engine {
	if styles == nil {
		styles = style.NewResolver()
	}
	return &Engine{store: store, styles: styles, cache: &geometry.TriangleCache{}}
}

// typesetter holds the state of a single layout call.
type typesetter struct {
	*Engine
	doc         *mtext.Document
	regs        *params.TypesettingRegisters
	builder     *geometry.Builder
	lineSpacing float64 // factor of text height to line height
}

// Layout sets a document. Colors are resolved against the given color
// context. The box of the result is given in the coordinates of the root
// node, i.e. without the document's position and rotation.
func (e *Engine) Layout(doc *mtext.Document, colors color.Context) *geometry.Result {
	root := geometry.NewNode(geometry.RoleText)
	if doc == nil {
		return &geometry.Result{Root: root, Box: geometry.EmptyBox()}
	}
	root.Transform.Position = geometry.Vec3{X: doc.Position[0], Y: doc.Position[1], Z: doc.Position[2]}
	root.Transform.Rotation = geometry.RotationZ(doc.Rotation)
	if doc.Empty() {
		tracer().Debugf("empty document")
		return &geometry.Result{Root: root, Box: geometry.EmptyBox()}
	}
	ts := &typesetter{
		Engine:  e,
		doc:     doc,
		regs:    params.NewTypesettingRegisters(),
		builder: &geometry.Builder{Colors: colors, Cache: e.cache},
	}
	ts.lineSpacing = ts.regs.F(params.P_LINESPACING)
	if doc.LineSpacing > 0 {
		ts.lineSpacing *= doc.LineSpacing
	}
	var lines []line
	for p := range doc.Paragraphs {
		para := &doc.Paragraphs[p]
		shape := newParshape(doc.Width, para.MarginLeft, para.MarginRight, para.IndentFirstLine)
		for l, items := range breakLines(ts.measureParagraph(para), shape) {
			lines = append(lines, line{items: items, para: para, index: l,
				width: width(items), indent: shape.Indent(l)})
		}
	}
	tracer().Debugf("document set into %d lines", len(lines))
	ts.place(root, lines)
	box := geometry.EmptyBox()
	for _, ch := range root.Children {
		box = box.Union(ch.Bounds())
	}
	return &geometry.Result{Root: root, Box: box}
}

type line struct {
	items  []item
	para   *mtext.Paragraph
	index  int // within its paragraph
	width  float64
	indent float64
}

// place aligns lines and appends them to the root node.
func (ts *typesetter) place(root *geometry.Node, lines []line) {
	blockWidth := ts.doc.Width
	if blockWidth <= 0 { // align against the widest line
		for _, l := range lines {
			blockWidth = math.Max(blockWidth, l.para.MarginLeft+l.indent+l.width+l.para.MarginRight)
		}
	}
	base := ts.baseHeight()
	y, top := 0.0, true
	for _, l := range lines {
		h := base
		if len(l.items) > 0 {
			h = 0
			for _, it := range l.items {
				h = math.Max(h, it.height)
			}
		}
		if top {
			y, top = -h, false
		} else {
			y -= h * ts.lineSpacing
		}
		left := l.para.MarginLeft + l.indent
		avail := blockWidth - l.para.MarginLeft - l.para.MarginRight - l.indent
		x := left
		switch l.para.Alignment {
		case mtext.AlignCenter:
			x += (avail - l.width) / 2
		case mtext.AlignRight:
			x += avail - l.width
		}
		node := geometry.NewNode(geometry.RoleLine)
		node.Transform = geometry.Translation(x, y)
		ts.fillLine(node, l)
		root.Add(node)
	}
	blockHeight := -y
	fx, fy := ts.doc.Attachment.Fractions()
	dx, dy := -fx*blockWidth, (1-fy)*blockHeight
	if dx != 0 || dy != 0 {
		for _, ch := range root.Children {
			ch.Transform.Position.X += dx
			ch.Transform.Position.Y += dy
		}
	}
}

// fillLine creates run nodes for the items of a line. Consecutive glyphs
// of the same run share a run node.
func (ts *typesetter) fillLine(node *geometry.Node, l line) {
	x := 0.0
	for i := 0; i < len(l.items); {
		it := l.items[i]
		if it.kind == groupItem {
			it.group.Transform.Position.X = x
			node.Add(it.group)
			x += it.width
			i++
			continue
		}
		j := i + 1
		for j < len(l.items) && l.items[j].kind == glyphItem && l.items[j].run == it.run {
			j++
		}
		run, w := ts.runNode(&l.para.Runs[it.run], l.items[i:j])
		run.Transform = geometry.Translation(x, 0)
		node.Add(run)
		x += w
		i = j
	}
}

// baseHeight is the text height of the document's style.
func (ts *typesetter) baseHeight() float64 {
	return ts.resolve(&mtext.TextRun{}).Height
}

// resolve finds the style of a run. A document height applies to runs
// without a height of their own.
func (ts *typesetter) resolve(run *mtext.TextRun) style.ResolvedStyle {
	ov := style.RunOverrides(run)
	if ov.Height == nil && ts.doc.Height > 0 {
		h := ts.doc.Height
		ov.Height = &h
	}
	return ts.styles.ResolveIn(ts.regs, ts.doc.Style, ov)
}

// glyph looks up a character in the fonts of a style.
func (ts *typesetter) glyph(rs style.ResolvedStyle, r rune) font.Glyph {
	primary := ts.store.Resolve(rs.Font)
	var big *font.Record
	if rs.BigFont != "" {
		big, _ = ts.store.Lookup(rs.BigFont)
	}
	g, _ := ts.store.Glyph(primary, big, r)
	return g
}

// runNode sets glyph items side by side into a run node and decorates it.
// It returns the node and its advance width.
func (ts *typesetter) runNode(run *mtext.TextRun, items []item) (*geometry.Node, float64) {
	node := geometry.NewNode(geometry.RoleRun)
	if len(items) == 0 {
		return node, 0
	}
	rs := items[0].style
	node.Color = rs.Color
	var text strings.Builder
	x := 0.0
	for i := range items {
		text.WriteRune(items[i].r)
		node.Add(ts.glyphNode(&items[i], x, 0))
		x += items[i].width
	}
	node.Text = text.String()
	ts.decorate(node, run.Decorations, rs, x)
	return node, x
}

// glyphNode creates the node for a glyph, or nil for blanks.
func (ts *typesetter) glyphNode(it *item, x, y float64) *geometry.Node {
	if it.glyph.IsEmpty() {
		return nil
	}
	node := geometry.NewNode(geometry.RoleGlyph)
	node.Text = string(it.r)
	node.Transform = geometry.Translation(x, y)
	node.Color = it.style.Color
	node.Primitives = ts.builder.Build(it.glyph, it.style, vec.Vec2{})
	return node
}

// decorate adds decoration segments spanning the advance width w.
func (ts *typesetter) decorate(node *geometry.Node, deco mtext.Decoration, rs style.ResolvedStyle, w float64) {
	for _, d := range []struct {
		deco  mtext.Decoration
		param params.TypesettingParameter
	}{
		{mtext.Underline, params.P_UNDERLINE},
		{mtext.Overline, params.P_OVERLINE},
		{mtext.Strike, params.P_STRIKE},
	} {
		if deco.Has(d.deco) && w > 0 {
			y := ts.regs.F(d.param) * rs.Height
			node.Primitives = append(node.Primitives,
				ts.builder.Segment(vec.Vec2{Y: y}, vec.Vec2{X: w, Y: y}, rs.Color))
		}
	}
}

package layout

import (
	"math"

	params "github.com/npillmayer/mtext/core/parameters"
	"github.com/npillmayer/mtext/engine/geometry"
	"github.com/npillmayer/mtext/engine/mtext"
	"github.com/npillmayer/mtext/engine/style"
	"seehuhn.de/go/geom/vec"
)

// stack sets a stacked fraction. The result is a run node holding an
// optional whole number part followed by a stack node.
//
// Numerator and denominator are scaled by the stack scale factor. With a
// horizontal bar (or no divider) they are centered above and below the
// middle of the capital height. With a diagonal slash the numerator is
// raised to the capital height, the denominator sits on the baseline to
// the right, and the slash runs between them.
func (ts *typesetter) stack(run *mtext.TextRun, rs style.ResolvedStyle) (*geometry.Node, float64) {
	node := geometry.NewNode(geometry.RoleRun)
	node.Color = rs.Color
	whole, num, denom := run.Stack.Fraction()
	x := 0.0
	if whole != "" {
		part, w := ts.part(run, rs, whole, 0, 0)
		node.Add(part...)
		x += w + ts.regs.F(params.P_STACKGAP)*rs.Height
	}
	small := rs.Scaled(ts.regs.F(params.P_STACKSCALE))
	h, hs := rs.Height, small.Height
	gap := ts.regs.F(params.P_STACKGAP) * hs
	numW, denomW := ts.partWidth(run, small, num), ts.partWidth(run, small, denom)
	frac := geometry.NewNode(geometry.RoleStack)
	frac.Text = num + string(run.Stack.Divider) + denom
	frac.Color = rs.Color
	frac.Transform = geometry.Translation(x, 0)
	var w float64
	switch run.Stack.Divider {
	case mtext.DividerSlash:
		slant := 0.4 * hs
		parts, _ := ts.part(run, small, num, 0, h-hs)
		frac.Add(parts...)
		parts, _ = ts.part(run, small, denom, numW+slant, 0)
		frac.Add(parts...)
		frac.Primitives = append(frac.Primitives,
			ts.builder.Segment(vec.Vec2{X: numW}, vec.Vec2{X: numW + slant, Y: h}, rs.Color))
		w = numW + slant + denomW
	default:
		w = math.Max(numW, denomW)
		mid := h / 2
		parts, _ := ts.part(run, small, num, (w-numW)/2, mid+gap)
		frac.Add(parts...)
		parts, _ = ts.part(run, small, denom, (w-denomW)/2, mid-gap-hs)
		frac.Add(parts...)
		if run.Stack.Divider == mtext.DividerBar {
			frac.Primitives = append(frac.Primitives,
				ts.builder.Segment(vec.Vec2{Y: mid}, vec.Vec2{X: w, Y: mid}, rs.Color))
		}
	}
	node.Add(frac)
	x += w
	node.Text = whole + frac.Text
	ts.decorate(node, run.Decorations, rs, x)
	return node, x
}

// part sets a part of a stack as glyph nodes, starting at (x, y).
func (ts *typesetter) part(run *mtext.TextRun, rs style.ResolvedStyle, text string, x, y float64) ([]*geometry.Node, float64) {
	var nodes []*geometry.Node
	start := x
	for _, it := range ts.measureText(0, run, rs, text) {
		if n := ts.glyphNode(&it, x, y); n != nil {
			nodes = append(nodes, n)
		}
		x += it.width
	}
	return nodes, x - start
}

func (ts *typesetter) partWidth(run *mtext.TextRun, rs style.ResolvedStyle, text string) float64 {
	return width(ts.measureText(0, run, rs, text))
}

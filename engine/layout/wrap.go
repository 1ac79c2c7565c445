package layout

// ParShape is a type to return the line length and the indentation for a
// given line number within a paragraph. A line length <= 0 means lines
// are not wrapped.
type ParShape interface {
	LineLength(int) float64
	Indent(int) float64
}

// rectParshape is the shape of a paragraph with margins and a first line
// indent.
type rectParshape struct {
	width       float64 // available width between the margins
	indentFirst float64
}

func newParshape(wrapWidth, marginLeft, marginRight, indentFirst float64) rectParshape {
	if wrapWidth <= 0 {
		return rectParshape{indentFirst: indentFirst}
	}
	return rectParshape{width: wrapWidth - marginLeft - marginRight, indentFirst: indentFirst}
}

// LineLength is part of interface ParShape.
func (ps rectParshape) LineLength(l int) float64 {
	if ps.width <= 0 {
		return 0
	}
	w := ps.width - ps.Indent(l)
	if w <= 0 {
		w = minLineLength
	}
	return w
}

// Indent is part of interface ParShape.
func (ps rectParshape) Indent(l int) float64 {
	if l == 0 {
		return ps.indentFirst
	}
	return 0
}

// minLineLength keeps margins wider than the wrap width from turning off
// wrapping.
const minLineLength = 1e-9

const slack = 1e-9

// breakLines fills lines first-fit. Lines end at forced breaks, or before an
// item which would overflow the line. The line is then broken at the last
// break opportunity; if there is none (a single word exceeds the line),
// the break happens right before the overflowing item. Atomic groups are
// single items and therefore never split; they overflow lines shorter
// than themselves.
//
// Whitespace is removed at the end of every line and at the start of
// wrapped lines.
func breakLines(items []item, shape ParShape) [][]item {
	var lines [][]item
	var cur []item
	lastBreak := -1 // position within cur after which a break is allowed
	wrapped := false
	finish := func() {
		lines = append(lines, trimTrailingSpace(cur))
		cur, lastBreak = nil, -1
	}
	for _, it := range items {
		if it.kind == breakItem {
			finish()
			wrapped = false
			continue
		}
		avail := shape.LineLength(len(lines))
		for avail > 0 && !it.space && len(cur) > 0 && width(cur)+it.width > avail+slack {
			tracer().Debugf("line %d overflows with %q", len(lines), it.r)
			if lastBreak >= 0 {
				carry := append([]item(nil), cur[lastBreak+1:]...)
				cur = cur[:lastBreak+1]
				finish()
				cur = trimLeadingSpace(carry)
			} else {
				finish()
			}
			wrapped = true
			avail = shape.LineLength(len(lines))
		}
		if wrapped && len(cur) == 0 && it.space {
			continue
		}
		cur = append(cur, it)
		if it.breakAfter {
			lastBreak = len(cur) - 1
		}
	}
	finish()
	return lines
}

func trimTrailingSpace(items []item) []item {
	for len(items) > 0 && items[len(items)-1].space {
		items = items[:len(items)-1]
	}
	return items
}

func trimLeadingSpace(items []item) []item {
	for len(items) > 0 && items[0].space {
		items = items[1:]
	}
	return items
}

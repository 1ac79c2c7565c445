package layout

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/mtext/core/font"
	params "github.com/npillmayer/mtext/core/parameters"
	"github.com/npillmayer/mtext/engine/geometry"
	"github.com/npillmayer/mtext/engine/mtext"
	"github.com/npillmayer/mtext/engine/style"
	"github.com/npillmayer/uax"
	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax14"
	"golang.org/x/text/unicode/norm"
)

type itemKind int8

const (
	glyphItem itemKind = iota // a single character
	groupItem                 // an atomic, pre-built group
	breakItem                 // a forced line break
)

// item is the unit of line filling.
type item struct {
	kind       itemKind
	run        int // index of the run within its paragraph
	r          rune
	glyph      font.Glyph
	style      style.ResolvedStyle
	width      float64
	height     float64 // text height the item contributes to its line
	space      bool
	breakAfter bool
	group      *geometry.Node
}

// measureParagraph turns the runs of a paragraph into items.
func (ts *typesetter) measureParagraph(para *mtext.Paragraph) []item {
	var items []item
	for i := range para.Runs {
		run := &para.Runs[i]
		if para.BreaksBefore(i) {
			items = append(items, item{kind: breakItem, run: i})
		}
		rs := ts.resolve(run)
		if run.Stack != nil {
			node, w := ts.stack(run, rs)
			items = append(items, item{kind: groupItem, run: i, style: rs, width: w,
				height: rs.Height, breakAfter: true, group: node})
			continue
		}
		text := norm.NFC.String(run.Text)
		for k, chunk := range strings.Split(text, "\n") {
			if k > 0 {
				items = append(items, item{kind: breakItem, run: i})
			}
			if chunk == "" {
				continue
			}
			if run.Shift != mtext.NoShift {
				items = append(items, ts.script(i, run, rs, chunk))
				continue
			}
			items = append(items, ts.measureText(i, run, rs, chunk)...)
		}
	}
	markBreaks(items)
	return items
}

// markBreaks sets the break opportunities of glyph items. Consecutive
// glyphs are segmented as a whole, regardless of run boundaries, so a
// change of formatting within a word does not allow a break.
func markBreaks(items []item) {
	start := 0
	for start < len(items) {
		if items[start].kind != glyphItem {
			start++
			continue
		}
		end := start
		var b strings.Builder
		for end < len(items) && items[end].kind == glyphItem {
			b.WriteRune(items[end].r)
			end++
		}
		brk := breakOpportunities(b.String(), end-start)
		for k := start; k < end; k++ {
			items[k].breakAfter = brk[k-start]
		}
		start = end
	}
}

// measureText creates glyph items for a chunk of text without newlines.
// Break opportunities are left to markBreaks.
func (ts *typesetter) measureText(i int, run *mtext.TextRun, rs style.ResolvedStyle, text string) []item {
	runes := []rune(text)
	items := make([]item, len(runes))
	for k, r := range runes {
		g := ts.glyph(rs, r)
		items[k] = item{
			kind:   glyphItem,
			run:    i,
			r:      r,
			glyph:  g,
			style:  rs,
			width:  run.Spacing.Apply(g.Advance*rs.Height*rs.WidthFactor, rs.Height),
			height: rs.Height,
			space:  font.IsBlank(r),
		}
	}
	return items
}

// breakOpportunities finds the positions after which a line may be broken.
// The end of text is always a break opportunity, as text is followed by a
// forced break or an atomic group.
func breakOpportunities(text string, n int) []bool {
	brk := make([]bool, n)
	if n == 0 {
		return brk
	}
	seg := segment.NewSegmenter(uax14.NewLineWrap())
	seg.Init(strings.NewReader(text))
	pos := 0
	for seg.Next() {
		pos += utf8.RuneCountInString(seg.Text())
		if p1, _ := seg.Penalties(); p1 < uax.InfinitePenalty && pos > 0 && pos <= n {
			brk[pos-1] = true
		}
	}
	runes := []rune(text)
	for k := 0; k+1 < n; k++ { // break after spaces
		if unicode.IsSpace(runes[k]) && !unicode.IsSpace(runes[k+1]) {
			brk[k] = true
		}
	}
	brk[n-1] = true
	return brk
}

// script sets a superscript or subscript as an atomic group.
func (ts *typesetter) script(i int, run *mtext.TextRun, rs style.ResolvedStyle, text string) item {
	small := rs.Scaled(ts.regs.F(params.P_SCRIPTSCALE))
	glyphs := ts.measureText(i, run, small, text)
	node, w := ts.runNode(run, glyphs)
	shift := ts.regs.F(params.P_SUPERSHIFT)
	if run.Shift == mtext.Subscript {
		shift = ts.regs.F(params.P_SUBSHIFT)
	}
	node.Transform = geometry.Translation(0, shift*rs.Height*ts.lineSpacing)
	return item{kind: groupItem, run: i, style: rs, width: w, height: rs.Height,
		breakAfter: true, group: node}
}

func width(items []item) float64 {
	w := 0.0
	for i := range items {
		w += items[i].width
	}
	return w
}

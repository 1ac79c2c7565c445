/*
Package mtext defines the document model of CAD rich text.

A Document is the product of an external markup tokenizer: paragraphs made
of text runs, each run carrying its own formatting directives. The model is
read-only input to layout. All types serialize to JSON, which is how they
travel to a delegated worker.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package mtext

import (
	"fmt"
	"strings"

	"github.com/npillmayer/mtext/core/color"
)

// Document is a block of rich text.
type Document struct {
	Paragraphs  []Paragraph `json:"paragraphs"`
	Style       string      `json:"style,omitempty"`       // name of a text style
	Height      float64     `json:"height,omitempty"`      // text height, 0 for the style's height
	Width       float64     `json:"width,omitempty"`       // wrap width, <= 0 for no wrapping
	LineSpacing float64     `json:"lineSpacing,omitempty"` // factor on the default line spacing, 0 = 1
	Position    [3]float64  `json:"position"`              // insertion point
	Rotation    float64     `json:"rotation,omitempty"`    // around the z axis, in radians
	Attachment  Attachment  `json:"attachment,omitempty"`  // reference point of the insertion point
}

// Empty is true if the document does not contain a single character.
func (doc *Document) Empty() bool {
	if doc == nil {
		return true
	}
	for _, p := range doc.Paragraphs {
		for _, r := range p.Runs {
			if r.Text != "" || r.Stack != nil {
				return false
			}
		}
	}
	return true
}

// Attachment is one of the nine reference points of a text block.
type Attachment int

// Attachment points. Zero means TopLeft.
const (
	TopLeft Attachment = iota + 1
	TopCenter
	TopRight
	MiddleLeft
	MiddleCenter
	MiddleRight
	BottomLeft
	BottomCenter
	BottomRight
)

// Fractions returns the horizontal and vertical position of the attachment
// point within a block, from 0 (left/bottom) to 1 (right/top).
func (a Attachment) Fractions() (fx, fy float64) {
	if a < TopLeft || a > BottomRight {
		a = TopLeft
	}
	col, row := int(a-1)%3, int(a-1)/3
	return float64(col) / 2, 1 - float64(row)/2
}

// Alignment is the horizontal alignment of paragraph lines.
type Alignment int

// Alignments
const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return "left"
}

// Paragraph is a sequence of text runs.
type Paragraph struct {
	Runs            []TextRun `json:"runs"`
	Alignment       Alignment `json:"alignment,omitempty"`
	IndentFirstLine float64   `json:"indentFirstLine,omitempty"`
	MarginLeft      float64   `json:"marginLeft,omitempty"`
	MarginRight     float64   `json:"marginRight,omitempty"`
	LineBreaks      []int     `json:"lineBreaks,omitempty"` // indices of runs starting a new line
}

// BreaksBefore is true if run i has to start a new line.
func (p *Paragraph) BreaksBefore(i int) bool {
	for _, b := range p.LineBreaks {
		if b == i && i > 0 {
			return true
		}
	}
	return false
}

// Decoration is a set of line decorations.
type Decoration uint8

// Decorations
const (
	Underline Decoration = 1 << iota
	Overline
	Strike
)

// Has is true if every decoration of d2 is set in d.
func (d Decoration) Has(d2 Decoration) bool {
	return d2 != 0 && d&d2 == d2
}

func (d Decoration) String() string {
	var s []string
	for _, x := range []struct {
		d    Decoration
		name string
	}{{Underline, "underline"}, {Overline, "overline"}, {Strike, "strike"}} {
		if d.Has(x.d) {
			s = append(s, x.name)
		}
	}
	return "{" + strings.Join(s, ",") + "}"
}

// Shift is a vertical baseline shift.
type Shift int

// Shifts
const (
	NoShift Shift = iota
	Superscript
	Subscript
)

// SpacingMode tells how character spacing applies.
type SpacingMode int

// Absolute spacing adds a fixed gap (in units of text height) between
// characters; relative spacing multiplies advances by 1+value.
const (
	Relative SpacingMode = iota
	Absolute
)

// Spacing is a character spacing directive. The zero value leaves advances
// untouched.
type Spacing struct {
	Mode  SpacingMode `json:"mode,omitempty"`
	Value float64     `json:"value,omitempty"`
}

// Apply spaces an advance of a glyph of a given height.
func (sp Spacing) Apply(advance, height float64) float64 {
	if sp.Mode == Absolute {
		return advance + sp.Value*height
	}
	return advance * (1 + sp.Value)
}

// Format holds optional inline overrides of a run's text style.
// Nil fields and empty names keep the style's values.
type Format struct {
	Font        string   `json:"font,omitempty"`
	BigFont     string   `json:"bigFont,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	WidthFactor *float64 `json:"widthFactor,omitempty"`
	Oblique     *float64 `json:"oblique,omitempty"` // in degrees
}

// Float is a helper for setting optional format values.
func Float(f float64) *float64 {
	return &f
}

// Color is a helper for setting the optional color of a text run.
func Color(ref color.Ref) *color.Ref {
	return &ref
}

// Divider is the visual separator of a stacked fraction.
type Divider rune

// Divider styles, named after the markup characters producing them.
const (
	DividerSlash Divider = '#' // diagonal slash
	DividerBar   Divider = '/' // horizontal bar
	DividerNone  Divider = '^' // no visible divider
)

// Stack is a stacked fraction. It has two parts (numerator, denominator) or
// three parts, where the first one is a leading whole number set at full
// scale.
type Stack struct {
	Parts   []string `json:"parts"`
	Divider Divider  `json:"divider"`
}

// Fraction returns the whole number part (may be empty), numerator and
// denominator of a stack.
func (st *Stack) Fraction() (whole, num, denom string) {
	switch len(st.Parts) {
	case 0:
	case 1:
		num = st.Parts[0]
	case 2:
		num, denom = st.Parts[0], st.Parts[1]
	default:
		whole, num, denom = st.Parts[0], st.Parts[1], st.Parts[2]
	}
	return
}

// TextRun is a stretch of text with uniform formatting. A run carrying a
// Stack is a stacked fraction and has no text of its own. A nil Color
// leaves the color to the text style; ByLayer is a color of its own.
type TextRun struct {
	Text        string     `json:"text,omitempty"`
	Color       *color.Ref `json:"color,omitempty"`
	Format      Format     `json:"format"`
	Decorations Decoration `json:"decorations,omitempty"`
	Shift       Shift      `json:"shift,omitempty"`
	Spacing     Spacing    `json:"spacing"`
	Stack       *Stack     `json:"stack,omitempty"`
}

func (r TextRun) String() string {
	if r.Stack != nil {
		return fmt.Sprintf("run[stack %q %c]", r.Stack.Parts, r.Stack.Divider)
	}
	return fmt.Sprintf("run[%q]", r.Text)
}

// Atomic is true for runs which must not be split by line wrapping.
func (r *TextRun) Atomic() bool {
	return r.Stack != nil || r.Shift != NoShift
}

// Plain creates a document with a single paragraph containing a single run
// of text in the default format.
func Plain(text string) *Document {
	return &Document{
		Paragraphs: []Paragraph{{Runs: []TextRun{{Text: text}}}},
	}
}

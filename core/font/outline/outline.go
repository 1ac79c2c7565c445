/*
Package outline decodes TrueType and OpenType fonts into outline glyphs.

Font files are parsed with golang.org/x/image/font/sfnt. Glyph outlines are
loaded on demand, their curves flattened into polygons and the y-axis
flipped to point upwards. Coordinates stay in font design units; the em
reference is the font's capital height where the font provides one.

A built-in fallback font (Go Sans) is always available.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package outline

import (
	"sync"

	"github.com/npillmayer/mtext/core"
	"github.com/npillmayer/mtext/core/font"
	"github.com/npillmayer/schuko/tracing"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/vec"
)

// tracer traces with key 'mtext.font'.
func tracer() tracing.Trace {
	return tracing.Select("mtext.font")
}

// FallbackName is the name of the built-in fallback font.
const FallbackName = "gosans"

// Face is a parsed outline font. It implements font.Glyphs and is safe for
// concurrent use.
type Face struct {
	sfnt    *sfnt.Font
	upem    fixed.Int26_6 // ppem at which one pixel is one design unit
	units   float64       // em reference in design units
	flat    float64       // flattening tolerance in design units
	buffers sync.Pool
}

var _ font.Glyphs = (*Face)(nil)

// Parse decodes TrueType or OpenType font data into a font record.
// Malformed data results in an error with code core.EFONTDECODE.
func Parse(name string, data []byte) (*font.Record, error) {
	face, err := NewFace(data)
	if err != nil {
		return nil, core.WrapError(err, core.EFONTDECODE, "cannot decode outline font %s", name)
	}
	tracer().Infof("decoded outline font %s with %d glyphs", name, face.sfnt.NumGlyphs())
	return font.NewRecord(name, font.Outline, face), nil
}

// NewFace parses font data.
func NewFace(data []byte) (*Face, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	face := &Face{sfnt: f}
	face.buffers.New = func() interface{} { return &sfnt.Buffer{} }
	upem := float64(f.UnitsPerEm())
	face.upem = fixed.I(int(f.UnitsPerEm()))
	face.units = upem
	buf := face.buffer()
	defer face.release(buf)
	if m, err := f.Metrics(buf, face.upem, xfont.HintingNone); err == nil && m.CapHeight > 0 {
		face.units = float64(m.CapHeight) / 64
	}
	face.flat = upem / 1000
	return face, nil
}

func (face *Face) buffer() *sfnt.Buffer {
	return face.buffers.Get().(*sfnt.Buffer)
}

func (face *Face) release(buf *sfnt.Buffer) {
	face.buffers.Put(buf)
}

// Name returns the full name of the font, if present.
func (face *Face) Name() string {
	buf := face.buffer()
	defer face.release(buf)
	name, err := face.sfnt.Name(buf, sfnt.NameIDFull)
	if err != nil {
		return ""
	}
	return name
}

// UnitsPerEm returns the em reference in design units.
func (face *Face) UnitsPerEm() float64 {
	return face.units
}

// Glyph loads and flattens the outline of r.
func (face *Face) Glyph(r rune) (font.Glyph, bool) {
	buf := face.buffer()
	defer face.release(buf)
	x, err := face.sfnt.GlyphIndex(buf, r)
	if err != nil || x == 0 {
		return font.Glyph{}, false
	}
	segs, err := face.sfnt.LoadGlyph(buf, x, face.upem, nil)
	if err != nil {
		tracer().Errorf("cannot load glyph %q: %v", r, err)
		return font.Glyph{}, false
	}
	adv, err := face.sfnt.GlyphAdvance(buf, x, face.upem, xfont.HintingNone)
	if err != nil {
		tracer().Errorf("cannot load advance of glyph %q: %v", r, err)
		return font.Glyph{}, false
	}
	return font.Glyph{
		Kind:     font.Outline,
		Contours: face.contours(segs),
		Advance:  float64(adv) / 64,
	}, true
}

// Runes lists the characters of the Basic Multilingual Plane the font has
// glyphs for.
func (face *Face) Runes() []rune {
	buf := face.buffer()
	defer face.release(buf)
	var runes []rune
	for r := rune(0x20); r <= 0xffff; r++ {
		if r >= 0xd800 && r <= 0xdfff {
			continue
		}
		if x, err := face.sfnt.GlyphIndex(buf, r); err == nil && x != 0 {
			runes = append(runes, r)
		}
	}
	return runes
}

// contours converts sfnt segments into closed polygons, flipping the y-axis.
func (face *Face) contours(segs sfnt.Segments) [][]vec.Vec2 {
	var all [][]vec.Vec2
	var cur []vec.Vec2
	pt := func(p fixed.Point26_6) vec.Vec2 {
		return vec.Vec2{X: float64(p.X) / 64, Y: -float64(p.Y) / 64}
	}
	closeContour := func() {
		if n := len(cur); n > 1 && cur[0] == cur[n-1] {
			cur = cur[:n-1]
		}
		if len(cur) > 2 {
			all = append(all, cur)
		}
		cur = nil
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			closeContour()
			cur = append(cur, pt(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			cur = append(cur, pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			if len(cur) == 0 {
				continue
			}
			p0 := cur[len(cur)-1]
			q := flattenQuadratic(p0, pt(seg.Args[0]), pt(seg.Args[1]), face.flat, 0)
			cur = append(cur, q[1:]...)
		case sfnt.SegmentOpCubeTo:
			if len(cur) == 0 {
				continue
			}
			p0 := cur[len(cur)-1]
			c := flattenCubic(p0, pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2]), face.flat, 0)
			cur = append(cur, c[1:]...)
		}
	}
	closeContour()
	return all
}

// --- Fallback font ---------------------------------------------------------

var fallbackLoading sync.Once

var fallback *font.Record

// Fallback returns a font to be used if everything else fails. It is
// always present. Currently we use Go Sans.
func Fallback() *font.Record {
	fallbackLoading.Do(func() {
		var err error
		fallback, err = Parse(FallbackName, goregular.TTF)
		if err != nil {
			panic("cannot load fallback font") // this cannot happen
		}
	})
	return fallback
}

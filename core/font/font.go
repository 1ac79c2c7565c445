package font

import (
	"bytes"
	"path"
	"strings"
	"sync"
	"unicode"

	"seehuhn.de/go/geom/vec"
)

// Kind is the kind of a font, either stroke or outline.
type Kind uint8

// Font kinds
const (
	Stroke Kind = iota
	Outline
)

func (k Kind) String() string {
	switch k {
	case Stroke:
		return "shx"
	case Outline:
		return "mesh"
	}
	return "unknown"
}

// Glyph is the outline of a single character.
//
// For stroke fonts, Strokes holds one polyline per pen-down sequence. For
// outline fonts, Contours holds closed contours (the last point is not
// repeated). Advance is the horizontal distance to the next glyph.
type Glyph struct {
	Kind     Kind
	Strokes  [][]vec.Vec2
	Contours [][]vec.Vec2
	Advance  float64
}

// IsEmpty is true for glyphs without any visible ink, e.g. a space.
func (g Glyph) IsEmpty() bool {
	return len(g.Strokes) == 0 && len(g.Contours) == 0
}

// Scaled returns a copy of g with every coordinate multiplied by s.
func (g Glyph) Scaled(s float64) Glyph {
	scaled := Glyph{Kind: g.Kind, Advance: g.Advance * s}
	scaled.Strokes = scalePaths(g.Strokes, s)
	scaled.Contours = scalePaths(g.Contours, s)
	return scaled
}

func scalePaths(paths [][]vec.Vec2, s float64) [][]vec.Vec2 {
	if paths == nil {
		return nil
	}
	r := make([][]vec.Vec2, len(paths))
	for i, p := range paths {
		q := make([]vec.Vec2, len(p))
		for j, pt := range p {
			q[j] = vec.Vec2{X: pt.X * s, Y: pt.Y * s}
		}
		r[i] = q
	}
	return r
}

// Glyphs is implemented by font decoders. Coordinates are in design units.
type Glyphs interface {
	Glyph(r rune) (Glyph, bool)
	UnitsPerEm() float64
	Runes() []rune
}

// Record is a loaded font. It is immutable once loaded and may be shared
// between goroutines.
type Record struct {
	Name   string // normalized font name
	Kind   Kind
	Glyphs Glyphs
	cache  sync.Map // rune -> normalized glyph entry
}

type cached struct {
	glyph Glyph
	ok    bool
}

// NewRecord wraps decoded glyphs into a font record.
func NewRecord(name string, kind Kind, glyphs Glyphs) *Record {
	return &Record{Name: NormalizeName(name), Kind: kind, Glyphs: glyphs}
}

// Glyph returns the glyph for r, normalized to a unit em height.
// If the font does not contain r, ok is false.
func (rec *Record) Glyph(r rune) (Glyph, bool) {
	if rec == nil || rec.Glyphs == nil {
		return Glyph{}, false
	}
	if c, found := rec.cache.Load(r); found {
		return c.(cached).glyph, c.(cached).ok
	}
	g, ok := rec.Glyphs.Glyph(r)
	if !ok {
		tracer().Debugf("font %s has no glyph for %q", rec.Name, r)
	} else {
		if upem := rec.Glyphs.UnitsPerEm(); upem > 0 {
			g = g.Scaled(1 / upem)
		}
	}
	rec.cache.Store(r, cached{glyph: g, ok: ok})
	return g, ok
}

// Contains is true if the font has a glyph for r.
func (rec *Record) Contains(r rune) bool {
	_, ok := rec.Glyph(r)
	return ok
}

func (rec *Record) String() string {
	if rec == nil {
		return "<no font>"
	}
	return rec.Name + "(" + rec.Kind.String() + ")"
}

// NormalizeName turns a font name or font file name into the key fonts are
// stored with: no directories, no extension, lowercase, no spaces.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	if dot := strings.LastIndex(name, "."); dot > 0 {
		name = name[:dot]
	}
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}

// --- Blanks and missing glyphs ---------------------------------------------

// blankAdvance is the advance of whitespace in fonts without a space glyph.
const blankAdvance = 0.5

// IsBlank is true for runes rendered without ink.
func IsBlank(r rune) bool {
	return unicode.IsSpace(r)
}

// Blank returns an empty glyph for whitespace r. If the font has a glyph for
// r (or a space glyph), its advance is kept.
func Blank(rec *Record, r rune) Glyph {
	kind := Stroke
	if rec != nil {
		kind = rec.Kind
		if g, ok := rec.Glyph(r); ok {
			return Glyph{Kind: kind, Advance: g.Advance}
		}
		if g, ok := rec.Glyph(' '); ok {
			return Glyph{Kind: kind, Advance: g.Advance}
		}
	}
	return Glyph{Kind: kind, Advance: blankAdvance}
}

// MissingGlyph returns the box outline substituted for characters which no
// font can provide. It is a stroke glyph in unit em coordinates.
func MissingGlyph() Glyph {
	box := []vec.Vec2{
		{X: 0.1, Y: 0}, {X: 0.6, Y: 0}, {X: 0.6, Y: 0.8}, {X: 0.1, Y: 0.8}, {X: 0.1, Y: 0},
	}
	return Glyph{Kind: Stroke, Strokes: [][]vec.Vec2{box}, Advance: 0.7}
}

// MapGlyphs is a simple glyph table, used by decoders which decode all
// glyphs eagerly.
type MapGlyphs struct {
	Table map[rune]Glyph
	Units float64
}

var _ Glyphs = (*MapGlyphs)(nil)

// Glyph returns the glyph for r in design units.
func (m *MapGlyphs) Glyph(r rune) (Glyph, bool) {
	g, ok := m.Table[r]
	return g, ok
}

// UnitsPerEm returns the em size in design units.
func (m *MapGlyphs) UnitsPerEm() float64 {
	return m.Units
}

// Runes lists all characters of the table in no particular order.
func (m *MapGlyphs) Runes() []rune {
	runes := make([]rune, 0, len(m.Table))
	for r := range m.Table {
		runes = append(runes, r)
	}
	return runes
}

// KindOf guesses the kind of a font from its file name and, if given, from
// its leading bytes.
func KindOf(filename string, data []byte) Kind {
	if bytes.HasPrefix(data, []byte("AutoCAD-86")) {
		return Stroke
	}
	if len(data) > 0 {
		return Outline
	}
	switch strings.ToLower(path.Ext(strings.ReplaceAll(filename, "\\", "/"))) {
	case ".ttf", ".otf", ".ttc":
		return Outline
	}
	return Stroke
}

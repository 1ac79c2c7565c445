package font

import (
	"testing"

	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"seehuhn.de/go/geom/vec"
)

func TestNormalizeName(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	for in, out := range map[string]string{
		"SimKai":              "simkai",
		" simkai.shx ":        "simkai",
		"fonts/HZTXT.SHX":     "hztxt",
		`C:\fonts\Arial.ttf`:  "arial",
		"Go Sans Regular.ttf": "go_sans_regular",
		".hidden":             ".hidden",
		"":                    "",
	} {
		assert.Equal(t, out, NormalizeName(in), "normalizing %q", in)
	}
}

func TestRecordNormalizesToUnitEm(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	glyphs := &MapGlyphs{
		Units: 10,
		Table: map[rune]Glyph{
			'I': {
				Kind:    Stroke,
				Strokes: [][]vec.Vec2{{{X: 2, Y: 0}, {X: 2, Y: 10}}},
				Advance: 6,
			},
		},
	}
	rec := NewRecord("Test.shx", Stroke, glyphs)
	assert.Equal(t, "test", rec.Name)
	g, ok := rec.Glyph('I')
	assert.True(t, ok)
	assert.InDelta(t, 0.6, g.Advance, 1e-9)
	assert.InDelta(t, 1.0, g.Strokes[0][1].Y, 1e-9)
	// the decoder's table is not touched
	assert.Equal(t, 10.0, glyphs.Table['I'].Strokes[0][1].Y)
	// memoized lookups return the same glyph
	g2, _ := rec.Glyph('I')
	assert.Equal(t, g, g2)
	_, ok = rec.Glyph('X')
	assert.False(t, ok)
	assert.False(t, rec.Contains('X'))
}

func TestBlankAndMissing(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	assert.True(t, IsBlank(' '))
	assert.True(t, IsBlank('\u3000'))
	assert.False(t, IsBlank('a'))
	b := Blank(nil, ' ')
	assert.True(t, b.IsEmpty())
	assert.Equal(t, blankAdvance, b.Advance)
	rec := NewRecord("t", Outline, &MapGlyphs{Units: 2, Table: map[rune]Glyph{
		' ': {Kind: Outline, Advance: 1},
	}})
	b = Blank(rec, '\t')
	assert.Equal(t, Outline, b.Kind)
	assert.InDelta(t, 0.5, b.Advance, 1e-9)
	m := MissingGlyph()
	assert.False(t, m.IsEmpty())
	assert.Len(t, m.Strokes, 1)
	assert.Equal(t, m.Strokes[0][0], m.Strokes[0][len(m.Strokes[0])-1], "box is closed")
}

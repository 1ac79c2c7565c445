package pipeline

import (
	"context"
	"testing"

	"github.com/npillmayer/mtext/core/color"
	"github.com/npillmayer/mtext/core/font/fontregistry"
	"github.com/npillmayer/mtext/core/font/shx/shxtest"
	"github.com/npillmayer/mtext/core/locate/resources"
	"github.com/npillmayer/mtext/engine/geometry"
	"github.com/npillmayer/mtext/engine/mtext"
	"github.com/npillmayer/mtext/engine/style"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPipeline() *Pipeline {
	src := resources.NewMemorySource().
		Add("simkai.shx", shxtest.Bars("SIMKAI", "Helo")).
		Add("txt.shx", shxtest.Bars("TXT", "Helo")).
		Add("broken.shx", []byte("AutoCAD-86 shapes 1.0\r\n\x1a\x00"))
	return New(Config{Source: src})
}

func TestLoadFontsIsIdempotent(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	p := testPipeline()
	ctx := context.Background()
	assert.Equal(t, []string{"simkai"}, p.LoadFonts(ctx, []string{"simkai", "missing", "broken"}))
	before := p.Store.Loaded()
	assert.Equal(t, []string{"simkai"}, p.LoadFonts(ctx, []string{"SimKai.shx"}))
	assert.Equal(t, before, p.Store.Loaded())
}

func TestListFonts(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	p := testPipeline()
	p.LoadFonts(context.Background(), []string{"txt"})
	list, err := p.ListFonts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []fontregistry.Descriptor{
		{Name: "broken", Type: "shx"},
		{Name: "simkai", Type: "shx"},
		{Name: "txt", Type: "shx", Loaded: true},
	}, list)
}

func TestRenderWithTextStyle(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	p := New(Config{
		Source:      resources.NewMemorySource().Add("txt.shx", shxtest.Bars("TXT", "Helo")),
		DefaultFont: "txt",
	})
	p.LoadFonts(context.Background(), []string{"txt"})
	doc := mtext.Plain("Hello")
	res := p.Render(doc, &style.TextStyle{Name: "big", Height: 2.5, WidthFactor: 1}, color.DefaultContext())
	assert.Equal(t, "", doc.Style, "caller's document is left alone")
	glyphs := res.Root.Find(geometry.RoleGlyph)
	require.Len(t, glyphs, 5, "absent default font falls back to configured one")
	assert.InDelta(t, 10.0, glyphs[4].Transform.Position.X, 1e-9)
	st, ok := p.Styles.Style("BIG")
	assert.True(t, ok)
	assert.Equal(t, 2.5, st.Height)
	assert.True(t, p.Render(nil, nil, color.DefaultContext()).Box.IsEmpty())
}

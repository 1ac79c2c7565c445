package style

import (
	"testing"

	"github.com/npillmayer/mtext/core/color"
	params "github.com/npillmayer/mtext/core/parameters"
	"github.com/npillmayer/mtext/engine/mtext"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
)

func TestResolveStandard(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	r := NewResolver()
	rs := r.Resolve("", Overrides{})
	assert.Equal(t, ResolvedStyle{Height: 1, WidthFactor: 1, Color: color.ByLayer()}, rs)
	assert.Equal(t, rs, r.Resolve("no such style", Overrides{}), "unknown style falls back to Standard")
}

func TestOverridesWin(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	r := NewResolver(TextStyle{
		Name:        "Notes",
		Font:        "romans",
		BigFont:     "hztxt",
		Height:      2.5,
		WidthFactor: 0.8,
		Oblique:     15,
		Color:       color.Index(3),
	})
	rs := r.Resolve("NOTES", Overrides{})
	assert.Equal(t, "romans", rs.Font)
	assert.Equal(t, "hztxt", rs.BigFont)
	assert.Equal(t, 2.5, rs.Height)
	assert.Equal(t, 15.0, rs.Oblique)
	//
	red := color.Index(1)
	rs = r.Resolve("Notes", Overrides{
		Format: mtext.Format{
			Font:        "does-not-exist",
			WidthFactor: mtext.Float(1.2),
			Oblique:     mtext.Float(0),
		},
		Color: &red,
	})
	assert.Equal(t, "does-not-exist", rs.Font, "unresolvable fonts pass through")
	assert.Equal(t, "hztxt", rs.BigFont)
	assert.Equal(t, 1.2, rs.WidthFactor)
	assert.Equal(t, 0.0, rs.Oblique)
	assert.Equal(t, red, rs.Color)
	assert.Equal(t, 2.5, rs.Height)
	//
	run := mtext.TextRun{Text: "x", Color: mtext.Color(color.ByLayer())}
	rs = r.Resolve("Notes", RunOverrides(&run))
	assert.Equal(t, color.ByLayer(), rs.Color, "explicit ByLayer of a run wins over the style color")
	rs = r.Resolve("Notes", RunOverrides(&mtext.TextRun{Text: "x"}))
	assert.Equal(t, color.Index(3), rs.Color, "run without color takes the style color")
}

func TestResolveInRegisters(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	r := NewResolver()
	regs := params.NewTypesettingRegisters()
	regs.Begingroup()
	regs.Push(params.P_HEIGHT, 3.0)
	run := mtext.TextRun{Text: "x", Color: mtext.Color(color.Index(1)), Format: mtext.Format{Height: mtext.Float(-1)}}
	rs := r.ResolveIn(regs, "", RunOverrides(&run))
	assert.Equal(t, 3.0, rs.Height, "invalid height is ignored")
	assert.Equal(t, color.Index(1), rs.Color)
	assert.Equal(t, 1, regs.Level(), "registers are left unchanged")
	assert.Equal(t, 1.5, rs.Scaled(0.5).Height)
	assert.Nil(t, RunOverrides(&mtext.TextRun{}).Color)
}

package parameters

import (
	"testing"

	"github.com/npillmayer/mtext/core/color"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
)

func TestGroups(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	regs := NewTypesettingRegisters()
	assert.Equal(t, 1.0, regs.F(P_WIDTHFACTOR))
	regs.Begingroup()
	regs.Push(P_WIDTHFACTOR, 0.8)
	regs.Push(P_COLOR, color.Index(1))
	regs.Begingroup()
	regs.Begingroup()
	regs.Push(P_FONT, "txt")
	assert.Equal(t, 0.8, regs.F(P_WIDTHFACTOR), "outer group shines through")
	assert.Equal(t, "txt", regs.S(P_FONT))
	regs.Endgroup()
	assert.Equal(t, "", regs.S(P_FONT))
	regs.Endgroup()
	assert.Equal(t, color.Index(1), regs.C(P_COLOR), "group without values")
	regs.Endgroup()
	assert.Equal(t, 0, regs.Level())
	assert.Equal(t, 1.0, regs.F(P_WIDTHFACTOR))
	assert.Equal(t, color.ByLayer(), regs.C(P_COLOR))
	regs.Endgroup() // unbalanced
	assert.Equal(t, 0, regs.Level())
	assert.Equal(t, "linespacing", P_LINESPACING.String())
	assert.Panics(t, func() { regs.Get(P_STOPPER) })
}

func TestConfiguredConstants(t *testing.T) {
	teardown := testconfig.QuickConfig(t, map[string]string{
		"mtext.line-spacing": "2",
		"mtext.stack-scale":  "not a number",
	})
	defer teardown()
	//
	regs := NewTypesettingRegisters()
	assert.Equal(t, 2.0, regs.F(P_LINESPACING))
	assert.Equal(t, 0.7, regs.F(P_STACKSCALE))
	assert.Equal(t, 0.7, regs.F(P_SCRIPTSCALE))
}

/*
Package parameters holds typesetting registers for MTEXT layout.

Registers carry the formatting state of text runs (font, height, width
factor, …) as well as layout constants (line spacing, scale factors for
stacked fractions and scripts, decoration offsets). Values are grouped:
a group started with Begingroup shadows values pushed within it, and
Endgroup restores the state from before the group.

Some layout constants may be overridden from the global configuration:

   mtext.line-spacing    factor of text height to line height
   mtext.stack-scale     scale of the parts of stacked fractions
   mtext.script-scale    scale of superscripts and subscripts

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package parameters

import (
	"strconv"
	"strings"

	"github.com/npillmayer/mtext/core/color"
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mtext.style'.
func tracer() tracing.Trace {
	return tracing.Select("mtext.style")
}

type TypesettingParameter int

const (
	none TypesettingParameter = iota
	P_FONT
	P_BIGFONT
	P_HEIGHT
	P_WIDTHFACTOR
	P_OBLIQUE
	P_COLOR
	P_LINESPACING
	P_STACKSCALE
	P_SCRIPTSCALE
	P_SUPERSHIFT
	P_SUBSHIFT
	P_UNDERLINE
	P_OVERLINE
	P_STRIKE
	P_STACKGAP
	P_STOPPER
)

var parameterNames = [P_STOPPER]string{
	"none", "font", "bigfont", "height", "widthfactor", "oblique", "color",
	"linespacing", "stackscale", "scriptscale", "supershift", "subshift",
	"underline", "overline", "strike", "stackgap",
}

func (p TypesettingParameter) String() string {
	if p < 0 || p >= P_STOPPER {
		return "TypesettingParameter(" + strconv.Itoa(int(p)) + ")"
	}
	return parameterNames[p]
}

type ParameterGroup struct {
	params map[TypesettingParameter]interface{}
	level  int
	next   *ParameterGroup
}

type TypesettingRegisters struct {
	base       [P_STOPPER]interface{}
	groups     *ParameterGroup
	grouplevel int
}

// ----------------------------------------------------------------------

func NewTypesettingRegisters() *TypesettingRegisters {
	regs := &TypesettingRegisters{}
	initParameters(&regs.base)
	configure(&regs.base)
	return regs
}

func initParameters(p *[P_STOPPER]interface{}) {
	p[P_FONT] = ""               // font name, empty for the store's default font
	p[P_BIGFONT] = ""            // secondary font name for CJK characters
	p[P_HEIGHT] = 1.0            // text height = height of capitals
	p[P_WIDTHFACTOR] = 1.0       // horizontal scale of glyphs
	p[P_OBLIQUE] = 0.0           // slant in degrees
	p[P_COLOR] = color.ByLayer() // a color.Ref
	p[P_LINESPACING] = 5.0 / 3   // line height as a multiple of text height
	p[P_STACKSCALE] = 0.7        // height of fraction parts relative to text height
	p[P_SCRIPTSCALE] = 0.7       // height of super/subscripts relative to text height
	p[P_SUPERSHIFT] = 0.3        // baseline shift of superscripts, relative to line height
	p[P_SUBSHIFT] = -0.15        // baseline shift of subscripts, relative to line height
	p[P_UNDERLINE] = -0.2        // offsets of decorations relative to text height
	p[P_OVERLINE] = 1.2          //
	p[P_STRIKE] = 0.5            //
	p[P_STACKGAP] = 0.15         // gap between fraction parts relative to their height
}

// configurable lists layout constants which may be set from configuration.
var configurable = map[string]TypesettingParameter{
	"mtext.line-spacing": P_LINESPACING,
	"mtext.stack-scale":  P_STACKSCALE,
	"mtext.script-scale": P_SCRIPTSCALE,
}

func configure(p *[P_STOPPER]interface{}) {
	for key, param := range configurable {
		s := strings.TrimSpace(gconf.GetString(key))
		if s == "" {
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f <= 0 {
			tracer().Errorf("configuration %s = %q is not a positive number, ignored", key, s)
			continue
		}
		tracer().Debugf("configuration sets %s = %g", param, f)
		p[param] = f
	}
}

func (regs *TypesettingRegisters) Begingroup() {
	regs.grouplevel++
}

func (regs *TypesettingRegisters) Endgroup() {
	if regs.grouplevel > 0 {
		if regs.groups != nil && regs.groups.level == regs.grouplevel {
			regs.groups = regs.groups.next
		}
		regs.grouplevel--
	}
}

// Level is the current group nesting level.
func (regs *TypesettingRegisters) Level() int {
	return regs.grouplevel
}

func (regs *TypesettingRegisters) Push(key TypesettingParameter, value interface{}) {
	if key <= none || key >= P_STOPPER {
		panic("parameter key outside range of typesetting parameters")
	}
	if regs.grouplevel > 0 {
		var g *ParameterGroup
		if regs.groups == nil || regs.groups.level < regs.grouplevel {
			g = &ParameterGroup{}
			g.params = make(map[TypesettingParameter]interface{})
			g.level = regs.grouplevel
			g.next = regs.groups
			regs.groups = g
		} else {
			g = regs.groups
		}
		g.params[key] = value
	} else {
		regs.base[key] = value
	}
}

func (regs *TypesettingRegisters) Get(key TypesettingParameter) interface{} {
	if key <= none || key >= P_STOPPER {
		panic("parameter key outside range of typesetting parameters")
	}
	var value interface{}
	if regs.grouplevel > 0 {
		for g := regs.groups; g != nil; g = g.next {
			value = g.params[key]
			if value != nil {
				break
			}
		}
	}
	if value == nil {
		value = regs.base[key]
	}
	return value
}

func (regs *TypesettingRegisters) S(key TypesettingParameter) string {
	return regs.Get(key).(string)
}

func (regs *TypesettingRegisters) F(key TypesettingParameter) float64 {
	return regs.Get(key).(float64)
}

func (regs *TypesettingRegisters) C(key TypesettingParameter) color.Ref {
	return regs.Get(key).(color.Ref)
}

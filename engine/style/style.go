/*
Package style resolves text styles.

A text style is a named record of text formatting defaults, as found in the
style table of a CAD drawing. Text runs refer to a style by name and may
override any of its values inline. A Resolver merges both into a
ResolvedStyle, which is what glyph geometry is built from.

Merging is done with typesetting registers (package parameters): the style's
values are pushed in a group, inline overrides in a nested group, and the
result is read back. Inline overrides always win.

Font names are not checked. An unknown font is passed on unchanged and
substituted by the font store at glyph lookup time.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package style

import (
	"fmt"
	"strings"
	"sync"

	"github.com/npillmayer/mtext/core/color"
	params "github.com/npillmayer/mtext/core/parameters"
	"github.com/npillmayer/mtext/engine/mtext"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mtext.style'.
func tracer() tracing.Trace {
	return tracing.Select("mtext.style")
}

// StandardName is the name of the built-in text style.
const StandardName = "Standard"

// TextStyle is a named set of text formatting defaults. Zero values for
// Height, WidthFactor and empty font names mean "not set".
type TextStyle struct {
	Name        string    `json:"name"`
	Font        string    `json:"font,omitempty"`
	BigFont     string    `json:"bigFont,omitempty"`
	Height      float64   `json:"height,omitempty"`
	WidthFactor float64   `json:"widthFactor,omitempty"`
	Oblique     float64   `json:"oblique,omitempty"` // in degrees
	Color       color.Ref `json:"color"`
}

// Standard returns the built-in text style.
func Standard() TextStyle {
	return TextStyle{Name: StandardName, WidthFactor: 1}
}

// Overrides are inline formatting directives of a text run.
type Overrides struct {
	mtext.Format
	Color *color.Ref
}

// RunOverrides collects the overrides of a text run.
func RunOverrides(run *mtext.TextRun) Overrides {
	ov := Overrides{Format: run.Format}
	if run.Color != nil {
		c := *run.Color
		ov.Color = &c
	}
	return ov
}

// ResolvedStyle holds the concrete formatting values of a text run.
type ResolvedStyle struct {
	Font        string    `json:"font"`
	BigFont     string    `json:"bigFont,omitempty"`
	Height      float64   `json:"height"`
	WidthFactor float64   `json:"widthFactor"`
	Oblique     float64   `json:"oblique"` // in degrees
	Color       color.Ref `json:"color"`
}

func (rs ResolvedStyle) String() string {
	return fmt.Sprintf("style[%s/%s h=%g w=%g o=%g %v]", rs.Font, rs.BigFont,
		rs.Height, rs.WidthFactor, rs.Oblique, rs.Color)
}

// Scaled returns a copy of rs with its height multiplied by f.
func (rs ResolvedStyle) Scaled(f float64) ResolvedStyle {
	rs.Height *= f
	return rs
}

// Resolver holds text styles by name. It is safe for concurrent use.
type Resolver struct {
	mu     sync.RWMutex
	styles map[string]TextStyle
}

// NewResolver creates a resolver knowing the Standard style and every
// style given.
func NewResolver(styles ...TextStyle) *Resolver {
	r := &Resolver{styles: make(map[string]TextStyle)}
	r.Register(Standard())
	for _, st := range styles {
		r.Register(st)
	}
	return r
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds or replaces a style. Style names are case-insensitive.
func (r *Resolver) Register(st TextStyle) {
	if key(st.Name) == "" {
		tracer().Errorf("cannot register text style without name")
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.styles[key(st.Name)] = st
}

// Style returns a registered style. Unknown names yield the Standard style
// and false.
func (r *Resolver) Style(name string) (TextStyle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if st, ok := r.styles[key(name)]; ok {
		return st, true
	}
	return r.styles[key(StandardName)], false
}

// Resolve merges a named style with inline overrides.
func (r *Resolver) Resolve(name string, ov Overrides) ResolvedStyle {
	return r.ResolveIn(params.NewTypesettingRegisters(), name, ov)
}

// ResolveIn resolves a style on top of typesetting registers. Values not
// set by either the style or the overrides are taken from regs. regs are
// left unchanged.
func (r *Resolver) ResolveIn(regs *params.TypesettingRegisters, name string, ov Overrides) ResolvedStyle {
	st, ok := r.Style(name)
	if !ok && name != "" {
		tracer().Debugf("text style %q not found, using %s", name, StandardName)
	}
	regs.Begingroup()
	defer regs.Endgroup()
	pushString(regs, params.P_FONT, st.Font)
	pushString(regs, params.P_BIGFONT, st.BigFont)
	pushPositive(regs, params.P_HEIGHT, st.Height)
	pushPositive(regs, params.P_WIDTHFACTOR, st.WidthFactor)
	if st.Oblique != 0 {
		regs.Push(params.P_OBLIQUE, st.Oblique)
	}
	if st.Color != color.ByLayer() {
		regs.Push(params.P_COLOR, st.Color)
	}
	regs.Begingroup()
	defer regs.Endgroup()
	pushString(regs, params.P_FONT, ov.Font)
	pushString(regs, params.P_BIGFONT, ov.BigFont)
	if ov.Height != nil {
		pushPositive(regs, params.P_HEIGHT, *ov.Height)
	}
	if ov.WidthFactor != nil {
		pushPositive(regs, params.P_WIDTHFACTOR, *ov.WidthFactor)
	}
	if ov.Oblique != nil {
		regs.Push(params.P_OBLIQUE, *ov.Oblique)
	}
	if ov.Color != nil {
		regs.Push(params.P_COLOR, *ov.Color)
	}
	return ResolvedStyle{
		Font:        regs.S(params.P_FONT),
		BigFont:     regs.S(params.P_BIGFONT),
		Height:      regs.F(params.P_HEIGHT),
		WidthFactor: regs.F(params.P_WIDTHFACTOR),
		Oblique:     regs.F(params.P_OBLIQUE),
		Color:       regs.C(params.P_COLOR),
	}
}

func pushString(regs *params.TypesettingRegisters, p params.TypesettingParameter, s string) {
	if s = strings.TrimSpace(s); s != "" {
		regs.Push(p, s)
	}
}

func pushPositive(regs *params.TypesettingRegisters, p params.TypesettingParameter, f float64) {
	if f > 0 {
		regs.Push(p, f)
	} else if f < 0 {
		tracer().Debugf("ignoring %s = %g", p, f)
	}
}

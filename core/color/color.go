/*
Package color implements CAD color references.

A color reference in MTEXT is either an explicit true color, an index into
the AutoCAD Color Index (ACI) table, or one of the indirections ByLayer and
ByBlock. Indirections stay unresolved until geometry is built; only then a
caller supplied Context decides on the concrete RGB value.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package color

import (
	"encoding/json"
	"fmt"
)

// RGB is a true color value 0xRRGGBB.
type RGB uint32

// Components splits a color into its red, green and blue parts.
func (c RGB) Components() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// FromComponents assembles a color from red, green and blue parts.
func FromComponents(r, g, b uint8) RGB {
	return RGB(r)<<16 | RGB(g)<<8 | RGB(b)
}

func (c RGB) String() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

// Kind tags the variant of a color reference.
type Kind uint8

// Kinds of color references. The zero value is ByLayer, which is the
// default color of CAD entities.
const (
	KindByLayer Kind = iota
	KindByBlock
	KindIndex
	KindExplicit
)

func (k Kind) String() string {
	switch k {
	case KindByLayer:
		return "bylayer"
	case KindByBlock:
		return "byblock"
	case KindIndex:
		return "index"
	case KindExplicit:
		return "explicit"
	}
	return "unknown"
}

// Special color indices.
const (
	IndexByBlock = 0
	IndexByLayer = 256
)

// Ref is a color reference as found in MTEXT formatting.
//
// For KindIndex, Value holds the ACI number, for KindExplicit the RGB value.
type Ref struct {
	Kind  Kind   `json:"kind"`
	Value uint32 `json:"value,omitempty"`
}

// Explicit creates a true color reference.
func Explicit(rgb RGB) Ref {
	return Ref{Kind: KindExplicit, Value: uint32(rgb) & 0xffffff}
}

// Index creates a reference into the ACI table.
func Index(n int) Ref {
	if n < 0 {
		n = 0
	}
	return Ref{Kind: KindIndex, Value: uint32(n)}
}

// ByLayer returns the ByLayer indirection.
func ByLayer() Ref {
	return Ref{Kind: KindByLayer}
}

// ByBlock returns the ByBlock indirection.
func ByBlock() Ref {
	return Ref{Kind: KindByBlock}
}

func (ref Ref) String() string {
	switch ref.Kind {
	case KindIndex:
		return fmt.Sprintf("aci(%d)", ref.Value)
	case KindExplicit:
		return RGB(ref.Value).String()
	}
	return ref.Kind.String()
}

// Context carries the colors of the drawing context an MTEXT entity is
// rendered in.
type Context struct {
	ByLayer RGB `json:"byLayerColor"`
	ByBlock RGB `json:"byBlockColor"`
}

// DefaultContext renders ByLayer and ByBlock as white.
func DefaultContext() Context {
	return Context{ByLayer: 0xffffff, ByBlock: 0xffffff}
}

// Resolve turns a color reference into a true color.
//
// Index 0 and 256 are aliases for ByBlock and ByLayer and resolve through
// the context, as do indices outside of the ACI table.
func (ctx Context) Resolve(ref Ref) RGB {
	switch ref.Kind {
	case KindExplicit:
		return RGB(ref.Value) & 0xffffff
	case KindByBlock:
		return ctx.ByBlock
	case KindIndex:
		switch n := int(ref.Value); {
		case n == IndexByBlock:
			return ctx.ByBlock
		case n == IndexByLayer:
			return ctx.ByLayer
		case n > 0 && n < IndexByLayer:
			return aciTable[n]
		}
	}
	return ctx.ByLayer
}

// MarshalJSON encodes a color as "#rrggbb".
func (c RGB) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts "#rrggbb" strings as well as plain numbers.
func (c *RGB) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		var v uint32
		if _, err := fmt.Sscanf(s, "#%x", &v); err != nil {
			return fmt.Errorf("invalid color %q: %w", s, err)
		}
		*c = RGB(v)
		return nil
	}
	var v uint32
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = RGB(v)
	return nil
}

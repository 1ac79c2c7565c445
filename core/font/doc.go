/*
Package font is for vector font and glyph handling.

MTEXT knows two incompatible kinds of fonts:

* A "stroke font" (SHX) describes glyphs as sequences of pen movements.
Lifting the pen starts a new, disconnected polyline. Stroke glyphs are
rendered as lines.

* An "outline font" (TrueType, OpenType) describes glyphs as closed
contours which are meant to be filled. Outline glyphs are rendered as
triangle meshes.

Decoders for both kinds live in sub-packages shx and outline. They produce
a Record, which is immutable once loaded. Glyph coordinates are kept in
font design units by the decoders; Record.Glyph normalizes them to a unit
em height.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package font

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'mtext.font'.
func tracer() tracing.Trace {
	return tracing.Select("mtext.font")
}

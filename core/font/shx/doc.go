/*
Package shx decodes AutoCAD SHX stroke fonts.

Three flavours of compiled shape files are supported, all starting with the
signature "AutoCAD-86":

   AutoCAD-86 shapes 1.0 / 1.1   single byte character codes
   AutoCAD-86 unifont 1.0        Unicode character codes
   AutoCAD-86 bigfont 1.0        double byte character codes (GBK)

A shape is a byte program for a virtual pen plotter. Vector bytes move the
pen in one of 16 directions, special commands lift or lower the pen, scale
movements, save and restore positions, draw arcs or call other shapes.
Decoding interprets these programs and records every pen-down sequence as
a separate polyline.

Glyphs are decoded lazily. A glyph whose program references itself
(directly or through other shapes), or references a shape which does not
exist, is reported as missing; the rest of the font stays intact.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package shx

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'mtext.font'.
func tracer() tracing.Trace {
	return tracing.Select("mtext.font")
}

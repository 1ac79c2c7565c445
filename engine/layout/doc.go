/*
Package layout sets CAD rich text into positioned glyph geometry.

The engine works in a single pass over every paragraph. Text runs are
measured glyph by glyph, with line break opportunities found by the
Unicode line breaking algorithm (UAX #14). Lines are filled first-fit;
an explicit break always ends a line. Stacked fractions and super- or
subscripts are set as atomic groups which are never split across lines.
Finished lines are aligned and stacked downwards, one line height apart.

Text coordinates have their origin at the top left corner of the text block,
with y pointing upwards. The first baseline lies one text height below the
origin. The attachment point of a document moves the block relative to
its insertion point.

The resulting geometry tree has the form

   text → line → run → glyph
                     → stack → glyph

with decorations (underline, overline, strike-through) attached to run
nodes as line segments.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package layout

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'mtext.layout'.
func tracer() tracing.Trace {
	return tracing.Select("mtext.layout")
}

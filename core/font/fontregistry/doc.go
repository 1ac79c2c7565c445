/*
Package fontregistry manages a registry for loaded fonts.

A Store caches decoded fonts, keyed by normalized font name. Fonts enter
the store through EnsureLoaded, which fetches them from a FontSource and
decodes them as stroke (SHX) or outline fonts. Loading is idempotent and
safe for concurrent use; a font which cannot be fetched or decoded is
simply absent afterwards.

Lookups never fail: Resolve falls back to a configurable default font and,
as a last resort, to a built-in outline font. Glyph lookups fall back from
the primary font to a big font and finally to a box shaped placeholder
glyph.

Stores are explicitly constructed and injected. Every execution context
(see package dispatch) owns its own store.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fontregistry

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'mtext.font'
func tracer() tracing.Trace {
	return tracing.Select("mtext.font")
}

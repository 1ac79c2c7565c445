/*
Package resources locates font files for the MTEXT geometry engine.

Fonts are fetched from a FontSource. Sources are provided for fonts held
in memory, fonts in a directory (or any fs.FS), fonts installed on the
system and for chains of sources. Fetching over a network is left to
clients, which may implement their own FontSource.

As resource loading may be a time-consuming task, some functions in this
package will work in an async/await fashion by returning a promise.
Functions named

   Resolve…(…)

will return a resource-specific promise type, which the client will call later
to receive the loaded resource. The call to the promise-function will then block
until loading has completed.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'mtext.resources'.
func tracer() tracing.Trace {
	return tracing.Select("mtext.resources")
}

/*
Package pipeline bundles the components which turn documents into geometry
within one execution context.

A pipeline owns a font store, a style resolver and a layout engine. Fonts
loaded into a pipeline are visible to this pipeline only: two execution
contexts (e.g., a caller and a worker) each own a pipeline of their own
and have to load fonts separately.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package pipeline

import (
	"context"

	"github.com/npillmayer/mtext/core/color"
	"github.com/npillmayer/mtext/core/font/fontregistry"
	"github.com/npillmayer/mtext/core/locate/resources"
	"github.com/npillmayer/mtext/engine/geometry"
	"github.com/npillmayer/mtext/engine/layout"
	"github.com/npillmayer/mtext/engine/mtext"
	"github.com/npillmayer/mtext/engine/style"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mtext.layout'.
func tracer() tracing.Trace {
	return tracing.Select("mtext.layout")
}

// Config holds the settings a pipeline is created from.
type Config struct {
	Source      resources.FontSource // where fonts are fetched from
	DefaultFont string               // substitute for absent fonts
	Styles      []style.TextStyle    // text styles known in advance
}

// Pipeline is a type to typeset documents within an execution context.
type Pipeline struct {
	Store  *fontregistry.Store
	Styles *style.Resolver
	Engine *layout.Engine
}

// New creates a pipeline. Without a font source, fonts are searched in the
// configured font path and among the system fonts.
func New(conf Config) *Pipeline {
	src := conf.Source
	if src == nil {
		src = resources.ConfiguredSource()
	}
	var opts []fontregistry.Option
	if conf.DefaultFont != "" {
		opts = append(opts, fontregistry.WithDefaultFont(conf.DefaultFont))
	}
	p := &Pipeline{
		Store:  fontregistry.NewStore(src, opts...),
		Styles: style.NewResolver(conf.Styles...),
	}
	p.Engine = layout.NewEngine(p.Store, p.Styles)
	return p
}

// Render lays out a document. If textStyle is not nil, it is registered
// and used for documents which do not name a style of their own.
func (p *Pipeline) Render(doc *mtext.Document, textStyle *style.TextStyle, colors color.Context) *geometry.Result {
	if textStyle != nil && textStyle.Name != "" {
		p.Styles.Register(*textStyle)
		if doc != nil && doc.Style == "" {
			d := *doc
			d.Style = textStyle.Name
			doc = &d
		}
	}
	res := p.Engine.Layout(doc, colors)
	tracer().Debugf("rendered document, box = %s", res.Box)
	return res
}

// LoadFonts loads fonts into the pipeline's font store and returns the
// normalized names of the fonts now present.
func (p *Pipeline) LoadFonts(ctx context.Context, names []string) []string {
	loaded := p.Store.EnsureLoaded(ctx, names)
	tracer().Infof("loaded %d of %d requested fonts", len(loaded), len(names))
	return loaded
}

// ListFonts lists the fonts available to the pipeline.
func (p *Pipeline) ListFonts(ctx context.Context) ([]fontregistry.Descriptor, error) {
	return p.Store.ListAvailable(ctx)
}

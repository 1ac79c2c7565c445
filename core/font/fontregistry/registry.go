package fontregistry

import (
	"context"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/mtext/core"
	"github.com/npillmayer/mtext/core/font"
	"github.com/npillmayer/mtext/core/font/outline"
	"github.com/npillmayer/mtext/core/font/shx"
	"github.com/npillmayer/mtext/core/locate/resources"
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/tracing"
)

// DefaultFontName is used if neither an option nor the configuration key
// 'mtext.default-font' name a default font.
const DefaultFontName = "simkai"

// Store is a type for holding fonts loaded for an execution context.
type Store struct {
	sync.RWMutex
	fonts       map[string]*font.Record
	source      resources.FontSource
	defaultFont string
}

// Option configures a Store.
type Option func(*Store)

// WithDefaultFont sets the font substituted for absent fonts.
func WithDefaultFont(name string) Option {
	return func(s *Store) {
		if name = font.NormalizeName(name); name != "" {
			s.defaultFont = name
		}
	}
}

// NewStore creates an empty font store, loading fonts from source.
func NewStore(source resources.FontSource, opts ...Option) *Store {
	s := &Store{
		fonts:       make(map[string]*font.Record),
		source:      source,
		defaultFont: DefaultFontName,
	}
	if name := font.NormalizeName(gconf.GetString("mtext.default-font")); name != "" {
		s.defaultFont = name
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultFont returns the normalized name of the default font.
func (s *Store) DefaultFont() string {
	return s.defaultFont
}

// Decode decodes font data, which may either be an SHX shape file or a
// TrueType/OpenType font.
func Decode(name string, data []byte) (*font.Record, error) {
	if len(data) == 0 {
		return nil, core.Error(core.EFONTDECODE, "font %s is empty", name)
	}
	if shx.IsSHX(data) {
		return shx.Parse(name, data)
	}
	return outline.Parse(name, data)
}

// EnsureLoaded makes sure every font in names is present in the store.
// Fonts already present are not loaded again. Missing fonts are fetched
// concurrently from the store's source.
//
// Failing to fetch or decode a font is not an error: the font is just
// absent from the returned list of loaded fonts, which contains normalized
// names in request order. EnsureLoaded returns early with the fonts loaded
// so far if ctx is done.
func (s *Store) EnsureLoaded(ctx context.Context, names []string) []string {
	var promises []resources.FontPromise
	seen := make(map[string]bool)
	for _, name := range names {
		key := font.NormalizeName(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := s.Lookup(key); ok {
			continue
		}
		tracer().Debugf("font store fetches font %s", key)
		promises = append(promises, resources.ResolveFont(ctx, s.source, key))
	}
	for _, p := range promises {
		data, err := p.Bytes()
		if err != nil {
			tracer().Infof("font %s not available: %v", p.Name(), err)
			continue
		}
		rec, err := Decode(p.Name(), data)
		if err != nil {
			tracer().Errorf("font %s cannot be decoded: %v", p.Name(), err)
			continue
		}
		s.StoreFont(p.Name(), rec)
	}
	loaded := make([]string, 0, len(seen))
	for _, name := range names {
		key := font.NormalizeName(name)
		if !seen[key] {
			continue
		}
		seen[key] = false
		if _, ok := s.Lookup(key); ok {
			loaded = append(loaded, key)
		}
	}
	return loaded
}

// StoreFont pushes a font into the store. An existing font with the same
// normalized name is replaced.
func (s *Store) StoreFont(name string, rec *font.Record) {
	if rec == nil {
		tracer().Errorf("font store cannot store null font")
		return
	}
	key := font.NormalizeName(name)
	s.Lock()
	defer s.Unlock()
	tracer().Infof("font store stores font %s as %s", rec, key)
	s.fonts[key] = rec
}

// Lookup returns a loaded font.
func (s *Store) Lookup(name string) (*font.Record, bool) {
	s.RLock()
	defer s.RUnlock()
	rec, ok := s.fonts[font.NormalizeName(name)]
	return rec, ok
}

// Resolve returns the font for name. If it is not loaded, the default font
// is returned. If that is not loaded either, Resolve returns the built-in
// fallback font. Resolve never returns nil.
func (s *Store) Resolve(name string) *font.Record {
	if rec, ok := s.Lookup(name); ok {
		return rec
	}
	if name != "" {
		tracer().Debugf("font %s not loaded, substituting %s", name, s.defaultFont)
	}
	if rec, ok := s.Lookup(s.defaultFont); ok {
		return rec
	}
	return outline.Fallback()
}

// Glyph looks up r in the primary font, then in the big font (if any).
// Whitespace missing from both fonts yields an empty glyph, any other
// missing character the placeholder box. found is false if the glyph has
// been substituted.
func (s *Store) Glyph(primary, big *font.Record, r rune) (g font.Glyph, found bool) {
	if g, ok := primary.Glyph(r); ok {
		return g, true
	}
	if big != nil {
		if g, ok := big.Glyph(r); ok {
			return g, true
		}
	}
	if font.IsBlank(r) {
		return font.Blank(primary, r), true
	}
	tracer().Debugf("no glyph for %q in %s, using placeholder", r, primary)
	return font.MissingGlyph(), false
}

// Loaded lists the names of all loaded fonts in alphabetical order.
func (s *Store) Loaded() []string {
	s.RLock()
	defer s.RUnlock()
	sorted := treemap.NewWithStringComparator()
	for name := range s.fonts {
		sorted.Put(name, true)
	}
	names := make([]string, 0, sorted.Size())
	for _, k := range sorted.Keys() {
		names = append(names, k.(string))
	}
	return names
}

// Descriptor describes a font available to a store.
type Descriptor struct {
	Name   string `json:"name"`
	Type   string `json:"type"` // "shx" or "mesh"
	Loaded bool   `json:"loaded"`
}

// ListAvailable lists fonts known to the store's source together with all
// loaded fonts, sorted by name.
func (s *Store) ListAvailable(ctx context.Context) ([]Descriptor, error) {
	sorted := treemap.NewWithStringComparator()
	if s.source != nil {
		files, err := s.source.List(ctx)
		if err != nil {
			return nil, core.WrapError(err, core.ECONNECTION, "cannot list fonts")
		}
		for _, ff := range files {
			sorted.Put(ff.Name, Descriptor{Name: ff.Name, Type: ff.Kind.String()})
		}
	}
	s.RLock()
	for name, rec := range s.fonts {
		sorted.Put(name, Descriptor{Name: name, Type: rec.Kind.String(), Loaded: true})
	}
	s.RUnlock()
	list := make([]Descriptor, 0, sorted.Size())
	for _, v := range sorted.Values() {
		list = append(list, v.(Descriptor))
	}
	return list, nil
}

// LogFontList is a helper function to dump the list of loaded fonts to the
// trace (log-level Info).
func (s *Store) LogFontList() {
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	tracer().Infof("--- loaded fonts ---")
	for _, name := range s.Loaded() {
		rec, _ := s.Lookup(name)
		tracer().Infof("font [%s] = %v", name, rec)
	}
	tracer().Infof("--------------------")
	tracer().SetTraceLevel(level)
}

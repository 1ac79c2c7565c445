package resources

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/mtext/core"
	"github.com/npillmayer/mtext/core/font"
	"github.com/npillmayer/schuko/gconf"
)

// FontFile describes a font a source is able to deliver.
type FontFile struct {
	Name string    // normalized font name
	Path string    // location within the source, if any
	Kind font.Kind // stroke or outline font
}

// FontSource is the I/O collaborator fonts are fetched from.
//
// Fetch returns the raw bytes of a font. Names are compared in normalized
// form (see font.NormalizeName). If a source does not know a font, it
// returns an error with code core.EMISSING.
type FontSource interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context) ([]FontFile, error)
}

// NotFound returns an application error for a missing font.
func NotFound(name string) error {
	e := fmt.Errorf("resource missing: %v", name)
	return core.WrapError(e, core.EMISSING, "font not found: %s", name)
}

// fontFileExtensions are the file types sources consider.
var fontFileExtensions = map[string]font.Kind{
	".shx": font.Stroke,
	".ttf": font.Outline,
	".otf": font.Outline,
}

func fontFileFor(p string) (FontFile, bool) {
	kind, ok := fontFileExtensions[strings.ToLower(path.Ext(filepath.ToSlash(p)))]
	if !ok {
		return FontFile{}, false
	}
	return FontFile{Name: font.NormalizeName(p), Path: p, Kind: kind}, true
}

// --- Memory ----------------------------------------------------------------

// MemorySource holds font data in memory. It is safe for concurrent use.
type MemorySource struct {
	mx    sync.RWMutex
	fonts map[string][]byte
	kinds map[string]font.Kind
}

// NewMemorySource creates an empty in-memory font source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		fonts: make(map[string][]byte),
		kinds: make(map[string]font.Kind),
	}
}

// Add stores font data under a font name or file name.
func (src *MemorySource) Add(name string, data []byte) *MemorySource {
	key := font.NormalizeName(name)
	src.mx.Lock()
	defer src.mx.Unlock()
	src.fonts[key] = data
	src.kinds[key] = font.KindOf(name, data)
	return src
}

// Fetch returns the data stored for name.
func (src *MemorySource) Fetch(ctx context.Context, name string) ([]byte, error) {
	src.mx.RLock()
	defer src.mx.RUnlock()
	if data, ok := src.fonts[font.NormalizeName(name)]; ok {
		return data, nil
	}
	return nil, NotFound(name)
}

// List returns all fonts held in memory, sorted by name.
func (src *MemorySource) List(ctx context.Context) ([]FontFile, error) {
	src.mx.RLock()
	defer src.mx.RUnlock()
	files := make([]FontFile, 0, len(src.fonts))
	for name := range src.fonts {
		files = append(files, FontFile{Name: name, Kind: src.kinds[name]})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// --- Directories -----------------------------------------------------------

// DirSource delivers font files found in a file system tree. The tree is
// scanned once, on first use.
type DirSource struct {
	fsys    fs.FS
	scan    sync.Once
	catalog *Catalog
}

// NewDirSource creates a source for font files in fsys, e.g. os.DirFS(dir)
// or an embedded file system.
func NewDirSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys}
}

func (src *DirSource) index() *Catalog {
	src.scan.Do(func() {
		src.catalog = NewCatalog()
		err := fs.WalkDir(src.fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				tracer().Errorf("scanning font directory: %v", err)
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if ff, ok := fontFileFor(p); ok {
				src.catalog.Add(ff)
			}
			return nil
		})
		if err != nil {
			tracer().Errorf("scanning font directory: %v", err)
		}
		tracer().Debugf("font directory contains %d fonts", src.catalog.Len())
	})
	return src.catalog
}

// Fetch reads the font file for name.
func (src *DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	ff, ok := src.index().Lookup(name)
	if !ok {
		return nil, NotFound(name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(src.fsys, ff.Path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font file %s", ff.Path)
	}
	return data, nil
}

// List returns all font files of the tree.
func (src *DirSource) List(ctx context.Context) ([]FontFile, error) {
	return src.index().All(), nil
}

// --- System fonts ----------------------------------------------------------

// SystemSource delivers fonts installed in the platform's font directories.
type SystemSource struct {
	scan    sync.Once
	catalog *Catalog
}

func (src *SystemSource) index() *Catalog {
	src.scan.Do(func() {
		src.catalog = NewCatalog()
		for _, p := range findfont.List() {
			if ff, ok := fontFileFor(p); ok {
				src.catalog.Add(ff)
			}
		}
		tracer().Infof("found %d system fonts", src.catalog.Len())
	})
	return src.catalog
}

// Fetch locates a system font and reads it.
func (src *SystemSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	var fpath string
	if ff, ok := src.index().Lookup(name); ok {
		fpath = ff.Path
	} else {
		for ext := range fontFileExtensions {
			if p, err := findfont.Find(font.NormalizeName(name) + ext); err == nil && p != "" {
				fpath = p
				break
			}
		}
	}
	if fpath == "" {
		return nil, NotFound(name)
	}
	tracer().Debugf("%s is a system font: %s", name, fpath)
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font file %s", fpath)
	}
	return data, nil
}

// List returns the system's font files.
func (src *SystemSource) List(ctx context.Context) ([]FontFile, error) {
	return src.index().All(), nil
}

// --- Chains ----------------------------------------------------------------

// Chain asks a sequence of sources; the first source knowing a font wins.
type Chain []FontSource

// Fetch asks every source in turn.
func (ch Chain) Fetch(ctx context.Context, name string) ([]byte, error) {
	for _, src := range ch {
		data, err := src.Fetch(ctx, name)
		if err == nil {
			return data, nil
		}
		if !core.Is(err, core.EMISSING) {
			tracer().Errorf("font source failed for %s: %v", name, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, NotFound(name)
}

// List merges the font lists of all sources. A name is reported only for
// the first source listing it.
func (ch Chain) List(ctx context.Context) ([]FontFile, error) {
	catalog := NewCatalog()
	for _, src := range ch {
		files, err := src.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, ff := range files {
			catalog.Add(ff)
		}
	}
	return catalog.All(), nil
}

// ConfiguredSource creates a source from the global configuration: the
// directories listed in key 'mtext.font-path' (separated by the platform's
// path list separator), followed by the system fonts.
func ConfiguredSource() FontSource {
	var chain Chain
	for _, dir := range filepath.SplitList(gconf.GetString("mtext.font-path")) {
		if dir = strings.TrimSpace(dir); dir != "" {
			tracer().Infof("font path contains %s", dir)
			chain = append(chain, NewDirSource(os.DirFS(dir)))
		}
	}
	return append(chain, &SystemSource{})
}

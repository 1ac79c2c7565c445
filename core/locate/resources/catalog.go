package resources

import (
	"sort"
	"sync"

	"github.com/derekparker/trie"
	"github.com/npillmayer/mtext/core/font"
)

// Catalog indexes font files by normalized name. It supports prefix
// searches, e.g. to find all variants of a font family. A catalog is safe
// for concurrent use.
type Catalog struct {
	mx    sync.RWMutex
	names *trie.Trie
	count int
}

// NewCatalog creates a catalog holding files.
func NewCatalog(files ...FontFile) *Catalog {
	c := &Catalog{names: trie.New()}
	for _, ff := range files {
		c.Add(ff)
	}
	return c
}

// Add puts a font file into the catalog. If a font with the same name is
// already present, the catalog keeps the existing entry.
func (c *Catalog) Add(ff FontFile) bool {
	ff.Name = font.NormalizeName(ff.Name)
	if ff.Name == "" {
		return false
	}
	c.mx.Lock()
	defer c.mx.Unlock()
	if _, ok := c.names.Find(ff.Name); ok {
		return false
	}
	c.names.Add(ff.Name, ff)
	c.count++
	return true
}

// Lookup finds a font by name.
func (c *Catalog) Lookup(name string) (FontFile, bool) {
	c.mx.RLock()
	defer c.mx.RUnlock()
	node, ok := c.names.Find(font.NormalizeName(name))
	if !ok {
		return FontFile{}, false
	}
	ff, ok := node.Meta().(FontFile)
	return ff, ok
}

// Match returns all fonts with names starting with prefix, sorted by name.
func (c *Catalog) Match(prefix string) []FontFile {
	prefix = font.NormalizeName(prefix)
	c.mx.RLock()
	defer c.mx.RUnlock()
	var keys []string
	if prefix == "" {
		keys = c.names.Keys()
	} else {
		keys = c.names.PrefixSearch(prefix)
	}
	files := make([]FontFile, 0, len(keys))
	for _, key := range keys {
		if node, ok := c.names.Find(key); ok {
			if ff, ok := node.Meta().(FontFile); ok {
				files = append(files, ff)
			}
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files
}

// All returns every font of the catalog, sorted by name.
func (c *Catalog) All() []FontFile {
	return c.Match("")
}

// Len is the number of fonts in the catalog.
func (c *Catalog) Len() int {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.count
}

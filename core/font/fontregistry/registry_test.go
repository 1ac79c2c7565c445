package fontregistry

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/npillmayer/mtext/core/font"
	"github.com/npillmayer/mtext/core/font/outline"
	"github.com/npillmayer/mtext/core/font/shx/shxtest"
	"github.com/npillmayer/mtext/core/locate/resources"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	resources.FontSource
	fetches int32
}

func (src *countingSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	atomic.AddInt32(&src.fetches, 1)
	return src.FontSource.Fetch(ctx, name)
}

func testSource() *countingSource {
	mem := resources.NewMemorySource().
		Add("simkai.shx", shxtest.Bars("SIMKAI", "AB ")).
		Add("hztxt.shx", []byte("AutoCAD-86 bigfont 1.0\r\n\x1a")). // truncated
		Add("cjk.shx", shxtest.Bars("CJK", "中"))
	return &countingSource{FontSource: mem}
}

func TestEnsureLoadedIsIdempotent(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	src := testSource()
	store := NewStore(src)
	loaded := store.EnsureLoaded(context.Background(), []string{"SimKai"})
	assert.Equal(t, []string{"simkai"}, loaded)
	assert.Equal(t, int32(1), src.fetches)
	loaded = store.EnsureLoaded(context.Background(), []string{"simkai"})
	assert.Equal(t, []string{"simkai"}, loaded)
	assert.Equal(t, int32(1), src.fetches, "loaded fonts are not fetched again")
	assert.Equal(t, []string{"simkai"}, store.Loaded())
}

func TestEnsureLoadedFailsPerName(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	store := NewStore(testSource())
	loaded := store.EnsureLoaded(context.Background(),
		[]string{"missing", "hztxt", "cjk", "simkai", "cjk.shx"})
	assert.Equal(t, []string{"cjk", "simkai"}, loaded, "absent and malformed fonts are omitted")
	_, ok := store.Lookup("hztxt")
	assert.False(t, ok)
}

func TestConcurrentLoading(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	store := NewStore(testSource())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loaded := store.EnsureLoaded(context.Background(), []string{"simkai", "cjk"})
			assert.Equal(t, []string{"simkai", "cjk"}, loaded)
		}()
	}
	wg.Wait()
	assert.Equal(t, []string{"cjk", "simkai"}, store.Loaded())
	rec, ok := store.Lookup("simkai")
	require.True(t, ok)
	assert.True(t, rec.Contains('A'))
}

func TestResolveSubstitutesDefaultFont(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	store := NewStore(testSource())
	assert.Equal(t, outline.FallbackName, store.Resolve("arial").Name, "nothing loaded")
	store.EnsureLoaded(context.Background(), []string{"simkai", "cjk"})
	assert.Equal(t, "cjk", store.Resolve("CJK").Name)
	assert.Equal(t, "simkai", store.Resolve("arial").Name)
	assert.Equal(t, "simkai", store.Resolve("").Name)
	//
	store = NewStore(testSource(), WithDefaultFont("cjk.shx"))
	assert.Equal(t, "cjk", store.DefaultFont())
	store.EnsureLoaded(context.Background(), []string{"cjk"})
	assert.Equal(t, "cjk", store.Resolve("arial").Name)
}

func TestDefaultFontFromConfiguration(t *testing.T) {
	teardown := testconfig.QuickConfig(t, map[string]string{
		"mtext.default-font": "HZTXT",
	})
	defer teardown()
	//
	store := NewStore(nil)
	assert.Equal(t, "hztxt", store.DefaultFont())
	assert.Empty(t, store.EnsureLoaded(context.Background(), []string{"simkai"}))
}

func TestGlyphLookupOrder(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	store := NewStore(testSource())
	store.EnsureLoaded(context.Background(), []string{"simkai", "cjk"})
	primary, big := store.Resolve("simkai"), store.Resolve("cjk")
	g, found := store.Glyph(primary, big, 'A')
	assert.True(t, found)
	assert.InDelta(t, 1.0, g.Advance, 1e-9)
	g, found = store.Glyph(primary, big, '中')
	assert.True(t, found, "big font supplies CJK glyph")
	assert.False(t, g.IsEmpty())
	g, found = store.Glyph(primary, nil, '中')
	assert.False(t, found)
	assert.Equal(t, font.MissingGlyph(), g)
	g, found = store.Glyph(primary, big, '\t')
	assert.True(t, found)
	assert.True(t, g.IsEmpty())
}

func TestListAvailable(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	store := NewStore(testSource())
	store.EnsureLoaded(context.Background(), []string{"simkai"})
	store.StoreFont("gosans", outline.Fallback())
	list, err := store.ListAvailable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Descriptor{
		{Name: "cjk", Type: "shx"},
		{Name: "gosans", Type: "mesh", Loaded: true},
		{Name: "hztxt", Type: "shx"},
		{Name: "simkai", Type: "shx", Loaded: true},
	}, list)
	store.LogFontList()
}

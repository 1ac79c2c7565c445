package dispatch

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/npillmayer/mtext/core"
	"github.com/npillmayer/mtext/core/color"
	"github.com/npillmayer/mtext/core/font/shx/shxtest"
	"github.com/npillmayer/mtext/core/locate/resources"
	"github.com/npillmayer/mtext/engine/geometry"
	"github.com/npillmayer/mtext/engine/mtext"
	"github.com/npillmayer/mtext/engine/pipeline"
	"github.com/npillmayer/mtext/engine/transfer"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fontSource() *resources.MemorySource {
	return resources.NewMemorySource().
		Add("simkai.shx", shxtest.Bars("SIMKAI", "HeloWrd ")).
		Add("txt.shx", shxtest.Bars("TXT", "Helo"))
}

// blockingSource delivers fonts only after release is closed.
type blockingSource struct {
	*resources.MemorySource
	release chan struct{}
}

func (src blockingSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	select {
	case <-src.release:
		return src.MemorySource.Fetch(ctx, name)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func renderRequest(t *testing.T, id, text string) Request {
	req, err := NewRequest(OpRender, id, RenderData{Document: mtext.Plain(text), Colors: color.DefaultContext()})
	require.NoError(t, err)
	return req
}

func receive(t *testing.T, w *Worker, n int) map[string]Response {
	responses := make(map[string]Response)
	for i := 0; i < n; i++ {
		select {
		case resp := <-w.Responses():
			_, dup := responses[resp.ID]
			assert.False(t, dup, "more than one response to %s", resp.ID)
			responses[resp.ID] = resp
		case <-time.After(5 * time.Second):
			t.Fatalf("worker did not respond, got %d of %d responses", i, n)
		}
	}
	return responses
}

func TestWorkerCorrelatesResponses(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	p := pipeline.New(pipeline.Config{Source: fontSource()})
	p.LoadFonts(context.Background(), []string{"simkai"})
	w := StartWorker(p)
	defer w.Terminate()
	require.NoError(t, w.Post(renderRequest(t, "r1", "Hello World")))
	require.NoError(t, w.Post(renderRequest(t, "r2", "He")))
	responses := receive(t, w, 2)
	for id, glyphs := range map[string]int{"r1": 10, "r2": 2} {
		resp, ok := responses[id]
		require.True(t, ok, "no response for %s", id)
		assert.True(t, resp.Success)
		assert.Equal(t, OpRender, resp.Type)
		msg, err := decodeRender(&resp)
		require.NoError(t, err)
		res, err := transfer.Decode(msg)
		require.NoError(t, err)
		assert.Len(t, res.Root.Find(geometry.RoleGlyph), glyphs, id)
	}
}

func TestWorkerOperations(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	w := StartWorker(pipeline.New(pipeline.Config{Source: fontSource()}))
	defer w.Terminate()
	load, err := NewRequest(OpLoadFonts, "load", LoadFontsData{Fonts: []string{"TXT", "nope"}})
	require.NoError(t, err)
	require.NoError(t, w.Post(load))
	resp := receive(t, w, 1)["load"]
	require.True(t, resp.Success)
	var loaded LoadFontsResult
	require.NoError(t, json.Unmarshal(resp.Data, &loaded))
	assert.Equal(t, []string{"txt"}, loaded.Loaded)
	//
	require.NoError(t, w.Post(Request{Type: OpGetAvailableFonts, ID: "list"}))
	resp = receive(t, w, 1)["list"]
	require.True(t, resp.Success)
	assert.Equal(t, OpGetAvailableFonts, resp.Type)
	var list ListFontsResult
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list.Fonts, 2)
	assert.Equal(t, "simkai", list.Fonts[0].Name)
	assert.True(t, list.Fonts[1].Loaded)
}

func TestWorkerErrors(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	w := StartWorker(pipeline.New(pipeline.Config{Source: fontSource()}))
	require.NoError(t, w.Post(Request{Type: "explode", ID: "x"}))
	require.NoError(t, w.Post(Request{Type: OpRender, ID: "y", Data: json.RawMessage(`{"mtextContent":`)}))
	require.NoError(t, w.Post(Request{Type: OpLoadFonts, ID: "z"}))
	responses := receive(t, w, 3)
	unknown := responses["x"]
	assert.False(t, unknown.Success)
	assert.Equal(t, OpError, unknown.Type)
	assert.Contains(t, unknown.Error, "explode")
	assert.Equal(t, core.EUNKNOWNOP, core.Code(unknown.Err()))
	for _, id := range []string{"y", "z"} {
		assert.False(t, responses[id].Success, id)
		assert.NotEqual(t, OpError, responses[id].Type, id)
		assert.NotEmpty(t, responses[id].Error, id)
	}
	// still alive
	require.NoError(t, w.Post(Request{Type: OpListFonts, ID: "alive"}))
	assert.True(t, receive(t, w, 1)["alive"].Success)
	w.Terminate()
	w.Terminate()
	assert.Equal(t, core.EDESTROYED, core.Code(w.Post(Request{Type: OpListFonts, ID: "late"})))
}

func TestInlineAndDelegatedAgree(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	ctx := context.Background()
	c := New(WithFontSource(fontSource()))
	defer c.Destroy()
	assert.Equal(t, Inline, c.Mode())
	loaded, err := c.LoadFonts(ctx, []string{"simkai"})
	require.NoError(t, err)
	assert.Equal(t, []string{"simkai"}, loaded)
	doc := &mtext.Document{Width: 6, Paragraphs: []mtext.Paragraph{
		{Runs: []mtext.TextRun{{Text: "Hello World", Color: mtext.Color(color.Index(1)),
			Decorations: mtext.Underline}}},
		{Runs: []mtext.TextRun{{Stack: &mtext.Stack{Parts: []string{"1", "2"}, Divider: mtext.DividerBar}}}},
	}}
	inline, err := c.Render(ctx, doc, nil, color.DefaultContext())
	require.NoError(t, err)
	//
	c.SetMode(Delegated)
	assert.Equal(t, Delegated, c.Mode())
	loaded, err = c.LoadFonts(ctx, []string{"simkai"})
	require.NoError(t, err)
	assert.Equal(t, []string{"simkai"}, loaded, "worker loads fonts separately")
	delegated, err := c.Render(ctx, doc, nil, color.DefaultContext())
	require.NoError(t, err)
	if diff := cmp.Diff(inline, delegated, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("delegated geometry differs (-inline +delegated):\n%s", diff)
	}
	fonts, err := c.ListFonts(ctx)
	require.NoError(t, err)
	assert.Len(t, fonts, 2)
	assert.Equal(t, 0, c.Pending())
}

func TestConcurrentDelegatedRenders(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	ctx := context.Background()
	c := New(WithFontSource(fontSource()), WithMode(Delegated))
	defer c.Destroy()
	_, err := c.LoadFonts(ctx, []string{"simkai"})
	require.NoError(t, err)
	texts := []string{"H", "He", "Hel", "Hell", "Hello", "Hello W", "Hello Wo", "Hello Wor"}
	counts := make([]int, len(texts))
	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			res, err := c.Render(ctx, mtext.Plain(text), nil, color.DefaultContext())
			if assert.NoError(t, err) {
				counts[i] = len(res.Root.Find(geometry.RoleGlyph))
			}
		}(i, text)
	}
	wg.Wait()
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, counts)
	assert.Equal(t, 0, c.Pending())
}

func TestDelegatedCallsCompleteOutOfOrder(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	src := blockingSource{MemorySource: fontSource(), release: make(chan struct{})}
	c := New(WithFontSource(src), WithMode(Delegated))
	defer c.Destroy()
	type loadResult struct {
		loaded []string
		err    error
	}
	loads := make(chan loadResult, 1)
	go func() {
		loaded, err := c.LoadFonts(context.Background(), []string{"simkai"})
		loads <- loadResult{loaded: loaded, err: err}
	}()
	assert.Eventually(t, func() bool { return c.Pending() == 1 }, 5*time.Second, 5*time.Millisecond)
	res, err := c.Render(context.Background(), mtext.Plain("He"), nil, color.DefaultContext())
	require.NoError(t, err, "later request answered while the earlier one waits")
	assert.Len(t, res.Root.Find(geometry.RoleGlyph), 2)
	select {
	case <-loads:
		t.Fatal("font load completed before its font was released")
	default:
	}
	assert.Equal(t, 1, c.Pending())
	close(src.release)
	select {
	case r := <-loads:
		require.NoError(t, r.err)
		assert.Equal(t, []string{"simkai"}, r.loaded)
	case <-time.After(5 * time.Second):
		t.Fatal("font load not answered")
	}
	assert.Equal(t, 0, c.Pending())
}

func TestDestroyAbandonsPendingCalls(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	src := blockingSource{MemorySource: fontSource(), release: make(chan struct{})}
	c := New(WithFontSource(src), WithMode(Delegated))
	errs := make(chan error, 1)
	go func() {
		_, err := c.LoadFonts(context.Background(), []string{"simkai"})
		errs <- err
	}()
	assert.Eventually(t, func() bool { return c.Pending() == 1 }, 5*time.Second, 5*time.Millisecond)
	c.Destroy()
	select {
	case err := <-errs:
		assert.Equal(t, core.EDESTROYED, core.Code(err))
	case <-time.After(5 * time.Second):
		t.Fatal("pending call not abandoned")
	}
	assert.Equal(t, 0, c.Pending())
	_, err := c.Render(context.Background(), mtext.Plain("x"), nil, color.DefaultContext())
	assert.Equal(t, core.EDESTROYED, core.Code(err))
	c.SetMode(Inline)
	_, err = c.ListFonts(context.Background())
	assert.Equal(t, core.EDESTROYED, core.Code(err))
	c.Destroy()
}

func TestCanceledCallIsForgotten(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	src := blockingSource{MemorySource: fontSource(), release: make(chan struct{})}
	c := New(WithFontSource(src), WithMode(Delegated))
	defer c.Destroy()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.LoadFonts(ctx, []string{"simkai"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, c.Pending())
	close(src.release)
	assert.Eventually(t, func() bool {
		loaded, err := c.LoadFonts(context.Background(), []string{"simkai"})
		return err == nil && len(loaded) == 1
	}, 5*time.Second, 10*time.Millisecond, "worker keeps serving after a caller gave up")
}

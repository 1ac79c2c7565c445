package color

import (
	"encoding/json"
	"testing"

	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIndirections(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	ctx := Context{ByLayer: 0x112233, ByBlock: 0x445566}
	assert.Equal(t, RGB(0x112233), ctx.Resolve(ByLayer()))
	assert.Equal(t, RGB(0x445566), ctx.Resolve(ByBlock()))
	assert.Equal(t, ctx.Resolve(ByBlock()), ctx.Resolve(Index(0)), "index 0 is ByBlock")
	assert.Equal(t, ctx.Resolve(ByLayer()), ctx.Resolve(Index(256)), "index 256 is ByLayer")
	assert.Equal(t, RGB(0x112233), ctx.Resolve(Ref{}), "zero reference is ByLayer")
	assert.Equal(t, RGB(0x112233), ctx.Resolve(Index(999)))
}

func TestResolveACI(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	ctx := DefaultContext()
	assert.Equal(t, RGB(0xff0000), ctx.Resolve(Index(1)), "ACI 1 is red")
	assert.Equal(t, RGB(0xffff00), ctx.Resolve(Index(2)))
	assert.Equal(t, RGB(0x0000ff), ctx.Resolve(Index(5)))
	assert.Equal(t, RGB(0xff0000), ctx.Resolve(Index(10)), "ACI 10 is saturated red")
	assert.Equal(t, RGB(0xffffff), ctx.Resolve(Index(255)))
	for n, rgb := range map[int]RGB{
		11: 0xff7f7f, 12: 0xcc0000, 13: 0xcc6666, 17: 0x7f3f3f, 19: 0x4c2626,
		20: 0xff3f00, 21: 0xff9f7f, 23: 0xcc7f66, 25: 0x995f4c, 27: 0x7f4f3f, 29: 0x4c2f26,
		30: 0xff7f00, 31: 0xffbf7f, 40: 0xffbf00, 60: 0xbfff00, 130: 0x00ffff,
		170: 0x0000ff, 250: 0x333333, 251: 0x5b5b5b, 252: 0x848484, 253: 0xadadad, 254: 0xd6d6d6,
	} {
		got, ok := ACI(n)
		assert.True(t, ok)
		assert.Equal(t, rgb, got, "ACI %d is %s, expected %s", n, got, rgb)
	}
	assert.Equal(t, RGB(0xfedcba), ctx.Resolve(Explicit(0xfedcba)))
	_, ok := ACI(0)
	assert.False(t, ok)
	for n := 1; n < 256; n++ {
		_, ok := ACI(n)
		assert.True(t, ok)
	}
}

func TestColorJSON(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	ctx := Context{ByLayer: 0xff8000, ByBlock: 0x000001}
	data, err := json.Marshal(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"byLayerColor":"#ff8000","byBlockColor":"#000001"}`, string(data))
	var back Context
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ctx, back)
	require.NoError(t, json.Unmarshal([]byte(`{"byLayerColor":255}`), &back))
	assert.Equal(t, RGB(255), back.ByLayer)
}

package mtext

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/mtext/core/color"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentFractions(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	fx, fy := Attachment(0).Fractions()
	assert.Equal(t, [2]float64{0, 1}, [2]float64{fx, fy})
	fx, fy = MiddleCenter.Fractions()
	assert.Equal(t, [2]float64{0.5, 0.5}, [2]float64{fx, fy})
	fx, fy = BottomRight.Fractions()
	assert.Equal(t, [2]float64{1, 0}, [2]float64{fx, fy})
}

func TestSpacing(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	assert.Equal(t, 0.5, Spacing{}.Apply(0.5, 2))
	assert.InDelta(t, 0.75, Spacing{Mode: Relative, Value: 0.5}.Apply(0.5, 2), 1e-9)
	assert.InDelta(t, 0.7, Spacing{Mode: Absolute, Value: 0.1}.Apply(0.5, 2), 1e-9)
}

func TestRunProperties(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	d := Underline | Strike
	assert.True(t, d.Has(Strike))
	assert.False(t, d.Has(Overline))
	assert.Equal(t, "{underline,strike}", d.String())
	r := TextRun{Stack: &Stack{Parts: []string{"1", "1", "2"}, Divider: DividerBar}}
	assert.True(t, r.Atomic())
	whole, num, denom := r.Stack.Fraction()
	assert.Equal(t, []string{"1", "1", "2"}, []string{whole, num, denom})
	assert.True(t, (&TextRun{Text: "x", Shift: Superscript}).Atomic())
	p := Paragraph{LineBreaks: []int{0, 2}}
	assert.False(t, p.BreaksBefore(0), "first run starts a line anyway")
	assert.True(t, p.BreaksBefore(2))
	assert.True(t, (&Document{}).Empty())
	assert.False(t, Plain("x").Empty())
}

func TestDocumentJSON(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	doc := &Document{
		Style:  "Standard",
		Height: 2.5,
		Width:  40,
		Paragraphs: []Paragraph{{
			Alignment: AlignCenter,
			Runs: []TextRun{
				{Text: "Hello", Color: Color(color.Index(1)), Format: Format{Font: "txt", Oblique: Float(15)}},
				{Stack: &Stack{Parts: []string{"1", "2"}, Divider: DividerSlash}},
			},
		}},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	var back Document
	require.NoError(t, json.Unmarshal(data, &back))
	if diff := cmp.Diff(doc, &back); diff != "" {
		t.Errorf("document changed by JSON round trip (-want +got):\n%s", diff)
	}
}

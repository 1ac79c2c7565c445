/*
Package transfer encodes geometry results for handing them across an
execution boundary.

A message consists of a header and a payload. The header is a plain,
JSON-serializable description of the node tree: roles, transforms, colors
and, for every primitive, references to payload buffers. The payload is a
list of raw binary buffers holding vertex positions (float32 xyz) and
triangle indices (uint32), little-endian.

On little-endian hosts encoding and decoding re-interpret the numeric
slices in place. Buffers are then shared between the geometry and the
message, and ownership of them passes with the message.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package transfer

import (
	"github.com/npillmayer/mtext/core/color"
	"github.com/npillmayer/mtext/engine/geometry"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mtext.transfer'.
func tracer() tracing.Trace {
	return tracing.Select("mtext.transfer")
}

// Version is the header format version written by Encode.
const Version = 1

// Message is an encoded geometry result.
type Message struct {
	Header  Header
	Payload [][]byte
}

// Header describes the encoded node tree.
type Header struct {
	Version int          `json:"version"`
	Root    NodeHeader   `json:"root"`
	Box     geometry.Box `json:"box"`
}

// NodeHeader describes a node and, recursively, its children.
type NodeHeader struct {
	Role       string             `json:"role"`
	Text       string             `json:"text,omitempty"`
	Transform  geometry.Transform `json:"transform"`
	Color      color.Ref          `json:"color"`
	Primitives []PrimitiveHeader  `json:"primitives,omitempty"`
	Children   []NodeHeader       `json:"children,omitempty"`
}

// PrimitiveHeader describes a primitive. Its vertex data lives in payload
// buffer Position, its triangle indices (if any) in payload buffer Index.
type PrimitiveHeader struct {
	Kind     string     `json:"kind"`
	Color    color.RGB  `json:"color"`
	Position BufferRef  `json:"position"`
	Index    *BufferRef `json:"index,omitempty"`
}

// BufferRef references a payload buffer. Stride is the byte size of a
// single element, ItemSize the number of elements per item (3 for xyz
// positions, 1 for indices).
type BufferRef struct {
	Index      int `json:"index"`
	ByteLength int `json:"byteLength"`
	Stride     int `json:"stride"`
	ItemSize   int `json:"itemSize"`
}

// Count is the number of elements in the referenced buffer.
func (ref BufferRef) Count() int {
	if ref.Stride <= 0 {
		return 0
	}
	return ref.ByteLength / ref.Stride
}

const (
	float32Size = 4
	uint32Size  = 4
)

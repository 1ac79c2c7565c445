package transfer

import (
	"github.com/npillmayer/mtext/core"
	"github.com/npillmayer/mtext/engine/geometry"
)

// Encode creates a message from a geometry result.
func Encode(res *geometry.Result) (*Message, error) {
	if res == nil || res.Root == nil {
		return nil, core.Error(core.EINVALID, "cannot encode empty geometry result")
	}
	enc := &encoder{}
	root, err := enc.node(res.Root)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("encoded geometry into %d buffers", len(enc.payload))
	return &Message{
		Header:  Header{Version: Version, Root: root, Box: res.Box},
		Payload: enc.payload,
	}, nil
}

type encoder struct {
	payload [][]byte
}

func (enc *encoder) node(n *geometry.Node) (NodeHeader, error) {
	h := NodeHeader{
		Role:      n.Role.String(),
		Text:      n.Text,
		Transform: n.Transform,
		Color:     n.Color,
	}
	for i := range n.Primitives {
		p, err := enc.primitive(&n.Primitives[i])
		if err != nil {
			return h, err
		}
		h.Primitives = append(h.Primitives, p)
	}
	for _, ch := range n.Children {
		if ch == nil {
			continue
		}
		c, err := enc.node(ch)
		if err != nil {
			return h, err
		}
		h.Children = append(h.Children, c)
	}
	return h, nil
}

func (enc *encoder) primitive(p *geometry.Primitive) (PrimitiveHeader, error) {
	if len(p.Vertices)%3 != 0 {
		return PrimitiveHeader{}, core.Error(core.ECODEC,
			"vertex data of %s primitive is not made of xyz triples", p.Kind)
	}
	h := PrimitiveHeader{Kind: p.Kind.String(), Color: p.Color}
	h.Position = enc.buffer(float32Bytes(p.Vertices), float32Size, 3)
	if p.Indices != nil || p.Kind == geometry.Triangles {
		ref := enc.buffer(uint32Bytes(p.Indices), uint32Size, 1)
		h.Index = &ref
	}
	return h, nil
}

func (enc *encoder) buffer(b []byte, stride, itemSize int) BufferRef {
	enc.payload = append(enc.payload, b)
	return BufferRef{
		Index:      len(enc.payload) - 1,
		ByteLength: len(b),
		Stride:     stride,
		ItemSize:   itemSize,
	}
}

// Decode re-creates a geometry result from a message. Every reference
// in the header is checked against the payload; a mismatch results in an
// error with code ECODEC.
func Decode(msg *Message) (*geometry.Result, error) {
	if msg == nil {
		return nil, core.Error(core.ECODEC, "no message to decode")
	}
	if msg.Header.Version != Version {
		return nil, core.Error(core.ECODEC, "unsupported header version %d", msg.Header.Version)
	}
	dec := &decoder{payload: msg.Payload}
	root, err := dec.node(&msg.Header.Root)
	if err != nil {
		tracer().Errorf("cannot decode geometry: %v", err)
		return nil, err
	}
	return &geometry.Result{Root: root, Box: msg.Header.Box}, nil
}

type decoder struct {
	payload [][]byte
}

func (dec *decoder) node(h *NodeHeader) (*geometry.Node, error) {
	role, ok := geometry.ParseRole(h.Role)
	if !ok {
		return nil, core.Error(core.ECODEC, "unknown node role %q", h.Role)
	}
	n := geometry.NewNode(role)
	n.Text = h.Text
	n.Transform = h.Transform
	n.Color = h.Color
	for i := range h.Primitives {
		p, err := dec.primitive(&h.Primitives[i])
		if err != nil {
			return nil, err
		}
		n.Primitives = append(n.Primitives, p)
	}
	for i := range h.Children {
		ch, err := dec.node(&h.Children[i])
		if err != nil {
			return nil, err
		}
		n.Add(ch)
	}
	return n, nil
}

func (dec *decoder) primitive(h *PrimitiveHeader) (geometry.Primitive, error) {
	var p geometry.Primitive
	kind, ok := geometry.ParseKind(h.Kind)
	if !ok {
		return p, core.Error(core.ECODEC, "unknown primitive kind %q", h.Kind)
	}
	p.Kind, p.Color = kind, h.Color
	b, err := dec.buffer(h.Position, float32Size, 3)
	if err != nil {
		return p, err
	}
	p.Vertices = bytesFloat32(b)
	if h.Index == nil {
		if kind == geometry.Triangles {
			return p, core.Error(core.ECODEC, "triangle primitive without index buffer")
		}
		return p, nil
	}
	if b, err = dec.buffer(*h.Index, uint32Size, 1); err != nil {
		return p, err
	}
	p.Indices = bytesUint32(b)
	if p.Indices == nil {
		p.Indices = []uint32{}
	}
	if kind == geometry.Triangles && len(p.Indices)%3 != 0 {
		return p, core.Error(core.ECODEC, "%d indices do not form triangles", len(p.Indices))
	}
	count := uint32(p.VertexCount())
	for _, i := range p.Indices {
		if i >= count {
			return p, core.Error(core.ECODEC, "index %d out of range of %d vertices", i, count)
		}
	}
	return p, nil
}

func (dec *decoder) buffer(ref BufferRef, stride, itemSize int) ([]byte, error) {
	if ref.Index < 0 || ref.Index >= len(dec.payload) {
		return nil, core.Error(core.ECODEC, "buffer %d missing from payload of %d buffers",
			ref.Index, len(dec.payload))
	}
	if ref.Stride != stride || ref.ItemSize != itemSize {
		return nil, core.Error(core.ECODEC, "buffer %d has stride %d and item size %d, expected %d and %d",
			ref.Index, ref.Stride, ref.ItemSize, stride, itemSize)
	}
	b := dec.payload[ref.Index]
	if len(b) != ref.ByteLength {
		return nil, core.Error(core.ECODEC, "buffer %d has %d bytes, header claims %d",
			ref.Index, len(b), ref.ByteLength)
	}
	if ref.ByteLength%(stride*itemSize) != 0 {
		return nil, core.Error(core.ECODEC, "buffer %d is not made of whole items", ref.Index)
	}
	return b, nil
}

package shx

import (
	"bytes"
	"errors"
)

// Reading bytes from a shape file's binary representation

var errBufferBounds = errors.New("shape data truncated")

// binarySegm is a segment of byte data. Numbers in shape files are
// little endian, except for subshape references in unifonts and bigfonts.
type binarySegm []byte

func (b binarySegm) u8(i int) (uint8, error) {
	if i < 0 || i >= len(b) {
		return 0, errBufferBounds
	}
	return b[i], nil
}

func (b binarySegm) u16(i int) (uint16, error) {
	if i < 0 || i+1 >= len(b) {
		return 0, errBufferBounds
	}
	return uint16(b[i]) | uint16(b[i+1])<<8, nil
}

func (b binarySegm) u16be(i int) (uint16, error) {
	if i < 0 || i+1 >= len(b) {
		return 0, errBufferBounds
	}
	return uint16(b[i])<<8 | uint16(b[i+1]), nil
}

func (b binarySegm) u32(i int) (uint32, error) {
	if i < 0 || i+3 >= len(b) {
		return 0, errBufferBounds
	}
	return uint32(b[i]) | uint32(b[i+1])<<8 | uint32(b[i+2])<<16 | uint32(b[i+3])<<24, nil
}

func (b binarySegm) slice(from, to int) (binarySegm, error) {
	if from < 0 || to > len(b) || from > to {
		return nil, errBufferBounds
	}
	return b[from:to], nil
}

// cstring reads a zero-terminated string starting at i. It returns the
// string and the position after the terminating zero.
func (b binarySegm) cstring(i int) (string, int) {
	if i >= len(b) {
		return "", len(b)
	}
	end := bytes.IndexByte(b[i:], 0)
	if end < 0 {
		return string(b[i:]), len(b)
	}
	return string(b[i : i+end]), i + end + 1
}

// cursor reads consecutive values from a segment. The first error sticks.
type cursor struct {
	b   binarySegm
	pos int
	err error
}

func (c *cursor) u8() uint8 {
	if c.err != nil {
		return 0
	}
	var n uint8
	n, c.err = c.b.u8(c.pos)
	c.pos++
	return n
}

func (c *cursor) i8() int8 {
	return int8(c.u8())
}

func (c *cursor) u16() uint16 {
	if c.err != nil {
		return 0
	}
	var n uint16
	n, c.err = c.b.u16(c.pos)
	c.pos += 2
	return n
}

func (c *cursor) u16be() uint16 {
	if c.err != nil {
		return 0
	}
	var n uint16
	n, c.err = c.b.u16be(c.pos)
	c.pos += 2
	return n
}

func (c *cursor) u32() uint32 {
	if c.err != nil {
		return 0
	}
	var n uint32
	n, c.err = c.b.u32(c.pos)
	c.pos += 4
	return n
}

func (c *cursor) bytes(n int) binarySegm {
	if c.err != nil {
		return nil
	}
	var s binarySegm
	s, c.err = c.b.slice(c.pos, c.pos+n)
	c.pos += n
	return s
}

func (c *cursor) done() bool {
	return c.err != nil || c.pos >= len(c.b)
}

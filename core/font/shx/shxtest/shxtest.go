/*
Package shxtest creates synthetic SHX fonts for tests.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package shxtest

import (
	"bytes"
	"encoding/binary"
	"sort"
	"unicode"
)

// Above is the capital height of fonts created by Bars.
const Above = 8

// Bars encodes a shapes font containing the characters of chars. Every
// printable character is a vertical bar of capital height at its left edge,
// blank characters do not draw anything. All characters advance by one
// capital height, i.e. by one unit after normalization.
func Bars(name string, chars string) []byte {
	progs := make(map[uint16][]byte)
	for _, r := range chars {
		if unicode.IsSpace(r) {
			progs[uint16(r)] = []byte{0x2, 0x80, 0x0} // pen up, right 8
			continue
		}
		// pen down, up 8, pen up, right 8, down 8
		progs[uint16(r)] = []byte{0x1, 0x84, 0x2, 0x80, 0x8c, 0x0}
	}
	return Shapes(name, Above, progs)
}

// Shapes encodes a shapes font from shape programs, keyed by character
// code.
func Shapes(name string, above uint8, progs map[uint16][]byte) []byte {
	codes := make([]int, 0, len(progs))
	for c := range progs {
		codes = append(codes, int(c))
	}
	sort.Ints(codes)
	defs := [][]byte{append([]byte(name+"\x00"), above, 2, 0, 0)}
	for _, c := range codes {
		defs = append(defs, append([]byte{0}, progs[uint16(c)]...))
	}
	var b bytes.Buffer
	b.WriteString("AutoCAD-86 shapes 1.0\r\n\x1a")
	last := 0
	if len(codes) > 0 {
		last = codes[len(codes)-1]
	}
	for _, n := range []int{0, last, len(defs)} {
		binary.Write(&b, binary.LittleEndian, uint16(n))
	}
	binary.Write(&b, binary.LittleEndian, uint16(0))
	binary.Write(&b, binary.LittleEndian, uint16(len(defs[0])))
	for i, c := range codes {
		binary.Write(&b, binary.LittleEndian, uint16(c))
		binary.Write(&b, binary.LittleEndian, uint16(len(defs[i+1])))
	}
	for _, d := range defs {
		b.Write(d)
	}
	return b.Bytes()
}

package shx

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/mtext/core"
	"github.com/npillmayer/mtext/core/font"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// Signature starts every compiled shape file.
const Signature = "AutoCAD-86"

// IsSHX checks for the shape file signature.
func IsSHX(data []byte) bool {
	return bytes.HasPrefix(data, []byte(Signature))
}

type flavour uint8

const (
	shapes flavour = iota
	unifont
	bigfont
)

func (f flavour) String() string {
	switch f {
	case unifont:
		return "unifont"
	case bigfont:
		return "bigfont"
	}
	return "shapes"
}

// CAD special characters in single byte shape fonts.
var specialCodes = map[rune]uint16{
	'°': 127, // %%d
	'±': 128, // %%p
	'⌀': 129, // %%c
}

type fontInfo struct {
	name  string
	above uint8 // height of capitals in design units
	below uint8
	modes uint8
}

func parseInfo(name string, b binarySegm) fontInfo {
	info := fontInfo{name: name}
	info.above, _ = b.u8(0)
	info.below, _ = b.u8(1)
	info.modes, _ = b.u8(2)
	return info
}

// ShapeFont is a decoded shape file. It implements font.Glyphs; glyph
// programs are interpreted on demand.
type ShapeFont struct {
	flavour flavour
	info    fontInfo
	units   float64
	defs    map[uint16]binarySegm // shape code → pen program
	ranges  [][2]uint16           // bigfont escape byte ranges
}

var _ font.Glyphs = (*ShapeFont)(nil)

// Parse decodes a shape file into a stroke font record.
// Malformed data results in an error with code core.EFONTDECODE.
func Parse(name string, data []byte) (*font.Record, error) {
	sf, err := Decode(data)
	if err != nil {
		return nil, core.WrapError(err, core.EFONTDECODE, "cannot decode SHX font %s", name)
	}
	tracer().Infof("decoded %s font %s (%q) with %d shapes", sf.flavour, name, sf.info.name, len(sf.defs))
	return font.NewRecord(name, font.Stroke, sf), nil
}

// Decode parses the structure of a shape file.
func Decode(data []byte) (*ShapeFont, error) {
	if !IsSHX(data) {
		return nil, errors.New("missing shape file signature")
	}
	eoh := bytes.IndexByte(data, 0x1a)
	if eoh < 0 {
		return nil, errors.New("unterminated shape file header")
	}
	header := strings.ToLower(string(data[:eoh]))
	sf := &ShapeFont{defs: make(map[uint16]binarySegm)}
	c := &cursor{b: binarySegm(data), pos: eoh + 1}
	var err error
	switch {
	case strings.Contains(header, "unifont"):
		sf.flavour = unifont
		err = sf.parseUnifont(c)
	case strings.Contains(header, "bigfont"):
		sf.flavour = bigfont
		err = sf.parseBigfont(c)
	case strings.Contains(header, "shapes"):
		sf.flavour = shapes
		err = sf.parseShapes(c)
	default:
		return nil, fmt.Errorf("unknown shape file type %q", strings.TrimSpace(header))
	}
	if err != nil {
		return nil, err
	}
	if len(sf.defs) == 0 {
		return nil, errors.New("shape file contains no shapes")
	}
	sf.units = float64(sf.info.above)
	if sf.units == 0 {
		sf.units = sf.estimateAbove()
	}
	return sf, nil
}

func (sf *ShapeFont) parseShapes(c *cursor) error {
	first, last, count := c.u16(), c.u16(), c.u16()
	if c.err != nil {
		return c.err
	}
	tracer().Debugf("shape file has %d shapes in [%d…%d]", count, first, last)
	type entry struct{ code, length uint16 }
	index := make([]entry, count)
	for i := range index {
		index[i] = entry{c.u16(), c.u16()}
	}
	if c.err != nil {
		return fmt.Errorf("shape index: %w", c.err)
	}
	for _, e := range index {
		def := c.bytes(int(e.length))
		if c.err != nil {
			return fmt.Errorf("shape %d: %w", e.code, c.err)
		}
		sf.store(e.code, def)
	}
	return nil
}

func (sf *ShapeFont) parseUnifont(c *cursor) error {
	count := c.u32()
	info := c.bytes(int(c.u16()))
	if c.err != nil {
		return fmt.Errorf("unifont header: %w", c.err)
	}
	name, pos := info.cstring(0)
	sf.info = parseInfo(name, info[pos:])
	for i := uint32(1); i < count && !c.done(); i++ {
		code, length := c.u16(), c.u16()
		def := c.bytes(int(length))
		if c.err != nil {
			return fmt.Errorf("shape %d: %w", code, c.err)
		}
		sf.store(code, def)
	}
	return nil
}

func (sf *ShapeFont) parseBigfont(c *cursor) error {
	c.u16() // size of header
	count, nranges := c.u16(), c.u16()
	for i := 0; i < int(nranges); i++ {
		sf.ranges = append(sf.ranges, [2]uint16{c.u16(), c.u16()})
	}
	if c.err != nil {
		return fmt.Errorf("bigfont header: %w", c.err)
	}
	for i := 0; i < int(count); i++ {
		code, length, offset := c.u16(), c.u16(), c.u32()
		if c.err != nil {
			return fmt.Errorf("bigfont index: %w", c.err)
		}
		if length == 0 {
			continue // unused slot
		}
		def, err := c.b.slice(int(offset), int(offset)+int(length))
		if err != nil {
			return fmt.Errorf("shape %#04x: %w", code, err)
		}
		sf.store(code, def)
	}
	return nil
}

// store registers a shape definition, which is a zero-terminated name
// followed by the pen program. Shape 0 carries font information.
func (sf *ShapeFont) store(code uint16, def binarySegm) {
	name, pos := def.cstring(0)
	if code == 0 {
		sf.info = parseInfo(name, def[pos:])
		return
	}
	sf.defs[code] = def[pos:]
}

// estimateAbove measures capitals for fonts without a font info shape.
func (sf *ShapeFont) estimateAbove() float64 {
	for _, r := range []rune{'H', 'A', '0'} {
		if code, ok := sf.code(r); ok {
			if g, err := sf.interpret(code); err == nil {
				top := 0.0
				for _, s := range g.Strokes {
					for _, p := range s {
						if p.Y > top {
							top = p.Y
						}
					}
				}
				if top > 0 {
					return top
				}
			}
		}
	}
	return 1
}

// Name returns the font name stored in the shape file.
func (sf *ShapeFont) Name() string {
	return sf.info.name
}

// UnitsPerEm returns the height of capitals in design units.
func (sf *ShapeFont) UnitsPerEm() float64 {
	return sf.units
}

// Glyph interprets the pen program for r.
func (sf *ShapeFont) Glyph(r rune) (font.Glyph, bool) {
	code, ok := sf.code(r)
	if !ok {
		return font.Glyph{}, false
	}
	g, err := sf.interpret(code)
	if err != nil {
		tracer().Errorf("font %q, glyph %q: %v", sf.info.name, r, err)
		return font.Glyph{}, false
	}
	return g, true
}

// Runes lists the characters of the font.
func (sf *ShapeFont) Runes() []rune {
	runes := make([]rune, 0, len(sf.defs))
	for code := range sf.defs {
		if r, ok := sf.rune(code); ok {
			runes = append(runes, r)
		}
	}
	if sf.flavour == shapes {
		for r, code := range specialCodes {
			if _, ok := sf.defs[code]; ok {
				runes = append(runes, r)
			}
		}
	}
	return runes
}

// code maps a character to a shape number.
func (sf *ShapeFont) code(r rune) (uint16, bool) {
	var code uint16
	switch {
	case r < 0x80:
		code = uint16(r)
	case sf.flavour == bigfont:
		b, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(string(r)))
		if err != nil || len(b) != 2 {
			return 0, false
		}
		code = uint16(b[0])<<8 | uint16(b[1])
	case r > 0xffff:
		return 0, false
	default:
		code = uint16(r)
	}
	if _, ok := sf.defs[code]; ok {
		return code, true
	}
	if sf.flavour == shapes {
		if alt, ok := specialCodes[r]; ok {
			if _, ok := sf.defs[alt]; ok {
				return alt, true
			}
		}
	}
	return 0, false
}

// rune maps a shape number to a character.
func (sf *ShapeFont) rune(code uint16) (rune, bool) {
	if sf.flavour != bigfont || code < 0x80 {
		if sf.flavour == shapes && code > 0x7e && code < 0xa0 {
			return 0, false // CAD specials and control range
		}
		return rune(code), true
	}
	b, err := simplifiedchinese.GBK.NewDecoder().Bytes([]byte{byte(code >> 8), byte(code)})
	if err != nil {
		return 0, false
	}
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError || size != len(b) {
		return 0, false
	}
	return r, true
}

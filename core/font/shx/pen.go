package shx

import (
	"fmt"
	"math"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/mtext/core/font"
	"seehuhn.de/go/geom/vec"
)

// Pen program commands. Bytes above 0x0f are vectors.
const (
	cmdEnd         = 0x0
	cmdPenDown     = 0x1
	cmdPenUp       = 0x2
	cmdDivide      = 0x3
	cmdMultiply    = 0x4
	cmdPush        = 0x5
	cmdPop         = 0x6
	cmdSubshape    = 0x7
	cmdMove        = 0x8
	cmdMoveList    = 0x9
	cmdOctantArc   = 0xa
	cmdFractionArc = 0xb
	cmdBulgeArc    = 0xc
	cmdBulgeList   = 0xd
	cmdVertical    = 0xe
)

// directions of vector bytes, counter-clockwise from east
var directions = [16]vec.Vec2{
	{X: 1, Y: 0}, {X: 1, Y: .5}, {X: 1, Y: 1}, {X: .5, Y: 1},
	{X: 0, Y: 1}, {X: -.5, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: .5},
	{X: -1, Y: 0}, {X: -1, Y: -.5}, {X: -1, Y: -1}, {X: -.5, Y: -1},
	{X: 0, Y: -1}, {X: .5, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: -.5},
}

const octant = math.Pi / 4

// segments per full circle when flattening arcs
const arcSegments = 32

// pen is a virtual plotter executing shape programs.
type pen struct {
	sf     *ShapeFont
	pos    vec.Vec2
	down   bool
	scale  float64
	stack  *arraystack.Stack // saved positions
	active *hashset.Set      // shapes currently executing
	polys  [][]vec.Vec2
	cur    []vec.Vec2
}

// interpret runs the program of a shape and collects its polylines.
func (sf *ShapeFont) interpret(code uint16) (font.Glyph, error) {
	p := &pen{
		sf:     sf,
		down:   true,
		scale:  1,
		stack:  arraystack.New(),
		active: hashset.New(),
	}
	if err := p.run(code); err != nil {
		return font.Glyph{}, err
	}
	p.flush()
	return font.Glyph{Kind: font.Stroke, Strokes: p.polys, Advance: p.pos.X}, nil
}

func (p *pen) run(code uint16) error {
	if p.active.Contains(code) {
		return fmt.Errorf("shape %d is part of a reference cycle", code)
	}
	prog, ok := p.sf.defs[code]
	if !ok {
		return fmt.Errorf("reference to missing shape %d", code)
	}
	p.active.Add(code)
	defer p.active.Remove(code)
	c := &cursor{b: prog}
	for !c.done() {
		end, err := p.step(c)
		if err != nil {
			return fmt.Errorf("shape %d: %w", code, err)
		}
		if end {
			break
		}
	}
	return nil
}

func (p *pen) step(c *cursor) (end bool, err error) {
	b := c.u8()
	if c.err != nil {
		return true, c.err
	}
	if b > 0x0f {
		length := float64(b>>4) * p.scale
		d := directions[b&0x0f]
		p.lineTo(vec.Vec2{X: p.pos.X + d.X*length, Y: p.pos.Y + d.Y*length})
		return false, nil
	}
	switch b {
	case cmdEnd:
		return true, nil
	case cmdPenDown:
		p.down = true
	case cmdPenUp:
		p.down = false
		p.flush()
	case cmdDivide:
		if d := c.u8(); d != 0 {
			p.scale /= float64(d)
		}
	case cmdMultiply:
		if m := c.u8(); m != 0 {
			p.scale *= float64(m)
		}
	case cmdPush:
		p.stack.Push(p.pos)
	case cmdPop:
		if v, ok := p.stack.Pop(); ok {
			p.flush()
			p.pos = v.(vec.Vec2)
		}
	case cmdSubshape:
		return false, p.subshape(c)
	case cmdMove:
		dx, dy := c.i8(), c.i8()
		p.moveBy(dx, dy)
	case cmdMoveList:
		for {
			dx, dy := c.i8(), c.i8()
			if c.err != nil || (dx == 0 && dy == 0) {
				break
			}
			p.moveBy(dx, dy)
		}
	case cmdOctantArc:
		radius, oct := c.u8(), c.u8()
		p.octantArc(float64(radius), oct)
	case cmdFractionArc:
		startOff, endOff := c.u8(), c.u8()
		hi, lo := c.u8(), c.u8()
		oct := c.u8()
		p.fractionArc(float64(uint16(hi)<<8|uint16(lo)), startOff, endOff, oct)
	case cmdBulgeArc:
		dx, dy, bulge := c.i8(), c.i8(), c.i8()
		p.bulgeTo(dx, dy, bulge)
	case cmdBulgeList:
		for {
			dx, dy := c.i8(), c.i8()
			if c.err != nil || (dx == 0 && dy == 0) {
				break
			}
			p.bulgeTo(dx, dy, c.i8())
		}
	case cmdVertical:
		// the next command applies to vertical text only
		p.skip(c)
	}
	return false, c.err
}

func (p *pen) lineTo(q vec.Vec2) {
	if p.down {
		if len(p.cur) == 0 {
			p.cur = append(p.cur, p.pos)
		}
		p.cur = append(p.cur, q)
	}
	p.pos = q
}

func (p *pen) moveBy(dx, dy int8) {
	p.lineTo(vec.Vec2{
		X: p.pos.X + float64(dx)*p.scale,
		Y: p.pos.Y + float64(dy)*p.scale,
	})
}

// flush ends the current polyline.
func (p *pen) flush() {
	if len(p.cur) > 1 {
		p.polys = append(p.polys, p.cur)
	}
	p.cur = nil
}

// arc draws a circular arc from the current position, which has to lie on
// the circle, sweeping by sweep radians (positive is counter-clockwise).
func (p *pen) arc(center vec.Vec2, r, start, sweep float64) {
	n := int(math.Ceil(math.Abs(sweep) / (2 * math.Pi) * arcSegments))
	if n < 1 {
		n = 1
	}
	for i := 1; i <= n; i++ {
		a := start + sweep*float64(i)/float64(n)
		p.lineTo(vec.Vec2{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)})
	}
}

// decodeOctants decodes an octant specification: bit 7 is the direction
// (set for clockwise), bits 4–6 the starting octant and bits 0–2 the number
// of octants, where 0 means a full circle.
func decodeOctants(spec uint8) (start int, count int, cw bool) {
	start = int(spec>>4) & 0x7
	count = int(spec & 0x7)
	if count == 0 {
		count = 8
	}
	return start, count, spec&0x80 != 0
}

func (p *pen) octantArc(radius float64, spec uint8) {
	start, count, cw := decodeOctants(spec)
	r := radius * p.scale
	a0 := float64(start) * octant
	sweep := float64(count) * octant
	if cw {
		sweep = -sweep
	}
	center := vec.Vec2{X: p.pos.X - r*math.Cos(a0), Y: p.pos.Y - r*math.Sin(a0)}
	p.arc(center, r, a0, sweep)
}

// fractionArc draws an arc starting and ending at fractions of octants,
// where offsets are given in units of 1/256 octant.
func (p *pen) fractionArc(radius float64, startOff, endOff uint8, spec uint8) {
	start, count, cw := decodeOctants(spec)
	r := radius * p.scale
	dir := 1.0
	if cw {
		dir = -1
	}
	a0 := float64(start)*octant + dir*float64(startOff)/256*octant
	var a1 float64
	if endOff == 0 {
		a1 = float64(start)*octant + dir*float64(count)*octant
	} else {
		a1 = float64(start)*octant + dir*(float64(count-1)+float64(endOff)/256)*octant
	}
	center := vec.Vec2{X: p.pos.X - r*math.Cos(a0), Y: p.pos.Y - r*math.Sin(a0)}
	p.arc(center, r, a0, a1-a0)
}

// bulgeTo draws an arc to a relative end point. The bulge is the arc's
// height relative to half the chord, scaled to ±127; 0 is a straight line
// and positive values bend counter-clockwise.
func (p *pen) bulgeTo(dx, dy, bulge int8) {
	q := vec.Vec2{X: p.pos.X + float64(dx)*p.scale, Y: p.pos.Y + float64(dy)*p.scale}
	cx, cy := q.X-p.pos.X, q.Y-p.pos.Y
	d := math.Hypot(cx, cy)
	if bulge == 0 || d == 0 {
		p.lineTo(q)
		return
	}
	theta := 4 * math.Atan(float64(bulge)/127)
	nx, ny := -cy/d, cx/d // left normal of the chord
	h := d / 2 / math.Tan(theta/2)
	center := vec.Vec2{X: (p.pos.X+q.X)/2 + nx*h, Y: (p.pos.Y+q.Y)/2 + ny*h}
	r := math.Hypot(p.pos.X-center.X, p.pos.Y-center.Y)
	a0 := math.Atan2(p.pos.Y-center.Y, p.pos.X-center.X)
	p.arc(center, r, a0, theta)
	p.snap(q)
}

// snap moves the end of the current path exactly onto q.
func (p *pen) snap(q vec.Vec2) {
	if p.down && len(p.cur) > 0 {
		p.cur[len(p.cur)-1] = q
	}
	p.pos = q
}

// subshape executes another shape at the current position. Extended bigfont
// references place the shape into a box of given origin and height.
func (p *pen) subshape(c *cursor) error {
	var code uint16
	extended := false
	var x, y, w, h uint8
	switch p.sf.flavour {
	case unifont:
		code = c.u16be()
	case bigfont:
		if code = uint16(c.u8()); code == 0 {
			code = c.u16be()
			x, y, w, h = c.u8(), c.u8(), c.u8(), c.u8()
			extended = true
		}
	default:
		code = uint16(c.u8())
	}
	if c.err != nil {
		return c.err
	}
	saved := p.scale
	if extended {
		p.flush()
		p.pos = vec.Vec2{X: float64(x), Y: float64(y)}
		if p.sf.info.above > 0 {
			p.scale = float64(h) / float64(p.sf.info.above)
		}
	}
	err := p.run(code)
	p.scale = saved
	if extended {
		p.flush()
		p.pos = vec.Vec2{X: float64(x) + float64(w), Y: float64(y)}
	}
	return err
}

// skip consumes the next command without executing it.
func (p *pen) skip(c *cursor) {
	b := c.u8()
	if b > 0x0f {
		return
	}
	switch b {
	case cmdDivide, cmdMultiply:
		c.u8()
	case cmdSubshape:
		switch p.sf.flavour {
		case unifont:
			c.u16be()
		case bigfont:
			if c.u8() == 0 {
				c.bytes(6)
			}
		default:
			c.u8()
		}
	case cmdMove:
		c.bytes(2)
	case cmdMoveList:
		for {
			dx, dy := c.u8(), c.u8()
			if c.err != nil || (dx == 0 && dy == 0) {
				break
			}
		}
	case cmdOctantArc:
		c.bytes(2)
	case cmdFractionArc:
		c.bytes(5)
	case cmdBulgeArc:
		c.bytes(3)
	case cmdBulgeList:
		for {
			dx, dy := c.u8(), c.u8()
			if c.err != nil || (dx == 0 && dy == 0) {
				break
			}
			c.u8()
		}
	}
}

package color

import "math"

// aciTable holds the AutoCAD Color Index. Entries 0 and 256 are not colors
// but aliases for ByBlock and ByLayer; they are left black here and never
// consulted by Resolve.
var aciTable [257]RGB

// ACI returns the true color of an ACI number 1…255. For every other
// number ok is false.
func ACI(n int) (rgb RGB, ok bool) {
	if n <= 0 || n >= IndexByLayer {
		return 0, false
	}
	return aciTable[n], true
}

// aciValues are the brightness steps of the ACI hue wheel.
var aciValues = [5]float64{255, 204, 153, 127, 76}

func init() {
	copy(aciTable[1:10], []RGB{
		0xff0000, // 1 red
		0xffff00, // 2 yellow
		0x00ff00, // 3 green
		0x00ffff, // 4 cyan
		0x0000ff, // 5 blue
		0xff00ff, // 6 magenta
		0xffffff, // 7 white/black
		0x808080, // 8 dark gray
		0xc0c0c0, // 9 light gray
	})
	// 10…249: 24 hues in steps of 15°, each with 5 brightness steps in a
	// saturated and a pale variant. Pale variants start at half brightness.
	for i := 10; i < 250; i++ {
		hue := float64((i-10)/10) * 15
		step := (i - 10) % 10
		v := aciValues[step/2]
		min := 0.0
		if step%2 == 1 {
			min = math.Floor(v / 2)
		}
		aciTable[i] = hsvRamp(hue, min, v)
	}
	copy(aciTable[250:256], []RGB{0x333333, 0x5b5b5b, 0x848484, 0xadadad, 0xd6d6d6, 0xffffff})
}

// hsvRamp converts a hue (degrees) with channel minimum min and maximum max
// into a color. Channels are truncated, as in the AutoCAD palette.
func hsvRamp(hue, min, max float64) RGB {
	c := max - min
	h := hue / 60
	x := c * (1 - math.Abs(math.Mod(h, 2)-1))
	var r, g, b float64
	switch int(h) % 6 {
	case 0:
		r, g, b = c, x, 0
	case 1:
		r, g, b = x, c, 0
	case 2:
		r, g, b = 0, c, x
	case 3:
		r, g, b = 0, x, c
	case 4:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	ch := func(f float64) uint8 {
		return uint8(math.Floor(f + min))
	}
	return FromComponents(ch(r), ch(g), ch(b))
}

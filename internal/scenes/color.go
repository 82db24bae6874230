package scenes

import (
	"math/rand/v2"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color represents an RGBA color with float components (0.0 to 1.0).
type Color struct {
	R, G, B, A float32
}

// FromColorful converts a go-colorful color to an opaque Color.
func FromColorful(c colorful.Color) Color {
	c = c.Clamped()
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: 1}
}

// Hex returns the color as "#rrggbb", ignoring alpha.
func (c Color) Hex() string {
	return colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}.Clamped().Hex()
}

// ColorGenerator produces a fresh scene color on demand.
type ColorGenerator interface {
	Next() Color
}

// ColorGeneratorFunc adapts a plain function to ColorGenerator.
type ColorGeneratorFunc func() Color

// Next calls f.
func (f ColorGeneratorFunc) Next() Color {
	return f()
}

// RandomHSV draws colors with uniformly random hue, saturation and value.
// Saturation and value are kept away from zero so scenes stay
// distinguishable from each other and from a black background.
type RandomHSV struct {
	rng *rand.Rand

	MinSaturation, MaxSaturation float64
	MinValue, MaxValue           float64
}

// NewRandomHSV creates a random color source. The same seed always yields
// the same color sequence.
func NewRandomHSV(seed uint64) *RandomHSV {
	return &RandomHSV{
		rng:           rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		MinSaturation: 0.45,
		MaxSaturation: 1.0,
		MinValue:      0.55,
		MaxValue:      1.0,
	}
}

// Next implements ColorGenerator.
func (g *RandomHSV) Next() Color {
	h := g.rng.Float64() * 360
	s := g.MinSaturation + g.rng.Float64()*(g.MaxSaturation-g.MinSaturation)
	v := g.MinValue + g.rng.Float64()*(g.MaxValue-g.MinValue)
	return FromColorful(colorful.Hsv(h, s, v))
}

// goldenAngle in degrees spreads successive hues as far apart as possible.
const goldenAngle = 137.50776405003785

// Palette walks the hue circle in golden-angle steps, so consecutive
// scenes get clearly different colors without any randomness.
type Palette struct {
	hue        float64
	Saturation float64
	Value      float64
}

// NewPalette creates a palette starting at the given hue (degrees).
func NewPalette(startHue float64) *Palette {
	return &Palette{hue: startHue, Saturation: 0.65, Value: 0.95}
}

// Next implements ColorGenerator.
func (p *Palette) Next() Color {
	c := FromColorful(colorful.Hsv(p.hue, p.Saturation, p.Value))
	p.hue += goldenAngle
	for p.hue >= 360 {
		p.hue -= 360
	}
	return c
}

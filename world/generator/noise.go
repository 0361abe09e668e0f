package generator

import (
	"math"

	"github.com/ojrac/opensimplex-go"
	"github.com/segmentio/fasthash/fnv1a"
)

// Field is a continuous two dimensional noise field. Eval returns values in
// the range [-1, 1].
type Field interface {
	Eval(x, z float64) float64
}

// Fractal is fractional Brownian motion over OpenSimplex noise: several
// octaves of noise with rising frequency and falling amplitude summed into a
// single field. Fractal is safe for concurrent use.
type Fractal struct {
	octaves     []opensimplex.Noise
	frequency   float64
	persistence float64
	lacunarity  float64
}

// FractalConfig holds the parameters of a Fractal field.
type FractalConfig struct {
	// Octaves is the amount of noise layers summed. Defaults to 4.
	Octaves int
	// Frequency is the frequency of the first octave. Defaults to
	// 0.2*(Pi-3), which gives hills a few chunks wide.
	Frequency float64
	// Persistence is the factor by which the amplitude falls per octave.
	// Defaults to 0.5.
	Persistence float64
	// Lacunarity is the factor by which the frequency rises per octave.
	// Defaults to 2.0943951.
	Lacunarity float64
}

func (c FractalConfig) withDefaults() FractalConfig {
	if c.Octaves <= 0 {
		c.Octaves = 4
	}
	if c.Frequency <= 0 {
		c.Frequency = 0.2 * (math.Pi - 3)
	}
	if c.Persistence <= 0 {
		c.Persistence = 0.5
	}
	if c.Lacunarity <= 0 {
		c.Lacunarity = math.Pi * 2 / 3
	}
	return c
}

// NewFractal creates a Fractal field for the world seed passed.
func (c FractalConfig) NewFractal(seed uint64) *Fractal {
	c = c.withDefaults()
	base := int64(fnv1a.HashUint64(seed))
	f := &Fractal{
		octaves:     make([]opensimplex.Noise, c.Octaves),
		frequency:   c.Frequency,
		persistence: c.Persistence,
		lacunarity:  c.Lacunarity,
	}
	for i := range f.octaves {
		f.octaves[i] = opensimplex.New(base + int64(i))
	}
	return f
}

// Eval samples the field at (x, z).
func (f *Fractal) Eval(x, z float64) float64 {
	var sum, norm float64
	amp, freq := 1.0, f.frequency
	for _, o := range f.octaves {
		sum += o.Eval2(x*freq, z*freq) * amp
		norm += amp
		amp *= f.persistence
		freq *= f.lacunarity
	}
	return math.Max(-1, math.Min(1, sum/norm))
}

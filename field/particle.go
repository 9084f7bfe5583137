package field

import (
	"errors"
	"fmt"
	"math"

	"github.com/lixenwraith/starfield/parameter"
	"github.com/lixenwraith/starfield/render"
)

// Particle is one drifting star; only X and Y change after creation
type Particle struct {
	X, Y      float64
	Radius    float64
	FallSpeed float64
	Opacity   float64
}

// IntRange is an inclusive integer range
type IntRange struct {
	Min, Max int
}

// FloatRange is a half-open range [Min, Max)
type FloatRange struct {
	Min, Max float64
}

// Params controls field population and appearance
type Params struct {
	Count     IntRange
	Radius    FloatRange
	FallSpeed FloatRange
	Opacity   FloatRange
	Color     render.RGB
}

// DefaultParams returns the standard starfield
func DefaultParams() Params {
	return Params{
		Count:     IntRange{Min: parameter.StarCountMin, Max: parameter.StarCountMax},
		Radius:    FloatRange{Min: parameter.StarRadiusMin, Max: parameter.StarRadiusMax},
		FallSpeed: FloatRange{Min: parameter.StarFallSpeedMin, Max: parameter.StarFallSpeedMax},
		Opacity:   FloatRange{Min: parameter.StarOpacityMin, Max: parameter.StarOpacityMax},
		Color:     render.RgbStar,
	}
}

var errEmptyRange = errors.New("min must be less than max")

// Validate checks every range is non-empty and within its domain
func (p Params) Validate() error {
	if p.Count.Min < 0 || p.Count.Min > p.Count.Max {
		return fmt.Errorf("count [%d, %d]: min must be non-negative and not above max", p.Count.Min, p.Count.Max)
	}
	checks := []struct {
		name     string
		r        FloatRange
		hi       float64
		positive bool
	}{
		{"radius", p.Radius, math.Inf(1), true},
		{"fall speed", p.FallSpeed, math.Inf(1), true},
		{"opacity", p.Opacity, 1, false},
	}
	for _, c := range checks {
		if !(c.r.Min < c.r.Max) {
			return fmt.Errorf("%s [%g, %g): %w", c.name, c.r.Min, c.r.Max, errEmptyRange)
		}
		if c.r.Min < 0 || c.r.Max > c.hi || (c.positive && c.r.Min <= 0) {
			return fmt.Errorf("%s [%g, %g): out of domain", c.name, c.r.Min, c.r.Max)
		}
	}
	return nil
}

// uniform draws from [r.Min, r.Max); rounding never yields Max
func uniform(rng Rand, r FloatRange) float64 {
	v := r.Min + rng.Float64()*(r.Max-r.Min)
	if v >= r.Max {
		v = math.Nextafter(r.Max, r.Min)
	}
	return v
}

// uniformInt draws from [r.Min, r.Max] inclusive
func uniformInt(rng Rand, r IntRange) int {
	return r.Min + rng.IntN(r.Max-r.Min+1)
}

// spawn creates a particle anywhere on a width x height surface
func spawn(rng Rand, p Params, width, height float64) Particle {
	return Particle{
		X:         rng.Float64() * width,
		Y:         rng.Float64() * height,
		Radius:    uniform(rng, p.Radius),
		FallSpeed: uniform(rng, p.FallSpeed),
		Opacity:   uniform(rng, p.Opacity),
	}
}

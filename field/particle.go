package field

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Particle is a drifting dot on the backdrop.
// Positions are in backing pixels.
type Particle struct {
	Pos  r2.Vec
	Vel  r2.Vec
	Size float64
}

// newParticle places a particle uniformly inside [0,w]x[0,h].
func newParticle(rng *rand.Rand, w, h float64, p Params) Particle {
	return Particle{
		Pos: r2.Vec{
			X: rng.Float64() * w,
			Y: rng.Float64() * h,
		},
		Vel: r2.Vec{
			X: (rng.Float64()*2 - 1) * p.Speed,
			Y: (rng.Float64()*2 - 1) * p.Speed,
		},
		Size: p.SizeMin + rng.Float64()*(p.SizeMax-p.SizeMin),
	}
}

// Update advances the particle one step and bounces it off the edges of
// a w x h surface.
func (p *Particle) Update(w, h float64) {
	p.Pos = r2.Add(p.Pos, p.Vel)
	p.Pos.X, p.Vel.X = reflect(p.Pos.X, p.Vel.X, w)
	p.Pos.Y, p.Vel.Y = reflect(p.Pos.Y, p.Vel.Y, h)
}

// reflect clamps pos to [0, limit] and negates vel when it had to clamp.
func reflect(pos, vel, limit float64) (float64, float64) {
	switch {
	case pos < 0:
		return 0, -vel
	case pos > limit:
		return limit, -vel
	}
	return pos, vel
}

// Distance returns the Euclidean distance between two particles.
func Distance(a, b Particle) float64 {
	return r2.Norm(r2.Sub(a.Pos, b.Pos))
}

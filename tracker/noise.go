package tracker

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// NoiseSource produces zero mean 2D noise samples with the given variance
// on each axis
type NoiseSource interface {
	Sample(variance float64) Point
}

// GaussianNoise samples zero mean Gaussian noise with an isotropic
// covariance variance*I.  It is not safe for concurrent use
type GaussianNoise struct {
	src rand.Source
	// dist is cached for the last requested variance
	dist     *distmv.Normal
	variance float64
}

// NewGaussianNoise returns a GaussianNoise seeded with seed
func NewGaussianNoise(seed uint64) *GaussianNoise {
	return &GaussianNoise{
		src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}
}

// Sample returns a noise sample.  A non positive variance yields no noise
func (g *GaussianNoise) Sample(variance float64) Point {

	if variance <= 0 {
		return Point{}
	}

	if g.dist == nil || g.variance != variance {
		sigma := mat.NewSymDense(2, []float64{variance, 0, 0, variance})

		dist, ok := distmv.NewNormal([]float64{0, 0}, sigma, g.src)

		if !ok {
			return Point{}
		}

		g.dist = dist
		g.variance = variance
	}

	v := g.dist.Rand(nil)

	return Point{X: v[0], Y: v[1]}
}

// ZeroNoise is a NoiseSource that never adds noise
type ZeroNoise struct{}

// Sample returns the zero point
func (ZeroNoise) Sample(float64) Point {
	return Point{}
}

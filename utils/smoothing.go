package utils

import (
	"math"
)

// GaussianProfile evaluates a Gaussian centered at c with width w on the
// given coordinates, normalized so that its integral against the weight
// array equals total.
func GaussianProfile(x, weight []float64, dx, c, w, total float64) (p []float64) {
	p = make([]float64, len(x))
	for i, xi := range x {
		p[i] = math.Exp(-(xi - c) * (xi - c) / (2 * w * w))
	}
	norm := Integrate(p, weight, dx)
	if norm == 0 {
		return
	}
	for i := range p {
		p[i] *= total / norm
	}
	return
}

// KernelSmooth convolves values with a Gaussian kernel of width sigma in the
// coordinate x. Kernel weights are renormalized near the boundaries so the
// smoothing preserves constants. sigma <= 0 is a no-op.
func KernelSmooth(x, values []float64, sigma float64) (r []float64) {
	if sigma <= 0 {
		return CopyArray(values)
	}
	r = make([]float64, len(values))
	for i, xi := range x {
		var sum, wsum float64
		for j, xj := range x {
			w := math.Exp(-(xi - xj) * (xi - xj) / (2 * sigma * sigma))
			sum += w * values[j]
			wsum += w
		}
		r[i] = sum / wsum
	}
	return
}

package utils

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

func Linspace(min, max float64, N int) (v []float64) {
	var (
		dx = (max - min) / float64(N-1)
	)
	v = make([]float64, N)
	for i := range v {
		v[i] = min + float64(i)*dx
	}
	v[N-1] = max
	return
}

func CopyArray(v []float64) (r []float64) {
	r = make([]float64, len(v))
	copy(r, v)
	return
}

func ScaleArray(v []float64, a float64) (r []float64) {
	r = make([]float64, len(v))
	for i, val := range v {
		r[i] = a * val
	}
	return
}

func AddArrays(a, b []float64) (r []float64) {
	if len(a) != len(b) {
		panic("mismatched array lengths in AddArrays")
	}
	r = make([]float64, len(a))
	floats.AddTo(r, a, b)
	return
}

func MulArrays(a, b []float64) (r []float64) {
	if len(a) != len(b) {
		panic("mismatched array lengths in MulArrays")
	}
	r = make([]float64, len(a))
	for i := range a {
		r[i] = a[i] * b[i]
	}
	return
}

// FaceToCell averages an N+1 length face array onto the N cell centers.
func FaceToCell(face []float64) (cell []float64) {
	var (
		N = len(face) - 1
	)
	cell = make([]float64, N)
	for i := 0; i < N; i++ {
		cell[i] = 0.5 * (face[i] + face[i+1])
	}
	return
}

// CellToFace interpolates an N length cell array onto the N+1 faces. The
// boundary faces are linearly extrapolated from the two nearest cells.
func CellToFace(cell []float64) (face []float64) {
	var (
		N = len(cell)
	)
	face = make([]float64, N+1)
	for i := 1; i < N; i++ {
		face[i] = 0.5 * (cell[i-1] + cell[i])
	}
	face[0] = 1.5*cell[0] - 0.5*cell[1]
	face[N] = 1.5*cell[N-1] - 0.5*cell[N-2]
	return
}

// Integrate computes the midpoint-rule integral of a cell array against a
// cell-centered weight, typically the volume element vpr.
func Integrate(cell, weight []float64, dx float64) (sum float64) {
	for i := range cell {
		sum += cell[i] * weight[i] * dx
	}
	return
}

// RelativeChange returns ||a-b|| / (||b|| + floor), the weighted relative
// difference used for convergence checks.
func RelativeChange(a, b []float64, floor float64) float64 {
	var (
		d = make([]float64, len(a))
	)
	floats.SubTo(d, a, b)
	return floats.Norm(d, 2) / (floats.Norm(b, 2) + floor)
}

func MinArray(v []float64) (min float64) {
	min = math.Inf(1)
	for _, val := range v {
		if val < min {
			min = val
		}
	}
	return
}

func MaxArray(v []float64) (max float64) {
	max = math.Inf(-1)
	for _, val := range v {
		if val > max {
			max = val
		}
	}
	return
}

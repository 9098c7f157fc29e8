package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector(t *testing.T) {
	// FaceToCell / CellToFace
	{
		cell := []float64{1, 2, 3, 4}
		face := CellToFace(cell)
		assert.Equal(t, 5, len(face))
		assert.InDelta(t, 0.5, face[0], 1.e-12)
		assert.InDelta(t, 1.5, face[1], 1.e-12)
		assert.InDelta(t, 4.5, face[4], 1.e-12)
		// a linear profile round-trips exactly
		back := FaceToCell(face)
		for i := range cell {
			assert.InDelta(t, cell[i], back[i], 1.e-12)
		}
	}
	// Integrate with a weight
	{
		cell := ConstArray(10, 2)
		weight := ConstArray(10, 3)
		assert.InDelta(t, 6., Integrate(cell, weight, 0.1), 1.e-12)
	}
	// RelativeChange
	{
		a := []float64{1, 1, 1}
		assert.InDelta(t, 0., RelativeChange(a, a, 1.e-10), 1.e-12)
		b := []float64{2, 2, 2}
		assert.True(t, RelativeChange(b, a, 1.e-10) > 0.9)
	}
	// Min/Max
	{
		v := []float64{3, -1, 7, 2}
		assert.Equal(t, -1., MinArray(v))
		assert.Equal(t, 7., MaxArray(v))
	}
}

func TestTriDiagonal(t *testing.T) {
	// Solve against a known product
	{
		N := 6
		T := NewTriDiagonal(N)
		for i := 0; i < N; i++ {
			T.Diag[i] = 4
			if i > 0 {
				T.Lower[i] = -1
			}
			if i < N-1 {
				T.Upper[i] = -1
			}
		}
		xRef := []float64{1, 2, 3, 4, 5, 6}
		rhs := make([]float64, N)
		for i := 0; i < N; i++ {
			rhs[i] = T.Diag[i] * xRef[i]
			if i > 0 {
				rhs[i] += T.Lower[i] * xRef[i-1]
			}
			if i < N-1 {
				rhs[i] += T.Upper[i] * xRef[i+1]
			}
		}
		x, err := T.Solve(rhs)
		assert.NoError(t, err)
		for i := range xRef {
			assert.InDelta(t, xRef[i], x[i], 1.e-10)
		}
	}
	// Singular system is reported, not solved
	{
		T := NewTriDiagonal(3)
		_, err := T.Solve([]float64{1, 2, 3})
		assert.Error(t, err)
	}
}

func TestSmoothing(t *testing.T) {
	x := Linspace(0, 1, 21)
	// Gaussian profile integrates to the requested total
	{
		weight := ConstArray(21, 2)
		p := GaussianProfile(x, weight, 0.05, 0.4, 0.1, 7)
		assert.InDelta(t, 7., Integrate(p, weight, 0.05), 1.e-10)
	}
	// Kernel smoothing preserves constants and is a no-op for sigma <= 0
	{
		v := ConstArray(21, 3)
		r := KernelSmooth(x, v, 0.1)
		for i := range r {
			assert.InDelta(t, 3., r[i], 1.e-12)
		}
		spiky := make([]float64, 21)
		spiky[10] = 1
		same := KernelSmooth(x, spiky, 0)
		assert.Equal(t, spiky, same)
		smoothed := KernelSmooth(x, spiky, 0.1)
		assert.True(t, smoothed[10] < spiky[10])
		assert.True(t, smoothed[9] > 0)
	}
}

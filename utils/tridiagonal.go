package utils

import (
	"fmt"
	"math"
)

// TriDiagonal holds the three bands of an NxN tridiagonal system. Lower[0]
// and Upper[N-1] are unused.
type TriDiagonal struct {
	N                  int
	Lower, Diag, Upper []float64
}

func NewTriDiagonal(N int) (T TriDiagonal) {
	T = TriDiagonal{
		N:     N,
		Lower: make([]float64, N),
		Diag:  make([]float64, N),
		Upper: make([]float64, N),
	}
	return
}

// Solve runs the Thomas algorithm. The bands are not modified. A vanishing
// pivot marks a singular or ill-conditioned system.
func (T TriDiagonal) Solve(rhs []float64) (x []float64, err error) {
	var (
		N  = T.N
		cp = make([]float64, N)
		dp = make([]float64, N)
	)
	if len(rhs) != N {
		panic(fmt.Errorf("rhs length %d does not match system size %d", len(rhs), N))
	}
	if math.Abs(T.Diag[0]) < pivotTol {
		return nil, fmt.Errorf("singular tridiagonal system: zero pivot at row 0")
	}
	cp[0] = T.Upper[0] / T.Diag[0]
	dp[0] = rhs[0] / T.Diag[0]
	for i := 1; i < N; i++ {
		den := T.Diag[i] - T.Lower[i]*cp[i-1]
		if math.Abs(den) < pivotTol {
			return nil, fmt.Errorf("singular tridiagonal system: zero pivot at row %d", i)
		}
		cp[i] = T.Upper[i] / den
		dp[i] = (rhs[i] - T.Lower[i]*dp[i-1]) / den
	}
	x = make([]float64, N)
	x[N-1] = dp[N-1]
	for i := N - 2; i >= 0; i-- {
		x[i] = dp[i] - cp[i]*x[i+1]
	}
	return
}

const pivotTol = 1.e-300

package fvm

import (
	"math"

	"github.com/plasmakit/gotransp/utils"
)

// EquationCoeffs carries the coefficients of one transported field's
// finite-volume equation
//
//	tc * du/dt = d/drho( gD * du/drho - gV * u ) + S + Smat*u
//
// where tc, gD, gV, S and Smat already include the geometric volume weight.
// They are recomputed every nonlinear iterate from the closure models and are
// never persisted across iterates.
type EquationCoeffs struct {
	TransientCell []float64 // N, multiplies du/dt
	DFace         []float64 // N+1, g-weighted diffusivity
	VFace         []float64 // N+1, g-weighted convective velocity
	SourceCell    []float64 // N, explicit source
	SourceMatCell []float64 // N, implicit source coefficient on u
}

func NewEquationCoeffs(N int) (c EquationCoeffs) {
	c = EquationCoeffs{
		TransientCell: make([]float64, N),
		DFace:         make([]float64, N+1),
		VFace:         make([]float64, N+1),
		SourceCell:    make([]float64, N),
		SourceMatCell: make([]float64, N),
	}
	return
}

// EquationSystem ties a field's current iterate (supplying the boundary
// conditions), its start-of-step values and the iterate's coefficients.
type EquationSystem struct {
	Var    *CellVariable
	Old    []float64
	Coeffs EquationCoeffs
}

// powerLaw is the Patankar power-law weighting A(|Pe|) for the combined
// diffusion-convection face conductance. It reduces to central differencing
// for small cell Peclet number and to upwinding for large.
func powerLaw(pe float64) float64 {
	var (
		a = 1 - 0.1*math.Abs(pe)
	)
	if a <= 0 {
		return 0
	}
	return utils.POW(a, 5)
}

// faceConductances returns the implicit coupling coefficients through face f:
// aM toward the lower-index cell and aP toward the higher-index cell.
func faceConductances(gD, gV, dr float64) (aM, aP float64) {
	var (
		dcond = gD / dr
	)
	if dcond > 0 {
		a := dcond * powerLaw(gV/dcond)
		aM = a + math.Max(gV, 0)
		aP = a + math.Max(-gV, 0)
		return
	}
	aM = math.Max(gV, 0)
	aP = math.Max(-gV, 0)
	return
}

// Assemble builds the implicit (backward time) tridiagonal system for one
// field. Flux continuity is enforced at every internal face: both adjacent
// cells see the same face flux, so the scheme cannot leak between cells.
// Boundary faces apply the field's boundary condition directly in the flux
// term; interior unknowns are never overwritten.
func (eq EquationSystem) Assemble(dt float64) (T utils.TriDiagonal, rhs []float64) {
	var (
		c   = eq.Coeffs
		u   = eq.Var
		N   = len(u.Value)
		dr  = u.Dr
		tdt = dr / dt
	)
	T = utils.NewTriDiagonal(N)
	rhs = make([]float64, N)

	for i := 0; i < N; i++ {
		T.Diag[i] = c.TransientCell[i]*tdt - c.SourceMatCell[i]*dr
		rhs[i] = c.TransientCell[i]*tdt*eq.Old[i] + c.SourceCell[i]*dr
	}

	// Internal faces f = 1..N-1 between cells f-1 and f. The face flux in
	// the +rho direction is F = gV*u_f + aP*(u_{f-1} - u_f) with the upwinded
	// face value folded into aM/aP, so the same flux enters both cells.
	for f := 1; f < N; f++ {
		aM, aP := faceConductances(c.DFace[f], c.VFace[f], dr)
		// Lower cell (f-1): east neighbor coefficient and diagonal.
		T.Upper[f-1] -= aP
		T.Diag[f-1] += aP + c.VFace[f]
		// Upper cell (f): west neighbor coefficient and diagonal.
		T.Lower[f] -= aM
		T.Diag[f] += aM - c.VFace[f]
	}

	// Inner boundary face: face value equals the first cell value under the
	// symmetry condition, the gradient is prescribed (normally zero).
	T.Diag[0] -= c.VFace[0]
	rhs[0] -= c.DFace[0] * u.LeftGrad

	// Outer boundary face.
	switch {
	case u.RightValue != nil:
		v := *u.RightValue
		T.Diag[N-1] += c.DFace[N] / (0.5 * dr)
		rhs[N-1] += c.DFace[N]*v/(0.5*dr) - c.VFace[N]*v
	case u.RightGrad != nil:
		g := *u.RightGrad
		T.Diag[N-1] += c.VFace[N]
		rhs[N-1] += c.DFace[N]*g - c.VFace[N]*0.5*dr*g
	}
	return
}

// Solve assembles and solves the single-field implicit system.
func (eq EquationSystem) Solve(dt float64) (uNew []float64, err error) {
	T, rhs := eq.Assemble(dt)
	return T.Solve(rhs)
}

// Package solver advances the core profiles by one implicit time step. The
// coefficients of the discretized equations depend on the unknown state, so
// each step runs a predictor plus fixed-point corrector: evaluate the
// closures at the current iterate, assemble and solve the linear systems,
// re-evaluate, until the weighted residual falls below tolerance.
package solver

import (
	"fmt"
	"math"

	"github.com/plasmakit/gotransp/fvm"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/sources"
	"github.com/plasmakit/gotransp/state"
	"github.com/plasmakit/gotransp/transport"
	"github.com/plasmakit/gotransp/utils"
)

// NonConvergenceError reports an exhausted corrector budget or a failed
// linear solve. It is recoverable: the caller retries with a smaller step.
type NonConvergenceError struct {
	Iterations int
	Residual   float64
	Cause      error
}

func (e *NonConvergenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("nonlinear step did not converge after %d iterations: %v", e.Iterations, e.Cause)
	}
	return fmt.Sprintf("nonlinear step did not converge after %d iterations, residual %.3e", e.Iterations, e.Residual)
}

func (e *NonConvergenceError) Unwrap() error { return e.Cause }

// Params configures the nonlinear step.
type Params struct {
	Tolerance     float64
	MaxIterations int
	Relaxation    float64 // corrector under-relaxation, 1 = none
	Predictor     bool    // start from a linear extrapolation of the last step
	// FrozenCoeffs freezes the closures at the start-of-step state, reducing
	// the step to a single linear implicit solve. Cheaper, non-default.
	FrozenCoeffs bool

	EvolveIonHeat bool
	EvolveElHeat  bool
	EvolveDensity bool

	Pedestal Pedestal
	// TotalCurrent marks the external drive as carrying the whole
	// non-inductive current; the residual Ohmic current bookkeeping is then
	// suppressed to avoid double counting.
	TotalCurrent bool
}

// Diagnostics describes how one step solve went.
type Diagnostics struct {
	Iterations int
	Residual   float64
}

// StepSolver owns the closures and runs one step at a time. It is
// stateless across calls: every output is a pure function of the inputs.
type StepSolver struct {
	Transport transport.Model
	Sources   *sources.Models
	Params    Params
}

// Step advances cp by dt, returning the new state. guess, when non-nil,
// seeds the iterate (the predictor); cp itself is never modified. The error
// is a *NonConvergenceError when the iteration budget is exhausted or a
// linear solve fails.
func (s *StepSolver) Step(t, dt float64, cp *state.CoreProfiles, guess *state.CoreProfiles,
	geo *geometry.Geometry) (next *state.CoreProfiles, diag Diagnostics, err error) {
	var (
		p  = s.Params
		it = cp.Copy()
	)
	if p.Predictor && guess != nil {
		it.TempIon.Value = utils.CopyArray(guess.TempIon.Value)
		it.TempEl.Value = utils.CopyArray(guess.TempEl.Value)
		it.Ne.Value = utils.CopyArray(guess.Ne.Value)
		it.Psi.Value = utils.CopyArray(guess.Psi.Value)
		it.UpdateDerived(geo)
	}

	var (
		frozenTC  transport.Coefficients
		frozenSrc sources.Profiles
	)
	if p.FrozenCoeffs {
		frozenTC = s.Transport.Coefficients(cp, geo)
		frozenSrc = s.Sources.Compute(t+dt, cp, geo)
	}

	maxIter := p.MaxIterations
	if p.FrozenCoeffs {
		maxIter = 1
	}
	converged := false
	var lastSrc sources.Profiles
	for k := 0; k < maxIter; k++ {
		var (
			tc  transport.Coefficients
			src sources.Profiles
		)
		if p.FrozenCoeffs {
			tc, src = frozenTC, frozenSrc
		} else {
			tc = s.Transport.Coefficients(it, geo)
			src = s.Sources.Compute(t+dt, it, geo)
		}
		lastSrc = src

		prevTi := utils.CopyArray(it.TempIon.Value)
		prevTe := utils.CopyArray(it.TempEl.Value)
		prevNe := utils.CopyArray(it.Ne.Value)
		prevPsi := utils.CopyArray(it.Psi.Value)

		if err = s.solveFields(t, dt, cp, it, tc, src, geo); err != nil {
			return nil, Diagnostics{Iterations: k + 1}, &NonConvergenceError{Iterations: k + 1, Cause: err}
		}

		// Under-relaxation damps overshoot from stiff closures.
		if p.Relaxation < 1 {
			blend(it.TempIon.Value, prevTi, p.Relaxation)
			blend(it.TempEl.Value, prevTe, p.Relaxation)
			blend(it.Ne.Value, prevNe, p.Relaxation)
			blend(it.Psi.Value, prevPsi, p.Relaxation)
		}
		it.UpdateDerived(geo)

		resid := 0.
		if p.EvolveIonHeat {
			resid = math.Max(resid, utils.RelativeChange(it.TempIon.Value, prevTi, 1e-10))
		}
		if p.EvolveElHeat {
			resid = math.Max(resid, utils.RelativeChange(it.TempEl.Value, prevTe, 1e-10))
		}
		if p.EvolveDensity {
			resid = math.Max(resid, utils.RelativeChange(it.Ne.Value, prevNe, 1e-10))
		}
		resid = math.Max(resid, utils.RelativeChange(it.Psi.Value, prevPsi, 1e-10))
		diag = Diagnostics{Iterations: k + 1, Residual: resid}

		if p.FrozenCoeffs {
			converged = true
			break
		}
		if resid < p.Tolerance {
			converged = true
			break
		}
	}
	if !converged {
		return nil, diag, &NonConvergenceError{Iterations: diag.Iterations, Residual: diag.Residual}
	}

	next = it
	next.PsiDot = make([]float64, len(next.Psi.Value))
	for i := range next.PsiDot {
		next.PsiDot[i] = (next.Psi.Value[i] - cp.Psi.Value[i]) / dt
	}
	next.Currents.Jext = utils.CopyArray(lastSrc.Jext)
	next.Currents.Jbootstrap = utils.CopyArray(lastSrc.Jbootstrap)
	next.UpdateDerived(geo)
	if p.TotalCurrent {
		// The external drive is the declared total; no residual Ohmic
		// current closure.
		next.Currents.Johm = make([]float64, len(next.Currents.Johm))
	}
	return next, diag, nil
}

// solveFields assembles and solves the per-field linear systems at one
// iterate. Ion and electron heat are solved block-coupled through the
// implicit exchange term when both evolve; a single evolving heat channel
// keeps the exchange against the frozen partner temperature. Density and
// flux are solved operator-split.
func (s *StepSolver) solveFields(t, dt float64, cp, it *state.CoreProfiles,
	tc transport.Coefficients, src sources.Profiles, geo *geometry.Geometry) error {
	var (
		p    = s.Params
		grid = geo.Grid
	)
	if p.EvolveIonHeat && p.EvolveElHeat {
		eqI := buildIonHeat(cp, it, tc, src, geo)
		eqE := buildElHeat(cp, it, tc, src, geo)
		p.Pedestal.apply(&eqI, grid, dt, p.Pedestal.TiPed)
		p.Pedestal.apply(&eqE, grid, dt, p.Pedestal.TePed)
		couple := utils.MulArrays(geo.VprCell, src.QeiCoef)
		ti, te, err := fvm.SolveCoupledPair(eqI, eqE, couple, dt)
		if err != nil {
			return err
		}
		it.TempIon.Value = ti
		it.TempEl.Value = te
	} else if p.EvolveIonHeat {
		// The exchange survives single-channel mode against the frozen
		// partner temperature.
		eqI := buildIonHeat(cp, it, tc, src, geo)
		qeiFold(&eqI, src.QeiCoef, it.TempEl.Value, geo)
		p.Pedestal.apply(&eqI, grid, dt, p.Pedestal.TiPed)
		ti, err := eqI.Solve(dt)
		if err != nil {
			return err
		}
		it.TempIon.Value = ti
	} else if p.EvolveElHeat {
		eqE := buildElHeat(cp, it, tc, src, geo)
		qeiFold(&eqE, src.QeiCoef, it.TempIon.Value, geo)
		p.Pedestal.apply(&eqE, grid, dt, p.Pedestal.TePed)
		te, err := eqE.Solve(dt)
		if err != nil {
			return err
		}
		it.TempEl.Value = te
	}

	if p.EvolveDensity {
		eqN := buildDensity(cp, it, tc, src, geo)
		p.Pedestal.apply(&eqN, grid, dt, p.Pedestal.NePed)
		ne, err := eqN.Solve(dt)
		if err != nil {
			return err
		}
		it.Ne.Value = ne
	}

	eqP := buildPsi(cp, it, src, geo)
	psi, err := eqP.Solve(dt)
	if err != nil {
		return err
	}
	it.Psi.Value = psi
	return nil
}

func blend(u, prev []float64, relax float64) {
	for i := range u {
		u[i] = relax*u[i] + (1-relax)*prev[i]
	}
}

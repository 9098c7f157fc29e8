// Package sim drives the transport solve through time: it owns the adaptive
// step controller, the accept/reject loop around the nonlinear step solver,
// and the recorded history of accepted states.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/solver"
	"github.com/plasmakit/gotransp/sources"
	"github.com/plasmakit/gotransp/state"
	"github.com/plasmakit/gotransp/transport"
)

// TimePoint is one accepted state in the history.
type TimePoint struct {
	Time     float64
	Dt       float64
	State    *state.CoreProfiles
	SolverIt int
}

// Simulation binds a validated parameter set to a geometry, closures and a
// step solver. Construct with New, run with Run.
type Simulation struct {
	Params   *InputParameters.SimParameters
	Provider geometry.Provider
	Solver   *solver.StepSolver

	Current *state.CoreProfiles
	Time    float64
}

// New validates sp and builds the initial state. A *ConfigurationError means
// the configuration was rejected before anything ran.
func New(sp *InputParameters.SimParameters) (s *Simulation, err error) {
	if err = sp.Validate(); err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	var (
		g   = sp.Geometry
		geo = geometry.NewCircularGeometry(sp.NCells, g.Rmaj, g.Rmin, g.B0, g.Kappa)
	)
	cp, err := state.NewInitialProfiles(sp, geo)
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	n := sp.Numerics
	s = &Simulation{
		Params:   sp,
		Provider: geometry.StaticProvider{Geo: geo},
		Solver: &solver.StepSolver{
			Transport: transport.NewModel(sp.Transport),
			Sources:   sources.NewModels(sp),
			Params: solver.Params{
				Tolerance:     n.Tolerance,
				MaxIterations: n.MaxIterations,
				Relaxation:    n.Relaxation,
				Predictor:     n.Predictor,
				FrozenCoeffs:  n.FrozenCoeffs,
				EvolveIonHeat: n.EvolveIonHeat,
				EvolveElHeat:  n.EvolveElHeat,
				EvolveDensity: n.EvolveDensity,
				Pedestal: solver.Pedestal{
					Enabled: sp.Pedestal.Enabled(),
					RhoPed:  sp.Pedestal.RhoPed,
					TiPed:   sp.Pedestal.TiPed,
					TePed:   sp.Pedestal.TePed,
					NePed:   sp.Pedestal.NePed,
				},
				TotalCurrent: sp.Sources.GenericCurrent.TotalCurrent,
			},
		},
		Current: cp,
		Time:    n.TInitial,
	}
	return s, nil
}

// Run advances from TInitial to TFinal under the adaptive controller and
// returns the accepted history, initial state included. A step rejected by
// non-convergence or by the physical sanity check halves dt and retries;
// dropping below DtMin is fatal. ctx cancellation is honored between steps.
func (s *Simulation) Run(ctx context.Context) (history []TimePoint, err error) {
	var (
		n      = s.Params.Numerics
		dt     = n.DtInitial
		nStep  = 0
		prev   *state.CoreProfiles
		prevDt float64
	)
	history = append(history, TimePoint{Time: s.Time, Dt: 0, State: s.Current})
	for s.Time < n.TFinal-1e-12 {
		if err = ctx.Err(); err != nil {
			return history, err
		}
		if s.Time+dt > n.TFinal {
			dt = n.TFinal - s.Time
		}
		var (
			geo  = s.Provider.Geometry(s.Time + dt)
			next *state.CoreProfiles
			diag solver.Diagnostics
		)
		next, diag, err = s.Solver.Step(s.Time, dt, s.Current, s.predict(prev, prevDt, dt), geo)
		if err == nil {
			err = sanity(s.Time+dt, next)
		}
		if err != nil {
			// Non-convergence and sanity violations share the reject path:
			// discard the step, halve dt and retry until DtMin.
			var (
				nce *solver.NonConvergenceError
				pse *PhysicalSanityError
			)
			if !errors.As(err, &nce) && !errors.As(err, &pse) {
				return history, err
			}
			if dt/2 < n.DtMin {
				return history, fmt.Errorf("%w at t=%.6f: %v", ErrStepSizeUnderflow, s.Time, err)
			}
			dt /= 2
			continue
		}

		prev, prevDt = s.Current, dt
		s.Current = next
		s.Time += dt
		nStep++
		history = append(history, TimePoint{Time: s.Time, Dt: dt, State: next, SolverIt: diag.Iterations})

		if n.LogFrequency > 0 && nStep%n.LogFrequency == 0 {
			fmt.Printf("step %5d: t = %8.5f, dt = %8.2e, iter = %2d, Ti0 = %6.3f, Te0 = %6.3f, ne0 = %6.3f\n",
				nStep, s.Time, dt, diag.Iterations,
				next.TempIon.Value[0], next.TempEl.Value[0], next.Ne.Value[0])
		}

		if diag.Iterations <= n.EasyIterations {
			dt = math.Min(dt*n.DtGrowth, n.DtMax)
		}
	}
	return history, nil
}

// predict linearly extrapolates the last accepted change onto the coming
// step, seeding the corrector. Nil until two accepted states exist.
func (s *Simulation) predict(prev *state.CoreProfiles, prevDt, dt float64) *state.CoreProfiles {
	if !s.Params.Numerics.Predictor || prev == nil || prevDt <= 0 {
		return nil
	}
	var (
		r = dt / prevDt
		g = s.Current.Copy()
	)
	extrap := func(u, uPrev []float64) {
		for i := range u {
			u[i] += r * (u[i] - uPrev[i])
		}
	}
	extrap(g.TempIon.Value, prev.TempIon.Value)
	extrap(g.TempEl.Value, prev.TempEl.Value)
	extrap(g.Ne.Value, prev.Ne.Value)
	extrap(g.Psi.Value, prev.Psi.Value)
	return g
}

// sanity rejects states the discretization can produce but physics cannot.
// A failure takes the same retry path as non-convergence.
func sanity(t float64, cp *state.CoreProfiles) error {
	for name, u := range map[string][]float64{
		"Ti": cp.TempIon.Value, "Te": cp.TempEl.Value, "ne": cp.Ne.Value,
	} {
		for i, v := range u {
			if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return &PhysicalSanityError{Time: t, Field: name, Cell: i, Value: v}
			}
		}
	}
	return nil
}

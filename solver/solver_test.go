package solver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/sources"
	"github.com/plasmakit/gotransp/state"
	"github.com/plasmakit/gotransp/transport"
)

// quietParams turns off every source so the step is a pure transport
// problem with constant coefficients.
func quietParams() *InputParameters.SimParameters {
	sp := InputParameters.Defaults()
	sp.Pedestal.Set = 0
	sp.Sources.GenericHeat.Mode = InputParameters.SourceModeZero
	sp.Sources.GenericCurrent.Mode = InputParameters.SourceModeZero
	sp.Sources.Fusion.Mode = InputParameters.SourceModeZero
	sp.Sources.OhmicHeat.Mode = InputParameters.SourceModeZero
	sp.Sources.Bootstrap.Mode = InputParameters.SourceModeZero
	sp.Sources.Bremsstrahlung.Mode = InputParameters.SourceModeZero
	sp.Sources.QeiExchange.Mode = InputParameters.SourceModeZero
	return sp
}

func newSolver(sp *InputParameters.SimParameters) (*StepSolver, *state.CoreProfiles, *geometry.Geometry, error) {
	g := sp.Geometry
	geo := geometry.NewCircularGeometry(sp.NCells, g.Rmaj, g.Rmin, g.B0, g.Kappa)
	cp, err := state.NewInitialProfiles(sp, geo)
	n := sp.Numerics
	s := &StepSolver{
		Transport: transport.NewModel(sp.Transport),
		Sources:   sources.NewModels(sp),
		Params: Params{
			Tolerance:     n.Tolerance,
			MaxIterations: n.MaxIterations,
			Relaxation:    n.Relaxation,
			Predictor:     n.Predictor,
			FrozenCoeffs:  n.FrozenCoeffs,
			EvolveIonHeat: n.EvolveIonHeat,
			EvolveElHeat:  n.EvolveElHeat,
			EvolveDensity: n.EvolveDensity,
			Pedestal: Pedestal{
				Enabled: sp.Pedestal.Enabled(),
				RhoPed:  sp.Pedestal.RhoPed,
				TiPed:   sp.Pedestal.TiPed,
				TePed:   sp.Pedestal.TePed,
				NePed:   sp.Pedestal.NePed,
			},
		},
	}
	return s, cp, geo, err
}

func TestStepRelaxesTowardBoundary(t *testing.T) {
	// With constant transport and no sources the peaked profiles diffuse
	// toward their Dirichlet edge values: the core must cool, the edge cell
	// stay pinned near its boundary value, and nothing may go negative.
	sp := quietParams()
	s, cp, geo, err := newSolver(sp)
	assert.NoError(t, err)
	next, diag, err := s.Step(0, 0.05, cp, nil, geo)
	assert.NoError(t, err)
	assert.True(t, diag.Iterations >= 1)
	N := sp.NCells
	assert.True(t, next.TempIon.Value[0] < cp.TempIon.Value[0])
	assert.True(t, next.TempEl.Value[0] < cp.TempEl.Value[0])
	for i := 0; i < N; i++ {
		assert.True(t, next.TempIon.Value[i] > 0)
		assert.True(t, next.TempEl.Value[i] > 0)
		assert.True(t, next.Ne.Value[i] > 0)
	}
	// the original state is untouched
	assert.Equal(t, 15., sp.Profiles.Ti.Axis)
	assert.True(t, cp.TempIon.Value[0] > 14)
	// derived quantities and psi bookkeeping follow the step
	assert.Equal(t, N, len(next.PsiDot))
	assert.Equal(t, N+1, len(next.QFace))
}

func TestFrozenMatchesIteratedOnLinearProblem(t *testing.T) {
	// With the constant closure and all sources off, the coefficients do not
	// depend on the state, so the frozen single solve and the full corrector
	// must land on the same answer.
	sp := quietParams()
	s1, cp, geo, err := newSolver(sp)
	assert.NoError(t, err)
	sp2 := quietParams()
	sp2.Numerics.FrozenCoeffs = true
	s2, cp2, _, err := newSolver(sp2)
	assert.NoError(t, err)

	a, _, err := s1.Step(0, 0.02, cp, nil, geo)
	assert.NoError(t, err)
	b, _, err := s2.Step(0, 0.02, cp2, nil, geo)
	assert.NoError(t, err)
	for i := 0; i < sp.NCells; i++ {
		assert.InDelta(t, a.TempIon.Value[i], b.TempIon.Value[i], 1.e-2)
		assert.InDelta(t, a.Ne.Value[i], b.Ne.Value[i], 1.e-8)
	}
}

func TestNonConvergenceIsTyped(t *testing.T) {
	// An impossible tolerance with a one-iteration budget must come back as
	// a recoverable non-convergence, not a panic or a silent accept.
	sp := InputParameters.Defaults()
	sp.Numerics.Tolerance = 1.e-300
	sp.Numerics.MaxIterations = 1
	s, cp, geo, err := newSolver(sp)
	assert.NoError(t, err)
	_, diag, err := s.Step(0, 0.1, cp, nil, geo)
	assert.Error(t, err)
	var nce *NonConvergenceError
	assert.True(t, errors.As(err, &nce))
	assert.Equal(t, 1, nce.Iterations)
	assert.Equal(t, 1, diag.Iterations)
	assert.True(t, len(nce.Error()) > 0)
}

func TestPedestalPinsFields(t *testing.T) {
	// With the pedestal enabled the designated cell is relaxed hard onto the
	// pedestal values within a single step.
	sp := quietParams()
	sp.Pedestal = InputParameters.PedestalParameters{
		Set: 1, RhoPed: 0.91, TiPed: 4.5, TePed: 4.0, NePed: 0.62,
	}
	s, cp, geo, err := newSolver(sp)
	assert.NoError(t, err)
	next, _, err := s.Step(0, 0.05, cp, nil, geo)
	assert.NoError(t, err)
	i := s.Params.Pedestal.cellIndex(geo.Grid)
	assert.InDelta(t, 4.5, next.TempIon.Value[i], 0.1)
	assert.InDelta(t, 4.0, next.TempEl.Value[i], 0.1)
	assert.InDelta(t, 0.62, next.Ne.Value[i], 0.05)
}

func TestEvolveFlagsFreezeFields(t *testing.T) {
	sp := quietParams()
	sp.Numerics.EvolveDensity = false
	sp.Numerics.EvolveIonHeat = false
	s, cp, geo, err := newSolver(sp)
	assert.NoError(t, err)
	next, _, err := s.Step(0, 0.05, cp, nil, geo)
	assert.NoError(t, err)
	for i := 0; i < sp.NCells; i++ {
		assert.Equal(t, cp.Ne.Value[i], next.Ne.Value[i])
		assert.Equal(t, cp.TempIon.Value[i], next.TempIon.Value[i])
	}
	// the electron channel still evolves
	assert.True(t, next.TempEl.Value[0] < cp.TempEl.Value[0])
}

func TestQeiCouplesSingleChannel(t *testing.T) {
	// With only one heat channel evolving, the collisional exchange still
	// acts against the frozen partner temperature. Flat profiles and zero
	// transport isolate the exchange term.
	flat := func() *InputParameters.SimParameters {
		var (
			fifteen = 15.0
			two     = 2.0
		)
		sp := quietParams()
		sp.Numerics.FrozenCoeffs = true
		sp.Profiles.Ti = InputParameters.ProfileSpec{Axis: 15, Edge: &fifteen}
		sp.Profiles.Te = InputParameters.ProfileSpec{Axis: 2, Edge: &two}
		sp.Profiles.NormalizeToNbar = false
		sp.Transport.ChiMin = 0
		sp.Transport.DMin = 0
		sp.Transport.Constant = InputParameters.ConstantTransportParameters{}
		sp.Sources.QeiExchange = InputParameters.QeiParameters{Mode: InputParameters.SourceModeFormula, Mult: 100}
		return sp
	}
	// ion channel alone: hot ions must be pulled hard toward the cold
	// electrons, which themselves stay exactly frozen
	{
		sp := flat()
		sp.Numerics.EvolveElHeat = false
		sp.Numerics.EvolveDensity = false
		s, cp, geo, err := newSolver(sp)
		assert.NoError(t, err)
		next, _, err := s.Step(0, 0.1, cp, nil, geo)
		assert.NoError(t, err)
		for i := 0; i < sp.NCells; i++ {
			assert.True(t, next.TempIon.Value[i] < 6)
			assert.True(t, next.TempIon.Value[i] > 2)
			assert.Equal(t, cp.TempEl.Value[i], next.TempEl.Value[i])
		}
	}
	// electron channel alone: the cold electrons are dragged up toward the
	// frozen hot ions
	{
		sp := flat()
		sp.Numerics.EvolveIonHeat = false
		sp.Numerics.EvolveDensity = false
		s, cp, geo, err := newSolver(sp)
		assert.NoError(t, err)
		next, _, err := s.Step(0, 0.1, cp, nil, geo)
		assert.NoError(t, err)
		for i := 0; i < sp.NCells; i++ {
			assert.True(t, next.TempEl.Value[i] > 10)
			assert.True(t, next.TempEl.Value[i] < 15)
			assert.Equal(t, cp.TempIon.Value[i], next.TempIon.Value[i])
		}
	}
}

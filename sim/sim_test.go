package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/sources"
)

// shortCase is a small, quiet configuration that runs in a few steps.
func shortCase() *InputParameters.SimParameters {
	sp := InputParameters.Defaults()
	sp.NCells = 10
	sp.Numerics.TFinal = 0.1
	sp.Numerics.DtInitial = 0.02
	sp.Numerics.DtMax = 0.05
	sp.Numerics.LogFrequency = 0
	sp.Sources.Fusion.Mode = InputParameters.SourceModeZero
	sp.Sources.Bootstrap.Mode = InputParameters.SourceModeZero
	return sp
}

func TestNewRejectsBadConfig(t *testing.T) {
	// Configuration errors surface before anything runs, typed
	{
		sp := InputParameters.Defaults()
		sp.NCells = 1
		_, err := New(sp)
		assert.Error(t, err)
		var ce *ConfigurationError
		assert.True(t, errors.As(err, &ce))
	}
	{
		sp := InputParameters.Defaults()
		sp.Transport.Model = "anomalous"
		_, err := New(sp)
		assert.Error(t, err)
	}
	{
		sp := InputParameters.Defaults()
		sp.Numerics.DtMin = -1
		_, err := New(sp)
		assert.Error(t, err)
	}
	// a good configuration builds a ready state
	{
		s, err := New(shortCase())
		assert.NoError(t, err)
		assert.NotNil(t, s.Current)
		assert.Equal(t, 0., s.Time)
	}
}

func TestRunReachesFinalTime(t *testing.T) {
	s, err := New(shortCase())
	assert.NoError(t, err)
	history, err := s.Run(context.Background())
	assert.NoError(t, err)
	assert.True(t, len(history) >= 2)
	last := history[len(history)-1]
	assert.InDelta(t, 0.1, last.Time, 1.e-9)
	// time strictly increases along the history
	for k := 1; k < len(history); k++ {
		assert.True(t, history[k].Time > history[k-1].Time)
		assert.True(t, history[k].Dt > 0)
	}
	// every accepted state is physical
	for _, tp := range history {
		for i := range tp.State.TempIon.Value {
			assert.True(t, tp.State.TempIon.Value[i] > 0)
			assert.True(t, tp.State.TempEl.Value[i] > 0)
			assert.True(t, tp.State.Ne.Value[i] > 0)
		}
	}
}

func TestRunGrowsStepOnEasyAccepts(t *testing.T) {
	sp := shortCase()
	sp.Numerics.TFinal = 0.3
	sp.Numerics.DtInitial = 0.01
	sp.Numerics.DtGrowth = 2
	sp.Numerics.DtMax = 0.1
	sp.Numerics.EasyIterations = sp.Numerics.MaxIterations
	s, err := New(sp)
	assert.NoError(t, err)
	history, err := s.Run(context.Background())
	assert.NoError(t, err)
	// the controller grew the step beyond its initial value at some point
	grew := false
	for _, tp := range history[1:] {
		if tp.Dt > 0.011 {
			grew = true
		}
		assert.True(t, tp.Dt <= 0.1+1.e-12)
	}
	assert.True(t, grew)
}

func TestRunHonorsCancellation(t *testing.T) {
	s, err := New(shortCase())
	assert.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	history, err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	// only the initial state was recorded
	assert.Equal(t, 1, len(history))
}

func TestRejectedStepIsRetriedSmaller(t *testing.T) {
	// A stiff closure with a starved iteration budget cannot converge at the
	// initial step size; the controller must halve dt until it can, and
	// still finish the run.
	sp := shortCase()
	sp.Numerics.TFinal = 0.4
	sp.Numerics.DtInitial = 0.2
	sp.Numerics.DtMax = 0.2
	sp.Numerics.DtMin = 1.e-8
	sp.Numerics.MaxIterations = 2
	sp.Numerics.Tolerance = 1.e-9
	sp.Transport.Model = "CGM"
	sp.Sources.Bremsstrahlung.Mode = InputParameters.SourceModeZero
	s, err := New(sp)
	assert.NoError(t, err)
	history, err := s.Run(context.Background())
	assert.NoError(t, err)
	assert.InDelta(t, 0.4, history[len(history)-1].Time, 1.e-9)
	// at least one accepted step is smaller than the requested initial dt
	smallest := sp.Numerics.DtInitial
	for _, tp := range history[1:] {
		if tp.Dt < smallest {
			smallest = tp.Dt
		}
	}
	assert.True(t, smallest < sp.Numerics.DtInitial)
}

func TestStepUnderflowIsFatal(t *testing.T) {
	// A solver that can never converge must drive dt below DtMin and stop
	// with the typed underflow error rather than loop forever.
	sp := shortCase()
	sp.Numerics.Tolerance = 1.e-300
	sp.Numerics.MaxIterations = 1
	sp.Numerics.DtMin = 1.e-4
	sp.Numerics.DtInitial = 1.e-3
	s, err := New(sp)
	assert.NoError(t, err)
	_, err = s.Run(context.Background())
	assert.ErrorIs(t, err, ErrStepSizeUnderflow)
}

func TestSanityRejectionRetries(t *testing.T) {
	// A strong prescribed edge sink drives Ti through zero within one step at
	// the requested dt. The controller must treat the sanity rejection like a
	// non-convergence: discard, halve, retry, and only die with the typed
	// underflow once DtMin is hit. Every recorded state stays physical.
	sp := shortCase()
	sp.Numerics.TFinal = 10
	sp.Numerics.DtInitial = 0.05
	sp.Numerics.DtMax = 0.05
	sp.Numerics.DtMin = 1.e-4
	sp.Numerics.FrozenCoeffs = true
	sp.Pedestal.Set = 0
	sp.Profiles.NormalizeToNbar = false
	sp.Transport.Constant = InputParameters.ConstantTransportParameters{ChiI: 0.05, ChiE: 0.05, De: 0.05}
	sink := make([]float64, sp.NCells)
	sink[sp.NCells-1] = -2 // MW/m^3
	sp.Sources.GenericHeat = InputParameters.GenericHeatParameters{
		Mode:        InputParameters.SourceModePrescribed,
		IonFraction: 1,
		Prescribed: InputParameters.PrescribedProfile{
			Times:    []float64{0},
			Profiles: [][]float64{sink},
		},
	}
	sp.Sources.GenericCurrent.Mode = InputParameters.SourceModeZero
	sp.Sources.OhmicHeat.Mode = InputParameters.SourceModeZero
	sp.Sources.Bremsstrahlung.Mode = InputParameters.SourceModeZero
	sp.Sources.QeiExchange.Mode = InputParameters.SourceModeZero
	s, err := New(sp)
	assert.NoError(t, err)
	history, err := s.Run(context.Background())
	assert.ErrorIs(t, err, ErrStepSizeUnderflow)
	// the sanity violation never surfaces raw; it is consumed by the retry
	var pse *PhysicalSanityError
	assert.False(t, errors.As(err, &pse))
	// at least one halved step was accepted before the sink won
	accepted := false
	for _, tp := range history[1:] {
		if tp.Dt < sp.Numerics.DtInitial {
			accepted = true
		}
	}
	assert.True(t, accepted)
	for _, tp := range history {
		for i := range tp.State.TempIon.Value {
			assert.True(t, tp.State.TempIon.Value[i] > 0)
		}
	}
}

func TestFlatProfileIsFixedPoint(t *testing.T) {
	// Uniform profiles matching their boundary values, no sources, no pinch:
	// the implicit operator must reproduce the state exactly, step after step.
	one := 1.0
	sp := shortCase()
	sp.Numerics.TFinal = 0.3
	sp.Pedestal.Set = 0
	sp.Profiles.Ti = InputParameters.ProfileSpec{Axis: 1, Edge: &one}
	sp.Profiles.Te = InputParameters.ProfileSpec{Axis: 1, Edge: &one}
	sp.Profiles.Ne = InputParameters.ProfileSpec{Axis: 1, Edge: &one}
	sp.Profiles.NormalizeToNbar = false
	sp.Transport.Constant.Ve = 0
	sp.Sources.GenericHeat.Mode = InputParameters.SourceModeZero
	sp.Sources.GenericCurrent.Mode = InputParameters.SourceModeZero
	sp.Sources.OhmicHeat.Mode = InputParameters.SourceModeZero
	sp.Sources.Bremsstrahlung.Mode = InputParameters.SourceModeZero
	sp.Sources.QeiExchange.Mode = InputParameters.SourceModeZero
	s, err := New(sp)
	assert.NoError(t, err)
	history, err := s.Run(context.Background())
	assert.NoError(t, err)
	last := history[len(history)-1].State
	for i := range last.TempIon.Value {
		assert.InDelta(t, 1, last.TempIon.Value[i], 1.e-9)
		assert.InDelta(t, 1, last.TempEl.Value[i], 1.e-9)
		assert.InDelta(t, 1, last.Ne.Value[i], 1.e-9)
	}
}

func TestSourceOnlyEnergyGrowth(t *testing.T) {
	// With transport off and the density frozen, the ion thermal energy
	// integral must grow exactly by the injected power times elapsed time,
	// independent of the step sequence the controller picks.
	sp := shortCase()
	sp.Numerics.EvolveDensity = false
	sp.Pedestal.Set = 0
	sp.Transport.ChiMin = 0
	sp.Transport.DMin = 0
	sp.Transport.Constant = InputParameters.ConstantTransportParameters{}
	sp.Sources.GenericHeat = InputParameters.GenericHeatParameters{
		Mode: InputParameters.SourceModeFormula, Ptot: 20, Location: 0.36, Width: 0.18, IonFraction: 1,
	}
	sp.Sources.GenericCurrent.Mode = InputParameters.SourceModeZero
	sp.Sources.OhmicHeat.Mode = InputParameters.SourceModeZero
	sp.Sources.Bremsstrahlung.Mode = InputParameters.SourceModeZero
	sp.Sources.QeiExchange.Mode = InputParameters.SourceModeZero
	s, err := New(sp)
	assert.NoError(t, err)
	geo := s.Provider.Geometry(0)
	energy := func(tp TimePoint) (e float64) {
		for i := range tp.State.Ni {
			e += 1.5 * tp.State.Ni[i] * tp.State.TempIon.Value[i] * geo.VprCell[i] * geo.Grid.Dr
		}
		return
	}
	history, err := s.Run(context.Background())
	assert.NoError(t, err)
	var (
		e0 = energy(history[0])
		e1 = energy(history[len(history)-1])
	)
	assert.InEpsilon(t, e0+20*sources.MWPerM3*0.1, e1, 1.e-6)
}

func TestPredictorMatchesPlainRun(t *testing.T) {
	// The predictor only seeds the corrector; with a tight tolerance the
	// accepted states must agree with the non-predicted run.
	spA := shortCase()
	spA.Numerics.DtGrowth = 1 // identical step sequences for both runs
	spB := shortCase()
	spB.Numerics.DtGrowth = 1
	spB.Numerics.Predictor = true
	a, err := New(spA)
	assert.NoError(t, err)
	b, err := New(spB)
	assert.NoError(t, err)
	ha, err := a.Run(context.Background())
	assert.NoError(t, err)
	hb, err := b.Run(context.Background())
	assert.NoError(t, err)
	la := ha[len(ha)-1].State
	lb := hb[len(hb)-1].State
	for i := range la.TempIon.Value {
		assert.InDelta(t, la.TempIon.Value[i], lb.TempIon.Value[i], 5.e-3*la.TempIon.Value[i])
	}
}

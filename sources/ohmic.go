package sources

import (
	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/physics"
	"github.com/plasmakit/gotransp/state"
)

// OhmicHeat deposits the resistive dissipation johm^2/sigma on the
// electrons. The Ohmic current itself is the residual bookkeeping johm =
// jtot - jni maintained by the profile state; under the external drive's
// TotalCurrent mode that residual is suppressed and this source returns
// zero.
type OhmicHeat struct {
	Params InputParameters.SimpleSourceParameters
}

func (s *OhmicHeat) Name() string { return "ohmic" }

func (s *OhmicHeat) Compute(t float64, cp *state.CoreProfiles, geo *geometry.Geometry) (c Contribution) {
	var (
		N = geo.Grid.N
	)
	switch s.Params.Mode {
	case InputParameters.SourceModeZero:
		return
	case InputParameters.SourceModePrescribed:
		c.ElHeat, _ = prescribedOrNil(s.Params.Mode, s.Params.Prescribed, t, MWPerM3)
		return
	}
	sigma := physics.SpitzerConductivity(cp.TempEl.Value, cp.Zeff)
	c.ElHeat = make([]float64, N)
	for i := 0; i < N; i++ {
		johm := cp.Currents.Johm[i]
		c.ElHeat[i] = johm * johm / sigma[i] / 1e6 * MWPerM3
	}
	return
}

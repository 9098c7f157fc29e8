package sources

import (
	"math"

	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/state"
)

// Bremsstrahlung is the radiation sink on the electron channel,
// P = 5.35e-3 * Zeff * ne^2 * sqrt(Te) MW/m^3 with ne in 10^20 and Te in
// keV.
type Bremsstrahlung struct {
	Params InputParameters.SimpleSourceParameters
}

func (s *Bremsstrahlung) Name() string { return "bremsstrahlung" }

func (s *Bremsstrahlung) Compute(t float64, cp *state.CoreProfiles, geo *geometry.Geometry) (c Contribution) {
	var (
		N = geo.Grid.N
	)
	switch s.Params.Mode {
	case InputParameters.SourceModeZero:
		return
	case InputParameters.SourceModePrescribed:
		// Prescribed as a positive radiated power density.
		loss, _ := prescribedOrNil(s.Params.Mode, s.Params.Prescribed, t, MWPerM3)
		c.ElHeat = make([]float64, N)
		for i := range loss {
			c.ElHeat[i] = -loss[i]
		}
		return
	}
	c.ElHeat = make([]float64, N)
	for i := 0; i < N; i++ {
		var (
			ne = cp.Ne.Value[i]
			te = math.Max(cp.TempEl.Value[i], 0)
		)
		c.ElHeat[i] = -5.35e-3 * cp.Zeff * ne * ne * math.Sqrt(te) * MWPerM3
	}
	return
}

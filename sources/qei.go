package sources

import (
	"math"

	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/state"
)

// QeiExchange is the collisional ion-electron temperature equilibration. It
// returns the exchange coefficient C so the ion equation gains C*(Te - Ti)
// and the electron equation the opposite; the step solver applies it
// implicitly inside the coupled block, which keeps the stiff equilibration
// stable at large time steps.
type QeiExchange struct {
	Params InputParameters.QeiParameters
}

func (s *QeiExchange) Name() string { return "qei" }

func (s *QeiExchange) Compute(t float64, cp *state.CoreProfiles, geo *geometry.Geometry) (c Contribution) {
	var (
		N = geo.Grid.N
	)
	if s.Params.Mode == InputParameters.SourceModeZero {
		return
	}
	c.QeiCoef = make([]float64, N)
	for i := 0; i < N; i++ {
		var (
			ne = cp.Ne.Value[i]
			te = math.Max(cp.TempEl.Value[i], 1e-3)
		)
		// Equilibration rate ~ ne^2 Zeff / (Ai Te^3/2), in internal heat
		// units per keV of temperature difference.
		c.QeiCoef[i] = s.Params.Mult * 0.25 * ne * ne * cp.Zeff /
			(cp.Ai * te * math.Sqrt(te)) * MWPerM3
	}
	return
}

package sources

import (
	"math"

	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/physics"
	"github.com/plasmakit/gotransp/state"
)

// FusionHeat computes the DT alpha heating from the Bosch-Hale reactivity,
// assuming an optimal 50/50 deuterium-tritium fuel mix of the main ion
// species. The alpha power is split between ions and electrons by the
// fast-ion slowing-down fraction.
type FusionHeat struct {
	Params InputParameters.SimpleSourceParameters
}

func (s *FusionHeat) Name() string { return "fusion" }

// Bosch-Hale DT parameterization, valid 0.2-100 keV.
const (
	bgDT   = 34.3827  // Gamov constant [keV^1/2]
	mrcDT  = 1124656. // reduced mass [keV]
	c1DT   = 1.17302e-9
	c2DT   = 1.51361e-2
	c3DT   = 7.51886e-2
	c4DT   = 4.60643e-3
	c5DT   = 1.35e-2
	c6DT   = -1.0675e-4
	c7DT   = 1.366e-5
	alphaE = 3500. // alpha birth energy [keV]
)

// sigmaV returns the DT reactivity <sigma*v> in m^3/s for T in keV.
func sigmaV(t float64) float64 {
	if t < 0.1 {
		return 0
	}
	theta := t / (1 - t*(c2DT+t*(c4DT+t*c6DT))/(1+t*(c3DT+t*(c5DT+t*c7DT))))
	xi := math.Pow(bgDT*bgDT/(4*theta), 1./3.)
	sv := c1DT * theta * math.Sqrt(xi/(mrcDT*t*t*t)) * math.Exp(-3*xi)
	return sv * 1e-6 // cm^3/s -> m^3/s
}

func (s *FusionHeat) Compute(t float64, cp *state.CoreProfiles, geo *geometry.Geometry) (c Contribution) {
	var (
		N = geo.Grid.N
	)
	switch s.Params.Mode {
	case InputParameters.SourceModeZero:
		return
	case InputParameters.SourceModePrescribed:
		total, _ := prescribedOrNil(s.Params.Mode, s.Params.Prescribed, t, MWPerM3)
		c.IonHeat = make([]float64, N)
		c.ElHeat = make([]float64, N)
		for i := range total {
			frac := physics.IonHeatFraction(alphaE, cp.TempEl.Value[i], 4)
			c.IonHeat[i] = frac * total[i]
			c.ElHeat[i] = (1 - frac) * total[i]
		}
		return
	}
	c.IonHeat = make([]float64, N)
	c.ElHeat = make([]float64, N)
	for i := 0; i < N; i++ {
		var (
			nDT = 0.5 * cp.Ni[i] * 1e20 // 50/50 split of the main species
			// Alpha power density [W/m^3]: nD*nT*<sv>*E_alpha.
			pAlpha = nDT * nDT * sigmaV(cp.TempIon.Value[i]) * alphaE * physics.KeV
		)
		frac := physics.IonHeatFraction(alphaE, cp.TempEl.Value[i], 4)
		c.IonHeat[i] = frac * pAlpha / 1e6 * MWPerM3
		c.ElHeat[i] = (1 - frac) * pAlpha / 1e6 * MWPerM3
	}
	return
}

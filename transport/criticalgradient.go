package transport

import (
	"math"

	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/state"
)

// CriticalGradientModel: the ion heat conductivity is zero (floored) below a
// critical normalized ion temperature gradient and grows stiffly above it,
// scaled by gyroBohm. Electron heat and particle transport follow the ion
// channel in fixed ratios.
type CriticalGradientModel struct {
	Params InputParameters.CGMTransportParameters
	Clamps Clamps
}

func (m *CriticalGradientModel) Name() string { return "CGM" }

func (m *CriticalGradientModel) Coefficients(cp *state.CoreProfiles, geo *geometry.Geometry) Coefficients {
	var (
		grid   = geo.Grid
		N      = grid.N
		tiFace = cp.TempIon.FaceValue()
		tiGrad = cp.TempIon.FaceGrad()
		chiGB  = GyroBohmFace(cp, geo)
		c      = NewCoefficients(N)
	)
	for f := 0; f <= N; f++ {
		rlti := -geo.Rmaj / geo.Rmin * tiGrad[f] / math.Max(tiFace[f], 1e-3)
		excess := rlti - m.Params.Threshold
		if excess > 0 {
			c.ChiFaceIon[f] = chiGB[f] * m.Params.Stiffness * math.Pow(excess, m.Params.Exponent)
		}
		c.ChiFaceEl[f] = m.Params.ChiRatio * c.ChiFaceIon[f]
		c.DFaceEl[f] = m.Params.DRatio * c.ChiFaceEl[f]
	}
	return m.Clamps.Apply(geo, c)
}

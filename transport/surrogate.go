package transport

import (
	"math"

	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/state"
)

// SurrogateModel is a fitted quasilinear closure: an analytic stand-in for a
// gyrokinetic-surrogate regression, mapping the normalized gradients to ITG
// and TEM-like normalized fluxes above a linear threshold. It shares the
// input preparation with every other quasilinear variant.
type SurrogateModel struct {
	Params      InputParameters.SurrogateTransportParameters
	Quasilinear Quasilinear
	Clamps      Clamps
}

func (m *SurrogateModel) Name() string { return "surrogate" }

func (m *SurrogateModel) Coefficients(cp *state.CoreProfiles, geo *geometry.Geometry) Coefficients {
	var (
		in = m.Quasilinear.PrepareInputs(cp, geo)
		N  = geo.Grid.N
		qi = make([]float64, N+1)
		qe = make([]float64, N+1)
		pf = make([]float64, N+1)
	)
	for f := 0; f <= N; f++ {
		var (
			// ITG linear threshold, stabilized by shear over q and by hot
			// ions relative to electrons.
			atiCrit = (4. / 3.) * (1 + in.TiTe[f]) * (1 + in.Smag[f]/math.Max(in.Q[f], 0.5))
			// TEM threshold rises with collisionality.
			ateCrit = 2.5 * (1 + 0.1*math.Max(in.LogNuStar[f], 0)*m.Params.CollMult)
		)
		qi[f] = m.Params.FluxScale * pos(in.Ati[f]-atiCrit) * math.Sqrt(pos(in.Ati[f]-atiCrit))
		qe[f] = 0.7 * m.Params.FluxScale * (pos(in.Ate[f]-ateCrit) + 0.3*qi[f])
		pf[f] = m.Params.FluxScale * (0.3*pos(in.Ane[f]-1) + 0.1*qe[f])
	}
	c := FluxesToCoefficients(in, qi, qe, pf, m.Params.DVEffRatio, m.Params.PinchScale, geo)
	return m.Clamps.Apply(geo, c)
}

func pos(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}
